package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_LogMode(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Info, WithSlowThreshold(time.Second))

	newLogger, ok := gormLog.LogMode(gormlogger.Warn).(*GormLogger)

	require.True(t, ok)
	assert.Equal(t, gormlogger.Info, gormLog.level)
	assert.Equal(t, gormlogger.Warn, newLogger.level)
	assert.Equal(t, time.Second, newLogger.slowThreshold)
}

func TestGormLogger_Trace(t *testing.T) {
	sqlFn := func() (string, int64) { return `SELECT "id" FROM "res_partner"`, 2 }

	t.Run("errors are logged with request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Warn)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")

		gormLog.Trace(ctx, time.Now(), sqlFn, errors.New("boom"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Error", logs[0].Message)
		assert.Equal(t, "req-9", logs[0].ContextMap()["request_id"])
	})

	t.Run("queries carry the acting user and company", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Info)
		user, company := uuid.New(), uuid.New()
		ctx, _ := WithUserID(context.Background(), zap.NewNop(), user)
		ctx, _ = WithCompanyID(ctx, zap.NewNop(), company)

		gormLog.Trace(ctx, time.Now(), sqlFn, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Query", logs[0].Message)
		assert.Equal(t, user.String(), logs[0].ContextMap()["user_id"])
		assert.Equal(t, company.String(), logs[0].ContextMap()["company_id"])
		assert.Equal(t, int64(2), logs[0].ContextMap()["rows"])
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Warn)

		gormLog.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		gormLog.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
		assert.Equal(t, "Slow SQL", logs[0].Message)
		assert.Equal(t, time.Millisecond, logs[0].ContextMap()["threshold"])
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Silent)

		gormLog.Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))

		assert.Empty(t, recorded.All())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("bogus"))
}
