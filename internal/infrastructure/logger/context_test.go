package logger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/language"
)

func TestFromContext_NotFound(t *testing.T) {
	logger := FromContext(context.Background())

	require.NotNil(t, logger)
	logger.Info("no-op")
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")

	assert.NotNil(t, FromContext(ctx))
}

func TestContextChaining(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	userID, companyID := uuid.New(), uuid.New()

	ctx := context.Background()
	ctx, l := WithRequestID(ctx, zap.New(core), "req-1")
	ctx, l = WithUserID(ctx, l, userID)
	ctx, l = WithCompanyID(ctx, l, companyID)

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, userID, GetUserID(ctx))
	assert.Equal(t, companyID, GetCompanyID(ctx))

	l.Info("chained")
	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, userID.String(), fields["user_id"])
	assert.Equal(t, companyID.String(), fields["company_id"])
}

func TestGetters_NotFound(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Equal(t, uuid.Nil, GetUserID(ctx))
	assert.Equal(t, uuid.Nil, GetCompanyID(ctx))
	_, ok := GetLanguage(ctx)
	assert.False(t, ok)
	assert.Empty(t, GetTraceID(ctx))
}

func TestWithLanguage(t *testing.T) {
	ctx := WithLanguage(context.Background(), language.SimplifiedChinese)

	tag, ok := GetLanguage(ctx)
	require.True(t, ok)
	assert.Equal(t, language.SimplifiedChinese, tag)
}

func TestContextLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	companyID := uuid.New()

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
	ctx = WithContext(ctx, zap.New(core))
	ctx = context.WithValue(ctx, CompanyIDKey, companyID)

	L(ctx).With(zap.String("model", "sale.order")).Warn("incompatible operating unit")

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
	assert.Equal(t, companyID.String(), fields["company_id"])
	assert.Equal(t, "sale.order", fields["model"])
	assert.NotContains(t, fields, "request_id")
	assert.Equal(t, traceID.String(), GetTraceID(ctx))
}
