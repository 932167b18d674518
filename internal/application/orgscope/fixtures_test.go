package orgscope

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/erp/operatingunit/internal/domain/orgscope"
	"github.com/erp/operatingunit/internal/infrastructure/config"
	"github.com/erp/operatingunit/internal/infrastructure/persistence"
	"github.com/erp/operatingunit/internal/infrastructure/persistence/models"
	"github.com/erp/operatingunit/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	gormlogger "gorm.io/gorm/logger"
)

// world is a company with two operating units, a partner in each, a
// partner without company and an order placed in OU1.
type world struct {
	db    *persistence.Database
	store *persistence.Store

	acme     uuid.UUID
	ou1, ou2 uuid.UUID
	b1, b2   uuid.UUID // owned by OU2 and OU1
	free     uuid.UUID
	order    uuid.UUID
}

func newWorld(t *testing.T) *world {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "scope.db"),
	}, zap.NewNop(), gormlogger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	reg, err := models.Catalog()
	require.NoError(t, err)

	w := &world{db: db, store: persistence.NewStore(db.DB, reg)}
	create := func(row any) {
		require.NoError(t, db.DB.Create(row).Error)
	}

	acme := models.NewCompany("Acme", uuid.Nil)
	create(acme)
	ou1 := models.NewOperatingUnit("OU1", "OU1", acme.ID)
	create(ou1)
	ou2 := models.NewOperatingUnit("OU2", "OU2", acme.ID)
	create(ou2)
	b1 := models.NewPartner("B1", ou2.ID)
	create(b1)
	b2 := models.NewPartner("B2", ou1.ID)
	create(b2)
	free := models.NewPartner("Walk-in", uuid.Nil)
	create(free)
	order := models.NewSaleOrder("A1", acme.ID, ou1.ID)
	create(order)

	w.acme, w.ou1, w.ou2 = acme.ID, ou1.ID, ou2.ID
	w.b1, w.b2, w.free = b1.ID, b2.ID, free.ID
	w.order = order.ID
	return w
}

func (w *world) partnerOf(t *testing.T, order uuid.UUID) orgscope.RecordSet {
	t.Helper()
	rs, err := w.store.ReadRelation(context.Background(),
		orgscope.Ref{Model: models.ModelSaleOrder, ID: order}, "partner_id")
	require.NoError(t, err)
	return rs
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return zap.New(core), recorded
}

func newTestMetrics(t *testing.T) (*telemetry.ScopeMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	m, err := telemetry.NewScopeMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

// mockUnitOfWork is a UnitOfWork whose outcome is scripted
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Do(ctx context.Context, fn func(host Host) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}
