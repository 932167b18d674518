package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/erp/operatingunit/internal/domain/orgscope"
	"github.com/erp/operatingunit/internal/infrastructure/config"
	"github.com/erp/operatingunit/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "scope.db"),
	}
	db, err := NewDatabase(cfg, zap.NewNop(), gormlogger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func catalog(t *testing.T) *orgscope.Registry {
	t.Helper()
	reg, err := models.Catalog()
	require.NoError(t, err)
	return reg
}

// seed is a holding with one subsidiary (Acme) split into two operating
// units, a partner per unit, an order in OU1 and a user of both units.
type seed struct {
	holding, acme uuid.UUID
	ou1, ou2      uuid.UUID
	b1, b2        uuid.UUID // partners owned by OU2 and OU1
	free          uuid.UUID // partner without company
	archived      uuid.UUID // archived partner owned by OU1
	a1            uuid.UUID // order in OU1
	line1, line2  uuid.UUID
	product       uuid.UUID
	user          uuid.UUID
}

func seedData(t *testing.T, db *Database) seed {
	t.Helper()
	var s seed
	create := func(row any) {
		require.NoError(t, db.DB.Create(row).Error)
	}

	holding := models.NewCompany("Holding", uuid.Nil)
	create(holding)
	acme := models.NewCompany("Acme", holding.ID)
	create(acme)
	s.holding, s.acme = holding.ID, acme.ID

	ou1 := models.NewOperatingUnit("OU1", "OU1", acme.ID)
	create(ou1)
	ou2 := models.NewOperatingUnit("OU2", "OU2", acme.ID)
	create(ou2)
	s.ou1, s.ou2 = ou1.ID, ou2.ID

	b1 := models.NewPartner("B1", ou2.ID)
	create(b1)
	b2 := models.NewPartner("B2", ou1.ID)
	create(b2)
	free := models.NewPartner("Walk-in", uuid.Nil)
	create(free)
	archived := models.NewPartner("Old Customer", ou1.ID)
	archived.Active = false
	create(archived)
	s.b1, s.b2, s.free, s.archived = b1.ID, b2.ID, free.ID, archived.ID

	product := &models.ProductTemplateModel{
		NamedModel: models.NamedModel{Name: "Widget", Active: true},
		CompanyID:  &acme.ID,
	}
	create(product)
	s.product = product.ID

	order := models.NewSaleOrder("A1", acme.ID, ou1.ID)
	create(order)
	s.a1 = order.ID

	line1 := &models.SaleOrderLineModel{Name: "Widget x1", OrderID: order.ID, ProductID: &product.ID}
	create(line1)
	line2 := &models.SaleOrderLineModel{Name: "Widget x2", OrderID: order.ID}
	create(line2)
	s.line1, s.line2 = line1.ID, line2.ID

	user := models.NewUser("Alice", "alice", acme.ID)
	create(user)
	s.user = user.ID
	create(&models.UserOperatingUnitModel{UserID: user.ID, OperatingUnitID: ou1.ID})
	create(&models.UserOperatingUnitModel{UserID: user.ID, OperatingUnitID: ou2.ID})

	return s
}
