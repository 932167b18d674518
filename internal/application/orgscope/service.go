// Package orgscope holds the use cases around operating unit consistency:
// guarded writes and manual audits.
package orgscope

import (
	"context"
	"fmt"

	"github.com/erp/operatingunit/internal/domain/orgscope"
	"github.com/erp/operatingunit/internal/infrastructure/persistence"
	"gorm.io/gorm"
)

// Host is a storage host the checker reads from and writes through
type Host interface {
	orgscope.Env
	orgscope.Writer
}

// UnitOfWork runs fn against a Host bound to a single transaction. An error
// returned by fn rolls the transaction back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(host Host) error) error
}

// GormUnitOfWork binds a persistence.Store to a GORM transaction
type GormUnitOfWork struct {
	db    *persistence.Database
	store *persistence.Store
}

// NewGormUnitOfWork creates a unit of work over db
func NewGormUnitOfWork(db *persistence.Database, store *persistence.Store) *GormUnitOfWork {
	return &GormUnitOfWork{db: db, store: store}
}

// Do implements UnitOfWork
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(host Host) error) error {
	return u.db.Transaction(ctx, func(tx *gorm.DB) error {
		return fn(u.store.WithTx(tx))
	})
}

// EnableAutoCheck turns the write-time check on for every model named. It is
// meant to run once at startup, before the registry is shared.
func EnableAutoCheck(reg *orgscope.Registry, models []string) error {
	for _, name := range models {
		if err := reg.SetCheckAuto(name, true); err != nil {
			return fmt.Errorf("enable auto check on %q: %w", name, err)
		}
	}
	return nil
}
