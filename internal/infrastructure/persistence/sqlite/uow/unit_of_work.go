package uow

import (
	"context"

	"gorm.io/gorm"

	"helpdesk/internal/errs"
	"helpdesk/internal/ports"
)

// UnitOfWork implements ports.UnitOfWork with gorm. Nested calls reuse
// the outer transaction instead of opening a savepoint.
type UnitOfWork struct {
	db *gorm.DB
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ports.TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	var fnErr error
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(ports.WithTxContext(ctx, tx))
		return fnErr
	})
	if err != nil && fnErr == nil {
		// begin or commit failed
		return errs.Storage(err, "transaction")
	}
	return err
}
