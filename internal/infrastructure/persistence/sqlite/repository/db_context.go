package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"helpdesk/internal/ports"
)

// dbFromContext prefers the transaction opened by the unit of work so
// every repository call inside WithTx joins the same commit.
func dbFromContext(ctx context.Context, base *gorm.DB) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return base.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

type countRow struct {
	Bucket *string `gorm:"column:bucket"`
	Count  int64   `gorm:"column:count"`
}

func mapCountRows(rows []countRow) []ports.CountRow {
	items := make([]ports.CountRow, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.CountRow{Key: row.Bucket, Count: row.Count})
	}
	return items
}
