package ports

import "context"

// Tx is the opaque transaction handle stored in the context. The storage
// adapter decides its concrete type.
type Tx interface{}

// UnitOfWork scopes one logical operation to a single write transaction.
// fn returning an error rolls back; returning nil commits.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) Tx {
	return ctx.Value(txKey{})
}
