package domain

import "context"

// Transactor runs fn atomically. Repositories invoked with the ctx handed to fn
// take part in the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
