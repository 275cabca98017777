package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs a function within a database transaction. The transaction
// handle travels in the context, so repository methods called from fn join
// the transaction without signature changes and roll back together when fn
// returns an error. Outside a transaction the same methods run on their
// plain connection.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor returns a Transactor backed by db.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn resolves the connection a repository method should use: the open
// transaction carried by ctx when there is one, otherwise db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db
}
