// Package storage defines the durable record store the ledger persists into.
//
// The persisted state is two independently keyed JSON records under the
// "catatan_penjualan:" namespace: the settings object and the transaction
// array. Adapters live in subpackages (sqlite for durable storage, memory
// for tests and the default backend).
package storage

import (
	"context"
	"errors"
)

// Record keys. The namespace matches the original storage scheme so a backup
// taken from one backend restores into another unchanged.
const (
	KeySettings     = "catatan_penjualan:pengaturan"
	KeyTransactions = "catatan_penjualan:transaksi"
)

// ErrNotFound is returned by Get when no record exists under the key.
var ErrNotFound = errors.New("record not found")

// RecordStore is a keyed JSON record store. Put must be atomic per key: a
// failed write leaves the prior value intact.
type RecordStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
