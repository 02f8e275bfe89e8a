// Package ledger owns the authoritative transaction collection and the
// settings record. All mutations go through the Store, which validates,
// persists, and only then swaps the in-memory state, so a failed write never
// leaves memory and disk diverged. Readers always get copies.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"penjualan/internal/core"
	"penjualan/internal/storage"
)

// ErrNotFound is returned by edit and delete for an unknown transaction id.
var ErrNotFound = errors.New("transaction not found")

// SettingsPatch is a shallow-merge update: nil fields keep their prior value.
type SettingsPatch struct {
	StoreName     *string `json:"storeName,omitempty"`
	OwnerName     *string `json:"ownerName,omitempty"`
	ProductName   *string `json:"productName,omitempty"`
	UnitSalePrice *int64  `json:"unitSalePrice,omitempty"`
	UnitCostPrice *int64  `json:"unitCostPrice,omitempty"`
	InitialStock  *int64  `json:"initialStock,omitempty"`
	MonthlyTarget *int64  `json:"monthlyTarget,omitempty"`
}

// AddInput carries the user-entered fields of a new sale. Date defaults to
// the current day when zero; prices are snapshotted from settings.
type AddInput struct {
	Quantity int64
	Buyer    string
	Date     core.Date
	Note     string
}

// EditInput mutates an existing sale. Unit prices are not editable: edits
// recompute financials from the prices stored on the transaction, never from
// the current settings.
type EditInput struct {
	Quantity *int64
	Buyer    *string
	Date     *core.Date
	Note     *string
}

// Store is the single writer over the ledger state. At most one mutation
// commits at a time; each mutation builds the next collection, persists it,
// and swaps it in, so concurrent readers never observe a half-applied write.
type Store struct {
	mu           sync.Mutex
	repo         storage.RecordStore
	settings     core.Settings
	transactions []core.Transaction

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

func New(repo storage.RecordStore) *Store {
	return &Store{
		repo:         repo,
		settings:     core.DefaultSettings(),
		transactions: []core.Transaction{},
		subs:         make(map[int]func(Event)),
	}
}

// Initialize loads the persisted settings and transaction collection. Missing
// or malformed records fall back to defaults; startup never fails on bad
// stored data, it logs and continues.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := core.DefaultSettings()
	if raw, err := s.repo.Get(ctx, storage.KeySettings); err == nil {
		if uerr := json.Unmarshal(raw, &settings); uerr != nil {
			settings = core.DefaultSettings()
			slog.ErrorContext(ctx, "Malformed settings record, using defaults", "error", uerr)
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		slog.ErrorContext(ctx, "Failed loading settings, using defaults", "error", err)
	}

	transactions := []core.Transaction{}
	if raw, err := s.repo.Get(ctx, storage.KeyTransactions); err == nil {
		if uerr := json.Unmarshal(raw, &transactions); uerr != nil {
			transactions = []core.Transaction{}
			slog.ErrorContext(ctx, "Malformed transactions record, starting empty", "error", uerr)
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		slog.ErrorContext(ctx, "Failed loading transactions, starting empty", "error", err)
	}

	s.settings = settings
	s.transactions = transactions

	slog.InfoContext(ctx, "Ledger initialized",
		"transactions", len(transactions),
		"store_name", settings.StoreName)
	return nil
}

// Settings returns the current configuration record.
func (s *Store) Settings() core.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Transactions returns a copy of the collection in canonical order, most
// recent first.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Stats computes the global projection over the live collection.
func (s *Store) Stats() core.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ComputeStats(s.transactions, s.settings)
}

// MonthlySummaries returns the month rollups, most recent month first.
func (s *Store) MonthlySummaries() []core.MonthlySummary {
	return core.SummarizeByMonth(s.Transactions())
}

// TransactionsInMonth returns the drill-down for one "YYYY-MM" period.
func (s *Store) TransactionsInMonth(periodKey string) []core.Transaction {
	return core.TransactionsInMonth(s.Transactions(), periodKey)
}

// UpdateSettings merges the patch into the current settings, persists the
// merged record and then commits it. On a persistence failure the in-memory
// settings are left untouched.
func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) (core.Settings, error) {
	s.mu.Lock()

	next := s.settings
	if patch.StoreName != nil {
		next.StoreName = *patch.StoreName
	}
	if patch.OwnerName != nil {
		next.OwnerName = *patch.OwnerName
	}
	if patch.ProductName != nil {
		next.ProductName = *patch.ProductName
	}
	if patch.UnitSalePrice != nil {
		next.UnitSalePrice = *patch.UnitSalePrice
	}
	if patch.UnitCostPrice != nil {
		next.UnitCostPrice = *patch.UnitCostPrice
	}
	if patch.InitialStock != nil {
		next.InitialStock = *patch.InitialStock
	}
	if patch.MonthlyTarget != nil {
		next.MonthlyTarget = *patch.MonthlyTarget
	}

	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return core.Settings{}, err
	}
	if err := s.persistSettings(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Settings{}, err
	}

	s.settings = next
	s.mu.Unlock()

	s.notify(Event{Kind: EventSettingsUpdated})
	return next, nil
}

// AddTransaction records a new sale. Quantity must be a positive integer;
// unit prices are snapshotted from the current settings and never revised
// afterwards. The new record is prepended, keeping most-recent-first order.
func (s *Store) AddTransaction(ctx context.Context, in AddInput) (core.Transaction, error) {
	s.mu.Lock()

	if in.Quantity <= 0 {
		s.mu.Unlock()
		return core.Transaction{}, core.ErrInvalidQuantity
	}

	now := time.Now()
	date := in.Date
	if date.IsZero() {
		date = core.Today()
	}

	f := core.ComputeFinancials(in.Quantity, s.settings.UnitSalePrice, s.settings.UnitCostPrice)
	tx := core.Transaction{
		ID:              core.NewID(),
		TransactionCode: core.TransactionCode(len(s.transactions)+1, core.NewDate(now.Year(), now.Month(), now.Day())),
		Date:            date,
		Buyer:           in.Buyer,
		Quantity:        in.Quantity,
		UnitSalePrice:   s.settings.UnitSalePrice,
		UnitCostPrice:   s.settings.UnitCostPrice,
		TotalRevenue:    f.TotalRevenue,
		TotalCost:       f.TotalCost,
		Profit:          f.Profit,
		MarginPercent:   f.MarginPercent,
		Note:            in.Note,
		CreatedAt:       now,
	}
	if err := tx.Validate(); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}

	next := make([]core.Transaction, 0, len(s.transactions)+1)
	next = append(next, tx)
	next = append(next, s.transactions...)

	if err := s.persistTransactions(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}

	s.transactions = next
	s.mu.Unlock()

	slog.InfoContext(ctx, "Transaction recorded",
		"id", tx.ID, "code", tx.TransactionCode, "quantity", tx.Quantity, "revenue", tx.TotalRevenue)
	s.notify(Event{Kind: EventTransactionAdded, TransactionID: tx.ID})
	return tx, nil
}

// EditTransaction merges the given fields into the transaction and recomputes
// the derived financials from the stored per-transaction prices. Changing the
// settings between creation and edit has no effect on the result.
func (s *Store) EditTransaction(ctx context.Context, id string, in EditInput) (core.Transaction, error) {
	s.mu.Lock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return core.Transaction{}, ErrNotFound
	}

	next := make([]core.Transaction, len(s.transactions))
	copy(next, s.transactions)

	tx := next[idx]
	if in.Quantity != nil {
		tx.Quantity = *in.Quantity
	}
	if in.Buyer != nil {
		tx.Buyer = *in.Buyer
	}
	if in.Date != nil {
		tx.Date = *in.Date
	}
	if in.Note != nil {
		tx.Note = *in.Note
	}
	if err := tx.Validate(); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}

	f := core.ComputeFinancials(tx.Quantity, tx.UnitSalePrice, tx.UnitCostPrice)
	tx.TotalRevenue = f.TotalRevenue
	tx.TotalCost = f.TotalCost
	tx.Profit = f.Profit
	tx.MarginPercent = f.MarginPercent
	next[idx] = tx

	if err := s.persistTransactions(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}

	s.transactions = next
	s.mu.Unlock()

	slog.InfoContext(ctx, "Transaction updated", "id", id, "quantity", tx.Quantity)
	s.notify(Event{Kind: EventTransactionUpdated, TransactionID: id})
	return tx, nil
}

// DeleteTransaction removes the transaction with the given id. Deleting an
// unknown id returns ErrNotFound and leaves the collection unchanged. Codes
// of the remaining transactions are never renumbered.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}

	next := make([]core.Transaction, 0, len(s.transactions)-1)
	next = append(next, s.transactions[:idx]...)
	next = append(next, s.transactions[idx+1:]...)

	if err := s.persistTransactions(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}

	s.transactions = next
	s.mu.Unlock()

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	s.notify(Event{Kind: EventTransactionDeleted, TransactionID: id})
	return nil
}

// ResetAll clears both records from durable storage and restores the default
// in-memory state. Destructive and irreversible; confirming intent is the
// caller's job.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()

	if err := s.repo.Delete(ctx, storage.KeySettings, storage.KeyTransactions); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear records: %w", err)
	}

	s.settings = core.DefaultSettings()
	s.transactions = []core.Transaction{}
	s.mu.Unlock()

	slog.WarnContext(ctx, "Ledger reset, all data cleared")
	s.notify(Event{Kind: EventReset})
	return nil
}

// RestoreBackup replaces both the settings and the transaction collection
// from a decoded backup. The transaction record is written first; if the
// settings write then fails, the prior transaction record is put back so the
// two records stay a consistent pair.
func (s *Store) RestoreBackup(ctx context.Context, settings core.Settings, transactions []core.Transaction) error {
	s.mu.Lock()

	if err := settings.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}

	prevTx, err := json.Marshal(s.transactions)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("snapshot current transactions: %w", err)
	}

	next := make([]core.Transaction, len(transactions))
	copy(next, transactions)

	if err := s.persistTransactions(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.persistSettings(ctx, settings); err != nil {
		if rerr := s.repo.Put(ctx, storage.KeyTransactions, prevTx); rerr != nil {
			slog.ErrorContext(ctx, "Failed rolling back transactions record", "error", rerr)
		}
		s.mu.Unlock()
		return err
	}

	s.settings = settings
	s.transactions = next
	s.mu.Unlock()

	slog.InfoContext(ctx, "Backup restored", "transactions", len(next))
	s.notify(Event{Kind: EventRestored})
	return nil
}

// Close releases the underlying record store.
func (s *Store) Close() error {
	return s.repo.Close()
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id string) int {
	for i, t := range s.transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// persistSettings must be called with s.mu held.
func (s *Store) persistSettings(ctx context.Context, settings core.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.repo.Put(ctx, storage.KeySettings, raw); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

// persistTransactions must be called with s.mu held.
func (s *Store) persistTransactions(ctx context.Context, transactions []core.Transaction) error {
	raw, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("marshal transactions: %w", err)
	}
	if err := s.repo.Put(ctx, storage.KeyTransactions, raw); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	return nil
}
