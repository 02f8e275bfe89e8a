package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"penjualan/internal/core"
	"penjualan/internal/storage"
	"penjualan/internal/storage/memory"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(memory.New())
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return s
}

func TestInitializeDefaults(t *testing.T) {
	s := newTestStore(t)
	if got := s.Settings(); got != core.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", got)
	}
	if got := s.Transactions(); len(got) != 0 {
		t.Errorf("expected empty collection, got %d", len(got))
	}
}

func TestInitializeMalformedRecords(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	if err := repo.Put(ctx, storage.KeySettings, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Put(ctx, storage.KeyTransactions, []byte("[broken")); err != nil {
		t.Fatal(err)
	}

	s := New(repo)
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("initialize should fall back, not fail: %v", err)
	}
	if got := s.Settings(); got != core.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", got)
	}
	if len(s.Transactions()) != 0 {
		t.Error("expected empty collection after malformed record")
	}
}

func TestAddTransaction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.AddTransaction(ctx, AddInput{Quantity: 3, Buyer: "Budi"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	// Defaults: sale 50000, cost 30000.
	if tx.TotalRevenue != 150000 || tx.TotalCost != 90000 || tx.Profit != 60000 {
		t.Errorf("financials = (%d,%d,%d), want (150000,90000,60000)",
			tx.TotalRevenue, tx.TotalCost, tx.Profit)
	}
	if tx.MarginPercent != 40.0 {
		t.Errorf("margin = %v, want 40", tx.MarginPercent)
	}
	if tx.ID == "" {
		t.Error("expected assigned id")
	}
	wantCode := core.TransactionCode(1, core.Today())
	if tx.TransactionCode != wantCode {
		t.Errorf("code = %q, want %q", tx.TransactionCode, wantCode)
	}
	if tx.Date.IsZero() {
		t.Error("date should default to today")
	}
	if tx.CreatedAt.IsZero() {
		t.Error("createdAt should be set")
	}

	// Newest first.
	second, _ := s.AddTransaction(ctx, AddInput{Quantity: 1})
	txs := s.Transactions()
	if len(txs) != 2 || txs[0].ID != second.ID || txs[1].ID != tx.ID {
		t.Errorf("expected most-recent-first order")
	}
}

func TestAddTransactionRejectsBadQuantity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, qty := range []int64{0, -5} {
		if _, err := s.AddTransaction(ctx, AddInput{Quantity: qty}); !errors.Is(err, core.ErrInvalidQuantity) {
			t.Errorf("quantity %d: got %v, want ErrInvalidQuantity", qty, err)
		}
	}
	if len(s.Transactions()) != 0 {
		t.Error("rejected input must not change the collection")
	}
}

// Changing settings prices after a sale is recorded must not touch the
// sale's stored prices or totals.
func TestSnapshotPricingImmutable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.AddTransaction(ctx, AddInput{Quantity: 2})
	if err != nil {
		t.Fatal(err)
	}

	newSale, newCost := int64(99000), int64(70000)
	if _, err := s.UpdateSettings(ctx, SettingsPatch{UnitSalePrice: &newSale, UnitCostPrice: &newCost}); err != nil {
		t.Fatal(err)
	}

	got := s.Transactions()[0]
	if got.UnitSalePrice != 50000 || got.UnitCostPrice != 30000 {
		t.Errorf("stored prices changed to (%d,%d), snapshot must stay (50000,30000)",
			got.UnitSalePrice, got.UnitCostPrice)
	}
	if got.TotalRevenue != tx.TotalRevenue || got.Profit != tx.Profit {
		t.Error("derived totals changed after settings update")
	}
}

// Editing quantity recomputes financials from the prices stored on the
// transaction, not the (possibly changed) current settings.
func TestEditUsesStoredPrices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.AddTransaction(ctx, AddInput{Quantity: 3})
	if err != nil {
		t.Fatal(err)
	}

	newSale := int64(999999)
	if _, err := s.UpdateSettings(ctx, SettingsPatch{UnitSalePrice: &newSale}); err != nil {
		t.Fatal(err)
	}

	qty := int64(5)
	edited, err := s.EditTransaction(ctx, tx.ID, EditInput{Quantity: &qty})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.TotalRevenue != 5*50000 {
		t.Errorf("revenue = %d, want %d (stored price)", edited.TotalRevenue, 5*50000)
	}
	if edited.TotalCost != 5*30000 || edited.Profit != 5*20000 {
		t.Errorf("cost/profit = (%d,%d), want (150000,100000)", edited.TotalCost, edited.Profit)
	}
}

func TestEditTransactionFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx, _ := s.AddTransaction(ctx, AddInput{Quantity: 1, Buyer: "Ani", Note: "dp"})

	buyer := "Citra"
	date := core.NewDate(2025, time.February, 2)
	edited, err := s.EditTransaction(ctx, tx.ID, EditInput{Buyer: &buyer, Date: &date})
	if err != nil {
		t.Fatal(err)
	}
	if edited.Buyer != "Citra" || edited.Date.String() != "2025-02-02" {
		t.Errorf("merge result = %q/%s", edited.Buyer, edited.Date)
	}
	if edited.Note != "dp" || edited.Quantity != 1 {
		t.Error("unspecified fields must keep prior values")
	}
	if edited.TransactionCode != tx.TransactionCode {
		t.Error("code must be immutable under edit")
	}

	if _, err := s.EditTransaction(ctx, "missing", EditInput{Buyer: &buyer}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}

	bad := int64(0)
	if _, err := s.EditTransaction(ctx, tx.ID, EditInput{Quantity: &bad}); !errors.Is(err, core.ErrInvalidQuantity) {
		t.Errorf("zero quantity edit: got %v, want ErrInvalidQuantity", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	keep, _ := s.AddTransaction(ctx, AddInput{Quantity: 1})
	doomed, _ := s.AddTransaction(ctx, AddInput{Quantity: 2})

	if err := s.DeleteTransaction(ctx, doomed.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	txs := s.Transactions()
	if len(txs) != 1 || txs[0].ID != keep.ID {
		t.Fatalf("expected only %s to remain", keep.ID)
	}

	// Idempotence: a second delete fails and changes nothing.
	if err := s.DeleteTransaction(ctx, doomed.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
	if after := s.Transactions(); len(after) != 1 || after[0].ID != keep.ID {
		t.Error("failed delete must leave the collection unchanged")
	}
}

func TestUpdateSettingsShallowMerge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	name := "Warung Ani"
	got, err := s.UpdateSettings(ctx, SettingsPatch{StoreName: &name})
	if err != nil {
		t.Fatal(err)
	}
	if got.StoreName != "Warung Ani" {
		t.Errorf("store name = %q", got.StoreName)
	}
	if got.UnitSalePrice != 50000 || got.MonthlyTarget != 200 {
		t.Error("unpatched fields must keep prior values")
	}

	bad := int64(-1)
	if _, err := s.UpdateSettings(ctx, SettingsPatch{UnitSalePrice: &bad}); !errors.Is(err, core.ErrNegativePrice) {
		t.Errorf("negative price: got %v, want ErrNegativePrice", err)
	}
}

func TestResetAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	name := "Warung Ani"
	if _, err := s.UpdateSettings(ctx, SettingsPatch{StoreName: &name}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTransaction(ctx, AddInput{Quantity: 2}); err != nil {
		t.Fatal(err)
	}

	if err := s.ResetAll(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s.Settings() != core.DefaultSettings() {
		t.Error("settings should return to defaults")
	}
	if len(s.Transactions()) != 0 {
		t.Error("collection should be empty")
	}
}

// A full persist/load cycle must reproduce the exact state, both for a small
// collection and for a large one.
func TestRoundTripPersistence(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	s := New(repo)
	if err := s.Initialize(ctx); err != nil {
		t.Fatal(err)
	}

	name := "Toko Roti"
	if _, err := s.UpdateSettings(ctx, SettingsPatch{StoreName: &name}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		if _, err := s.AddTransaction(ctx, AddInput{Quantity: int64(i%7 + 1), Buyer: "pelanggan"}); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	want := s.Transactions()

	// A second store over the same records must load identical state.
	reloaded := New(repo)
	if err := reloaded.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if reloaded.Settings() != s.Settings() {
		t.Errorf("settings mismatch after reload")
	}
	got := reloaded.Transactions()
	if len(got) != len(want) {
		t.Fatalf("reloaded %d transactions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].TotalRevenue != want[i].TotalRevenue ||
			got[i].TransactionCode != want[i].TransactionCode || !got[i].Date.Equal(want[i].Date.Time) {
			t.Fatalf("transaction %d differs after reload", i)
		}
	}
}

// failingStore wraps a record store and fails every write.
type failingStore struct {
	*memory.RecordStore
}

var errDiskFull = errors.New("disk full")

func (f *failingStore) Put(ctx context.Context, key string, value []byte) error {
	return errDiskFull
}

func (f *failingStore) Delete(ctx context.Context, keys ...string) error {
	return errDiskFull
}

func TestPersistenceFailureRollsBack(t *testing.T) {
	mem := memory.New()
	ctx := context.Background()

	healthy := New(mem)
	if err := healthy.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	existing, err := healthy.AddTransaction(ctx, AddInput{Quantity: 1})
	if err != nil {
		t.Fatal(err)
	}

	broken := New(&failingStore{RecordStore: mem})
	if err := broken.Initialize(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := broken.AddTransaction(ctx, AddInput{Quantity: 3}); !errors.Is(err, errDiskFull) {
		t.Fatalf("add: got %v, want errDiskFull", err)
	}
	if txs := broken.Transactions(); len(txs) != 1 || txs[0].ID != existing.ID {
		t.Error("failed add must leave in-memory state unchanged")
	}

	name := "X"
	if _, err := broken.UpdateSettings(ctx, SettingsPatch{StoreName: &name}); !errors.Is(err, errDiskFull) {
		t.Fatalf("update settings: got %v, want errDiskFull", err)
	}
	if broken.Settings().StoreName == "X" {
		t.Error("failed settings write must not commit in memory")
	}

	if err := broken.DeleteTransaction(ctx, existing.ID); !errors.Is(err, errDiskFull) {
		t.Fatalf("delete: got %v, want errDiskFull", err)
	}
	if len(broken.Transactions()) != 1 {
		t.Error("failed delete must not commit in memory")
	}
}

func TestRestoreBackup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.AddTransaction(ctx, AddInput{Quantity: 9}); err != nil {
		t.Fatal(err)
	}

	settings := core.Settings{StoreName: "Restored", UnitSalePrice: 1000, UnitCostPrice: 400, InitialStock: 10, MonthlyTarget: 5}
	txs := []core.Transaction{
		{
			ID:              "tx-1",
			TransactionCode: "TRX-250101-001",
			Date:            core.NewDate(2025, time.January, 1),
			Quantity:        2,
			UnitSalePrice:   1000,
			UnitCostPrice:   400,
			TotalRevenue:    2000,
			TotalCost:       800,
			Profit:          1200,
			MarginPercent:   60,
			CreatedAt:       time.Now(),
		},
	}

	if err := s.RestoreBackup(ctx, settings, txs); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.Settings().StoreName != "Restored" {
		t.Error("settings not replaced")
	}
	got := s.Transactions()
	if len(got) != 1 || got[0].ID != "tx-1" {
		t.Errorf("collection not replaced: %+v", got)
	}
}

func TestSubscribeNotify(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var events []Event
	cancel := s.Subscribe(func(e Event) { events = append(events, e) })

	tx, _ := s.AddTransaction(ctx, AddInput{Quantity: 1})
	_ = s.DeleteTransaction(ctx, tx.ID)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != EventTransactionAdded || events[0].TransactionID != tx.ID {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Kind != EventTransactionDeleted {
		t.Errorf("second event = %+v", events[1])
	}

	cancel()
	_, _ = s.AddTransaction(ctx, AddInput{Quantity: 1})
	if len(events) != 2 {
		t.Error("cancelled subscriber must not receive events")
	}
}
