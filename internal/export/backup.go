package export

import (
	"encoding/json"
	"fmt"
	"time"

	"penjualan/internal/core"
)

// Backup is the full-fidelity serialization of the ledger. The top-level
// keys match the original storage namespace so old backups stay readable.
type Backup struct {
	Settings     core.Settings      `json:"pengaturan"`
	Transactions []core.Transaction `json:"transaksi"`
}

// EncodeBackup renders a pretty-printed backup document sufficient for an
// exact round-trip restore.
func EncodeBackup(settings core.Settings, transactions []core.Transaction) ([]byte, error) {
	if transactions == nil {
		transactions = []core.Transaction{}
	}
	data, err := json.MarshalIndent(Backup{Settings: settings, Transactions: transactions}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// DecodeBackup parses a backup document produced by EncodeBackup. Documents
// without the settings record are rejected so an unrelated JSON file cannot
// wipe the ledger on restore.
func DecodeBackup(data []byte) (Backup, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Backup{}, fmt.Errorf("decode backup: %w", err)
	}
	if _, ok := probe["pengaturan"]; !ok {
		return Backup{}, fmt.Errorf("decode backup: missing settings record")
	}

	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return Backup{}, fmt.Errorf("decode backup: %w", err)
	}
	if b.Transactions == nil {
		b.Transactions = []core.Transaction{}
	}
	return b, nil
}

// BackupFilename returns the conventional download name for the given day.
func BackupFilename(day time.Time) string {
	return "backup_penjualan_" + day.Format("2006-01-02") + ".json"
}
