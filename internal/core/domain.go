package core

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type (
	// Date is a calendar day without a time component. It marshals as
	// "YYYY-MM-DD", the format the persisted records and exports use.
	Date struct {
		time.Time
	}

	// Settings is the single record describing the store, the one tracked
	// product and its pricing. Monetary fields are whole rupiah.
	Settings struct {
		StoreName     string `json:"storeName"`
		OwnerName     string `json:"ownerName"`
		ProductName   string `json:"productName"`
		UnitSalePrice int64  `json:"unitSalePrice"`
		UnitCostPrice int64  `json:"unitCostPrice"`
		InitialStock  int64  `json:"initialStock"`
		MonthlyTarget int64  `json:"monthlyTarget"`
	}

	// Transaction is one recorded sale. Unit prices are snapshots of the
	// settings in effect at creation time; the four derived monetary fields
	// are always recomputed together from quantity and those snapshots.
	Transaction struct {
		ID              string    `json:"id"`
		TransactionCode string    `json:"transactionCode"`
		Date            Date      `json:"date"`
		Buyer           string    `json:"buyer"`
		Quantity        int64     `json:"quantity"`
		UnitSalePrice   int64     `json:"unitSalePrice"`
		UnitCostPrice   int64     `json:"unitCostPrice"`
		TotalRevenue    int64     `json:"totalRevenue"`
		TotalCost       int64     `json:"totalCost"`
		Profit          int64     `json:"profit"`
		MarginPercent   float64   `json:"marginPercent"`
		Note            string    `json:"note"`
		CreatedAt       time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNegativePrice   = errors.New("price cannot be negative")
	ErrNegativeStock   = errors.New("initial stock cannot be negative")
	ErrNegativeTarget  = errors.New("monthly target cannot be negative")
)

// DefaultSettings returns the configuration used on first run, before the
// owner has saved anything.
func DefaultSettings() Settings {
	return Settings{
		StoreName:     "Toko Saya",
		ProductName:   "Produk A",
		UnitSalePrice: 50000,
		UnitCostPrice: 30000,
		InitialStock:  100,
		MonthlyTarget: 200,
	}
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// PeriodKey returns the "YYYY-MM" month bucket the date falls in.
// Lexicographic order on period keys matches chronological order.
func (d Date) PeriodKey() string {
	return d.Format("2006-01")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the settings record. Sale and cost prices are independently
// settable: a loss-making configuration is legal, only negatives are not.
func (s Settings) Validate() error {
	if s.UnitSalePrice < 0 || s.UnitCostPrice < 0 {
		return ErrNegativePrice
	}
	if s.InitialStock < 0 {
		return ErrNegativeStock
	}
	if s.MonthlyTarget < 0 {
		return ErrNegativeTarget
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.UnitSalePrice < 0 || t.UnitCostPrice < 0 {
		return ErrNegativePrice
	}
	return nil
}
