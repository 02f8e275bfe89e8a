package core

import "sort"

// MonthlySummary is a rollup of all transactions whose sale date falls in one
// calendar month. It is derived on demand and never persisted.
type MonthlySummary struct {
	PeriodKey        string `json:"periodKey"` // "YYYY-MM"
	Year             int    `json:"year"`
	Month            int    `json:"month"` // 1-12
	TotalQuantity    int64  `json:"totalQuantity"`
	TotalRevenue     int64  `json:"totalRevenue"`
	TotalCost        int64  `json:"totalCost"`
	TotalProfit      int64  `json:"totalProfit"`
	TransactionCount int    `json:"transactionCount"`
}

// Stats is the process-wide projection over the live collection and settings.
type Stats struct {
	TotalQuantity    int64   `json:"totalQuantity"`
	TotalRevenue     int64   `json:"totalRevenue"`
	TotalCost        int64   `json:"totalCost"`
	TotalProfit      int64   `json:"totalProfit"`
	TransactionCount int     `json:"transactionCount"`
	RemainingStock   int64   `json:"remainingStock"` // may go negative; display clamps
	MonthlyTarget    int64   `json:"monthlyTarget"`
	MarginPercent    float64 `json:"marginPercent"` // blended; 0 when no revenue
}

// SummarizeByMonth buckets transactions by the calendar month of their sale
// date, summing quantity and the monetary fields. The result is ordered most
// recent month first. Empty input yields an empty, non-nil slice.
func SummarizeByMonth(transactions []Transaction) []MonthlySummary {
	buckets := make(map[string]*MonthlySummary)
	for _, t := range transactions {
		key := t.Date.PeriodKey()
		s, ok := buckets[key]
		if !ok {
			s = &MonthlySummary{
				PeriodKey: key,
				Year:      t.Date.Year(),
				Month:     int(t.Date.Month()),
			}
			buckets[key] = s
		}
		s.TotalQuantity += t.Quantity
		s.TotalRevenue += t.TotalRevenue
		s.TotalCost += t.TotalCost
		s.TotalProfit += t.Profit
		s.TransactionCount++
	}

	summaries := make([]MonthlySummary, 0, len(buckets))
	for _, s := range buckets {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].PeriodKey > summaries[j].PeriodKey
	})
	return summaries
}

// TransactionsInMonth filters to one "YYYY-MM" period, sorted by sale date
// descending. Used for month drill-down views.
func TransactionsInMonth(transactions []Transaction, periodKey string) []Transaction {
	matched := make([]Transaction, 0)
	for _, t := range transactions {
		if t.Date.PeriodKey() == periodKey {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date.Time)
	})
	return matched
}

// ComputeStats folds the collection into the global dashboard figures. It is
// a pure projection: never persisted, recomputed on every read so it cannot
// drift from the source data.
func ComputeStats(transactions []Transaction, settings Settings) Stats {
	stats := Stats{
		TransactionCount: len(transactions),
		MonthlyTarget:    settings.MonthlyTarget,
	}
	for _, t := range transactions {
		stats.TotalQuantity += t.Quantity
		stats.TotalRevenue += t.TotalRevenue
		stats.TotalCost += t.TotalCost
		stats.TotalProfit += t.Profit
	}
	stats.RemainingStock = settings.InitialStock - stats.TotalQuantity
	if stats.TotalRevenue > 0 {
		stats.MarginPercent = float64(stats.TotalProfit) / float64(stats.TotalRevenue) * 100
	}
	return stats
}
