package obligation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds the headline totals for a filtered collection. Pending and
// overdue are disjoint: a pending record past its due date counts only as
// overdue, so the four amount buckets partition the grand total.
type Summary struct {
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalPending   decimal.Decimal `json:"total_pending"`
	TotalOverdue   decimal.Decimal `json:"total_overdue"`
	TotalCancelled decimal.Decimal `json:"total_cancelled"`
	CountTotal     int             `json:"count_total"`
	CountPending   int             `json:"count_pending"`
	CountPaid      int             `json:"count_paid"`
	CountOverdue   int             `json:"count_overdue"`
	CountCancelled int             `json:"count_cancelled"`
}

// Summarize computes headline totals as of the supplied day.
func Summarize(items []Obligation, today time.Time) Summary {
	s := Summary{
		TotalAmount:    decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalPending:   decimal.Zero,
		TotalOverdue:   decimal.Zero,
		TotalCancelled: decimal.Zero,
	}
	for _, o := range items {
		s.CountTotal++
		s.TotalAmount = s.TotalAmount.Add(o.TotalAmount)
		switch {
		case o.Status == StatusPaid:
			s.CountPaid++
			s.TotalPaid = s.TotalPaid.Add(o.PaidAmount)
		case o.Status == StatusCancelled:
			s.CountCancelled++
			s.TotalCancelled = s.TotalCancelled.Add(o.TotalAmount)
		case o.IsOverdue(today):
			s.CountOverdue++
			s.TotalOverdue = s.TotalOverdue.Add(o.Remaining())
		default:
			s.CountPending++
			s.TotalPending = s.TotalPending.Add(o.Remaining())
		}
	}
	return s
}

// MonthBucket aggregates amounts for one calendar month.
type MonthBucket struct {
	Month   string          `json:"month"` // YYYY-MM
	Total   decimal.Decimal `json:"total"`
	Paid    decimal.Decimal `json:"paid"`
	Pending decimal.Decimal `json:"pending"`
	Count   int             `json:"count"`
}

// MonthlyBreakdown groups the collection by the calendar month of the entry
// date, ascending.
func MonthlyBreakdown(items []Obligation) []MonthBucket {
	buckets := make(map[string]*MonthBucket)
	for _, o := range items {
		key := monthKey(o.EntryDate)
		b, ok := buckets[key]
		if !ok {
			b = &MonthBucket{Month: key, Total: decimal.Zero, Paid: decimal.Zero, Pending: decimal.Zero}
			buckets[key] = b
		}
		b.Count++
		b.Total = b.Total.Add(o.TotalAmount)
		switch o.Status {
		case StatusPaid:
			b.Paid = b.Paid.Add(o.PaidAmount)
		case StatusPending:
			b.Pending = b.Pending.Add(o.Remaining())
		}
	}
	out := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// BreakdownRow is one group of a category or counterparty breakdown.
type BreakdownRow struct {
	ID         *int64          `json:"id"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
	Count      int             `json:"count"`
}

// CategoryBreakdown groups by category, with an explicit bucket for records
// carrying no category. Rows are sorted descending by amount; ties keep
// first-seen order. Callers typically display only the top rows.
func CategoryBreakdown(items []Obligation) []BreakdownRow {
	return breakdown(items, func(o Obligation) (*int64, string) {
		if o.CategoryID == nil {
			return nil, "Uncategorized"
		}
		name := o.CategoryName
		if name == "" {
			name = "Uncategorized"
		}
		return o.CategoryID, name
	})
}

// CounterpartyBreakdown groups by counterparty id.
func CounterpartyBreakdown(items []Obligation) []BreakdownRow {
	return breakdown(items, func(o Obligation) (*int64, string) {
		id := o.CounterpartyID
		return &id, o.CounterpartyName
	})
}

func breakdown(items []Obligation, keyOf func(Obligation) (*int64, string)) []BreakdownRow {
	grand := decimal.Zero
	index := make(map[int64]int)
	noneIdx := -1
	rows := make([]BreakdownRow, 0)
	for _, o := range items {
		grand = grand.Add(o.TotalAmount)
		id, name := keyOf(o)
		var pos int
		if id == nil {
			if noneIdx < 0 {
				noneIdx = len(rows)
				rows = append(rows, BreakdownRow{Name: name, Total: decimal.Zero})
			}
			pos = noneIdx
		} else {
			p, ok := index[*id]
			if !ok {
				p = len(rows)
				index[*id] = p
				idCopy := *id
				rows = append(rows, BreakdownRow{ID: &idCopy, Name: name, Total: decimal.Zero})
			}
			pos = p
		}
		rows[pos].Total = rows[pos].Total.Add(o.TotalAmount)
		rows[pos].Count++
	}
	hundred := decimal.NewFromInt(100)
	for i := range rows {
		if grand.IsZero() {
			rows[i].Percentage = decimal.Zero
			continue
		}
		rows[i].Percentage = rows[i].Total.Mul(hundred).DivRound(grand, currencyPlaces)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.GreaterThan(rows[j].Total)
	})
	return rows
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
