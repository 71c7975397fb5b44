package obligation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultHorizonMonths is the forecast horizon used when none is supplied.
const DefaultHorizonMonths = 6

// CostType restricts a forecast to fixed costs, variable costs, or both.
type CostType string

const (
	CostTypeFixed    CostType = "FIXED"
	CostTypeVariable CostType = "VARIABLE"
	CostTypeBoth     CostType = "BOTH"
)

// ForecastFilter narrows the collection before projection. Zero values
// apply no restriction; CostTypeBoth is equivalent to leaving CostType
// empty.
type ForecastFilter struct {
	CategoryID     *int64
	CounterpartyID *int64
	Status         Status
	CostType       CostType
}

func (f ForecastFilter) matches(o Obligation, today time.Time) bool {
	if f.CategoryID != nil && (o.CategoryID == nil || *o.CategoryID != *f.CategoryID) {
		return false
	}
	if f.CounterpartyID != nil && o.CounterpartyID != *f.CounterpartyID {
		return false
	}
	switch f.Status {
	case "", StatusOverdue:
		if f.Status == StatusOverdue && !o.IsOverdue(today) {
			return false
		}
	default:
		if o.Status != f.Status {
			return false
		}
	}
	switch f.CostType {
	case CostTypeFixed:
		if !o.IsFixedCost {
			return false
		}
	case CostTypeVariable:
		if o.IsFixedCost {
			return false
		}
	}
	return true
}

// ForecastMonth is one calendar-month bucket of the projection, keyed by
// due date.
type ForecastMonth struct {
	Month   string          `json:"month"` // YYYY-MM
	Offset  int             `json:"offset"`
	Total   decimal.Decimal `json:"total"`
	Paid    decimal.Decimal `json:"paid"`
	Pending decimal.Decimal `json:"pending"`
	Overdue decimal.Decimal `json:"overdue"`
	Count   int             `json:"count"`
}

// UpcomingItem is one entry of the 30-day look-ahead list.
type UpcomingItem struct {
	ObligationID     int64           `json:"obligation_id"`
	Description      string          `json:"description"`
	CounterpartyName string          `json:"counterparty_name"`
	CategoryName     string          `json:"category_name,omitempty"`
	DueDate          string          `json:"due_date"` // YYYY-MM-DD
	Amount           decimal.Decimal `json:"amount"`
	DaysUntilDue     int             `json:"days_until_due"`
	IsFixedCost      bool            `json:"is_fixed_cost"`
}

// TopGroup names the heaviest category or counterparty in the window.
type TopGroup struct {
	ID    *int64          `json:"id"`
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// Forecast is the full projection result.
type Forecast struct {
	Months          []ForecastMonth `json:"months"`
	Upcoming        []UpcomingItem  `json:"upcoming"`
	TopCategory     *TopGroup       `json:"top_category"`
	TopCounterparty *TopGroup       `json:"top_counterparty"`
	WindowTotal     decimal.Decimal `json:"window_total"`
	WindowPending   decimal.Decimal `json:"window_pending"`
	ThirtyDayTotal  decimal.Decimal `json:"thirty_day_total"`
}

// Project builds the cash-flow forecast: the current month plus monthsAhead
// future buckets keyed on due date, a 30-day look-ahead list of pending
// obligations, and the heaviest category and counterparty inside the
// window. Amounts for pending buckets are remaining amounts, not face
// values already partially settled.
func Project(items []Obligation, monthsAhead int, filter ForecastFilter, today time.Time) Forecast {
	if monthsAhead <= 0 {
		monthsAhead = DefaultHorizonMonths
	}
	today = dateOnly(today)
	windowStart := monthStart(today)
	windowEnd := windowStart.AddDate(0, monthsAhead+1, 0) // exclusive

	result := Forecast{
		WindowTotal:    decimal.Zero,
		WindowPending:  decimal.Zero,
		ThirtyDayTotal: decimal.Zero,
	}

	months := make([]ForecastMonth, monthsAhead+1)
	for i := range months {
		months[i] = ForecastMonth{
			Month:   monthKey(windowStart.AddDate(0, i, 0)),
			Offset:  i,
			Total:   decimal.Zero,
			Paid:    decimal.Zero,
			Pending: decimal.Zero,
			Overdue: decimal.Zero,
		}
	}

	horizon30 := today.AddDate(0, 0, 30)
	var window []Obligation
	for _, o := range items {
		if !filter.matches(o, today) {
			continue
		}

		due := dateOnly(o.DueDate)
		if !due.Before(windowStart) && due.Before(windowEnd) {
			window = append(window, o)
			offset := monthOffset(windowStart, due)
			b := &months[offset]
			b.Count++
			b.Total = b.Total.Add(o.TotalAmount)
			switch {
			case o.Status == StatusPaid:
				b.Paid = b.Paid.Add(o.PaidAmount)
			case o.IsOverdue(today):
				b.Overdue = b.Overdue.Add(o.Remaining())
			case o.Status == StatusPending:
				b.Pending = b.Pending.Add(o.Remaining())
			}
			result.WindowTotal = result.WindowTotal.Add(o.TotalAmount)
			if o.Status == StatusPending {
				result.WindowPending = result.WindowPending.Add(o.Remaining())
			}
		}

		if o.Status == StatusPending && !due.Before(today) && !due.After(horizon30) {
			amount := o.Remaining()
			result.Upcoming = append(result.Upcoming, UpcomingItem{
				ObligationID:     o.ID,
				Description:      o.Description,
				CounterpartyName: o.CounterpartyName,
				CategoryName:     o.CategoryName,
				DueDate:          due.Format("2006-01-02"),
				Amount:           amount,
				DaysUntilDue:     int(due.Sub(today).Hours() / 24),
				IsFixedCost:      o.IsFixedCost,
			})
			result.ThirtyDayTotal = result.ThirtyDayTotal.Add(amount)
		}
	}

	sort.SliceStable(result.Upcoming, func(i, j int) bool {
		return result.Upcoming[i].DueDate < result.Upcoming[j].DueDate
	})

	result.Months = months
	result.TopCategory = topOf(CategoryBreakdown(window))
	result.TopCounterparty = topOf(CounterpartyBreakdown(window))
	return result
}

func topOf(rows []BreakdownRow) *TopGroup {
	if len(rows) == 0 {
		return nil
	}
	return &TopGroup{ID: rows[0].ID, Name: rows[0].Name, Total: rows[0].Total}
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func monthOffset(start, t time.Time) int {
	years := t.Year() - start.Year()
	return years*12 + int(t.Month()) - int(start.Month())
}
