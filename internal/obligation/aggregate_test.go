package obligation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSummarizeBucketsPartitionGrandTotal(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	items := []Obligation{
		{Status: StatusPaid, TotalAmount: decimal.RequireFromString("100"), PaidAmount: decimal.RequireFromString("100")},
		{Status: StatusPending, TotalAmount: decimal.RequireFromString("200"), DueDate: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		{Status: StatusPending, TotalAmount: decimal.RequireFromString("300"), DueDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}, // overdue
		{Status: StatusCancelled, TotalAmount: decimal.RequireFromString("50")},
	}

	s := Summarize(items, today)
	require.True(t, decimal.RequireFromString("650").Equal(s.TotalAmount))
	require.True(t, decimal.RequireFromString("100").Equal(s.TotalPaid))
	require.True(t, decimal.RequireFromString("200").Equal(s.TotalPending))
	require.True(t, decimal.RequireFromString("300").Equal(s.TotalOverdue))
	require.True(t, decimal.RequireFromString("50").Equal(s.TotalCancelled))

	// Pending and overdue are disjoint, so the buckets sum back to the total.
	sum := s.TotalPaid.Add(s.TotalPending).Add(s.TotalOverdue).Add(s.TotalCancelled)
	require.True(t, s.TotalAmount.Equal(sum))

	require.Equal(t, 4, s.CountTotal)
	require.Equal(t, 1, s.CountPending)
	require.Equal(t, 1, s.CountOverdue)
	require.Equal(t, 1, s.CountPaid)
	require.Equal(t, 1, s.CountCancelled)
}

func TestSummarizeUsesRemainingForPartialPayments(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	items := []Obligation{
		{
			Status:      StatusPending,
			TotalAmount: decimal.RequireFromString("100"),
			PaidAmount:  decimal.RequireFromString("40"),
			DueDate:     time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		},
	}
	s := Summarize(items, today)
	require.True(t, decimal.RequireFromString("60").Equal(s.TotalPending))
}

func TestMonthlyBreakdownGroupsByEntryMonth(t *testing.T) {
	items := []Obligation{
		{Status: StatusPending, TotalAmount: decimal.RequireFromString("10"), EntryDate: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)},
		{Status: StatusPending, TotalAmount: decimal.RequireFromString("20"), EntryDate: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
		{Status: StatusPaid, TotalAmount: decimal.RequireFromString("30"), PaidAmount: decimal.RequireFromString("30"), EntryDate: time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC)},
	}

	months := MonthlyBreakdown(items)
	require.Len(t, months, 2)
	require.Equal(t, "2024-01", months[0].Month)
	require.Equal(t, "2024-02", months[1].Month)
	require.True(t, decimal.RequireFromString("50").Equal(months[0].Total))
	require.True(t, decimal.RequireFromString("30").Equal(months[0].Paid))
	require.Equal(t, 2, months[0].Count)
}

func TestCategoryBreakdownSortsAndBucketsUncategorized(t *testing.T) {
	cat := func(id int64) *int64 { return &id }
	items := []Obligation{
		{CategoryID: cat(1), CategoryName: "Rent", TotalAmount: decimal.RequireFromString("100")},
		{CategoryID: cat(2), CategoryName: "Utilities", TotalAmount: decimal.RequireFromString("300")},
		{TotalAmount: decimal.RequireFromString("100")},
	}

	rows := CategoryBreakdown(items)
	require.Len(t, rows, 3)
	require.Equal(t, "Utilities", rows[0].Name)
	require.True(t, decimal.RequireFromString("60").Equal(rows[0].Percentage))

	var uncategorized *BreakdownRow
	for i := range rows {
		if rows[i].ID == nil {
			uncategorized = &rows[i]
		}
	}
	require.NotNil(t, uncategorized)
	require.Equal(t, "Uncategorized", uncategorized.Name)
	require.True(t, decimal.RequireFromString("20").Equal(uncategorized.Percentage))

	// Percentages close to 100 across the rows.
	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(row.Percentage)
	}
	require.True(t, decimal.RequireFromString("100").Equal(sum))
}

func TestCounterpartyBreakdownAggregatesByCounterparty(t *testing.T) {
	items := []Obligation{
		{CounterpartyID: 1, CounterpartyName: "Acme", TotalAmount: decimal.RequireFromString("150")},
		{CounterpartyID: 1, CounterpartyName: "Acme", TotalAmount: decimal.RequireFromString("50")},
		{CounterpartyID: 2, CounterpartyName: "Northwind", TotalAmount: decimal.RequireFromString("300")},
	}

	rows := CounterpartyBreakdown(items)
	require.Len(t, rows, 2)
	require.Equal(t, "Northwind", rows[0].Name)
	require.Equal(t, "Acme", rows[1].Name)
	require.True(t, decimal.RequireFromString("200").Equal(rows[1].Total))
	require.Equal(t, 2, rows[1].Count)
}

func TestBreakdownEmptyCollection(t *testing.T) {
	require.Empty(t, CategoryBreakdown(nil))
	require.Empty(t, MonthlyBreakdown(nil))
	s := Summarize(nil, time.Now())
	require.True(t, s.TotalAmount.IsZero())
	require.Equal(t, 0, s.CountTotal)
}
