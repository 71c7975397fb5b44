package obligation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProjectBucketsByDueMonth(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	cat := func(id int64) *int64 { return &id }
	items := []Obligation{
		{
			Status: StatusPending, TotalAmount: decimal.RequireFromString("100"),
			DueDate: time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
			CounterpartyID: 1, CounterpartyName: "Acme",
			CategoryID: cat(1), CategoryName: "Rent",
		},
		{
			Status: StatusPending, TotalAmount: decimal.RequireFromString("200"),
			DueDate: time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC),
			CounterpartyID: 2, CounterpartyName: "Northwind",
			CategoryID: cat(2), CategoryName: "Utilities",
		},
		{
			// Beyond the window, must be excluded.
			Status: StatusPending, TotalAmount: decimal.RequireFromString("999"),
			DueDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			CounterpartyID: 3, CounterpartyName: "Far Future",
		},
	}

	f := Project(items, 3, ForecastFilter{}, today)
	require.Len(t, f.Months, 4) // current month plus three ahead
	require.Equal(t, "2024-06", f.Months[0].Month)
	require.Equal(t, "2024-09", f.Months[3].Month)

	require.True(t, decimal.RequireFromString("100").Equal(f.Months[0].Pending))
	require.True(t, f.Months[1].Total.IsZero())
	require.True(t, decimal.RequireFromString("200").Equal(f.Months[2].Pending))
	require.True(t, decimal.RequireFromString("300").Equal(f.WindowTotal))
}

func TestProjectThirtyDayLookahead(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	items := []Obligation{
		{
			ID: 1, Description: "Due soon", Status: StatusPending,
			TotalAmount: decimal.RequireFromString("100"),
			PaidAmount:  decimal.RequireFromString("25"),
			DueDate:     time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: 2, Description: "Due on edge", Status: StatusPending,
			TotalAmount: decimal.RequireFromString("50"),
			DueDate:     time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: 3, Description: "Past due", Status: StatusPending,
			TotalAmount: decimal.RequireFromString("70"),
			DueDate:     time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: 4, Description: "Already paid", Status: StatusPaid,
			TotalAmount: decimal.RequireFromString("80"),
			PaidAmount:  decimal.RequireFromString("80"),
			DueDate:     time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
		},
	}

	f := Project(items, 6, ForecastFilter{}, today)
	require.Len(t, f.Upcoming, 2)

	require.Equal(t, int64(1), f.Upcoming[0].ObligationID)
	require.Equal(t, 5, f.Upcoming[0].DaysUntilDue)
	// Remaining amount, not face value.
	require.True(t, decimal.RequireFromString("75").Equal(f.Upcoming[0].Amount))

	require.Equal(t, int64(2), f.Upcoming[1].ObligationID)
	require.Equal(t, 30, f.Upcoming[1].DaysUntilDue)

	require.True(t, decimal.RequireFromString("125").Equal(f.ThirtyDayTotal))
}

func TestProjectCostTypeFilter(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	items := []Obligation{
		{Status: StatusPending, IsFixedCost: true, TotalAmount: decimal.RequireFromString("100"), DueDate: time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)},
		{Status: StatusPending, TotalAmount: decimal.RequireFromString("40"), DueDate: time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC)},
	}

	fixed := Project(items, 6, ForecastFilter{CostType: CostTypeFixed}, today)
	require.True(t, decimal.RequireFromString("100").Equal(fixed.WindowTotal))

	variable := Project(items, 6, ForecastFilter{CostType: CostTypeVariable}, today)
	require.True(t, decimal.RequireFromString("40").Equal(variable.WindowTotal))

	both := Project(items, 6, ForecastFilter{CostType: CostTypeBoth}, today)
	require.True(t, decimal.RequireFromString("140").Equal(both.WindowTotal))
}

func TestProjectTopGroups(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	cat := func(id int64) *int64 { return &id }
	items := []Obligation{
		{Status: StatusPending, CategoryID: cat(1), CategoryName: "Rent", CounterpartyID: 1, CounterpartyName: "Skyline", TotalAmount: decimal.RequireFromString("500"), DueDate: time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)},
		{Status: StatusPending, CategoryID: cat(2), CategoryName: "Utilities", CounterpartyID: 2, CounterpartyName: "Acme", TotalAmount: decimal.RequireFromString("120"), DueDate: time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)},
	}

	f := Project(items, 6, ForecastFilter{}, today)
	require.NotNil(t, f.TopCategory)
	require.Equal(t, "Rent", f.TopCategory.Name)
	require.True(t, decimal.RequireFromString("500").Equal(f.TopCategory.Total))
	require.NotNil(t, f.TopCounterparty)
	require.Equal(t, "Skyline", f.TopCounterparty.Name)
}

func TestProjectDefaultsHorizon(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	f := Project(nil, 0, ForecastFilter{}, today)
	require.Len(t, f.Months, DefaultHorizonMonths+1)
	require.Empty(t, f.Upcoming)
	require.Nil(t, f.TopCategory)
	require.True(t, f.WindowTotal.IsZero())
}
