package obligation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func queryFixture() []Obligation {
	day := func(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }
	cat := func(id int64) *int64 { return &id }
	return []Obligation{
		{
			ID: 1, Description: "Internet service", CounterpartyName: "Acme Telecom",
			CategoryID: cat(10), CategoryName: "Utilities", CounterpartyID: 1,
			Kind: KindCash, Status: StatusPending,
			TotalAmount: decimal.RequireFromString("120.00"),
			EntryDate:   day(1), DueDate: day(25),
		},
		{
			ID: 2, Description: "Office rent", CounterpartyName: "Skyline Realty",
			CategoryID: cat(11), CategoryName: "Rent", CounterpartyID: 2,
			Kind: KindInstallment, Status: StatusPending,
			TotalAmount: decimal.RequireFromString("2500.00"),
			EntryDate:   day(2), DueDate: day(5), // past due as of day 10
		},
		{
			ID: 3, Description: "Cleaning supplies", CounterpartyName: "Acme Supplies",
			CounterpartyID: 3, Kind: KindCash, Status: StatusPaid,
			TotalAmount: decimal.RequireFromString("75.50"),
			PaidAmount:  decimal.RequireFromString("75.50"),
			EntryDate:   day(3), DueDate: day(8), Reference: "INV-31",
		},
		{
			ID: 4, Description: "Consulting", CounterpartyName: "Northwind",
			CounterpartyID: 4, Kind: KindCash, Status: StatusCancelled,
			TotalAmount: decimal.RequireFromString("900.00"),
			EntryDate:   day(4), DueDate: day(20), Notes: "cancelled by client",
		},
	}
}

func TestQueryFiltersCombineWithAnd(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	items := queryFixture()

	min := decimal.RequireFromString("100")
	got, _ := Query{Filter: Filter{Kind: KindCash, AmountMin: &min}}.Apply(items, today)
	require.Len(t, got, 2)
	for _, o := range got {
		require.Equal(t, KindCash, o.Kind)
		require.False(t, o.TotalAmount.LessThan(min))
	}
}

func TestQuerySearchSpansTextFields(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	items := queryFixture()

	got, _ := Query{Filter: Filter{Search: "acme"}}.Apply(items, today)
	require.Len(t, got, 2) // counterparty names

	got, _ = Query{Filter: Filter{Search: "inv-31"}}.Apply(items, today)
	require.Len(t, got, 1) // reference
	require.Equal(t, int64(3), got[0].ID)

	got, _ = Query{Filter: Filter{Search: "by client"}}.Apply(items, today)
	require.Len(t, got, 1) // notes

	got, _ = Query{Filter: Filter{Search: "utilities"}}.Apply(items, today)
	require.Len(t, got, 1) // category name
}

func TestQueryStatusFilterOverdueVsPending(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	items := queryFixture()

	// Pending matches every stored pending record, past due or not.
	got, _ := Query{Filter: Filter{Status: StatusPending}}.Apply(items, today)
	require.Len(t, got, 2)

	// Overdue matches the derived projection only.
	got, _ = Query{Filter: Filter{Status: StatusOverdue}}.Apply(items, today)
	require.Len(t, got, 1)
	require.Equal(t, int64(2), got[0].ID)
}

func TestQuerySortToggle(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	items := queryFixture()

	sort := NextSort(Sort{}, SortByTotalAmount)
	require.False(t, sort.Desc)
	got, _ := Query{Sort: sort}.Apply(items, today)
	require.Equal(t, int64(3), got[0].ID)
	require.Equal(t, int64(2), got[len(got)-1].ID)

	sort = NextSort(sort, SortByTotalAmount)
	require.True(t, sort.Desc)
	got, _ = Query{Sort: sort}.Apply(items, today)
	require.Equal(t, int64(2), got[0].ID)

	// Switching fields resets to ascending.
	sort = NextSort(sort, SortByDueDate)
	require.False(t, sort.Desc)
}

func TestQueryPagination(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	var items []Obligation
	for i := 1; i <= 25; i++ {
		items = append(items, Obligation{
			ID:          int64(i),
			Description: "item",
			Status:      StatusPending,
			TotalAmount: decimal.NewFromInt(int64(i)),
			EntryDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			DueDate:     time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		})
	}

	page, p := Query{Page: 1}.Apply(items, today)
	require.Len(t, page, DefaultPageSize)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 25, p.Total)
	require.Equal(t, 3, p.TotalPages)

	page, _ = Query{Page: 3}.Apply(items, today)
	require.Len(t, page, 5)

	page, _ = Query{Page: 9}.Apply(items, today)
	require.Empty(t, page)
}

func TestQueryApplyIsIdempotentAndNonMutating(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	items := queryFixture()
	original := append([]Obligation(nil), items...)

	q := Query{Filter: Filter{Kind: KindCash}, Sort: Sort{Field: SortByTotalAmount}}
	first, _ := q.Apply(items, today)
	second, _ := q.Apply(items, today)
	require.Equal(t, first, second)
	require.Equal(t, original, items)
}
