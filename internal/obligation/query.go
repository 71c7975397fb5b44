package obligation

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/shared"
)

// DefaultPageSize is the page size used when none is supplied.
const DefaultPageSize = 10

// Filter narrows an in-memory collection. All active criteria combine with
// logical AND; zero values are inactive.
type Filter struct {
	Search         string
	Status         Status
	Kind           Kind
	CategoryID     *int64
	CounterpartyID *int64
	AmountMin      *decimal.Decimal
	AmountMax      *decimal.Decimal
	EntryFrom      *time.Time
	EntryTo        *time.Time
}

// IsZero reports whether no criterion is active.
func (f Filter) IsZero() bool {
	return f.Search == "" && f.Status == "" && f.Kind == "" &&
		f.CategoryID == nil && f.CounterpartyID == nil &&
		f.AmountMin == nil && f.AmountMax == nil &&
		f.EntryFrom == nil && f.EntryTo == nil
}

// Matches evaluates the filter against a single obligation. The overdue
// status criterion matches the derived projection; pending matches every
// stored pending record, past due or not.
func (f Filter) Matches(o Obligation, today time.Time) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !containsFold(o.Description, term) &&
			!containsFold(o.CounterpartyName, term) &&
			!containsFold(o.CategoryName, term) &&
			!containsFold(o.Reference, term) &&
			!containsFold(o.Notes, term) {
			return false
		}
	}
	switch f.Status {
	case "":
	case StatusOverdue:
		if !o.IsOverdue(today) {
			return false
		}
	default:
		if o.Status != f.Status {
			return false
		}
	}
	if f.Kind != "" && o.Kind != f.Kind {
		return false
	}
	if f.CategoryID != nil && (o.CategoryID == nil || *o.CategoryID != *f.CategoryID) {
		return false
	}
	if f.CounterpartyID != nil && o.CounterpartyID != *f.CounterpartyID {
		return false
	}
	if f.AmountMin != nil && o.TotalAmount.LessThan(*f.AmountMin) {
		return false
	}
	if f.AmountMax != nil && o.TotalAmount.GreaterThan(*f.AmountMax) {
		return false
	}
	if f.EntryFrom != nil && dateOnly(o.EntryDate).Before(dateOnly(*f.EntryFrom)) {
		return false
	}
	if f.EntryTo != nil && dateOnly(o.EntryDate).After(dateOnly(*f.EntryTo)) {
		return false
	}
	return true
}

// SortField names a sortable column.
type SortField string

const (
	SortByDescription  SortField = "description"
	SortByCounterparty SortField = "counterparty"
	SortByCategory     SortField = "category"
	SortByStatus       SortField = "status"
	SortByReference    SortField = "reference"
	SortByTotalAmount  SortField = "total_amount"
	SortByPaidAmount   SortField = "paid_amount"
	SortByEntryDate    SortField = "entry_date"
	SortByDueDate      SortField = "due_date"
	SortByPaymentDate  SortField = "payment_date"
)

// Sort is the single active sort: one field plus direction.
type Sort struct {
	Field SortField
	Desc  bool
}

// NextSort toggles direction when the same field is selected again and
// resets to ascending on a new field.
func NextSort(current Sort, field SortField) Sort {
	if current.Field == field {
		return Sort{Field: field, Desc: !current.Desc}
	}
	return Sort{Field: field}
}

// Query bundles the three pipeline stages: filter, sort, paginate.
type Query struct {
	Filter  Filter
	Sort    Sort
	Page    int
	PerPage int
}

// Apply runs the pipeline over the collection and returns the visible page
// plus pagination metadata. The input slice is never mutated.
func (q Query) Apply(items []Obligation, today time.Time) ([]Obligation, shared.Pagination) {
	filtered := make([]Obligation, 0, len(items))
	for _, o := range items {
		if q.Filter.Matches(o, today) {
			filtered = append(filtered, o)
		}
	}

	if q.Sort.Field != "" {
		sort.SliceStable(filtered, func(i, j int) bool {
			cmp := compareByField(filtered[i], filtered[j], q.Sort.Field)
			if q.Sort.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	p := shared.NewPagination(q.Page, perPage, len(filtered))
	start := p.Offset()
	if start >= len(filtered) {
		return []Obligation{}, p
	}
	end := start + p.PerPage
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], p
}

func compareByField(a, b Obligation, field SortField) int {
	switch field {
	case SortByTotalAmount:
		return a.TotalAmount.Cmp(b.TotalAmount)
	case SortByPaidAmount:
		return a.PaidAmount.Cmp(b.PaidAmount)
	case SortByEntryDate:
		return compareTime(a.EntryDate, b.EntryDate)
	case SortByDueDate:
		return compareTime(a.DueDate, b.DueDate)
	case SortByPaymentDate:
		return compareTimePtr(a.PaymentDate, b.PaymentDate)
	case SortByCounterparty:
		return compareFold(a.CounterpartyName, b.CounterpartyName)
	case SortByCategory:
		return compareFold(a.CategoryName, b.CategoryName)
	case SortByStatus:
		return compareFold(string(a.Status), string(b.Status))
	case SortByReference:
		return compareFold(a.Reference, b.Reference)
	default:
		return compareFold(a.Description, b.Description)
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// compareTimePtr orders missing dates before any set date.
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return compareTime(*a, *b)
	}
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func containsFold(haystack, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerTerm)
}
