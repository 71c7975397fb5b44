package obligation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side distinguishes payables (supplier counterparty) from receivables
// (customer counterparty). Records are structurally identical on both sides.
type Side string

const (
	SidePayable    Side = "PAYABLE"
	SideReceivable Side = "RECEIVABLE"
)

// Kind enumerates how an obligation was entered.
type Kind string

const (
	KindCash        Kind = "CASH"
	KindInstallment Kind = "INSTALLMENT"
)

// Status enumerates stored obligation statuses. Overdue is never stored;
// it is derived from a pending status and a past due date.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"

	// StatusOverdue is a display-only projection of StatusPending.
	StatusOverdue Status = "OVERDUE"
)

// Obligation is a single payable or receivable record: one cash item or one
// installment of a group.
type Obligation struct {
	ID               int64
	Side             Side
	Description      string
	CounterpartyID   int64
	CounterpartyName string
	CategoryID       *int64
	CategoryName     string
	AccountID        *int64
	Kind             Kind
	Status           Status
	TotalAmount      decimal.Decimal
	PaidAmount       decimal.Decimal
	EntryDate        time.Time
	DueDate          time.Time
	PaymentDate      *time.Time
	InstallmentNum   int
	TotalInstallment int
	Reference        string
	Notes            string
	IsFixedCost      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Remaining returns total minus paid for this obligation.
func (o Obligation) Remaining() decimal.Decimal {
	return o.TotalAmount.Sub(o.PaidAmount)
}

// IsOverdue reports whether the obligation is pending and strictly past its
// due date as of the supplied day. Time-of-day components are ignored.
func (o Obligation) IsOverdue(today time.Time) bool {
	return o.Status == StatusPending && dateOnly(o.DueDate).Before(dateOnly(today))
}

// EffectiveStatus returns the stored status, substituting the derived
// overdue projection where it applies.
func (o Obligation) EffectiveStatus(today time.Time) Status {
	if o.IsOverdue(today) {
		return StatusOverdue
	}
	return o.Status
}

// PaymentEvent is an append-only history record written on every status
// transition, so reverting a paid obligation never erases payment history.
type PaymentEvent struct {
	ID           uuid.UUID
	ObligationID int64
	FromStatus   Status
	ToStatus     Status
	Amount       decimal.Decimal
	OccurredAt   time.Time
}

// --- Input DTOs ---

// CreateObligationInput carries the fields accepted when creating a single
// cash obligation.
type CreateObligationInput struct {
	Side           Side
	Description    string
	CounterpartyID int64
	CategoryID     *int64
	AccountID      *int64
	TotalAmount    decimal.Decimal
	EntryDate      time.Time
	DueDate        time.Time
	Reference      string
	Notes          string
	IsFixedCost    bool
}

// UpdateObligationInput carries partial field updates. Nil pointers leave
// the stored value untouched. ClearCategory/ClearAccount reset the optional
// references to absent.
type UpdateObligationInput struct {
	Description    *string
	CounterpartyID *int64
	CategoryID     *int64
	ClearCategory  bool
	AccountID      *int64
	ClearAccount   bool
	TotalAmount    *decimal.Decimal
	PaidAmount     *decimal.Decimal
	EntryDate      *time.Time
	DueDate        *time.Time
	Reference      *string
	Notes          *string
	IsFixedCost    *bool
}

// InstallmentPlan describes how a principal amount expands into a group of
// installment obligations.
type InstallmentPlan struct {
	Side           Side
	Description    string
	CounterpartyID int64
	CategoryID     *int64
	AccountID      *int64
	Principal      decimal.Decimal
	Count          int
	FirstDueDate   time.Time
	IntervalDays   int
	// ExplicitAmount, when set, is used verbatim for every installment. The
	// effective group total becomes ExplicitAmount x Count and Principal is
	// informational only in that mode.
	ExplicitAmount *decimal.Decimal
	EntryDate      time.Time
	Reference      string
	Notes          string
	IsFixedCost    bool
}

// ListRequest narrows a repository listing. Zero values mean no
// restriction: in particular a Limit of 0 returns the full collection,
// which the aggregation callers rely on.
type ListRequest struct {
	Side   Side
	Status Status
	Limit  int
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
