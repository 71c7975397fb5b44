package obligation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/shared"
)

const dateLayout = "2006-01-02"

type createObligationRequest struct {
	Description    string           `json:"description" validate:"required"`
	CounterpartyID int64            `json:"counterparty_id" validate:"required,gt=0"`
	CategoryID     *int64           `json:"category_id" validate:"omitempty,gt=0"`
	AccountID      *int64           `json:"account_id" validate:"omitempty,gt=0"`
	TotalAmount    decimal.Decimal  `json:"total_amount" validate:"required"`
	EntryDate      string           `json:"entry_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate        string           `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Reference      string           `json:"reference"`
	Notes          string           `json:"notes"`
	IsFixedCost    bool             `json:"is_fixed_cost"`
}

func (r createObligationRequest) toInput(side Side) (CreateObligationInput, error) {
	entry, err := parseDate(r.EntryDate)
	if err != nil {
		return CreateObligationInput{}, err
	}
	due, err := parseDate(r.DueDate)
	if err != nil {
		return CreateObligationInput{}, err
	}
	return CreateObligationInput{
		Side:           side,
		Description:    r.Description,
		CounterpartyID: r.CounterpartyID,
		CategoryID:     r.CategoryID,
		AccountID:      r.AccountID,
		TotalAmount:    r.TotalAmount,
		EntryDate:      entry,
		DueDate:        due,
		Reference:      r.Reference,
		Notes:          r.Notes,
		IsFixedCost:    r.IsFixedCost,
	}, nil
}

type createInstallmentsRequest struct {
	Description       string           `json:"description" validate:"required"`
	CounterpartyID    int64            `json:"counterparty_id" validate:"required,gt=0"`
	CategoryID        *int64           `json:"category_id" validate:"omitempty,gt=0"`
	AccountID         *int64           `json:"account_id" validate:"omitempty,gt=0"`
	Principal         decimal.Decimal  `json:"principal"`
	Count             int              `json:"count" validate:"required,gte=2"`
	FirstDueDate      string           `json:"first_due_date" validate:"required,datetime=2006-01-02"`
	IntervalDays      int              `json:"interval_days"`
	InstallmentAmount *decimal.Decimal `json:"installment_amount"`
	EntryDate         string           `json:"entry_date" validate:"omitempty,datetime=2006-01-02"`
	Reference         string           `json:"reference"`
	Notes             string           `json:"notes"`
	IsFixedCost       bool             `json:"is_fixed_cost"`
}

func (r createInstallmentsRequest) toPlan(side Side) (InstallmentPlan, error) {
	firstDue, err := parseDate(r.FirstDueDate)
	if err != nil {
		return InstallmentPlan{}, err
	}
	entry, err := parseDate(r.EntryDate)
	if err != nil {
		return InstallmentPlan{}, err
	}
	interval := r.IntervalDays
	if interval == 0 {
		interval = 30
	}
	return InstallmentPlan{
		Side:           side,
		Description:    r.Description,
		CounterpartyID: r.CounterpartyID,
		CategoryID:     r.CategoryID,
		AccountID:      r.AccountID,
		Principal:      r.Principal,
		Count:          r.Count,
		FirstDueDate:   firstDue,
		IntervalDays:   interval,
		ExplicitAmount: r.InstallmentAmount,
		EntryDate:      entry,
		Reference:      r.Reference,
		Notes:          r.Notes,
		IsFixedCost:    r.IsFixedCost,
	}, nil
}

type updateObligationRequest struct {
	Description    *string          `json:"description"`
	CounterpartyID *int64           `json:"counterparty_id" validate:"omitempty,gt=0"`
	CategoryID     *int64           `json:"category_id" validate:"omitempty,gt=0"`
	ClearCategory  bool             `json:"clear_category"`
	AccountID      *int64           `json:"account_id" validate:"omitempty,gt=0"`
	ClearAccount   bool             `json:"clear_account"`
	TotalAmount    *decimal.Decimal `json:"total_amount"`
	PaidAmount     *decimal.Decimal `json:"paid_amount"`
	EntryDate      *string          `json:"entry_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate        *string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Reference      *string          `json:"reference"`
	Notes          *string          `json:"notes"`
	IsFixedCost    *bool            `json:"is_fixed_cost"`
}

func (r updateObligationRequest) toInput() (UpdateObligationInput, error) {
	input := UpdateObligationInput{
		Description:    r.Description,
		CounterpartyID: r.CounterpartyID,
		CategoryID:     r.CategoryID,
		ClearCategory:  r.ClearCategory,
		AccountID:      r.AccountID,
		ClearAccount:   r.ClearAccount,
		TotalAmount:    r.TotalAmount,
		PaidAmount:     r.PaidAmount,
		Reference:      r.Reference,
		Notes:          r.Notes,
		IsFixedCost:    r.IsFixedCost,
	}
	if r.EntryDate != nil {
		entry, err := parseDate(*r.EntryDate)
		if err != nil {
			return UpdateObligationInput{}, err
		}
		input.EntryDate = &entry
	}
	if r.DueDate != nil {
		due, err := parseDate(*r.DueDate)
		if err != nil {
			return UpdateObligationInput{}, err
		}
		input.DueDate = &due
	}
	return input, nil
}

type changeStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=PENDING PAID CANCELLED"`
}

type obligationResponse struct {
	ID               int64           `json:"id"`
	Side             Side            `json:"side"`
	Description      string          `json:"description"`
	CounterpartyID   int64           `json:"counterparty_id"`
	CounterpartyName string          `json:"counterparty_name"`
	CategoryID       *int64          `json:"category_id"`
	CategoryName     string          `json:"category_name,omitempty"`
	AccountID        *int64          `json:"account_id"`
	Kind             Kind            `json:"kind"`
	Status           Status          `json:"status"`
	StoredStatus     Status          `json:"stored_status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	EntryDate        string          `json:"entry_date"`
	DueDate          string          `json:"due_date"`
	PaymentDate      *string         `json:"payment_date"`
	InstallmentNum   int             `json:"installment_num"`
	TotalInstallment int             `json:"total_installments"`
	Reference        string          `json:"reference,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	IsFixedCost      bool            `json:"is_fixed_cost"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func newObligationResponse(o Obligation, today time.Time) obligationResponse {
	resp := obligationResponse{
		ID:               o.ID,
		Side:             o.Side,
		Description:      o.Description,
		CounterpartyID:   o.CounterpartyID,
		CounterpartyName: o.CounterpartyName,
		CategoryID:       o.CategoryID,
		CategoryName:     o.CategoryName,
		AccountID:        o.AccountID,
		Kind:             o.Kind,
		Status:           o.EffectiveStatus(today),
		StoredStatus:     o.Status,
		TotalAmount:      o.TotalAmount,
		PaidAmount:       o.PaidAmount,
		RemainingAmount:  o.Remaining(),
		EntryDate:        o.EntryDate.Format(dateLayout),
		DueDate:          o.DueDate.Format(dateLayout),
		InstallmentNum:   o.InstallmentNum,
		TotalInstallment: o.TotalInstallment,
		Reference:        o.Reference,
		Notes:            o.Notes,
		IsFixedCost:      o.IsFixedCost,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	if o.PaymentDate != nil {
		paid := o.PaymentDate.Format(dateLayout)
		resp.PaymentDate = &paid
	}
	return resp
}

func newObligationResponses(items []Obligation, today time.Time) []obligationResponse {
	out := make([]obligationResponse, 0, len(items))
	for _, o := range items {
		out = append(out, newObligationResponse(o, today))
	}
	return out
}

type listResponse struct {
	Items      []obligationResponse `json:"items"`
	Pagination shared.Pagination    `json:"pagination"`
	Summary    Summary              `json:"summary"`
}

type eventResponse struct {
	ID           string          `json:"id"`
	ObligationID int64           `json:"obligation_id"`
	FromStatus   Status          `json:"from_status"`
	ToStatus     Status          `json:"to_status"`
	Amount       decimal.Decimal `json:"amount"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

func newEventResponses(events []PaymentEvent) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:           e.ID.String(),
			ObligationID: e.ObligationID,
			FromStatus:   e.FromStatus,
			ToStatus:     e.ToStatus,
			Amount:       e.Amount,
			OccurredAt:   e.OccurredAt,
		})
	}
	return out
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", shared.ErrValidation, value)
	}
	return t, nil
}
