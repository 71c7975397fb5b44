package obligation

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerline/ledgerline/internal/shared"
)

var (
	ErrNotFound          = fmt.Errorf("obligation %w", shared.ErrNotFound)
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", shared.ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: invalid amount", shared.ErrValidation)
	ErrInvalidPlan       = fmt.Errorf("%w: invalid installment plan", shared.ErrValidation)
)

// Service coordinates the obligation engine against the store contract.
// Validation failures are raised before any repository call; repository
// failures are surfaced with the underlying message preserved.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// Today returns the service clock's current day.
func (s *Service) Today() time.Time {
	return dateOnly(s.now())
}

// List loads the obligation collection for one side.
func (s *Service) List(ctx context.Context, side Side) ([]Obligation, error) {
	return s.repo.List(ctx, ListRequest{Side: side})
}

// Get loads a single obligation.
func (s *Service) Get(ctx context.Context, id int64) (Obligation, error) {
	return s.repo.Get(ctx, id)
}

// History returns the payment event log for an obligation.
func (s *Service) History(ctx context.Context, id int64) ([]PaymentEvent, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListEvents(ctx, id)
}

// Create validates and persists a single cash obligation.
func (s *Service) Create(ctx context.Context, input CreateObligationInput) (Obligation, error) {
	if err := validateCommon(input.Side, input.Description, input.CounterpartyID); err != nil {
		return Obligation{}, err
	}
	if !input.TotalAmount.IsPositive() {
		return Obligation{}, fmt.Errorf("%w: total amount must be positive", ErrInvalidAmount)
	}
	entry := input.EntryDate
	if entry.IsZero() {
		entry = s.Today()
	}
	due := input.DueDate
	if due.IsZero() {
		due = entry
	}
	o := Obligation{
		Side:             input.Side,
		Description:      input.Description,
		CounterpartyID:   input.CounterpartyID,
		CategoryID:       input.CategoryID,
		AccountID:        input.AccountID,
		Kind:             KindCash,
		Status:           StatusPending,
		TotalAmount:      input.TotalAmount,
		EntryDate:        dateOnly(entry),
		DueDate:          dateOnly(due),
		InstallmentNum:   1,
		TotalInstallment: 1,
		Reference:        input.Reference,
		Notes:            input.Notes,
		IsFixedCost:      input.IsFixedCost,
	}
	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.Create(ctx, o)
		if err != nil {
			return err
		}
		id = created
		return nil
	})
	if err != nil {
		return Obligation{}, err
	}
	s.bump(ctx)
	return s.repo.Get(ctx, id)
}

// CreateInstallmentGroup expands a plan and persists the whole group in one
// transaction. No installment exists unless all of them do.
func (s *Service) CreateInstallmentGroup(ctx context.Context, plan InstallmentPlan) ([]Obligation, error) {
	if err := validateCommon(plan.Side, plan.Description, plan.CounterpartyID); err != nil {
		return nil, err
	}
	if plan.EntryDate.IsZero() {
		plan.EntryDate = s.Today()
	}
	group, err := GenerateInstallments(plan)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(group))
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, o := range group {
			id, err := tx.Create(ctx, o)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bump(ctx)

	out := make([]Obligation, 0, len(ids))
	for _, id := range ids {
		o, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Update applies a partial edit. Amount edits are checked against the
// paid-never-exceeds-total contract before anything is sent to the store.
func (s *Service) Update(ctx context.Context, id int64, input UpdateObligationInput) (Obligation, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Obligation{}, err
	}

	if input.Description != nil {
		if *input.Description == "" {
			return Obligation{}, fmt.Errorf("%w: description required", shared.ErrValidation)
		}
		o.Description = *input.Description
	}
	if input.CounterpartyID != nil {
		o.CounterpartyID = *input.CounterpartyID
	}
	if input.ClearCategory {
		o.CategoryID = nil
	} else if input.CategoryID != nil {
		o.CategoryID = input.CategoryID
	}
	if input.ClearAccount {
		o.AccountID = nil
	} else if input.AccountID != nil {
		o.AccountID = input.AccountID
	}
	if input.TotalAmount != nil {
		o.TotalAmount = *input.TotalAmount
	}
	if input.PaidAmount != nil {
		o.PaidAmount = *input.PaidAmount
	}
	if input.EntryDate != nil {
		o.EntryDate = dateOnly(*input.EntryDate)
	}
	if input.DueDate != nil {
		o.DueDate = dateOnly(*input.DueDate)
	}
	if input.Reference != nil {
		o.Reference = *input.Reference
	}
	if input.Notes != nil {
		o.Notes = *input.Notes
	}
	if input.IsFixedCost != nil {
		o.IsFixedCost = *input.IsFixedCost
	}

	if err := ValidateAmounts(o.TotalAmount, o.PaidAmount); err != nil {
		return Obligation{}, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.Update(ctx, o)
	})
	if err != nil {
		return Obligation{}, err
	}
	s.bump(ctx)
	return s.repo.Get(ctx, id)
}

// ChangeStatus runs the lifecycle transition and appends its history event
// atomically with the field updates.
func (s *Service) ChangeStatus(ctx context.Context, id int64, target Status) (Obligation, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Obligation{}, err
	}
	if o.Status == target {
		return o, nil
	}
	updated, event, err := Transition(o, target, s.Today())
	if err != nil {
		return Obligation{}, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.Update(ctx, updated); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, event)
	})
	if err != nil {
		return Obligation{}, err
	}
	s.bump(ctx)
	return s.repo.Get(ctx, id)
}

// Delete removes a single obligation. Other installments of the same group
// are never touched.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// DeleteAll removes every obligation on one side.
func (s *Service) DeleteAll(ctx context.Context, side Side) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteAll(ctx, side)
	})
	if err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// Summarize loads one side and computes its headline totals.
func (s *Service) Summarize(ctx context.Context, side Side) (Summary, error) {
	items, err := s.List(ctx, side)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(items, s.Today()), nil
}

// Analyze runs the forecast projection, served from the analysis cache when
// available. A cache or analysis failure never invalidates the primary
// collection; callers degrade to an empty forecast.
func (s *Service) Analyze(ctx context.Context, side Side, monthsAhead int, filter ForecastFilter) (Forecast, error) {
	if monthsAhead <= 0 {
		monthsAhead = DefaultHorizonMonths
	}
	loader := func(ctx context.Context) (interface{}, error) {
		items, err := s.List(ctx, side)
		if err != nil {
			return nil, err
		}
		return Project(items, monthsAhead, filter, s.Today()), nil
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Forecast{}, err
		}
		return value.(Forecast), nil
	}
	key, err := s.cache.BuildKey(ctx, keyForecast(side, monthsAhead, filter)...)
	if err != nil {
		return Forecast{}, err
	}
	var forecast Forecast
	if err := s.cache.FetchJSON(ctx, key, &forecast, loader); err != nil {
		return Forecast{}, err
	}
	return forecast, nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Bump(ctx)
}

func validateCommon(side Side, description string, counterpartyID int64) error {
	if side != SidePayable && side != SideReceivable {
		return fmt.Errorf("%w: side must be payable or receivable", shared.ErrValidation)
	}
	if description == "" {
		return fmt.Errorf("%w: description required", shared.ErrValidation)
	}
	if counterpartyID <= 0 {
		return fmt.Errorf("%w: counterparty required", shared.ErrValidation)
	}
	return nil
}
