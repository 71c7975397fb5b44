package obligation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidateTransition checks a status change according to lifecycle policy:
// paid is only reachable from pending, pending and cancelled are reachable
// from anywhere, and the derived overdue projection is never a target.
func ValidateTransition(current, target Status) error {
	if target == StatusOverdue {
		return ErrInvalidTransition
	}
	if current == target {
		return nil
	}
	switch target {
	case StatusPaid:
		if current == StatusPending {
			return nil
		}
	case StatusPending, StatusCancelled:
		switch current {
		case StatusPending, StatusPaid, StatusCancelled:
			return nil
		}
	}
	return ErrInvalidTransition
}

// Transition applies a status change and its side effects, returning the
// updated obligation together with the history event to append. Reverting
// to pending clears the live payment fields, but the erased amount survives
// in the event record. A same-state transition is a no-op: the record is
// returned untouched with a zero event, so a repeated PAID request cannot
// rewrite the original settlement date.
func Transition(o Obligation, target Status, today time.Time) (Obligation, PaymentEvent, error) {
	if err := ValidateTransition(o.Status, target); err != nil {
		return o, PaymentEvent{}, err
	}
	if o.Status == target {
		return o, PaymentEvent{}, nil
	}

	event := PaymentEvent{
		ID:           uuid.New(),
		ObligationID: o.ID,
		FromStatus:   o.Status,
		ToStatus:     target,
		Amount:       o.PaidAmount,
		OccurredAt:   today,
	}

	switch target {
	case StatusPaid:
		paidAt := dateOnly(today)
		o.PaidAmount = o.TotalAmount
		o.PaymentDate = &paidAt
		event.Amount = o.TotalAmount
	case StatusPending:
		o.PaidAmount = decimal.Zero
		o.PaymentDate = nil
	case StatusCancelled:
		// Amounts are left as-is.
	}
	o.Status = target
	return o, event, nil
}

// ValidateAmounts enforces the cross-field amount contract for direct edits.
func ValidateAmounts(total, paid decimal.Decimal) error {
	if total.IsNegative() || paid.IsNegative() {
		return ErrInvalidAmount
	}
	if paid.GreaterThan(total) {
		return ErrInvalidAmount
	}
	return nil
}
