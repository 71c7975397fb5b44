package obligation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// currencyPlaces is the rounding precision for per-installment amounts.
const currencyPlaces = 2

// GenerateInstallments expands an installment plan into individual pending
// obligations. Without an explicit per-installment amount the principal is
// split evenly at currency precision and the rounding remainder is folded
// into the last installment, so the group always sums to the principal
// exactly. Due dates step by IntervalDays from FirstDueDate.
func GenerateInstallments(plan InstallmentPlan) ([]Obligation, error) {
	if plan.Count < 2 {
		return nil, fmt.Errorf("%w: installment count must be at least 2", ErrInvalidPlan)
	}
	if plan.IntervalDays < 1 {
		return nil, fmt.Errorf("%w: interval days must be at least 1", ErrInvalidPlan)
	}
	if plan.FirstDueDate.IsZero() {
		return nil, fmt.Errorf("%w: first due date required", ErrInvalidPlan)
	}

	count := decimal.NewFromInt(int64(plan.Count))
	var amounts []decimal.Decimal
	switch {
	case plan.ExplicitAmount != nil:
		if !plan.ExplicitAmount.IsPositive() {
			return nil, fmt.Errorf("%w: explicit installment amount must be positive", ErrInvalidPlan)
		}
		for i := 0; i < plan.Count; i++ {
			amounts = append(amounts, *plan.ExplicitAmount)
		}
	default:
		if !plan.Principal.IsPositive() {
			return nil, fmt.Errorf("%w: principal amount must be positive", ErrInvalidPlan)
		}
		per := plan.Principal.DivRound(count, currencyPlaces)
		for i := 0; i < plan.Count-1; i++ {
			amounts = append(amounts, per)
		}
		// Last installment absorbs the rounding remainder.
		last := plan.Principal.Sub(per.Mul(decimal.NewFromInt(int64(plan.Count - 1))))
		if !last.IsPositive() {
			return nil, fmt.Errorf("%w: principal too small to split across %d installments", ErrInvalidPlan, plan.Count)
		}
		amounts = append(amounts, last)
	}

	entryDate := dateOnly(plan.EntryDate)
	firstDue := dateOnly(plan.FirstDueDate)
	group := make([]Obligation, 0, plan.Count)
	for n := 1; n <= plan.Count; n++ {
		group = append(group, Obligation{
			Side:             plan.Side,
			Description:      plan.Description,
			CounterpartyID:   plan.CounterpartyID,
			CategoryID:       plan.CategoryID,
			AccountID:        plan.AccountID,
			Kind:             KindInstallment,
			Status:           StatusPending,
			TotalAmount:      amounts[n-1],
			PaidAmount:       decimal.Zero,
			EntryDate:        entryDate,
			DueDate:          firstDue.AddDate(0, 0, (n-1)*plan.IntervalDays),
			InstallmentNum:   n,
			TotalInstallment: plan.Count,
			Reference:        plan.Reference,
			Notes:            plan.Notes,
			IsFixedCost:      plan.IsFixedCost,
		})
	}
	return group, nil
}

// GroupTotal returns the effective total of a plan: the principal in split
// mode, or explicit amount x count when an explicit amount is supplied.
func GroupTotal(plan InstallmentPlan) decimal.Decimal {
	if plan.ExplicitAmount != nil {
		return plan.ExplicitAmount.Mul(decimal.NewFromInt(int64(plan.Count)))
	}
	return plan.Principal
}
