package commission

import (
	"commission-reconciliation/internal/domain"
)

// AmountPlaces is the number of decimal places kept on every money value.
const AmountPlaces = 2

// ComputeAmount prices one classified transaction at the rate of its tier.
// The amount is rounded half away from zero at line level so that any later
// sum equals the sum of the displayed line amounts.
func ComputeAmount(ct domain.ClassifiedTransaction) (domain.CommissionLine, error) {
	qty := ct.Transaction.Quantity
	if qty.IsNegative() {
		return domain.CommissionLine{}, &domain.ValidationError{
			Source: "transactions",
			Row:    ct.Transaction.Row,
			Field:  "quantity",
			Value:  qty.String(),
			Reason: "must not be negative",
		}
	}
	if domain.IsReservedAgentID(ct.Transaction.AgentID) {
		return domain.CommissionLine{}, &domain.ValidationError{
			Source: "transactions",
			Row:    ct.Transaction.Row,
			Field:  "agent_id",
			Value:  ct.Transaction.AgentID,
			Reason: "reserved for the total row",
		}
	}
	return domain.CommissionLine{
		ClassifiedTransaction: ct,
		Amount:                qty.Mul(ct.Rate()).Round(AmountPlaces),
	}, nil
}

// ComputeLines prices every classified transaction. Rows failing validation
// are excluded from the lines and returned separately.
func ComputeLines(classified []domain.ClassifiedTransaction) ([]domain.CommissionLine, []*domain.ValidationError) {
	lines := make([]domain.CommissionLine, 0, len(classified))
	var rejected []*domain.ValidationError
	for _, ct := range classified {
		line, err := ComputeAmount(ct)
		if err != nil {
			if verr, ok := err.(*domain.ValidationError); ok {
				rejected = append(rejected, verr)
			}
			continue
		}
		lines = append(lines, line)
	}
	return lines, rejected
}
