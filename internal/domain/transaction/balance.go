package transaction

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceAdjustments maps account IDs to the delta each balance must move by
type BalanceAdjustments map[uuid.UUID]decimal.Decimal

// Add accumulates delta for the account
func (b BalanceAdjustments) Add(accountID uuid.UUID, delta decimal.Decimal) {
	b[accountID] = b[accountID].Add(delta)
}

// NonZero returns a copy without the accounts whose net delta is zero
func (b BalanceAdjustments) NonZero() BalanceAdjustments {
	out := make(BalanceAdjustments, len(b))
	for id, delta := range b {
		if !delta.IsZero() {
			out[id] = delta
		}
	}
	return out
}

// ReversalsFor groups the balance changes that undo the given transactions:
// an EXPENSE gives its amount back, an INCOME takes it away.
func ReversalsFor(txs []*Transaction) BalanceAdjustments {
	adjustments := make(BalanceAdjustments)
	for _, t := range txs {
		adjustments.Add(t.AccountID, t.BalanceChange().Neg())
	}
	return adjustments
}
