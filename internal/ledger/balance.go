package ledger

import (
	"github.com/shopspring/decimal"
)

// ComputeBalances derives every account's current balance from its
// transaction history. Each transaction contributes +amount for an "in"
// flow and -amount for an "out" flow, against its own account only.
//
// Balance corrections are included: they represent real ledger state.
// Transactions referencing unknown accounts are ignored rather than
// invented into the result. Currency is assumed to match the account;
// the write path enforces that, not this calculator.
func ComputeBalances(s Snapshot) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(s.Accounts))
	for _, a := range s.Accounts {
		balances[a.ID] = decimal.Zero
	}

	for _, tx := range s.Transactions {
		current, ok := balances[tx.AccountID]
		if !ok {
			continue
		}
		balances[tx.AccountID] = current.Add(tx.Signed())
	}

	return balances
}

// AccountBalance returns one account's balance, zero when the account is
// unknown to the snapshot.
func AccountBalance(s Snapshot, accountID string) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range s.Transactions {
		if tx.AccountID != accountID {
			continue
		}
		balance = balance.Add(tx.Signed())
	}
	return balance
}
