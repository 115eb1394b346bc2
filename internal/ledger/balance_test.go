package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

func tx(id, accountID, categoryID string, txType core.TransactionType, flow core.Flow, amount int64, date core.Date) core.Transaction {
	return core.Transaction{
		ID:         id,
		Type:       txType,
		Flow:       flow,
		AccountID:  accountID,
		CategoryID: categoryID,
		Amount:     decimal.NewFromInt(amount),
		Currency:   "EUR",
		Date:       date,
	}
}

func testSnapshot() Snapshot {
	return Snapshot{
		Accounts: []core.Account{
			{ID: "checking", Name: "Checking", Currency: "EUR"},
			{ID: "savings", Name: "Savings", Currency: "EUR", Emoji: "🏦"},
		},
		Categories: []core.Category{
			{ID: "salary", Name: "Salary", Type: core.Income},
			{ID: "groceries", Name: "Groceries", Type: core.Expense},
			{ID: "correction", Name: core.BalanceCorrectionCategoryName, Type: core.Income},
		},
	}
}

func TestComputeBalances(t *testing.T) {
	mar := core.NewDate(2024, 3, 1)

	s := testSnapshot()
	s.Transactions = []core.Transaction{
		tx("t1", "checking", "salary", core.Income, core.FlowIn, 1000, mar),
		tx("t2", "checking", "groceries", core.Expense, core.FlowOut, 40, mar),
		tx("t3", "savings", "salary", core.Income, core.FlowIn, 250, mar),
	}

	balances := ComputeBalances(s)

	if got := balances["checking"]; !got.Equal(decimal.NewFromInt(960)) {
		t.Errorf("checking balance = %s, want 960", got)
	}
	if got := balances["savings"]; !got.Equal(decimal.NewFromInt(250)) {
		t.Errorf("savings balance = %s, want 250", got)
	}
}

func TestComputeBalances_EmptyHistoryYieldsZero(t *testing.T) {
	s := testSnapshot()

	balances := ComputeBalances(s)

	if len(balances) != 2 {
		t.Fatalf("expected an entry per account, got %d", len(balances))
	}
	for id, b := range balances {
		if !b.IsZero() {
			t.Errorf("account %s balance = %s, want 0", id, b)
		}
	}
}

func TestComputeBalances_OrderIndependent(t *testing.T) {
	mar := core.NewDate(2024, 3, 1)
	movements := []core.Transaction{
		tx("t1", "checking", "salary", core.Income, core.FlowIn, 100, mar),
		tx("t2", "checking", "groceries", core.Expense, core.FlowOut, 30, mar),
		tx("t3", "checking", "groceries", core.Expense, core.FlowOut, 7, mar),
		tx("t4", "checking", "salary", core.Income, core.FlowIn, 12, mar),
	}

	forward := testSnapshot()
	forward.Transactions = movements

	reversed := testSnapshot()
	for i := len(movements) - 1; i >= 0; i-- {
		reversed.Transactions = append(reversed.Transactions, movements[i])
	}

	a := ComputeBalances(forward)["checking"]
	b := ComputeBalances(reversed)["checking"]
	if !a.Equal(b) {
		t.Errorf("balances depend on transaction order: %s vs %s", a, b)
	}
	if !a.Equal(decimal.NewFromInt(75)) {
		t.Errorf("checking balance = %s, want 75", a)
	}
}

func TestComputeBalances_IncludesBalanceCorrections(t *testing.T) {
	mar := core.NewDate(2024, 3, 1)
	s := testSnapshot()
	s.Transactions = []core.Transaction{
		tx("t1", "checking", "salary", core.Income, core.FlowIn, 100, mar),
		tx("t2", "checking", "correction", core.Income, core.FlowIn, 55, mar),
	}

	if got := ComputeBalances(s)["checking"]; !got.Equal(decimal.NewFromInt(155)) {
		t.Errorf("balance with correction = %s, want 155", got)
	}
}

func TestComputeBalances_UnknownAccountIgnored(t *testing.T) {
	mar := core.NewDate(2024, 3, 1)
	s := testSnapshot()
	s.Transactions = []core.Transaction{
		tx("t1", "ghost", "salary", core.Income, core.FlowIn, 100, mar),
	}

	balances := ComputeBalances(s)
	if _, ok := balances["ghost"]; ok {
		t.Error("transaction against unknown account should not create a balance entry")
	}
}

func TestComputeBalances_Idempotent(t *testing.T) {
	mar := core.NewDate(2024, 3, 1)
	s := testSnapshot()
	s.Transactions = []core.Transaction{
		tx("t1", "checking", "salary", core.Income, core.FlowIn, 100, mar),
		tx("t2", "checking", "groceries", core.Expense, core.FlowOut, 33, mar),
	}

	first := ComputeBalances(s)
	second := ComputeBalances(s)
	for id := range first {
		if !first[id].Equal(second[id]) {
			t.Errorf("recomputation changed balance for %s: %s vs %s", id, first[id], second[id])
		}
	}
}
