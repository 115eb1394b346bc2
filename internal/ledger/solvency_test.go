package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

func TestCanAfford(t *testing.T) {
	mar := core.NewDate(2024, 3, 1)

	tests := []struct {
		name          string
		balance       int64
		proposed      int64
		wantOK        bool
		wantAvailable int64
	}{
		{name: "enough funds", balance: 100, proposed: 50, wantOK: true, wantAvailable: 100},
		{name: "exactly enough", balance: 50, proposed: 50, wantOK: true, wantAvailable: 50},
		{name: "short by one", balance: 49, proposed: 50, wantOK: false, wantAvailable: 49},
		{name: "empty account", balance: 0, proposed: 50, wantOK: false, wantAvailable: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSnapshot()
			if tt.balance > 0 {
				s.Transactions = append(s.Transactions,
					tx("seed", "checking", "salary", core.Income, core.FlowIn, tt.balance, mar))
			}

			check := CanAfford(s, "checking", decimal.NewFromInt(tt.proposed), "")

			if check.OK != tt.wantOK {
				t.Errorf("CanAfford() OK = %v, want %v", check.OK, tt.wantOK)
			}
			if !check.Available.Equal(decimal.NewFromInt(tt.wantAvailable)) {
				t.Errorf("CanAfford() Available = %s, want %d", check.Available, tt.wantAvailable)
			}
		})
	}
}

func TestCanAfford_ExcludingEditedTransaction(t *testing.T) {
	mar := core.NewDate(2024, 3, 1)
	s := testSnapshot()
	s.Transactions = []core.Transaction{
		tx("seed", "checking", "salary", core.Income, core.FlowIn, 100, mar),
		tx("edited", "checking", "groceries", core.Expense, core.FlowOut, 60, mar),
	}

	// Without exclusion only 40 is left.
	if check := CanAfford(s, "checking", decimal.NewFromInt(80), ""); check.OK {
		t.Error("expected rejection without exclusion")
	}

	// Excluding the edited outflow, the check must behave as if it never
	// existed: 100 available.
	check := CanAfford(s, "checking", decimal.NewFromInt(80), "edited")
	if !check.OK {
		t.Errorf("expected approval when excluding edited transaction, available = %s", check.Available)
	}
	if !check.Available.Equal(decimal.NewFromInt(100)) {
		t.Errorf("available = %s, want 100", check.Available)
	}

	// Same result as a snapshot where the transaction truly is absent.
	without := testSnapshot()
	without.Transactions = []core.Transaction{
		tx("seed", "checking", "salary", core.Income, core.FlowIn, 100, mar),
	}
	ref := CanAfford(without, "checking", decimal.NewFromInt(80), "")
	if ref.OK != check.OK || !ref.Available.Equal(check.Available) {
		t.Errorf("exclusion differs from true absence: %+v vs %+v", check, ref)
	}
}

func TestCanAfford_ExclusionIgnoresOtherAccounts(t *testing.T) {
	mar := core.NewDate(2024, 3, 1)
	s := testSnapshot()
	s.Transactions = []core.Transaction{
		tx("seed", "checking", "salary", core.Income, core.FlowIn, 10, mar),
		tx("other", "savings", "groceries", core.Expense, core.FlowOut, 5, mar),
	}

	check := CanAfford(s, "checking", decimal.NewFromInt(10), "other")
	if !check.Available.Equal(decimal.NewFromInt(10)) {
		t.Errorf("excluding a foreign-account transaction changed availability: %s", check.Available)
	}
}

func TestSolvencyCheck_Err(t *testing.T) {
	s := testSnapshot()

	check := CanAfford(s, "checking", decimal.NewFromInt(50), "")
	err := check.Err("checking", decimal.NewFromInt(50))
	if err == nil {
		t.Fatal("expected an InsufficientFundsError")
	}

	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("error = %T, want *InsufficientFundsError", err)
	}
	if !insufficient.Available.IsZero() {
		t.Errorf("Available = %s, want 0", insufficient.Available)
	}

	ok := SolvencyCheck{OK: true, Available: decimal.NewFromInt(1)}
	if err := ok.Err("checking", decimal.Zero); err != nil {
		t.Errorf("passing check produced error: %v", err)
	}
}
