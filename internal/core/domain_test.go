package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func validTransaction() Transaction {
	return Transaction{
		ID:         "tx-1",
		Type:       Expense,
		Flow:       FlowOut,
		AccountID:  "acct-1",
		CategoryID: "cat-1",
		Amount:     decimal.NewFromInt(40),
		Currency:   "EUR",
		Date:       NewDate(2024, 3, 1),
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr bool
	}{
		{
			name:    "valid expense",
			mutate:  func(*Transaction) {},
			wantErr: false,
		},
		{
			name:    "income must flow in",
			mutate:  func(tx *Transaction) { tx.Type = Income; tx.Flow = FlowOut },
			wantErr: true,
		},
		{
			name:    "expense must flow out",
			mutate:  func(tx *Transaction) { tx.Flow = FlowIn },
			wantErr: true,
		},
		{
			name:    "investment flow is caller-chosen",
			mutate:  func(tx *Transaction) { tx.Type = Investment; tx.Flow = FlowIn },
			wantErr: false,
		},
		{
			name:    "negative amount rejected",
			mutate:  func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) },
			wantErr: true,
		},
		{
			name:    "zero amount allowed",
			mutate:  func(tx *Transaction) { tx.Amount = decimal.Zero },
			wantErr: false,
		},
		{
			name:    "empty account rejected",
			mutate:  func(tx *Transaction) { tx.AccountID = "" },
			wantErr: true,
		},
		{
			name:    "empty category rejected",
			mutate:  func(tx *Transaction) { tx.CategoryID = "" },
			wantErr: true,
		},
		{
			name:    "bad currency rejected",
			mutate:  func(tx *Transaction) { tx.Currency = "eur" },
			wantErr: true,
		},
		{
			name:    "zero date rejected",
			mutate:  func(tx *Transaction) { tx.Date = Date{} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Transaction.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransaction_Signed(t *testing.T) {
	tx := validTransaction()

	if got := tx.Signed(); !got.Equal(decimal.NewFromInt(-40)) {
		t.Errorf("Signed() for out flow = %s, want -40", got)
	}

	tx.Type = Income
	tx.Flow = FlowIn
	if got := tx.Signed(); !got.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Signed() for in flow = %s, want 40", got)
	}
}

func TestRefund_Validate(t *testing.T) {
	refund := Refund{
		ID:            "ref-1",
		TransactionID: "tx-1",
		AccountID:     "acct-1",
		Amount:        decimal.NewFromInt(10),
		Currency:      "EUR",
		Date:          NewDate(2024, 3, 5),
	}
	if err := refund.Validate(); err != nil {
		t.Fatalf("valid refund rejected: %v", err)
	}

	t.Run("zero amount rejected", func(t *testing.T) {
		r := refund
		r.Amount = decimal.Zero
		if err := r.Validate(); err == nil {
			t.Error("refund with zero amount should be invalid")
		}
	})

	t.Run("missing originating transaction rejected", func(t *testing.T) {
		r := refund
		r.TransactionID = ""
		if err := r.Validate(); err == nil {
			t.Error("refund without transaction reference should be invalid")
		}
	})
}

func TestAccount_Validate(t *testing.T) {
	acct := Account{ID: "acct-1", Name: "Checking", Currency: "EUR"}
	if err := acct.Validate(); err != nil {
		t.Fatalf("valid account rejected: %v", err)
	}

	acct.Currency = "EURO"
	if err := acct.Validate(); err == nil {
		t.Error("four-letter currency should be invalid")
	}
}
