package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

func transferSnapshot() Snapshot {
	return Snapshot{
		Accounts: []core.Account{
			{ID: "checking", Name: "Checking", Currency: "EUR"},
			{ID: "savings", Name: "Savings", Currency: "EUR"},
			{ID: "usd", Name: "Dollars", Currency: "USD"},
		},
		Categories: []core.Category{
			{ID: "transfers", Name: core.TransferCategoryName, Type: core.Transfer},
		},
	}
}

func TestComposeTransfer(t *testing.T) {
	s := transferSnapshot()
	from, _ := s.Account("checking")
	to, _ := s.Account("savings")

	pair, err := ComposeTransfer(s, from, to, decimal.NewFromInt(100), core.NewDate(2024, 1, 1), "")
	if err != nil {
		t.Fatalf("ComposeTransfer() error = %v", err)
	}

	out, in := pair.Outgoing, pair.Incoming
	if out.Flow != core.FlowOut || in.Flow != core.FlowIn {
		t.Errorf("flows = %s/%s, want out/in", out.Flow, in.Flow)
	}
	if out.AccountID != "checking" || in.AccountID != "savings" {
		t.Errorf("accounts = %s/%s, want checking/savings", out.AccountID, in.AccountID)
	}
	if !out.Amount.Equal(in.Amount) || !out.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("amounts = %s/%s, want equal 100", out.Amount, in.Amount)
	}
	if out.Type != core.Transfer || in.Type != core.Transfer {
		t.Errorf("types = %s/%s, want transfer", out.Type, in.Type)
	}
	if out.CategoryID != "transfers" || in.CategoryID != "transfers" {
		t.Errorf("categories = %s/%s, want the reserved transfers category", out.CategoryID, in.CategoryID)
	}
	if out.Currency != "EUR" || in.Currency != "EUR" {
		t.Errorf("currencies = %s/%s, want source account EUR", out.Currency, in.Currency)
	}
	if out.Note != "Transfer from Checking to Savings" || in.Note != out.Note {
		t.Errorf("note = %q, want shared default", out.Note)
	}
}

func TestComposeTransfer_CustomNote(t *testing.T) {
	s := transferSnapshot()
	from, _ := s.Account("checking")
	to, _ := s.Account("savings")

	pair, err := ComposeTransfer(s, from, to, decimal.NewFromInt(5), core.NewDate(2024, 1, 1), "monthly savings")
	if err != nil {
		t.Fatalf("ComposeTransfer() error = %v", err)
	}
	if pair.Outgoing.Note != "monthly savings" || pair.Incoming.Note != "monthly savings" {
		t.Errorf("note = %q/%q, want caller's note on both legs", pair.Outgoing.Note, pair.Incoming.Note)
	}
}

func TestComposeTransfer_Invalid(t *testing.T) {
	s := transferSnapshot()
	checking, _ := s.Account("checking")
	savings, _ := s.Account("savings")
	usd, _ := s.Account("usd")

	tests := []struct {
		name   string
		from   core.Account
		to     core.Account
		amount decimal.Decimal
	}{
		{name: "same account", from: checking, to: checking, amount: decimal.NewFromInt(10)},
		{name: "cross currency", from: checking, to: usd, amount: decimal.NewFromInt(10)},
		{name: "zero amount", from: checking, to: savings, amount: decimal.Zero},
		{name: "negative amount", from: checking, to: savings, amount: decimal.NewFromInt(-3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComposeTransfer(s, tt.from, tt.to, tt.amount, core.NewDate(2024, 1, 1), "")
			if !errors.Is(err, ErrInvalidTransfer) {
				t.Errorf("error = %v, want ErrInvalidTransfer", err)
			}
		})
	}
}

func TestComposeTransfer_MissingCategory(t *testing.T) {
	s := transferSnapshot()
	s.Categories = nil
	from, _ := s.Account("checking")
	to, _ := s.Account("savings")

	_, err := ComposeTransfer(s, from, to, decimal.NewFromInt(10), core.NewDate(2024, 1, 1), "")
	if !errors.Is(err, ErrMissingTransferCategory) {
		t.Errorf("error = %v, want ErrMissingTransferCategory", err)
	}
}
