package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income     TransactionType = "income"
	Expense    TransactionType = "expense"
	Investment TransactionType = "investment"
	Transfer   TransactionType = "transfer"
)

const (
	FlowIn  Flow = "in"
	FlowOut Flow = "out"
)

// Reserved system category names. These are seeded once by the storage layer
// and looked up by name; call sites must go through these constants, never
// through literal strings.
const (
	TransferCategoryName          = "Transfers"
	RefundCategoryName            = "Refund"
	BalanceCorrectionCategoryName = "Balance correction"
)

type (
	TransactionType string

	Flow string

	Date struct {
		time.Time
	}

	// Account is a money container with a fixed currency for its lifetime.
	Account struct {
		ID       string
		Name     string
		Currency string
		Emoji    string
	}

	// Category is a node of the category tree. ParentID, when set, must
	// reference an existing category of the same Type.
	Category struct {
		ID        string
		Name      string
		Type      TransactionType
		ParentID  string // empty for root categories
		SortOrder int
	}

	// Transaction is a single money movement. Amount is always stored
	// positive; direction is carried by Flow, never by a negative amount.
	Transaction struct {
		ID         string
		Type       TransactionType
		Flow       Flow
		AccountID  string
		CategoryID string
		Amount     decimal.Decimal
		Currency   string
		Date       Date
		Note       string
		Tags       []string
		CreatedAt  time.Time
	}

	// Refund links money coming back to its originating expense transaction.
	// A transaction may have zero, one, or many refunds.
	Refund struct {
		ID            string
		TransactionID string
		AccountID     string
		Amount        decimal.Decimal
		Currency      string
		Date          Date
		Note          string
		PhotoPath     string
	}

	// CategoryBudget caps spend for a category. Period is a month key like
	// "2024-03", or empty for an "always" cap. A nil Cap means unconstrained.
	CategoryBudget struct {
		ID         string
		CategoryID string
		Period     string
		Cap        *decimal.Decimal
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidFlow     = errors.New("invalid flow")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrEmptyAccount    = errors.New("empty account reference")
	ErrEmptyCategory   = errors.New("empty category reference")
	ErrInvalidCurrency = errors.New("invalid currency code")
)

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense, Investment, Transfer:
		return nil
	default:
		return ErrInvalidType
	}
}

func (f Flow) Validate() error {
	switch f {
	case FlowIn, FlowOut:
		return nil
	default:
		return ErrInvalidFlow
	}
}

// Signed returns the amount with the sign implied by the flow: positive for
// incoming movements, negative for outgoing ones.
func (tx Transaction) Signed() decimal.Decimal {
	if tx.Flow == FlowOut {
		return tx.Amount.Neg()
	}
	return tx.Amount
}

func (tx Transaction) Validate() error {
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if err := tx.Flow.Validate(); err != nil {
		return err
	}
	// Income always flows in, expense always flows out.
	if tx.Type == Income && tx.Flow != FlowIn {
		return errors.New("income must flow in")
	}
	if tx.Type == Expense && tx.Flow != FlowOut {
		return errors.New("expense must flow out")
	}
	if tx.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(tx.AccountID) == "" {
		return ErrEmptyAccount
	}
	if strings.TrimSpace(tx.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if err := validateCurrency(tx.Currency); err != nil {
		return err
	}
	return tx.Date.Validate()
}

func (r Refund) Validate() error {
	if strings.TrimSpace(r.TransactionID) == "" {
		return errors.New("empty originating transaction reference")
	}
	if strings.TrimSpace(r.AccountID) == "" {
		return ErrEmptyAccount
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := validateCurrency(r.Currency); err != nil {
		return err
	}
	return r.Date.Validate()
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("empty account name")
	}
	return validateCurrency(a.Currency)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty category name")
	}
	return c.Type.Validate()
}

func validateCurrency(code string) error {
	if len(code) != 3 {
		return ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ErrInvalidCurrency
		}
	}
	return nil
}
