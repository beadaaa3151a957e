package core

import (
	"errors"
	"strings"
)

// TxType classifies a transaction. Only expense and income are postable;
// transfer is reserved in the schema but never produced by this layer.
const (
	Expense  TxType = "expense"
	Income   TxType = "income"
	Transfer TxType = "transfer"
)

type (
	TxType string

	// User is the identity scope for accounts and categories.
	User struct {
		ID           string
		Username     string
		PasswordHash string
		CreatedAt    int64
		UpdatedAt    int64
	}

	// Account is a money container. BalanceCached is a materialized value:
	// transactions are the source of truth, the ledger keeps it in sync.
	Account struct {
		ID             string
		UserID         string
		Name           string
		Icon           Icon
		Color          string
		CurrencyCode   string
		IncludeInTotal bool
		BalanceCached  int64
		CreatedAt      int64
		UpdatedAt      int64
	}

	// Category is a classification label fixed to one transaction type.
	Category struct {
		ID        string
		UserID    string
		Name      string
		Type      TxType
		Icon      Icon
		Color     string
		ParentID  string
		CreatedAt int64
		UpdatedAt int64
	}

	// Transaction is a single posting against an account.
	Transaction struct {
		ID         string
		UserID     string
		AccountID  string
		CategoryID string // empty = uncategorized
		Type       TxType
		Amount     int64 // positive, smallest currency unit
		Note       string
		OccurredAt int64 // epoch seconds, user-chosen date
		CreatedAt  int64
		UpdatedAt  int64
	}

	// Posting is the validated input for ledger mutations.
	Posting struct {
		UserID     string
		AccountID  string
		CategoryID string
		Type       TxType
		Amount     int64
		Note       string
		OccurredAt int64
	}

	// CategoryTotal is one bucket of a category breakdown. An empty
	// CategoryID is the synthetic uncategorized bucket.
	CategoryTotal struct {
		CategoryID string
		Name       string
		Icon       Icon
		Color      string
		Total      int64
	}
)

var (
	// Validation errors: rejected before any mutation.
	ErrInvalidAmount    = errors.New("amount must be a positive integer")
	ErrInvalidType      = errors.New("type must be expense or income")
	ErrEmptyName        = errors.New("name must not be empty")
	ErrMissingAccount   = errors.New("account selection required")
	ErrInvalidTimestamp = errors.New("occurred_at must be set")

	// Policy errors: the directory refuses the operation.
	ErrDefaultAccount = errors.New("DEFAULT_ACCOUNT: the default account cannot be deleted")
	ErrLastAccount    = errors.New("LAST_ACCOUNT: the last remaining account cannot be deleted")

	// Authentication errors. Unknown username and wrong password collapse
	// into ErrInvalidCredentials so account existence is not revealed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUsernameTooShort   = errors.New("username must be at least 3 characters")
	ErrPasswordTooShort   = errors.New("password must be at least 4 characters")

	ErrNotFound = errors.New("not found")
)

// Postable reports whether the type may be written through the ledger.
func (t TxType) Postable() bool {
	return t == Expense || t == Income
}

// Signed returns the balance delta a posting of this type applies:
// income adds, expense subtracts.
func (t TxType) Signed(amount int64) int64 {
	if t == Expense {
		return -amount
	}
	return amount
}

func (p Posting) Validate() error {
	if !p.Type.Postable() {
		return ErrInvalidType
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(p.AccountID) == "" {
		return ErrMissingAccount
	}
	if p.OccurredAt <= 0 {
		return ErrInvalidTimestamp
	}
	return nil
}

// ValidateName checks the trimmed-non-empty rule shared by accounts and
// categories and returns the trimmed value.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// BreakdownPercent computes display percentages for a breakdown. An all-zero
// breakdown yields 0 for every bucket rather than dividing by zero.
func BreakdownPercent(totals []CategoryTotal) []float64 {
	var grand int64
	for _, t := range totals {
		grand += t.Total
	}
	out := make([]float64, len(totals))
	if grand == 0 {
		return out
	}
	for i, t := range totals {
		out[i] = float64(t.Total) / float64(grand) * 100
	}
	return out
}
