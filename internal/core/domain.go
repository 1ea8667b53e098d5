package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NoClassification is the sentinel assigned to rows no keyword matched.
const NoClassification = "No classification"

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// incomePrefix marks labels belonging to the income namespace.
const incomePrefix = "IN:"

type (
	// Kind selects one of the two taxonomy namespaces.
	Kind string

	// Category is one taxonomy entry: a display label plus the ordered list
	// of keywords attributed to it. List order is significant, it decides
	// match priority and the numbering scan.
	Category struct {
		Label    string
		Keywords []string
	}

	// PivotEntry is a per-category summary of expense and income totals.
	PivotEntry struct {
		Label   string
		Expense float64
		Income  float64
	}

	// Session maps an opaque token to the shared user identity.
	Session struct {
		Username  string `json:"username"`
		CreatedAt string `json:"created_at"`
	}

	// Credentials is the single shared username/password pair. Field names
	// follow the stored document format.
	Credentials struct {
		Username string `json:"User Name"`
		Password string `json:"Password"`
	}
)

var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrFileNotFound       = errors.New("file not found")
	ErrFolderNotFound     = errors.New("folder not found")
	ErrFolderExists       = errors.New("folder already exists")
	ErrFolderNotEmpty     = errors.New("folder contains files")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrWrongPassword      = errors.New("incorrect password")
)

// String implements fmt.Stringer
func (k Kind) String() string {
	return string(k)
}

// IsValid returns true if the kind is one of the two namespaces.
func (k Kind) IsValid() bool {
	switch k {
	case KindExpense, KindIncome:
		return true
	default:
		return false
	}
}

// KindOfLabel derives the namespace from a label's prefix.
func KindOfLabel(label string) Kind {
	if strings.HasPrefix(label, incomePrefix) {
		return KindIncome
	}
	return KindExpense
}

// HasKeyword reports whether the keyword is already attributed to the category.
func (c Category) HasKeyword(keyword string) bool {
	for _, k := range c.Keywords {
		if k == keyword {
			return true
		}
	}
	return false
}

// SequenceNumber extracts the NN prefix from a label such as "05 - Groceries"
// or "IN: 02 - Salary". A trailing letter suffix is stripped, so "05A - Rent"
// yields 5. The second return is false when no number parses.
func SequenceNumber(label string) (int, bool) {
	part, _, found := strings.Cut(label, " - ")
	if !found {
		return 0, false
	}
	part = strings.TrimSpace(strings.TrimPrefix(part, incomePrefix))
	if part == "" {
		return 0, false
	}
	if last := part[len(part)-1]; (last >= 'A' && last <= 'Z') || (last >= 'a' && last <= 'z') {
		part = part[:len(part)-1]
	}
	n, err := strconv.Atoi(part)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextSequence returns the sequence number for a new category in the given
// list: the maximum parsed NN plus one, or 1 when none parse. Numbers are
// never reused even if gaps exist.
func NextSequence(cats []Category) int {
	max := 0
	for _, c := range cats {
		if n, ok := SequenceNumber(c.Label); ok && n > max {
			max = n
		}
	}
	return max + 1
}

// FormatLabel builds a category label with a zero-padded sequence number.
// The padding keeps lexicographic label order aligned with assignment order.
func FormatLabel(kind Kind, seq int, name string) string {
	if kind == KindIncome {
		return fmt.Sprintf("%s %02d - %s", incomePrefix, seq, name)
	}
	return fmt.Sprintf("%02d - %s", seq, name)
}
