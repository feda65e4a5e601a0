package view

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/GregMSThompson/transaction-tracker/internal/models"
)

type SortOption string

const (
	SortDateDesc        SortOption = "date-desc"
	SortDateAsc         SortOption = "date-asc"
	SortAmountDesc      SortOption = "amount-desc"
	SortAmountAsc       SortOption = "amount-asc"
	SortDescriptionAsc  SortOption = "description-asc"
	SortDescriptionDesc SortOption = "description-desc"
)

// SortOptions lists the options in the order the s key cycles through them.
var SortOptions = []SortOption{
	SortDateDesc,
	SortDateAsc,
	SortAmountDesc,
	SortAmountAsc,
	SortDescriptionAsc,
	SortDescriptionDesc,
}

func (s SortOption) Label() string {
	switch s {
	case SortDateAsc:
		return "Date (Oldest first)"
	case SortAmountDesc:
		return "Amount (High to Low)"
	case SortAmountAsc:
		return "Amount (Low to High)"
	case SortDescriptionAsc:
		return "Description (A-Z)"
	case SortDescriptionDesc:
		return "Description (Z-A)"
	default:
		return "Date (Newest first)"
	}
}

func (s SortOption) Next() SortOption {
	i := slices.Index(SortOptions, s)
	return SortOptions[(i+1)%len(SortOptions)]
}

func ParseSort(s string) (SortOption, error) {
	opt := SortOption(strings.ToLower(strings.TrimSpace(s)))
	if opt == "" {
		return SortDateDesc, nil
	}
	if !slices.Contains(SortOptions, opt) {
		return "", fmt.Errorf("unknown sort %q", s)
	}
	return opt, nil
}

// Sort returns a sorted copy of txs; the input is left untouched. Ties keep
// their original order.
func Sort(txs []models.Transaction, opt SortOption) []models.Transaction {
	out := slices.Clone(txs)
	if out == nil {
		out = []models.Transaction{}
	}

	var cmp func(a, b models.Transaction) int
	switch opt {
	case SortDateAsc:
		cmp = func(a, b models.Transaction) int { return strings.Compare(a.Date, b.Date) }
	case SortAmountDesc:
		cmp = func(a, b models.Transaction) int { return b.Amount.Cmp(a.Amount) }
	case SortAmountAsc:
		cmp = func(a, b models.Transaction) int { return a.Amount.Cmp(b.Amount) }
	case SortDescriptionAsc, SortDescriptionDesc:
		col := collate.New(language.English, collate.IgnoreCase)
		cmp = func(a, b models.Transaction) int { return col.CompareString(a.Description, b.Description) }
		if opt == SortDescriptionDesc {
			cmp = func(a, b models.Transaction) int { return col.CompareString(b.Description, a.Description) }
		}
	default:
		cmp = func(a, b models.Transaction) int { return strings.Compare(b.Date, a.Date) }
	}

	slices.SortStableFunc(out, cmp)
	return out
}
