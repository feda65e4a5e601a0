package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/transaction-tracker/internal/dto"
	"github.com/GregMSThompson/transaction-tracker/internal/models"
)

func sample() []models.Transaction {
	return []models.Transaction{
		{ID: "1", Date: "2025-03-02", Description: "coffee", Amount: decimal.RequireFromString("-4.50")},
		{ID: "2", Date: "2025-03-05", Description: "Payroll", Amount: decimal.RequireFromString("2500")},
		{ID: "3", Date: "2025-03-01", Description: "Amazon", Amount: decimal.RequireFromString("-120.10")},
		{ID: "4", Date: "2025-03-02", Description: "Bakery", Amount: decimal.RequireFromString("-4.50")},
	}
}

func ids(txs []models.Transaction) string {
	out := ""
	for _, tx := range txs {
		out += tx.ID
	}
	return out
}

func TestSort(t *testing.T) {
	tests := []struct {
		opt  SortOption
		want string
	}{
		{SortDateDesc, "2143"},
		{SortDateAsc, "3142"},
		{SortAmountDesc, "2143"},
		{SortAmountAsc, "3142"},
		{SortDescriptionAsc, "3412"},
		{SortDescriptionDesc, "2143"},
		{SortOption("bogus"), "2143"},
	}

	for _, tc := range tests {
		t.Run(string(tc.opt), func(t *testing.T) {
			if got := ids(Sort(sample(), tc.opt)); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	in := sample()
	_ = Sort(in, SortAmountAsc)
	if ids(in) != "1234" {
		t.Fatalf("input reordered: %s", ids(in))
	}
}

func TestSortEmpty(t *testing.T) {
	if got := Sort(nil, SortDateDesc); got == nil || len(got) != 0 {
		t.Fatalf("got %#v", got)
	}
}

func TestSortOptionCycle(t *testing.T) {
	opt := SortDateDesc
	seen := map[SortOption]bool{}
	for range SortOptions {
		seen[opt] = true
		opt = opt.Next()
	}
	if opt != SortDateDesc || len(seen) != len(SortOptions) {
		t.Fatalf("cycle ended at %s after visiting %d", opt, len(seen))
	}
}

func TestParseSort(t *testing.T) {
	if opt, err := ParseSort(""); err != nil || opt != SortDateDesc {
		t.Fatalf("default: %s %v", opt, err)
	}
	if opt, err := ParseSort("Amount-Asc"); err != nil || opt != SortAmountAsc {
		t.Fatalf("got %s %v", opt, err)
	}
	if _, err := ParseSort("size"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRangePresets(t *testing.T) {
	now := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		p    RangePreset
		want dto.DateRange
	}{
		{RangeLast30Days, dto.DateRange{Start: "2025-02-13", End: "2025-03-15"}},
		{RangeLast7Days, dto.DateRange{Start: "2025-03-08", End: "2025-03-15"}},
		{RangeLast90Days, dto.DateRange{Start: "2024-12-15", End: "2025-03-15"}},
		{RangeThisMonth, dto.DateRange{Start: "2025-03-01", End: "2025-03-15"}},
		{RangeLastMonth, dto.DateRange{Start: "2025-02-01", End: "2025-02-28"}},
	}
	for _, tc := range tests {
		if got := tc.p.Range(now); got != tc.want {
			t.Fatalf("%s: got %+v, want %+v", tc.p, got, tc.want)
		}
	}
	if RangeLastMonth.Next() != RangeLast30Days {
		t.Fatal("presets should wrap")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{"12.5": "+12.50", "-4.5": "-4.50", "0": "0.00"}
	for in, want := range cases {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Fatalf("%s: got %s, want %s", in, got, want)
		}
	}
}
