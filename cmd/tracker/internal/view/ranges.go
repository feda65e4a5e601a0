package view

import (
	"time"

	"github.com/GregMSThompson/transaction-tracker/internal/dto"
)

// RangePreset is a named date range the d key cycles through.
type RangePreset int

const (
	RangeLast30Days RangePreset = iota
	RangeLast7Days
	RangeLast90Days
	RangeThisMonth
	RangeLastMonth
)

var rangePresets = []RangePreset{RangeLast30Days, RangeLast7Days, RangeLast90Days, RangeThisMonth, RangeLastMonth}

func (p RangePreset) String() string {
	switch p {
	case RangeLast7Days:
		return "Last 7 days"
	case RangeLast90Days:
		return "Last 90 days"
	case RangeThisMonth:
		return "This month"
	case RangeLastMonth:
		return "Last month"
	default:
		return "Last 30 days"
	}
}

func (p RangePreset) Next() RangePreset {
	return rangePresets[(int(p)+1)%len(rangePresets)]
}

// Range resolves the preset against now's calendar date.
func (p RangePreset) Range(now time.Time) dto.DateRange {
	switch p {
	case RangeLast7Days:
		return dto.LastNDays(now, 7)
	case RangeLast90Days:
		return dto.LastNDays(now, 90)
	case RangeThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return dto.DateRange{Start: start.Format(dto.DateLayout), End: now.Format(dto.DateLayout)}
	case RangeLastMonth:
		start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 1, -1)
		return dto.DateRange{Start: start.Format(dto.DateLayout), End: end.Format(dto.DateLayout)}
	default:
		return dto.LastNDays(now, dto.DefaultLookbackDays)
	}
}
