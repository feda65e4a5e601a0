package dto

import (
	"time"

	"github.com/GregMSThompson/transaction-tracker/internal/errs"
)

const (
	DateLayout = "2006-01-02"

	// DefaultLookbackDays is how far back an unbounded transactions query reaches.
	DefaultLookbackDays = 30
)

// DateRange is an inclusive pair of calendar dates (YYYY-MM-DD). Two ranges
// are the same query when both dates are equal.
type DateRange struct {
	Start string `json:"startDate"`
	End   string `json:"endDate"`
}

func (r DateRange) String() string {
	return r.Start + ".." + r.End
}

// Validate checks both dates parse and that Start does not come after End.
func (r DateRange) Validate() error {
	start, err := time.Parse(DateLayout, r.Start)
	if err != nil {
		return errs.NewValidationError("startDate must be a YYYY-MM-DD date")
	}
	end, err := time.Parse(DateLayout, r.End)
	if err != nil {
		return errs.NewValidationError("endDate must be a YYYY-MM-DD date")
	}
	if start.After(end) {
		return errs.NewValidationError("startDate must not be after endDate")
	}
	return nil
}

// LastNDays returns the range ending on now's calendar date and starting days before it.
func LastNDays(now time.Time, days int) DateRange {
	return DateRange{
		Start: now.AddDate(0, 0, -days).Format(DateLayout),
		End:   now.Format(DateLayout),
	}
}

// ResolveDateRange fills missing bounds: end defaults to today, start to
// DefaultLookbackDays before end.
func ResolveDateRange(now time.Time, start, end string) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	if r.End == "" {
		r.End = now.Format(DateLayout)
	}
	if r.Start == "" {
		endDate, err := time.Parse(DateLayout, r.End)
		if err != nil {
			return r, errs.NewValidationError("endDate must be a YYYY-MM-DD date")
		}
		r.Start = endDate.AddDate(0, 0, -DefaultLookbackDays).Format(DateLayout)
	}
	return r, r.Validate()
}
