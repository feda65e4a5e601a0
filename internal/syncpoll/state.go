package syncpoll

import (
	"time"

	"github.com/GregMSThompson/transaction-tracker/internal/models"
)

type Status string

const (
	StatusNone     Status = ""
	StatusSyncing  Status = "syncing"
	StatusComplete Status = "complete"
)

// State is the sync bookkeeping for one date range. A zero FirstFetchTime
// means no non-empty result has been seen since the last reset.
type State struct {
	FirstFetchTime        time.Time
	LastSeenTransactionID string
	Status                Status
}

func (s *State) HasData() bool {
	return !s.FirstFetchTime.IsZero()
}

// Observe folds one successful fetch result into the state and reports
// whether another fetch should be scheduled. An empty result always
// completes, whatever the prior state. A non-empty result keeps syncing
// while the last transaction id keeps changing, or until settle has passed
// since the first non-empty result.
func (s *State) Observe(txs []models.Transaction, now time.Time, settle time.Duration) bool {
	if len(txs) == 0 {
		s.complete()
		return false
	}

	tail := txs[len(txs)-1].ID

	switch {
	case !s.HasData():
		s.FirstFetchTime = now
		s.LastSeenTransactionID = tail
	case tail != s.LastSeenTransactionID:
		s.LastSeenTransactionID = tail
	case now.Sub(s.FirstFetchTime) < settle:
		// unchanged tail, still inside the settle window
	default:
		s.complete()
		return false
	}

	s.Status = StatusSyncing
	return true
}

func (s *State) complete() {
	s.FirstFetchTime = time.Time{}
	s.LastSeenTransactionID = ""
	s.Status = StatusComplete
}
