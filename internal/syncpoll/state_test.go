package syncpoll

import (
	"testing"
	"time"

	"github.com/GregMSThompson/transaction-tracker/internal/models"
)

func txs(ids ...string) []models.Transaction {
	out := make([]models.Transaction, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Transaction{ID: id})
	}
	return out
}

var t0 = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return t0.Add(time.Duration(sec) * time.Second) }

func TestObserveEmptyAlwaysCompletes(t *testing.T) {
	states := map[string]State{
		"no data":  {},
		"syncing":  {FirstFetchTime: at(0), LastSeenTransactionID: "A", Status: StatusSyncing},
		"complete": {Status: StatusComplete},
	}

	for name, st := range states {
		t.Run(name, func(t *testing.T) {
			if st.Observe(nil, at(5), DefaultSettleWindow) {
				t.Fatal("empty result must not schedule a re-fetch")
			}
			if st.Status != StatusComplete {
				t.Fatalf("status = %q", st.Status)
			}
			if st.HasData() || st.LastSeenTransactionID != "" {
				t.Fatalf("state not cleared: %+v", st)
			}
		})
	}
}

func TestObserveFirstNonEmpty(t *testing.T) {
	var st State
	if !st.Observe(txs("X"), at(0), DefaultSettleWindow) {
		t.Fatal("expected re-fetch")
	}
	if st.Status != StatusSyncing || !st.FirstFetchTime.Equal(at(0)) || st.LastSeenTransactionID != "X" {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestObserveUnchangedTailInsideSettleWindow(t *testing.T) {
	st := State{FirstFetchTime: at(0), LastSeenTransactionID: "X", Status: StatusSyncing}
	if !st.Observe(txs("X"), at(10), DefaultSettleWindow) {
		t.Fatal("expected re-fetch")
	}
	if st.Status != StatusSyncing || !st.FirstFetchTime.Equal(at(0)) {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestObserveNewTailIgnoresElapsed(t *testing.T) {
	st := State{FirstFetchTime: at(0), LastSeenTransactionID: "X", Status: StatusSyncing}
	if !st.Observe(txs("X", "Y"), at(600), DefaultSettleWindow) {
		t.Fatal("expected re-fetch")
	}
	if st.LastSeenTransactionID != "Y" || st.Status != StatusSyncing {
		t.Fatalf("unexpected state %+v", st)
	}
	if !st.FirstFetchTime.Equal(at(0)) {
		t.Fatal("first fetch time must not move on tail change")
	}
}

func TestObserveSettles(t *testing.T) {
	for _, elapsed := range []int{15, 20, 300} {
		st := State{FirstFetchTime: at(0), LastSeenTransactionID: "X", Status: StatusSyncing}
		if st.Observe(txs("X"), at(elapsed), DefaultSettleWindow) {
			t.Fatalf("elapsed %ds: expected no re-fetch", elapsed)
		}
		if st.Status != StatusComplete || st.HasData() || st.LastSeenTransactionID != "" {
			t.Fatalf("elapsed %ds: unexpected state %+v", elapsed, st)
		}
	}
}

func TestObservePendingToPostedIsNotASignal(t *testing.T) {
	st := State{FirstFetchTime: at(0), LastSeenTransactionID: "X", Status: StatusSyncing}
	result := []models.Transaction{{ID: "X", Status: models.TransactionPosted}}
	if st.Observe(result, at(15), DefaultSettleWindow) {
		t.Fatal("status change on the same id must not keep syncing")
	}
}

func TestObserveScenario(t *testing.T) {
	var st State
	steps := []struct {
		at     int
		result []models.Transaction
		again  bool
		status Status
		first  time.Time
	}{
		{0, nil, false, StatusComplete, time.Time{}},
		{0, txs("A"), true, StatusSyncing, at(0)},
		{10, txs("A"), true, StatusSyncing, at(0)},
		{20, txs("A"), false, StatusComplete, time.Time{}},
		{20, txs("A", "B"), true, StatusSyncing, at(20)},
	}

	for i, s := range steps {
		again := st.Observe(s.result, at(s.at), DefaultSettleWindow)
		if again != s.again || st.Status != s.status || !st.FirstFetchTime.Equal(s.first) {
			t.Fatalf("step %d: again=%v state=%+v", i, again, st)
		}
	}
	if st.LastSeenTransactionID != "B" {
		t.Fatalf("tail = %q", st.LastSeenTransactionID)
	}
}
