package view

import (
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/transaction-tracker/internal/models"
	"github.com/GregMSThompson/transaction-tracker/internal/syncpoll"
)

// FormatAmount renders a signed amount with two decimals; credits get a +.
func FormatAmount(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

func FormatStatus(s models.TransactionStatus) string {
	if s == models.TransactionPending {
		return "Pending"
	}
	return "Posted"
}

// Row is the table row of one transaction.
func Row(tx models.Transaction) []string {
	return []string{
		tx.Date,
		tx.Description,
		string(tx.CategoryOrDefault()),
		FormatAmount(tx.Amount),
		FormatStatus(tx.Status),
	}
}

var Headers = []string{"Date", "Description", "Category", "Amount", "Status"}

func SyncLabel(s syncpoll.Status) string {
	switch s {
	case syncpoll.StatusSyncing:
		return "Syncing…"
	case syncpoll.StatusComplete:
		return "Up to date"
	default:
		return ""
	}
}
