package models

import (
	"github.com/shopspring/decimal"
)

// Amounts go over the wire as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type TransactionStatus string

const (
	TransactionPosted  TransactionStatus = "posted"
	TransactionPending TransactionStatus = "pending"
)

type Category string

const (
	CategoryGroceries     Category = "Groceries"
	CategoryIncome        Category = "Income"
	CategoryUtilities     Category = "Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategoryGas           Category = "Gas"
	CategoryFood          Category = "Food"
	CategorySubscription  Category = "Subscription"
	CategoryTransport     Category = "Transport"
	CategoryOther         Category = "Other"
)

// Transaction is one posted or pending bank transaction. Amount is signed:
// positive is money in, negative is money out.
type Transaction struct {
	ID          string            `json:"id"`   // Plaid transaction_id
	Date        string            `json:"date"` // YYYY-MM-DD as Plaid returns
	Description string            `json:"description"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      TransactionStatus `json:"status"`
	Category    Category          `json:"category"`
}

// CategoryOrDefault returns the category, falling back to Other when unset.
func (t Transaction) CategoryOrDefault() Category {
	if t.Category == "" {
		return CategoryOther
	}
	return t.Category
}
