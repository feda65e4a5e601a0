package plaidclient

import (
	"github.com/GregMSThompson/transaction-tracker/internal/models"
)

var detailedCategories = map[string]models.Category{
	"FOOD_AND_DRINK_GROCERIES":      models.CategoryGroceries,
	"TRANSPORTATION_GAS":            models.CategoryGas,
	"ENTERTAINMENT_TV_AND_MOVIES":   models.CategorySubscription,
	"ENTERTAINMENT_MUSIC_AND_AUDIO": models.CategorySubscription,
}

var primaryCategories = map[string]models.Category{
	"INCOME":              models.CategoryIncome,
	"TRANSFER_IN":         models.CategoryIncome,
	"FOOD_AND_DRINK":      models.CategoryFood,
	"RENT_AND_UTILITIES":  models.CategoryUtilities,
	"ENTERTAINMENT":       models.CategoryEntertainment,
	"GENERAL_MERCHANDISE": models.CategoryShopping,
	"TRANSPORTATION":      models.CategoryTransport,
	"TRAVEL":              models.CategoryTransport,
}

// legacy hierarchy labels, most specific first
var legacyCategories = []struct {
	label    string
	category models.Category
}{
	{"Supermarkets and Groceries", models.CategoryGroceries},
	{"Gas Stations", models.CategoryGas},
	{"Subscription", models.CategorySubscription},
	{"Utilities", models.CategoryUtilities},
	{"Payroll", models.CategoryIncome},
	{"Food and Drink", models.CategoryFood},
	{"Shops", models.CategoryShopping},
	{"Recreation", models.CategoryEntertainment},
	{"Travel", models.CategoryTransport},
}

// Categorize picks a category from the personal finance category (detailed,
// then primary), then from the legacy hierarchy, then falls back to Other.
func Categorize(pfcPrimary, pfcDetailed string, legacy []string) models.Category {
	if c, ok := detailedCategories[pfcDetailed]; ok {
		return c
	}
	if c, ok := primaryCategories[pfcPrimary]; ok {
		return c
	}
	for _, lc := range legacyCategories {
		for _, label := range legacy {
			if label == lc.label {
				return lc.category
			}
		}
	}
	return models.CategoryOther
}
