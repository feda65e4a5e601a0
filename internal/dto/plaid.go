package dto

type PlaidEnvironment string

const (
	PlaidSandbox     PlaidEnvironment = "sandbox"
	PlaidDevelopment PlaidEnvironment = "development"
	PlaidProduction  PlaidEnvironment = "production"
)

// PlaidLinkOptions are the fixed parts of every link token request.
type PlaidLinkOptions struct {
	ClientName   string
	Language     string
	CountryCodes []string
	RedirectURI  string
}

// PlaidInstitution is the adapter's view of /institutions/get_by_id.
type PlaidInstitution struct {
	Name         string
	Logo         string // base64 PNG, empty when absent
	PrimaryColor string
}

type ExchangeResult struct {
	ItemID        string
	AccessToken   string
	InstitutionID string
}
