package plaidclient

import (
	"context"
	"net/http"

	"github.com/plaid/plaid-go/v24/plaid"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/transaction-tracker/internal/dto"
	"github.com/GregMSThompson/transaction-tracker/internal/errs"
	"github.com/GregMSThompson/transaction-tracker/internal/models"
)

const serviceName = "plaid"

type Adapter struct {
	client *plaid.APIClient
	link   dto.PlaidLinkOptions
	count  int32
}

func NewAdapter(clientID, secret string, env dto.PlaidEnvironment, link dto.PlaidLinkOptions, count int) *Adapter {
	cfg := plaid.NewConfiguration()
	cfg.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	cfg.AddDefaultHeader("PLAID-SECRET", secret)
	cfg.UseEnvironment(toPlaidEnv(env))

	return &Adapter{
		client: plaid.NewAPIClient(cfg),
		link:   link,
		count:  int32(count),
	}
}

func (a *Adapter) CreateLinkToken(ctx context.Context, uid string) (string, error) {
	req := plaid.NewLinkTokenCreateRequest(
		a.link.ClientName,
		a.link.Language,
		toCountryCodes(a.link.CountryCodes),
		plaid.LinkTokenCreateRequestUser{ClientUserId: uid},
	)
	req.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})
	if a.link.RedirectURI != "" {
		req.SetRedirectUri(a.link.RedirectURI)
	}

	resp, httpResp, err := a.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*req).Execute()
	if err != nil {
		return "", wrapError("failed to create link token", httpResp, err)
	}
	return resp.GetLinkToken(), nil
}

// ExchangePublicToken swaps a Link public token for an access token.
func (a *Adapter) ExchangePublicToken(ctx context.Context, publicToken string) (dto.ExchangeResult, error) {
	var out dto.ExchangeResult

	req := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, httpResp, err := a.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return out, wrapError("failed to exchange token", httpResp, err)
	}
	out.ItemID = resp.GetItemId()
	out.AccessToken = resp.GetAccessToken()
	return out, nil
}

// GetItemInstitution returns the institution id of the item behind accessToken.
func (a *Adapter) GetItemInstitution(ctx context.Context, accessToken string) (string, error) {
	req := plaid.NewItemGetRequest(accessToken)
	resp, httpResp, err := a.client.PlaidApi.ItemGet(ctx).ItemGetRequest(*req).Execute()
	if err != nil {
		return "", wrapError("failed to look up item", httpResp, err)
	}
	item := resp.GetItem()
	return item.GetInstitutionId(), nil
}

func (a *Adapter) GetInstitution(ctx context.Context, institutionID string) (dto.PlaidInstitution, error) {
	var out dto.PlaidInstitution

	req := plaid.NewInstitutionsGetByIdRequest(institutionID, toCountryCodes(a.link.CountryCodes))
	opts := plaid.NewInstitutionsGetByIdRequestOptions()
	opts.SetIncludeOptionalMetadata(true)
	req.SetOptions(*opts)

	resp, httpResp, err := a.client.PlaidApi.InstitutionsGetById(ctx).InstitutionsGetByIdRequest(*req).Execute()
	if err != nil {
		return out, wrapError("failed to fetch institution", httpResp, err)
	}

	inst := resp.GetInstitution()
	out.Name = inst.GetName()
	out.Logo = inst.GetLogo()
	out.PrimaryColor = inst.GetPrimaryColor()
	return out, nil
}

func (a *Adapter) GetTransactions(ctx context.Context, accessToken string, r dto.DateRange) ([]models.Transaction, error) {
	req := plaid.NewTransactionsGetRequest(accessToken, r.Start, r.End)
	opts := plaid.NewTransactionsGetRequestOptions()
	opts.SetIncludePersonalFinanceCategory(true)
	if a.count > 0 {
		opts.SetCount(a.count)
	}
	req.SetOptions(*opts)

	resp, httpResp, err := a.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*req).Execute()
	if err != nil {
		return nil, wrapError("failed to fetch transactions", httpResp, err)
	}

	txs := make([]models.Transaction, 0, len(resp.GetTransactions()))
	for _, t := range resp.GetTransactions() {
		txs = append(txs, convert(t))
	}
	return txs, nil
}

func convert(plaidTx plaid.Transaction) models.Transaction {
	pfc := plaidTx.GetPersonalFinanceCategory()
	status := models.TransactionPosted
	if plaidTx.GetPending() {
		status = models.TransactionPending
	}
	return models.Transaction{
		ID:          plaidTx.GetTransactionId(),
		Date:        plaidTx.GetDate(),
		Description: plaidTx.GetName(),
		// Plaid reports outflows as positive amounts.
		Amount:   decimal.NewFromFloat(plaidTx.GetAmount()).Neg(),
		Status:   status,
		Category: Categorize(pfc.GetPrimary(), pfc.GetDetailed(), plaidTx.GetCategory()),
	}
}

// wrapError converts SDK failures into ExternalServiceError, keeping Plaid's
// own error_message when the response carried one.
func wrapError(fallback string, httpResp *http.Response, err error) error {
	status := 0
	if httpResp != nil {
		status = httpResp.StatusCode
	}
	message := fallback
	if perr, convErr := plaid.ToPlaidError(err); convErr == nil && perr.GetErrorMessage() != "" {
		message = perr.GetErrorMessage()
	}
	transient := status == 0 || status == http.StatusTooManyRequests || status >= 500
	return errs.NewExternalServiceError(serviceName, message, status, transient, err)
}

func toCountryCodes(codes []string) []plaid.CountryCode {
	if len(codes) == 0 {
		return []plaid.CountryCode{plaid.COUNTRYCODE_US}
	}
	out := make([]plaid.CountryCode, 0, len(codes))
	for _, c := range codes {
		out = append(out, plaid.CountryCode(c))
	}
	return out
}

func toPlaidEnv(env dto.PlaidEnvironment) plaid.Environment {
	switch env {
	case dto.PlaidSandbox:
		return plaid.Sandbox
	case dto.PlaidDevelopment:
		return plaid.Development
	default: // dto.PlaidProduction:
		return plaid.Production
	}
}
