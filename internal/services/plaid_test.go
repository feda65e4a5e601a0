package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/transaction-tracker/internal/dto"
	"github.com/GregMSThompson/transaction-tracker/internal/errs"
	"github.com/GregMSThompson/transaction-tracker/internal/models"
	"github.com/GregMSThompson/transaction-tracker/pkg/helpers"
)

// --- fakes ---

type fakePlaid struct {
	linkToken     string
	exchange      dto.ExchangeResult
	itemInstID    string
	institution   dto.PlaidInstitution
	txs           []models.Transaction
	createLinkErr error
	exchangeErr   error
	itemErr       error
	instErr       error
	txErr         error

	gotLinkUID     string
	gotInstID      string
	gotItemToken   string
	gotAccessToken string
	gotRange       dto.DateRange
	exchangeCalled bool
	getTxCalled    bool
}

func (f *fakePlaid) CreateLinkToken(ctx context.Context, uid string) (string, error) {
	f.gotLinkUID = uid
	return f.linkToken, f.createLinkErr
}

func (f *fakePlaid) ExchangePublicToken(ctx context.Context, publicToken string) (dto.ExchangeResult, error) {
	f.exchangeCalled = true
	return f.exchange, f.exchangeErr
}

func (f *fakePlaid) GetItemInstitution(ctx context.Context, accessToken string) (string, error) {
	f.gotItemToken = accessToken
	return f.itemInstID, f.itemErr
}

func (f *fakePlaid) GetInstitution(ctx context.Context, institutionID string) (dto.PlaidInstitution, error) {
	f.gotInstID = institutionID
	return f.institution, f.instErr
}

func (f *fakePlaid) GetTransactions(ctx context.Context, accessToken string, r dto.DateRange) ([]models.Transaction, error) {
	f.getTxCalled = true
	f.gotAccessToken = accessToken
	f.gotRange = r
	return f.txs, f.txErr
}

type fakeCredentials struct {
	set     []dto.ExchangeResult
	link    *models.Link
	token   string
	setErr  error
	getErr  error
	deleted bool
}

func (f *fakeCredentials) SetCredential(ctx context.Context, uid string, ex dto.ExchangeResult) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.set = append(f.set, ex)
	return nil
}

func (f *fakeCredentials) GetLink(ctx context.Context, uid string) (*models.Link, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.link == nil {
		return nil, errs.NewNotLinkedError("not linked")
	}
	return f.link, nil
}

func (f *fakeCredentials) GetAccessToken(ctx context.Context, uid string) (string, error) {
	if _, err := f.GetLink(ctx, uid); err != nil {
		return "", err
	}
	return f.token, nil
}

func (f *fakeCredentials) DeleteCredential(ctx context.Context, uid string) error {
	if _, err := f.GetLink(ctx, uid); err != nil {
		return err
	}
	f.deleted = true
	return nil
}

func newTestPlaidService(pl *fakePlaid, creds *fakeCredentials) *plaidService {
	svc := NewPlaidService(pl, creds)
	svc.clockNow = func() time.Time { return time.Date(2025, time.March, 31, 15, 0, 0, 0, time.UTC) }
	return svc
}

// --- tests ---

func TestCreateLinkTokenUsesUID(t *testing.T) {
	pl := &fakePlaid{linkToken: "link-sandbox-1"}
	svc := newTestPlaidService(pl, &fakeCredentials{})

	tok, err := svc.CreateLinkToken(helpers.TestCtx(), "uid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "link-sandbox-1" || pl.gotLinkUID != "uid-1" {
		t.Fatalf("got token %q for uid %q", tok, pl.gotLinkUID)
	}
}

func TestExchangePublicTokenStoresCredential(t *testing.T) {
	pl := &fakePlaid{exchange: dto.ExchangeResult{ItemID: "item-1", AccessToken: "at-123"}, itemInstID: "ins_1"}
	creds := &fakeCredentials{}
	svc := newTestPlaidService(pl, creds)

	if err := svc.ExchangePublicToken(helpers.TestCtx(), "uid-1", "public-xyz"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pl.exchangeCalled {
		t.Fatal("expected ExchangePublicToken to be called")
	}
	if pl.gotItemToken != "at-123" {
		t.Fatalf("item looked up with %q", pl.gotItemToken)
	}
	if len(creds.set) != 1 || creds.set[0].AccessToken != "at-123" || creds.set[0].InstitutionID != "ins_1" {
		t.Fatalf("credential not stored, got %+v", creds.set)
	}
}

func TestExchangePublicTokenKeepsCredentialWhenItemLookupFails(t *testing.T) {
	pl := &fakePlaid{
		exchange: dto.ExchangeResult{ItemID: "item-1", AccessToken: "at-123"},
		itemErr:  errs.NewExternalServiceError("plaid", "failed to look up item", 500, true, nil),
	}
	creds := &fakeCredentials{}
	svc := newTestPlaidService(pl, creds)

	if err := svc.ExchangePublicToken(helpers.TestCtx(), "uid-1", "public-xyz"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(creds.set) != 1 {
		t.Fatalf("access token for item-1 was not stored: %+v", creds.set)
	}
	if got := creds.set[0]; got.AccessToken != "at-123" || got.ItemID != "item-1" || got.InstitutionID != "" {
		t.Fatalf("unexpected stored credential %+v", got)
	}
}

func TestExchangePublicTokenRequiresToken(t *testing.T) {
	pl := &fakePlaid{}
	svc := newTestPlaidService(pl, &fakeCredentials{})

	err := svc.ExchangePublicToken(helpers.TestCtx(), "uid-1", "  ")
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if pl.exchangeCalled {
		t.Fatal("aggregator should not be called without a token")
	}
}

func TestExchangePublicTokenPropagatesExchangeError(t *testing.T) {
	pl := &fakePlaid{exchangeErr: errs.NewExternalServiceError("plaid", "INVALID_PUBLIC_TOKEN", 400, false, nil)}
	creds := &fakeCredentials{}
	svc := newTestPlaidService(pl, creds)

	err := svc.ExchangePublicToken(helpers.TestCtx(), "uid-1", "public-xyz")
	var ext *errs.ExternalServiceError
	if !errors.As(err, &ext) {
		t.Fatalf("expected ExternalServiceError, got %v", err)
	}
	if len(creds.set) != 0 {
		t.Fatal("credential should not be stored on exchange error")
	}
}

func TestExchangePublicTokenPropagatesStoreError(t *testing.T) {
	pl := &fakePlaid{exchange: dto.ExchangeResult{ItemID: "item-1", AccessToken: "at-123"}}
	creds := &fakeCredentials{setErr: errors.New("store failed")}
	svc := newTestPlaidService(pl, creds)

	if err := svc.ExchangePublicToken(helpers.TestCtx(), "uid-1", "public-xyz"); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetInstitutionBuildsLogoDataURI(t *testing.T) {
	pl := &fakePlaid{institution: dto.PlaidInstitution{Name: "First Platypus Bank", Logo: "iVBORw0", PrimaryColor: "#1f1f1f"}}
	creds := &fakeCredentials{link: &models.Link{ItemID: "item-1", InstitutionID: "ins_109508"}}
	svc := newTestPlaidService(pl, creds)

	inst, err := svc.GetInstitution(helpers.TestCtx(), "uid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pl.gotInstID != "ins_109508" {
		t.Fatalf("looked up %q", pl.gotInstID)
	}
	if inst.Name != "First Platypus Bank" || inst.PrimaryColor != "#1f1f1f" {
		t.Fatalf("unexpected institution: %+v", inst)
	}
	if inst.Logo == nil || *inst.Logo != "data:image/png;base64,iVBORw0" {
		t.Fatalf("unexpected logo: %v", inst.Logo)
	}
}

func TestGetInstitutionWithoutLogo(t *testing.T) {
	pl := &fakePlaid{institution: dto.PlaidInstitution{Name: "Tiny Credit Union"}}
	creds := &fakeCredentials{link: &models.Link{ItemID: "item-1", InstitutionID: "ins_1"}}
	svc := newTestPlaidService(pl, creds)

	inst, err := svc.GetInstitution(helpers.TestCtx(), "uid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Logo != nil {
		t.Fatalf("expected nil logo, got %q", *inst.Logo)
	}
}

func TestGetInstitutionNotLinked(t *testing.T) {
	tests := []struct {
		name  string
		creds *fakeCredentials
	}{
		{"no link", &fakeCredentials{}},
		{"no institution id", &fakeCredentials{link: &models.Link{ItemID: "item-1"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestPlaidService(&fakePlaid{}, tc.creds)
			_, err := svc.GetInstitution(helpers.TestCtx(), "uid-1")
			var nl *errs.NotLinkedError
			if !errors.As(err, &nl) {
				t.Fatalf("expected NotLinkedError, got %v", err)
			}
		})
	}
}

func TestListTransactionsDefaultsRange(t *testing.T) {
	pl := &fakePlaid{txs: []models.Transaction{{ID: "t1", Amount: decimal.NewFromInt(-3)}}}
	creds := &fakeCredentials{link: &models.Link{ItemID: "item-1"}, token: "at-123"}
	svc := newTestPlaidService(pl, creds)

	txs, err := svc.ListTransactions(helpers.TestCtx(), "uid-1", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != "t1" {
		t.Fatalf("unexpected transactions: %+v", txs)
	}
	if pl.gotAccessToken != "at-123" {
		t.Fatalf("used token %q", pl.gotAccessToken)
	}
	want := dto.DateRange{Start: "2025-03-01", End: "2025-03-31"}
	if pl.gotRange != want {
		t.Fatalf("range = %+v, want %+v", pl.gotRange, want)
	}
}

func TestListTransactionsExplicitRange(t *testing.T) {
	pl := &fakePlaid{}
	creds := &fakeCredentials{link: &models.Link{ItemID: "item-1"}, token: "at-123"}
	svc := newTestPlaidService(pl, creds)

	if _, err := svc.ListTransactions(helpers.TestCtx(), "uid-1", "2025-01-01", "2025-01-31"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pl.gotRange != (dto.DateRange{Start: "2025-01-01", End: "2025-01-31"}) {
		t.Fatalf("unexpected range %+v", pl.gotRange)
	}
}

func TestListTransactionsInvalidRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"bad start", "01/01/2025", "2025-01-31"},
		{"bad end", "2025-01-01", "tomorrow"},
		{"start after end", "2025-02-01", "2025-01-31"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pl := &fakePlaid{}
			creds := &fakeCredentials{link: &models.Link{ItemID: "item-1"}, token: "at-123"}
			svc := newTestPlaidService(pl, creds)

			_, err := svc.ListTransactions(helpers.TestCtx(), "uid-1", tc.start, tc.end)
			var ve *errs.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if pl.getTxCalled {
				t.Fatal("aggregator should not be called for invalid input")
			}
		})
	}
}

func TestListTransactionsNotLinked(t *testing.T) {
	pl := &fakePlaid{}
	svc := newTestPlaidService(pl, &fakeCredentials{})

	_, err := svc.ListTransactions(helpers.TestCtx(), "uid-1", "", "")
	var nl *errs.NotLinkedError
	if !errors.As(err, &nl) {
		t.Fatalf("expected NotLinkedError, got %v", err)
	}
	if pl.getTxCalled {
		t.Fatal("aggregator should not be called without a credential")
	}
}

func TestListTransactionsPropagatesAggregatorError(t *testing.T) {
	pl := &fakePlaid{txErr: errs.NewExternalServiceError("plaid", "PRODUCT_NOT_READY", 400, false, nil)}
	creds := &fakeCredentials{link: &models.Link{ItemID: "item-1"}, token: "at-123"}
	svc := newTestPlaidService(pl, creds)

	_, err := svc.ListTransactions(helpers.TestCtx(), "uid-1", "", "")
	var ext *errs.ExternalServiceError
	if !errors.As(err, &ext) || ext.Message != "PRODUCT_NOT_READY" {
		t.Fatalf("expected aggregator error, got %v", err)
	}
}

func TestUnlinkDeletesCredential(t *testing.T) {
	creds := &fakeCredentials{link: &models.Link{ItemID: "item-1"}}
	svc := newTestPlaidService(&fakePlaid{}, creds)

	if err := svc.Unlink(helpers.TestCtx(), "uid-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !creds.deleted {
		t.Fatal("expected credential to be deleted")
	}
}
