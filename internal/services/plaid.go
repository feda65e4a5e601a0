package services

import (
	"context"
	"strings"
	"time"

	"github.com/GregMSThompson/transaction-tracker/internal/dto"
	"github.com/GregMSThompson/transaction-tracker/internal/errs"
	"github.com/GregMSThompson/transaction-tracker/internal/models"
	"github.com/GregMSThompson/transaction-tracker/pkg/helpers"
	"github.com/GregMSThompson/transaction-tracker/pkg/logger"
)

// --- Dependencies (minimal interfaces scoped to this service) ---

// credentialPSStore keeps the service decoupled from where access tokens live.
type credentialPSStore interface {
	SetCredential(ctx context.Context, uid string, ex dto.ExchangeResult) error
	GetLink(ctx context.Context, uid string) (*models.Link, error)
	GetAccessToken(ctx context.Context, uid string) (string, error)
	DeleteCredential(ctx context.Context, uid string) error
}

// plaidClient is the Plaid SDK adapter surface used by this service.
type plaidClient interface {
	CreateLinkToken(ctx context.Context, uid string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (dto.ExchangeResult, error)
	GetItemInstitution(ctx context.Context, accessToken string) (string, error)
	GetInstitution(ctx context.Context, institutionID string) (dto.PlaidInstitution, error)
	GetTransactions(ctx context.Context, accessToken string, r dto.DateRange) ([]models.Transaction, error)
}

type plaidService struct {
	plaid       plaidClient
	credentials credentialPSStore
	clockNow    func() time.Time
}

func NewPlaidService(plaid plaidClient, credentials credentialPSStore) *plaidService {
	return &plaidService{
		plaid:       plaid,
		credentials: credentials,
		clockNow:    time.Now,
	}
}

func (s *plaidService) CreateLinkToken(ctx context.Context, uid string) (string, error) {
	linkToken, err := s.plaid.CreateLinkToken(ctx, uid)
	if err != nil {
		return "", err
	}
	return linkToken, nil
}

func (s *plaidService) ExchangePublicToken(ctx context.Context, uid, publicToken string) error {
	if strings.TrimSpace(publicToken) == "" {
		return errs.NewValidationError("public_token is required")
	}

	ex, err := s.plaid.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return err
	}

	// The public token is spent; store the link even when the institution
	// lookup fails.
	log := logger.FromContext(ctx)
	instID, err := s.plaid.GetItemInstitution(ctx, ex.AccessToken)
	if err != nil {
		log.Warn("institution lookup failed, storing link without it", "item_id", ex.ItemID, "error", err)
	} else {
		ex.InstitutionID = instID
	}

	if err := s.credentials.SetCredential(ctx, uid, ex); err != nil {
		return err
	}

	log.Info("bank linked", "item_id", ex.ItemID, "institution_id", ex.InstitutionID)
	return nil
}

func (s *plaidService) Unlink(ctx context.Context, uid string) error {
	if err := s.credentials.DeleteCredential(ctx, uid); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("bank unlinked")
	return nil
}

func (s *plaidService) GetInstitution(ctx context.Context, uid string) (models.Institution, error) {
	var out models.Institution

	link, err := s.credentials.GetLink(ctx, uid)
	if err != nil {
		return out, err
	}
	if link.InstitutionID == "" {
		return out, errs.NewNotLinkedError("No institution ID found")
	}

	inst, err := s.plaid.GetInstitution(ctx, link.InstitutionID)
	if err != nil {
		return out, err
	}

	out.Name = inst.Name
	out.PrimaryColor = inst.PrimaryColor
	if inst.Logo != "" {
		out.Logo = helpers.Ptr("data:image/png;base64," + inst.Logo)
	}
	return out, nil
}

// ListTransactions fetches the user's transactions for [start, end]. Missing
// bounds default to the last DefaultLookbackDays days.
func (s *plaidService) ListTransactions(ctx context.Context, uid, start, end string) ([]models.Transaction, error) {
	r, err := dto.ResolveDateRange(s.clockNow(), start, end)
	if err != nil {
		return nil, err
	}

	token, err := s.credentials.GetAccessToken(ctx, uid)
	if err != nil {
		return nil, err
	}

	txs, err := s.plaid.GetTransactions(ctx, token, r)
	if err != nil {
		logger.FromContext(ctx).Warn("transaction fetch failed", "range", r.String())
		return nil, err
	}

	if logger.IsDebugEnabled(ctx) {
		logger.FromContext(ctx).Debug("transactions fetched", "range", r.String(), "count", len(txs))
	}
	return txs, nil
}
