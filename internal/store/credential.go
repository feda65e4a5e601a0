package store

import (
	"context"
	"errors"

	"github.com/GregMSThompson/transaction-tracker/internal/dto"
	"github.com/GregMSThompson/transaction-tracker/internal/errs"
	"github.com/GregMSThompson/transaction-tracker/internal/models"
	"github.com/GregMSThompson/transaction-tracker/pkg/logger"
)

// Vault seals access tokens. The returned reference is stored on the link
// record and handed back to Open and Destroy.
type Vault interface {
	Name() string
	Seal(ctx context.Context, uid, itemID, token string) (string, error)
	Open(ctx context.Context, uid, itemID, ref string) (string, error)
	Destroy(ctx context.Context, uid, itemID, ref string) error
}

type linkRecords interface {
	Save(ctx context.Context, uid string, link *models.Link) error
	Get(ctx context.Context, uid string) (*models.Link, error)
	Delete(ctx context.Context, uid string) error
}

// credentialStore associates each user with their aggregator access token.
type credentialStore struct {
	links linkRecords
	vault Vault
}

func NewCredentialStore(links linkRecords, vault Vault) *credentialStore {
	return &credentialStore{links: links, vault: vault}
}

func (s *credentialStore) SetCredential(ctx context.Context, uid string, ex dto.ExchangeResult) error {
	ref, err := s.vault.Seal(ctx, uid, ex.ItemID, ex.AccessToken)
	if err != nil {
		return err
	}

	link := &models.Link{
		ItemID:        ex.ItemID,
		InstitutionID: ex.InstitutionID,
		CredentialRef: ref,
		Vault:         s.vault.Name(),
	}
	if err := s.links.Save(ctx, uid, link); err != nil {
		return err
	}

	logger.FromContext(ctx).Debug("credential stored", "item_id", ex.ItemID, "vault", s.vault.Name())
	return nil
}

// GetLink returns the user's link record, or NotLinkedError when there is none.
func (s *credentialStore) GetLink(ctx context.Context, uid string) (*models.Link, error) {
	link, err := s.links.Get(ctx, uid)
	if err != nil {
		var nf *errs.NotFoundError
		if errors.As(err, &nf) {
			return nil, errs.NewNotLinkedError("No access token available. Please link your bank account first.")
		}
		return nil, err
	}
	return link, nil
}

func (s *credentialStore) GetAccessToken(ctx context.Context, uid string) (string, error) {
	link, err := s.GetLink(ctx, uid)
	if err != nil {
		return "", err
	}
	if link.Vault != s.vault.Name() {
		return "", errs.NewEncryptionError("link was sealed by the "+link.Vault+" vault", nil)
	}
	return s.vault.Open(ctx, uid, link.ItemID, link.CredentialRef)
}

func (s *credentialStore) DeleteCredential(ctx context.Context, uid string) error {
	link, err := s.GetLink(ctx, uid)
	if err != nil {
		return err
	}
	// TODO: make secret + record deletion atomic; a failure between the two leaves a record without a secret.
	if err := s.vault.Destroy(ctx, uid, link.ItemID, link.CredentialRef); err != nil {
		return err
	}
	return s.links.Delete(ctx, uid)
}
