package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/transaction-tracker/internal/errs"
)

// Secrets path
// projects/{project}/secrets/plaid-access-token-{uid}-{itemID}/versions/{version}

const SecretManagerVault = "secretmanager"

// secretManagerClient is the subset of *secretmanager.Client used here.
type secretManagerClient interface {
	GetSecret(ctx context.Context, req *secretmanagerpb.GetSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
	CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
	AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.SecretVersion, error)
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	DeleteSecret(ctx context.Context, req *secretmanagerpb.DeleteSecretRequest, opts ...gax.CallOption) error
}

type plaidSecretsStore struct {
	client    secretManagerClient
	projectID string
	prefix    string
}

func NewPlaidSecretsStore(client secretManagerClient, projectID string) *plaidSecretsStore {
	return &plaidSecretsStore{
		client:    client,
		projectID: projectID,
		prefix:    "plaid-access-token",
	}
}

func (s *plaidSecretsStore) secretID(uid, itemID string) string {
	return fmt.Sprintf("%s-%s-%s", s.prefix, uid, itemID)
}

func (s *plaidSecretsStore) secretName(uid, itemID string) string {
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, s.secretID(uid, itemID))
}

func (s *plaidSecretsStore) ensureSecret(ctx context.Context, uid, itemID string) error {
	name := s.secretName(uid, itemID)
	_, err := s.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{Name: name})
	if status.Code(err) == codes.NotFound {
		_, err = s.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   fmt.Sprintf("projects/%s", s.projectID),
			SecretId: s.secretID(uid, itemID),
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{Automatic: &secretmanagerpb.Replication_Automatic{}},
				},
			},
		})
	}
	return err
}

func (s *plaidSecretsStore) Name() string { return SecretManagerVault }

// Seal writes the token as a new secret version and returns the secret name.
func (s *plaidSecretsStore) Seal(ctx context.Context, uid, itemID, token string) (string, error) {
	if err := s.ensureSecret(ctx, uid, itemID); err != nil {
		return "", errs.NewEncryptionError("failed to prepare credential secret", err)
	}
	_, err := s.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent: s.secretName(uid, itemID),
		Payload: &secretmanagerpb.SecretPayload{
			Data: []byte(token),
		},
	})
	if err != nil {
		return "", errs.NewEncryptionError("failed to store credential secret", err)
	}
	return s.secretName(uid, itemID), nil
}

func (s *plaidSecretsStore) Open(ctx context.Context, uid, itemID, ref string) (string, error) {
	if ref == "" {
		ref = s.secretName(uid, itemID)
	}
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("%s/versions/latest", ref),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", errs.NewNotLinkedError("credential secret not found")
		}
		return "", errs.NewEncryptionError("failed to read credential secret", err)
	}
	return string(res.Payload.Data), nil
}

func (s *plaidSecretsStore) Destroy(ctx context.Context, uid, itemID, ref string) error {
	if ref == "" {
		ref = s.secretName(uid, itemID)
	}
	err := s.client.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
		Name: ref,
	})
	if err != nil && status.Code(err) != codes.NotFound {
		return errs.NewEncryptionError("failed to delete credential secret", err)
	}
	return nil
}
