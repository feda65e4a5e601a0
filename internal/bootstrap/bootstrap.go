package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"firebase.google.com/go/v4/auth"

	plaidclient "github.com/GregMSThompson/transaction-tracker/internal/client/plaid"
	"github.com/GregMSThompson/transaction-tracker/internal/config"
	"github.com/GregMSThompson/transaction-tracker/pkg/logger"
)

type Bootstrap struct {
	Log           *slog.Logger
	Firestore     *firestore.Client
	Firebase      *auth.Client
	KMS           *gcpkms.KeyManagementClient
	SecretManager *secretmanager.Client
	PlaidAdapter  *plaidclient.Adapter
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	if cfg.AuthMode == config.AuthModeFirebase {
		bs.Firebase, err = InitFirebase(applicationCtx)
		if err != nil {
			return bs, err
		}
	}

	switch cfg.CredentialBackend {
	case config.CredentialBackendSecretManager:
		bs.SecretManager, err = InitSecretManager(applicationCtx)
	default:
		if cfg.KMSKeyName == "" {
			return bs, errors.New("KMSKEYNAME is required for the kms credential backend")
		}
		bs.KMS, err = InitKMS(applicationCtx)
	}
	if err != nil {
		return bs, err
	}

	bs.PlaidAdapter = plaidclient.NewAdapter(
		cfg.PlaidClientID,
		cfg.PlaidSecret,
		cfg.PlaidEnvironment,
		cfg.PlaidLinkOptions(),
		cfg.PlaidTxCount,
	)

	bs.Log.Info("bootstrap complete",
		"plaid_environment", cfg.PlaidEnvironment,
		"credential_backend", cfg.CredentialBackend,
		"auth_mode", cfg.AuthMode)
	return bs, nil
}

// Close releases the GCP clients. Safe on a partially initialised Bootstrap.
func (bs *Bootstrap) Close() {
	if bs.Firestore != nil {
		if err := bs.Firestore.Close(); err != nil {
			bs.Log.Warn("firestore close failed", "error", err)
		}
	}
	if bs.KMS != nil {
		if err := bs.KMS.Close(); err != nil {
			bs.Log.Warn("kms close failed", "error", err)
		}
	}
	if bs.SecretManager != nil {
		if err := bs.SecretManager.Close(); err != nil {
			bs.Log.Warn("secret manager close failed", "error", err)
		}
	}
}
