package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/GregMSThompson/transaction-tracker/internal/bootstrap"
	"github.com/GregMSThompson/transaction-tracker/internal/config"
	"github.com/GregMSThompson/transaction-tracker/internal/crypto"
	"github.com/GregMSThompson/transaction-tracker/internal/handlers"
	"github.com/GregMSThompson/transaction-tracker/internal/middleware"
	"github.com/GregMSThompson/transaction-tracker/internal/response"
	"github.com/GregMSThompson/transaction-tracker/internal/router"
	"github.com/GregMSThompson/transaction-tracker/internal/services"
	"github.com/GregMSThompson/transaction-tracker/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	_ = godotenv.Load()

	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// credential vault
	var vault store.Vault
	if cfg.CredentialBackend == config.CredentialBackendSecretManager {
		vault = store.NewPlaidSecretsStore(bs.SecretManager, cfg.ProjectID)
	} else {
		vault = crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
	}

	// stores
	lstore := store.NewLinkStore(bs.Firestore)
	cstore := store.NewCredentialStore(lstore, vault)

	// services
	plserv := services.NewPlaidService(bs.PlaidAdapter, cstore)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.PlaidSvc = plserv

	// auth
	auth := middleware.NewDevMiddleware(cfg.DemoUID)
	if cfg.AuthMode == config.AuthModeFirebase {
		auth = middleware.NewMiddleware(bs.Firebase)
	} else {
		bs.Log.Warn("authentication disabled", "demo_uid", cfg.DemoUID)
	}

	// router
	r := router.NewRouter(deps, router.Options{
		Auth:           auth,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	bs.Log.Info("listening", "port", cfg.Port)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
