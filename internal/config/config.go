package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/GregMSThompson/transaction-tracker/internal/dto"
)

const (
	CredentialBackendKMS           = "kms"
	CredentialBackendSecretManager = "secretmanager"

	AuthModeFirebase = "firebase"
	AuthModeNone     = "none"
)

type Config struct {
	ProjectID         string
	Region            string
	LogLevel          string
	Port              string
	PlaidClientID     string
	PlaidSecret       string
	PlaidEnvironment  dto.PlaidEnvironment
	PlaidClientName   string
	PlaidRedirectURI  string
	PlaidCountryCodes []string
	PlaidTxCount      int
	KMSKeyName        string
	CredentialBackend string
	AuthMode          string
	DemoUID           string
	AllowedOrigins    []string
}

func New() *Config {
	return &Config{
		ProjectID:         os.Getenv("PROJECTID"),
		Region:            os.Getenv("REGION"),
		LogLevel:          os.Getenv("LOGLEVEL"),
		Port:              getOr("PORT", "8080"),
		PlaidClientID:     os.Getenv("PLAIDCLIENTID"),
		PlaidSecret:       os.Getenv("PLAIDSECRET"),
		PlaidEnvironment:  getPlaidEnvironment(os.Getenv("PLAIDENVIRONMENT")),
		PlaidClientName:   getOr("PLAIDCLIENTNAME", "Transaction Tracker"),
		PlaidRedirectURI:  os.Getenv("PLAIDREDIRECTURI"),
		PlaidCountryCodes: getList("PLAIDCOUNTRYCODES", []string{"US"}),
		PlaidTxCount:      getInt("PLAIDTXCOUNT", 100),
		KMSKeyName:        os.Getenv("KMSKEYNAME"),
		CredentialBackend: getCredentialBackend(os.Getenv("CREDENTIALBACKEND")),
		AuthMode:          getAuthMode(os.Getenv("AUTHMODE")),
		DemoUID:           getOr("DEMOUID", "demo-user"),
		AllowedOrigins:    getList("ALLOWEDORIGINS", []string{"http://localhost:3000"}),
	}
}

func (c *Config) PlaidLinkOptions() dto.PlaidLinkOptions {
	return dto.PlaidLinkOptions{
		ClientName:   c.PlaidClientName,
		Language:     "en",
		CountryCodes: c.PlaidCountryCodes,
		RedirectURI:  c.PlaidRedirectURI,
	}
}

func getPlaidEnvironment(env string) dto.PlaidEnvironment {
	switch env {
	case "sandbox":
		return dto.PlaidSandbox
	case "development":
		return dto.PlaidDevelopment
	default: // "production"
		return dto.PlaidProduction
	}
}

func getCredentialBackend(backend string) string {
	if strings.ToLower(backend) == CredentialBackendSecretManager {
		return CredentialBackendSecretManager
	}
	return CredentialBackendKMS
}

func getAuthMode(mode string) string {
	if strings.ToLower(mode) == AuthModeNone {
		return AuthModeNone
	}
	return AuthModeFirebase
}

// ---- Helpers ----

func getOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
