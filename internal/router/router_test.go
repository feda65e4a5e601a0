package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GregMSThompson/transaction-tracker/internal/handlers"
	"github.com/GregMSThompson/transaction-tracker/internal/middleware"
	"github.com/GregMSThompson/transaction-tracker/internal/models"
	"github.com/GregMSThompson/transaction-tracker/internal/response"
	"github.com/GregMSThompson/transaction-tracker/pkg/logger"
)

type stubPlaidSvc struct {
	gotUID string
}

func (s *stubPlaidSvc) CreateLinkToken(ctx context.Context, uid string) (string, error) {
	s.gotUID = uid
	return "link-abc", nil
}
func (s *stubPlaidSvc) ExchangePublicToken(ctx context.Context, uid, publicToken string) error {
	return nil
}
func (s *stubPlaidSvc) Unlink(ctx context.Context, uid string) error { return nil }
func (s *stubPlaidSvc) GetInstitution(ctx context.Context, uid string) (models.Institution, error) {
	return models.Institution{}, nil
}
func (s *stubPlaidSvc) ListTransactions(ctx context.Context, uid, start, end string) ([]models.Transaction, error) {
	s.gotUID = uid
	return nil, nil
}

func newTestRouter(svc *stubPlaidSvc) http.Handler {
	log := slog.New(logger.NewTestHandler(slog.LevelInfo))
	deps := &handlers.Deps{
		Log:             log,
		ResponseHandler: response.New(log),
		PlaidSvc:        svc,
	}
	return NewRouter(deps, Options{
		Auth:           middleware.NewDevMiddleware("demo-user"),
		AllowedOrigins: []string{"http://localhost:3000"},
	})
}

func TestRouterServesPlaidRoutes(t *testing.T) {
	svc := &stubPlaidSvc{}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/plaid/transactions", nil)
	req.Header.Set(middleware.DemoUserHeader, "alice")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	if svc.gotUID != "alice" {
		t.Fatalf("uid = %q", svc.gotUID)
	}
	var resp struct {
		Success bool
		Data    map[string][]models.Transaction
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || !resp.Success {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	r := newTestRouter(&stubPlaidSvc{})

	req := httptest.NewRequest(http.MethodOptions, "/plaid/link-token", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestRouterHealth(t *testing.T) {
	r := newTestRouter(&stubPlaidSvc{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}
