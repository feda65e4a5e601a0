package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/transaction-tracker/internal/errs"
	"github.com/GregMSThompson/transaction-tracker/internal/middleware"
	"github.com/GregMSThompson/transaction-tracker/internal/models"
	"github.com/GregMSThompson/transaction-tracker/internal/response"
)

type PlaidService interface {
	CreateLinkToken(ctx context.Context, uid string) (string, error)
	ExchangePublicToken(ctx context.Context, uid, publicToken string) error
	Unlink(ctx context.Context, uid string) error
	GetInstitution(ctx context.Context, uid string) (models.Institution, error)
	ListTransactions(ctx context.Context, uid, start, end string) ([]models.Transaction, error)
}

type plaidHandlers struct {
	ResponseHandler response.ResponseHandler
	PlaidSvc        PlaidService
}

func NewPlaidHandlers(deps *Deps) *plaidHandlers {
	return &plaidHandlers{
		ResponseHandler: deps.ResponseHandler,
		PlaidSvc:        deps.PlaidSvc,
	}
}

func (h *plaidHandlers) PlaidRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/link-token", h.CreateLinkToken)
	r.Post("/exchange-token", h.ExchangeToken)
	r.Get("/institution", h.GetInstitution)
	r.Get("/transactions", h.ListTransactions)
	r.Delete("/link", h.Unlink)
	return r
}

func (h *plaidHandlers) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())

	linkToken, err := h.PlaidSvc.CreateLinkToken(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"link_token": linkToken})
}

func (h *plaidHandlers) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PublicToken string `json:"public_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("request body must be JSON"))
		return
	}

	uid := middleware.UID(r.Context())
	if err := h.PlaidSvc.ExchangePublicToken(r.Context(), uid, body.PublicToken); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *plaidHandlers) GetInstitution(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())

	inst, err := h.PlaidSvc.GetInstitution(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, inst)
}

func (h *plaidHandlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	q := r.URL.Query()

	txs, err := h.PlaidSvc.ListTransactions(r.Context(), uid, q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]any{"transactions": txs})
}

func (h *plaidHandlers) Unlink(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())

	if err := h.PlaidSvc.Unlink(r.Context(), uid); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
