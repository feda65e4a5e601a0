package handlers

import (
	"log/slog"

	"github.com/GregMSThompson/transaction-tracker/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	PlaidSvc        PlaidService
}
