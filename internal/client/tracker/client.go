package trackerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GregMSThompson/transaction-tracker/internal/dto"
	"github.com/GregMSThompson/transaction-tracker/internal/errs"
	"github.com/GregMSThompson/transaction-tracker/internal/models"
	"github.com/GregMSThompson/transaction-tracker/pkg/logger"
)

const (
	serviceName = "tracker-api"

	DefaultRetries    = 3
	DefaultRetryDelay = time.Second

	// demoUserHeader mirrors the API's dev auth header.
	demoUserHeader = "X-Demo-User"
)

// Client talks to the transaction tracker API.
type Client struct {
	baseURL    string
	http       *http.Client
	token      string
	demoUser   string
	retries    int
	retryDelay time.Duration
	after      func(time.Duration) <-chan time.Time
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithDemoUser(uid string) Option {
	return func(c *Client) { c.demoUser = uid }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetries sets how many times a failed transactions fetch is retried and
// the fixed delay between attempts.
func WithRetries(retries int, delay time.Duration) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: 30 * time.Second},
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		after:      time.After,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the transactions for r. A user without a linked account gets
// an empty list rather than an error. Other failures are retried with a fixed
// delay; invalid dates fail immediately.
func (c *Client) Fetch(ctx context.Context, r dto.DateRange) ([]models.Transaction, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("startDate", r.Start)
	q.Set("endDate", r.End)

	var out struct {
		Transactions []models.Transaction `json:"transactions"`
	}
	err := c.withRetry(ctx, "fetch transactions", c.retries, func() error {
		return c.do(ctx, http.MethodGet, "/plaid/transactions?"+q.Encode(), nil, &out, "Failed to fetch transactions")
	})

	var notLinked *errs.NotLinkedError
	if errors.As(err, &notLinked) {
		logger.FromContext(ctx).Debug("no linked account, treating as empty")
		return []models.Transaction{}, nil
	}
	if err != nil {
		return nil, err
	}
	if out.Transactions == nil {
		out.Transactions = []models.Transaction{}
	}
	return out.Transactions, nil
}

func (c *Client) LinkToken(ctx context.Context) (string, error) {
	var out struct {
		LinkToken string `json:"link_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/plaid/link-token", nil, &out, "Failed to create link token"); err != nil {
		return "", err
	}
	return out.LinkToken, nil
}

func (c *Client) Exchange(ctx context.Context, publicToken string) error {
	if strings.TrimSpace(publicToken) == "" {
		return errs.NewValidationError("public token is required")
	}
	body := map[string]string{"public_token": publicToken}
	return c.do(ctx, http.MethodPost, "/plaid/exchange-token", body, nil, "Failed to exchange public token")
}

// Institution returns the linked institution, retrying once. It returns a
// NotLinkedError when nothing is linked.
func (c *Client) Institution(ctx context.Context) (models.Institution, error) {
	var out models.Institution
	err := c.withRetry(ctx, "fetch institution", 1, func() error {
		return c.do(ctx, http.MethodGet, "/plaid/institution", nil, &out, "Failed to fetch institution")
	})
	return out, err
}

func (c *Client) Unlink(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/plaid/link", nil, nil, "Failed to unlink account")
}

func (c *Client) withRetry(ctx context.Context, op string, retries int, fn func() error) error {
	log := logger.FromContext(ctx)

	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !retryable(err) || attempt >= retries {
			return err
		}
		log.Warn("request failed, retrying",
			"op", op,
			"attempt", attempt+1,
			"retries", retries,
			"error", err)

		select {
		case <-ctx.Done():
			return err
		case <-c.after(c.retryDelay):
		}
	}
}

// retryable reports whether another attempt could change the outcome.
// Input errors, the not-linked state and non-transient responses never do.
func retryable(err error) bool {
	var ve *errs.ValidationError
	var nl *errs.NotLinkedError
	var ext *errs.ExternalServiceError
	switch {
	case errors.As(err, &ve), errors.As(err, &nl):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.As(err, &ext):
		return ext.Transient
	}
	return true
}

type successEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errs.NewValidationError(fmt.Sprintf("invalid request: %v", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.demoUser != "" {
		req.Header.Set(demoUserHeader, c.demoUser)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errs.NewExternalServiceError(serviceName, fallback, 0, true, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.NewExternalServiceError(serviceName, fallback, resp.StatusCode, true, err)
	}

	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw, fallback)
	}

	if out == nil {
		return nil
	}
	var env successEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errs.NewExternalServiceError(serviceName, fallback, resp.StatusCode, false, err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errs.NewExternalServiceError(serviceName, fallback, resp.StatusCode, false, err)
	}
	return nil
}

func decodeError(status int, raw []byte, fallback string) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	msg := body.Message
	if msg == "" {
		msg = fallback
	}

	switch body.Code {
	case "not_linked":
		return errs.NewNotLinkedError(msg)
	case "invalid_input":
		return errs.NewValidationError(msg)
	}
	// Aggregator failures carry the aggregator's status, e.g. 400
	// PRODUCT_NOT_READY while a new item is still syncing.
	transient := body.Code == "external_error" || status == http.StatusTooManyRequests || status >= 500
	return errs.NewExternalServiceError(serviceName, msg, status, transient, nil)
}
