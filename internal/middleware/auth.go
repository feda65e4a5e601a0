package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/transaction-tracker/pkg/logger"
)

// DemoUserHeader lets a local client pick its uid when auth is disabled.
const DemoUserHeader = "X-Demo-User"

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type Middleware struct {
	AuthClient tokenVerifier
	DemoUID    string
}

func NewMiddleware(client tokenVerifier) *Middleware {
	return &Middleware{AuthClient: client}
}

// NewDevMiddleware skips token verification and assigns every request the
// demo uid, or the uid named in the X-Demo-User header.
func NewDevMiddleware(demoUID string) *Middleware {
	return &Middleware{DemoUID: demoUID}
}

// context key
type contextKey string

const UIDKey contextKey = "uid"

// Auth picks Firebase verification or the dev identity depending on how
// the middleware was built.
func (m *Middleware) Auth(next http.Handler) http.Handler {
	if m.AuthClient == nil {
		return m.DevAuth(next)
	}
	return m.FirebaseAuth(next)
}

// Main middleware
func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "invalid Authorization header", http.StatusUnauthorized)
			return
		}

		tokenStr := parts[1]

		// Verify ID Token
		token, err := m.AuthClient.VerifyIDToken(r.Context(), tokenStr)
		if err != nil {
			logger.FromContext(r.Context()).Warn("token verification failed", "error", err)
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUID(r.Context(), token.UID)))
	})
}

func (m *Middleware) DevAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(DemoUserHeader))
		if uid == "" {
			uid = m.DemoUID
		}
		next.ServeHTTP(w, r.WithContext(withUID(r.Context(), uid)))
	})
}

// withUID stores the uid and tags the request logger with it.
func withUID(ctx context.Context, uid string) context.Context {
	ctx = context.WithValue(ctx, UIDKey, uid)
	_, ctx = logger.With(ctx, "uid", uid)
	return ctx
}

// Helper to extract UID
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}
