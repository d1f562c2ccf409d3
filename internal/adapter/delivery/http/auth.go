package http

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
)

const (
	sessionCookie = "auth_token"
	stateCookie   = "oauthstate"
	stateTTL      = 10 * time.Minute

	loginFailedPath = "/auth/login-failed"
)

var errStateMismatch = errors.New("oauth state mismatch")

type sessionManager interface {
	Issue(accountID uuid.UUID) (string, time.Time, error)
	Verify(token string) (uuid.UUID, error)
}

type identityProvider interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (*entity.Identity, error)
}

type accountUseCase interface {
	Login(ctx context.Context, identity entity.Identity) (*entity.Account, error)
	Account(ctx context.Context, id uuid.UUID) (*entity.Account, error)
}

type accountIDKey struct{}

func withAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDKey{}, id)
}

func accountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(accountIDKey{}).(uuid.UUID)
	return id, ok
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}

	return ""
}

// authenticate resolves the session of the request, if any, into an account ID.
// Requests without a valid session pass through anonymously.
func authenticate(sessions sessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			accountID, err := sessions.Verify(token)
			if err != nil {
				httplog.LogEntrySetField(r.Context(), "session_err", slog.AnyValue(err))
				next.ServeHTTP(w, r)
				return
			}

			httplog.LogEntrySetField(r.Context(), "account_id", slog.StringValue(accountID.String()))
			next.ServeHTTP(w, r.WithContext(withAccountID(r.Context(), accountID)))
		})
	}
}

// requireAccount rejects requests that authenticate did not resolve to an account.
func requireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := accountIDFromContext(r.Context()); !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, unauthorizedResponse)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type authHandler struct {
	useCase       accountUseCase
	sessions      sessionManager
	provider      identityProvider
	secureCookies bool
	successURL    string
}

func newAuthHandler(useCase accountUseCase, sessions sessionManager, provider identityProvider, secureCookies bool, successURL string) *authHandler {
	return &authHandler{
		useCase:       useCase,
		sessions:      sessions,
		provider:      provider,
		secureCookies: secureCookies,
		successURL:    successURL,
	}
}

func (h *authHandler) setCookie(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *authHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		respondServerError(w, r, fmt.Errorf("failed to generate oauth state: %w", err))
		return
	}

	state := base64.RawURLEncoding.EncodeToString(b)
	h.setCookie(w, stateCookie, state, time.Now().Add(stateTTL))

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *authHandler) callback(w http.ResponseWriter, r *http.Request) {
	if err := h.completeLogin(w, r); err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		http.Redirect(w, r, loginFailedPath, http.StatusFound)
		return
	}

	http.Redirect(w, r, h.successURL, http.StatusFound)
}

func (h *authHandler) completeLogin(w http.ResponseWriter, r *http.Request) error {
	state, err := r.Cookie(stateCookie)
	if err != nil {
		return fmt.Errorf("missing oauth state cookie: %w", err)
	}
	h.clearCookie(w, stateCookie)

	q := r.URL.Query()
	if q.Get("state") == "" || q.Get("state") != state.Value {
		return errStateMismatch
	}

	if errParam := q.Get("error"); errParam != "" {
		return fmt.Errorf("identity provider denied login: %s", errParam)
	}

	identity, err := h.provider.Identify(r.Context(), q.Get("code"))
	if err != nil {
		return err
	}

	account, err := h.useCase.Login(r.Context(), *identity)
	if err != nil {
		return err
	}

	token, expiresAt, err := h.sessions.Issue(account.ID)
	if err != nil {
		return err
	}

	h.setCookie(w, sessionCookie, token, expiresAt)
	httplog.LogEntrySetField(r.Context(), "account_id", slog.StringValue(account.ID.String()))

	return nil
}

func (h *authHandler) loginFailed(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, loginFailedResponse)
}

func (h *authHandler) success(w http.ResponseWriter, r *http.Request) {
	accountID, _ := accountIDFromContext(r.Context())

	account, err := h.useCase.Account(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, entity.ErrAccountNotFound) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, unauthorizedResponse)
			return
		}

		respondServerError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toLoginResponse(account))
}

func (h *authHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, sessionCookie)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}
