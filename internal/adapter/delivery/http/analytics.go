package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/vadimbarashkov/shortlink-analytics/internal/analytics"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
)

type analyticsUseCase interface {
	AliasAnalytics(ctx context.Context, accountID uuid.UUID, alias string) (*analytics.AliasReport, error)
	TopicAnalytics(ctx context.Context, topic string) (*analytics.TopicReport, error)
	OverallAnalytics(ctx context.Context, accountID uuid.UUID) (*analytics.AccountReport, error)
}

// analyticsHandler serves the analytics routes. They sit behind requireAccount,
// so the account ID is always present in the request context.
type analyticsHandler struct {
	useCase analyticsUseCase
	baseURL string
}

func newAnalyticsHandler(useCase analyticsUseCase, baseURL string) *analyticsHandler {
	return &analyticsHandler{
		useCase: useCase,
		baseURL: baseURL,
	}
}

func (h *analyticsHandler) aliasAnalytics(w http.ResponseWriter, r *http.Request) {
	accountID, _ := accountIDFromContext(r.Context())
	alias := chi.URLParam(r, "alias")

	report, err := h.useCase.AliasAnalytics(r.Context(), accountID, alias)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrUnauthorized):
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, unauthorizedResponse)
		case errors.Is(err, entity.ErrAliasNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, aliasNotFoundResponse)
		case errors.Is(err, entity.ErrForbidden):
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, forbiddenResponse)
		default:
			respondServerError(w, r, err)
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toAliasAnalyticsResponse(report))
}

func (h *analyticsHandler) topicAnalytics(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")

	report, err := h.useCase.TopicAnalytics(r.Context(), topic)
	if err != nil {
		if errors.Is(err, entity.ErrTopicNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, topicNotFoundResponse)
			return
		}

		respondServerError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toTopicAnalyticsResponse(h.baseURL, report))
}

func (h *analyticsHandler) overallAnalytics(w http.ResponseWriter, r *http.Request) {
	accountID, _ := accountIDFromContext(r.Context())

	report, err := h.useCase.OverallAnalytics(r.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrUnauthorized):
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, unauthorizedResponse)
		case errors.Is(err, entity.ErrAccountNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, accountNotFoundResponse)
		default:
			respondServerError(w, r, err)
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toOverallAnalyticsResponse(report))
}
