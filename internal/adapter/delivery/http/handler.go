package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

// newValidator reports validation errors under the json names of the fields.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

func respondServerError(w http.ResponseWriter, r *http.Request, err error) {
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, serverErrorResponse)
}

type urlUseCase interface {
	ShortenURL(ctx context.Context, longURL, customAlias, topic string, ownerID *uuid.UUID) (*entity.ShortLink, bool, error)
	Redirect(ctx context.Context, alias, userAgent string) (*entity.ShortLink, error)
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	baseURL  string
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate, baseURL string) *urlHandler {
	return &urlHandler{
		useCase:  useCase,
		validate: validate,
		baseURL:  baseURL,
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	var ownerID *uuid.UUID
	if id, ok := accountIDFromContext(r.Context()); ok {
		ownerID = &id
	}

	link, created, err := h.useCase.ShortenURL(r.Context(), req.LongURL, req.CustomAlias, req.Topic, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidURL):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidURLResponse)
		case errors.Is(err, entity.ErrInvalidAlias):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidAliasResponse)
		case errors.Is(err, entity.ErrAliasConflict):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, aliasConflictResponse)
		default:
			respondServerError(w, r, err)
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	render.Status(r, status)
	render.JSON(w, r, toShortenResponse(h.baseURL, link))
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")

	link, err := h.useCase.Redirect(r.Context(), alias, r.UserAgent())
	if err != nil {
		if errors.Is(err, entity.ErrAliasNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, aliasNotFoundResponse)
			return
		}

		respondServerError(w, r, err)
		return
	}

	http.Redirect(w, r, link.LongURL, http.StatusFound)
}
