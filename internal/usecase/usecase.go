package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
	"github.com/vadimbarashkov/shortlink-analytics/internal/metrics"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const maxRetries = 5

var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating alias")

var (
	longURLPattern = regexp.MustCompile(`(?i)^https?://`)
	aliasPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// reservedAliases collide with top level routes.
var reservedAliases = map[string]struct{}{
	"api":     {},
	"auth":    {},
	"metrics": {},
	"swagger": {},
	"docs":    {},
}

func isReservedAlias(alias string) bool {
	_, ok := reservedAliases[strings.ToLower(alias)]
	return ok
}

type urlRepository interface {
	Save(ctx context.Context, link *entity.ShortLink) (*entity.ShortLink, bool, error)
	AliasExists(ctx context.Context, alias string) (bool, error)
	RetrieveAndRecordVisit(ctx context.Context, alias string, visit entity.Visit) (*entity.ShortLink, error)
	AppendVisit(ctx context.Context, linkID int64, visit entity.Visit) error
}

type linkCache interface {
	Get(ctx context.Context, alias string) (*entity.ShortLink, error)
	Set(ctx context.Context, link *entity.ShortLink) error
}

type userAgentParser interface {
	Parse(ua string) (osName, deviceKind string)
}

type URLOption func(*URLUseCase)

// WithLinkCache puts cache in front of alias lookups on redirect.
func WithLinkCache(cache linkCache) URLOption {
	return func(uc *URLUseCase) {
		uc.cache = cache
	}
}

func WithLogger(logger *slog.Logger) URLOption {
	return func(uc *URLUseCase) {
		uc.logger = logger
	}
}

type URLUseCase struct {
	shortCodeLength int
	urlRepo         urlRepository
	uaParser        userAgentParser
	cache           linkCache
	logger          *slog.Logger
	now             func() time.Time
}

func NewURLUseCase(shortCodeLength int, urlRepo urlRepository, uaParser userAgentParser, opts ...URLOption) *URLUseCase {
	uc := &URLUseCase{
		shortCodeLength: shortCodeLength,
		urlRepo:         urlRepo,
		uaParser:        uaParser,
		logger:          slog.Default(),
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ShortenURL returns the short link of longURL, creating it when the long URL is new.
// The boolean result reports whether a link was created.
func (uc *URLUseCase) ShortenURL(ctx context.Context, longURL, customAlias, topic string, ownerID *uuid.UUID) (*entity.ShortLink, bool, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	link, created, err := uc.shorten(ctx, longURL, customAlias, topic, ownerID)
	metrics.RecordLink(created, err)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	return link, created, nil
}

func (uc *URLUseCase) shorten(ctx context.Context, longURL, customAlias, topic string, ownerID *uuid.UUID) (*entity.ShortLink, bool, error) {
	if !longURLPattern.MatchString(longURL) {
		return nil, false, entity.ErrInvalidURL
	}

	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = entity.DefaultTopic
	}

	link := &entity.ShortLink{
		LongURL: longURL,
		Topic:   topic,
		OwnerID: ownerID,
	}

	if customAlias != "" {
		return uc.saveCustom(ctx, link, customAlias)
	}

	length := uc.shortCodeLength

	for i := 0; i < maxRetries; i++ {
		alias, err := gonanoid.New(length)
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate alias: %w", err)
		}

		if isReservedAlias(alias) {
			length++
			continue
		}

		link.Alias = alias

		saved, created, err := uc.urlRepo.Save(ctx, link)
		if err != nil {
			if errors.Is(err, entity.ErrAliasExists) {
				length++
				continue
			}

			return nil, false, fmt.Errorf("failed to save link: %w", err)
		}

		return saved, created, nil
	}

	return nil, false, ErrMaxRetriesExceeded
}

func (uc *URLUseCase) saveCustom(ctx context.Context, link *entity.ShortLink, alias string) (*entity.ShortLink, bool, error) {
	if !aliasPattern.MatchString(alias) || isReservedAlias(alias) {
		return nil, false, entity.ErrInvalidAlias
	}

	exists, err := uc.urlRepo.AliasExists(ctx, alias)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check alias: %w", err)
	}
	if exists {
		return nil, false, entity.ErrAliasConflict
	}

	link.Alias = alias

	saved, created, err := uc.urlRepo.Save(ctx, link)
	if err != nil {
		if errors.Is(err, entity.ErrAliasExists) {
			return nil, false, entity.ErrAliasConflict
		}

		return nil, false, fmt.Errorf("failed to save link: %w", err)
	}

	return saved, created, nil
}

// Redirect resolves alias and records a visit described by userAgent.
// Nothing is recorded for unknown aliases.
func (uc *URLUseCase) Redirect(ctx context.Context, alias, userAgent string) (*entity.ShortLink, error) {
	const op = "usecase.URLUseCase.Redirect"

	osName, deviceKind := uc.uaParser.Parse(userAgent)
	visit := entity.NewVisit(uc.now(), osName, deviceKind)

	if link := uc.cachedLink(ctx, alias); link != nil {
		if err := uc.urlRepo.AppendVisit(ctx, link.ID, visit); err != nil {
			metrics.RecordRedirect(metrics.ResultError)
			return nil, fmt.Errorf("%s: failed to record visit: %w", op, err)
		}

		metrics.RecordRedirect(metrics.ResultFound)
		return link, nil
	}

	link, err := uc.urlRepo.RetrieveAndRecordVisit(ctx, alias, visit)
	if err != nil {
		if errors.Is(err, entity.ErrAliasNotFound) {
			metrics.RecordRedirect(metrics.ResultNotFound)
		} else {
			metrics.RecordRedirect(metrics.ResultError)
		}

		return nil, fmt.Errorf("%s: failed to resolve alias: %w", op, err)
	}

	metrics.RecordRedirect(metrics.ResultFound)
	uc.cacheLink(ctx, link)

	return link, nil
}

func (uc *URLUseCase) cachedLink(ctx context.Context, alias string) *entity.ShortLink {
	if uc.cache == nil {
		return nil
	}

	link, err := uc.cache.Get(ctx, alias)
	if err != nil {
		metrics.RecordLinkCache(metrics.ResultError)
		uc.logger.WarnContext(ctx, "failed to read link cache", slog.String("alias", alias), slog.Any("err", err))
		return nil
	}
	if link == nil {
		metrics.RecordLinkCache(metrics.ResultMiss)
		return nil
	}

	metrics.RecordLinkCache(metrics.ResultHit)
	return link
}

func (uc *URLUseCase) cacheLink(ctx context.Context, link *entity.ShortLink) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Set(ctx, link); err != nil {
		uc.logger.WarnContext(ctx, "failed to write link cache", slog.String("alias", link.Alias), slog.Any("err", err))
	}
}
