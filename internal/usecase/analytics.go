package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/shortlink-analytics/internal/analytics"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
	"github.com/vadimbarashkov/shortlink-analytics/internal/metrics"
)

type linkRepository interface {
	RetrieveByAlias(ctx context.Context, alias string) (*entity.ShortLink, error)
	ListByTopic(ctx context.Context, topic string) ([]entity.ShortLink, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.ShortLink, error)
	ListVisits(ctx context.Context, linkIDs []int64, limit int) (map[int64][]entity.Visit, error)
}

type accountFinder interface {
	RetrieveByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
}

// AnalyticsUseCase loads links and their visits and folds them into reports.
type AnalyticsUseCase struct {
	aggregator  *analytics.Aggregator
	maxVisits   int
	linkRepo    linkRepository
	accountRepo accountFinder
	now         func() time.Time
}

func NewAnalyticsUseCase(aggregator *analytics.Aggregator, maxVisits int, linkRepo linkRepository, accountRepo accountFinder) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		aggregator:  aggregator,
		maxVisits:   maxVisits,
		linkRepo:    linkRepo,
		accountRepo: accountRepo,
		now:         time.Now,
	}
}

// AliasAnalytics reports on a single link. Links with an owner are only visible to that owner.
func (uc *AnalyticsUseCase) AliasAnalytics(ctx context.Context, accountID uuid.UUID, alias string) (*analytics.AliasReport, error) {
	const op = "usecase.AnalyticsUseCase.AliasAnalytics"
	defer uc.observe("alias", time.Now())

	if accountID == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrUnauthorized)
	}

	link, err := uc.linkRepo.RetrieveByAlias(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to retrieve link: %w", op, err)
	}

	if link.OwnerID != nil && !link.OwnedBy(accountID) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrForbidden)
	}

	visits, err := uc.linkRepo.ListVisits(ctx, []int64{link.ID}, uc.maxVisits)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list visits: %w", op, err)
	}

	report := uc.aggregator.ByAlias(link, visits[link.ID], uc.now())
	return &report, nil
}

// TopicAnalytics reports on every link of topic regardless of owner.
func (uc *AnalyticsUseCase) TopicAnalytics(ctx context.Context, topic string) (*analytics.TopicReport, error) {
	const op = "usecase.AnalyticsUseCase.TopicAnalytics"
	defer uc.observe("topic", time.Now())

	links, err := uc.linkRepo.ListByTopic(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	if len(links) == 0 {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrTopicNotFound)
	}

	visits, err := uc.linkRepo.ListVisits(ctx, linkIDs(links), uc.maxVisits)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list visits: %w", op, err)
	}

	report := uc.aggregator.ByTopic(topic, links, visits)
	return &report, nil
}

// OverallAnalytics reports on every link owned by the account.
func (uc *AnalyticsUseCase) OverallAnalytics(ctx context.Context, accountID uuid.UUID) (*analytics.AccountReport, error) {
	const op = "usecase.AnalyticsUseCase.OverallAnalytics"
	defer uc.observe("account", time.Now())

	if accountID == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrUnauthorized)
	}

	if _, err := uc.accountRepo.RetrieveByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("%s: failed to retrieve account: %w", op, err)
	}

	links, err := uc.linkRepo.ListByOwner(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	visits, err := uc.linkRepo.ListVisits(ctx, linkIDs(links), uc.maxVisits)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list visits: %w", op, err)
	}

	report := uc.aggregator.ByAccount(links, visits)
	return &report, nil
}

func (uc *AnalyticsUseCase) observe(scope string, start time.Time) {
	metrics.RecordAnalytics(scope, time.Since(start))
}

func linkIDs(links []entity.ShortLink) []int64 {
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.ID)
	}

	return ids
}
