package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
)

type MockURLRepository struct {
	mock.Mock
}

func (r *MockURLRepository) Save(ctx context.Context, link *entity.ShortLink) (*entity.ShortLink, bool, error) {
	args := r.Called(ctx, link)
	saved, _ := args.Get(0).(*entity.ShortLink)
	return saved, args.Bool(1), args.Error(2)
}

func (r *MockURLRepository) AliasExists(ctx context.Context, alias string) (bool, error) {
	args := r.Called(ctx, alias)
	return args.Bool(0), args.Error(1)
}

func (r *MockURLRepository) RetrieveByAlias(ctx context.Context, alias string) (*entity.ShortLink, error) {
	args := r.Called(ctx, alias)
	link, _ := args.Get(0).(*entity.ShortLink)
	return link, args.Error(1)
}

func (r *MockURLRepository) RetrieveAndRecordVisit(ctx context.Context, alias string, visit entity.Visit) (*entity.ShortLink, error) {
	args := r.Called(ctx, alias, visit)
	link, _ := args.Get(0).(*entity.ShortLink)
	return link, args.Error(1)
}

func (r *MockURLRepository) AppendVisit(ctx context.Context, linkID int64, visit entity.Visit) error {
	args := r.Called(ctx, linkID, visit)
	return args.Error(0)
}

func (r *MockURLRepository) ListByTopic(ctx context.Context, topic string) ([]entity.ShortLink, error) {
	args := r.Called(ctx, topic)
	links, _ := args.Get(0).([]entity.ShortLink)
	return links, args.Error(1)
}

func (r *MockURLRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.ShortLink, error) {
	args := r.Called(ctx, ownerID)
	links, _ := args.Get(0).([]entity.ShortLink)
	return links, args.Error(1)
}

func (r *MockURLRepository) ListVisits(ctx context.Context, linkIDs []int64, limit int) (map[int64][]entity.Visit, error) {
	args := r.Called(ctx, linkIDs, limit)
	visits, _ := args.Get(0).(map[int64][]entity.Visit)
	return visits, args.Error(1)
}

type MockAccountRepository struct {
	mock.Mock
}

func (r *MockAccountRepository) Upsert(ctx context.Context, id uuid.UUID, identity entity.Identity) (*entity.Account, error) {
	args := r.Called(ctx, id, identity)
	account, _ := args.Get(0).(*entity.Account)
	return account, args.Error(1)
}

func (r *MockAccountRepository) RetrieveByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	args := r.Called(ctx, id)
	account, _ := args.Get(0).(*entity.Account)
	return account, args.Error(1)
}

type MockLinkCache struct {
	mock.Mock
}

func (c *MockLinkCache) Get(ctx context.Context, alias string) (*entity.ShortLink, error) {
	args := c.Called(ctx, alias)
	link, _ := args.Get(0).(*entity.ShortLink)
	return link, args.Error(1)
}

func (c *MockLinkCache) Set(ctx context.Context, link *entity.ShortLink) error {
	args := c.Called(ctx, link)
	return args.Error(0)
}

type MockUserAgentParser struct {
	mock.Mock
}

func (p *MockUserAgentParser) Parse(ua string) (string, string) {
	args := p.Called(ua)
	return args.String(0), args.String(1)
}
