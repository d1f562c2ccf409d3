package http

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shortlink-analytics/internal/analytics"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
)

type MockURLUseCase struct {
	mock.Mock
}

func (m *MockURLUseCase) ShortenURL(ctx context.Context, longURL, customAlias, topic string, ownerID *uuid.UUID) (*entity.ShortLink, bool, error) {
	args := m.Called(ctx, longURL, customAlias, topic, ownerID)
	link, _ := args.Get(0).(*entity.ShortLink)
	return link, args.Bool(1), args.Error(2)
}

func (m *MockURLUseCase) Redirect(ctx context.Context, alias, userAgent string) (*entity.ShortLink, error) {
	args := m.Called(ctx, alias, userAgent)
	link, _ := args.Get(0).(*entity.ShortLink)
	return link, args.Error(1)
}

type MockAnalyticsUseCase struct {
	mock.Mock
}

func (m *MockAnalyticsUseCase) AliasAnalytics(ctx context.Context, accountID uuid.UUID, alias string) (*analytics.AliasReport, error) {
	args := m.Called(ctx, accountID, alias)
	report, _ := args.Get(0).(*analytics.AliasReport)
	return report, args.Error(1)
}

func (m *MockAnalyticsUseCase) TopicAnalytics(ctx context.Context, topic string) (*analytics.TopicReport, error) {
	args := m.Called(ctx, topic)
	report, _ := args.Get(0).(*analytics.TopicReport)
	return report, args.Error(1)
}

func (m *MockAnalyticsUseCase) OverallAnalytics(ctx context.Context, accountID uuid.UUID) (*analytics.AccountReport, error) {
	args := m.Called(ctx, accountID)
	report, _ := args.Get(0).(*analytics.AccountReport)
	return report, args.Error(1)
}

type MockAccountUseCase struct {
	mock.Mock
}

func (m *MockAccountUseCase) Login(ctx context.Context, identity entity.Identity) (*entity.Account, error) {
	args := m.Called(ctx, identity)
	account, _ := args.Get(0).(*entity.Account)
	return account, args.Error(1)
}

func (m *MockAccountUseCase) Account(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	args := m.Called(ctx, id)
	account, _ := args.Get(0).(*entity.Account)
	return account, args.Error(1)
}

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockIdentityProvider) Identify(ctx context.Context, code string) (*entity.Identity, error) {
	args := m.Called(ctx, code)
	identity, _ := args.Get(0).(*entity.Identity)
	return identity, args.Error(1)
}
