package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
)

type accountRepository interface {
	Upsert(ctx context.Context, id uuid.UUID, identity entity.Identity) (*entity.Account, error)
	RetrieveByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
}

type AccountUseCase struct {
	accountRepo accountRepository
}

func NewAccountUseCase(accountRepo accountRepository) *AccountUseCase {
	return &AccountUseCase{accountRepo: accountRepo}
}

// Login returns the account bound to identity, creating it on first sign in.
func (uc *AccountUseCase) Login(ctx context.Context, identity entity.Identity) (*entity.Account, error) {
	const op = "usecase.AccountUseCase.Login"

	account, err := uc.accountRepo.Upsert(ctx, uuid.New(), identity)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to upsert account: %w", op, err)
	}

	return account, nil
}

func (uc *AccountUseCase) Account(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	const op = "usecase.AccountUseCase.Account"

	account, err := uc.accountRepo.RetrieveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to retrieve account: %w", op, err)
	}

	return account, nil
}
