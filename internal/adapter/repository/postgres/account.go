package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
)

const accountColumns = `id, google_id, email, name, created_at`

type accountDB struct {
	ID        uuid.UUID `db:"id"`
	GoogleID  string    `db:"google_id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func (a *accountDB) toEntity() *entity.Account {
	return &entity.Account{
		ID:          a.ID,
		GoogleID:    a.GoogleID,
		Email:       a.Email,
		DisplayName: a.Name,
		CreatedAt:   a.CreatedAt,
	}
}

// AccountRepository stores accounts signed in through the identity provider.
type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Upsert creates the account of identity under id, or refreshes the profile of the
// account already bound to the same provider subject and returns it unchanged otherwise.
func (r *AccountRepository) Upsert(ctx context.Context, id uuid.UUID, identity entity.Identity) (*entity.Account, error) {
	const op = "adapter.repository.postgres.AccountRepository.Upsert"
	const query = `INSERT INTO accounts (id, google_id, email, name) VALUES ($1, $2, $3, $4)
		ON CONFLICT (google_id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name, updated_at = NOW()
		RETURNING ` + accountColumns

	var account accountDB

	if err := r.db.GetContext(ctx, &account, query, id, identity.Subject, identity.Email, identity.Name); err != nil {
		return nil, fmt.Errorf("%s: failed to upsert into accounts table: %w", op, err)
	}

	return account.toEntity(), nil
}

func (r *AccountRepository) RetrieveByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	const op = "adapter.repository.postgres.AccountRepository.RetrieveByID"
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	var account accountDB

	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrAccountNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from accounts table: %w", op, err)
	}

	return account.toEntity(), nil
}
