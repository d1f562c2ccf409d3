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

const urlColumns = `id, alias, long_url, topic, owner_id, created_at`

type urlDB struct {
	ID        int64         `db:"id"`
	Alias     string        `db:"alias"`
	LongURL   string        `db:"long_url"`
	Topic     string        `db:"topic"`
	OwnerID   uuid.NullUUID `db:"owner_id"`
	CreatedAt time.Time     `db:"created_at"`
}

func (u *urlDB) toEntity() *entity.ShortLink {
	link := &entity.ShortLink{
		ID:        u.ID,
		Alias:     u.Alias,
		LongURL:   u.LongURL,
		Topic:     u.Topic,
		CreatedAt: u.CreatedAt,
	}

	if u.OwnerID.Valid {
		ownerID := u.OwnerID.UUID
		link.OwnerID = &ownerID
	}

	return link
}

type visitDB struct {
	URLID      int64     `db:"url_id"`
	VisitedAt  time.Time `db:"visited_at"`
	OSName     string    `db:"os_name"`
	DeviceKind string    `db:"device_kind"`
}

func ownerArg(ownerID *uuid.UUID) uuid.NullUUID {
	if ownerID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *ownerID, Valid: true}
}

// URLRepository stores short links and the visits recorded against them.
type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

// Save inserts link unless a link with the same long URL exists, in which case the
// existing link is returned and created is false.
func (r *URLRepository) Save(ctx context.Context, link *entity.ShortLink) (saved *entity.ShortLink, created bool, err error) {
	const op = "adapter.repository.postgres.URLRepository.Save"
	const insertQuery = `INSERT INTO urls (alias, long_url, topic, owner_id) VALUES ($1, $2, $3, $4)
		ON CONFLICT (long_url) DO NOTHING
		RETURNING ` + urlColumns
	const selectQuery = `SELECT ` + urlColumns + ` FROM urls WHERE long_url = $1`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var url urlDB

	err = tx.GetContext(ctx, &url, insertQuery, link.Alias, link.LongURL, link.Topic, ownerArg(link.OwnerID))
	switch {
	case err == nil:
		created = true
	case errors.Is(err, sql.ErrNoRows):
		if err := tx.GetContext(ctx, &url, selectQuery, link.LongURL); err != nil {
			return nil, false, fmt.Errorf("%s: failed to get existing row from urls table: %w", op, err)
		}
	case isUniqueViolationError(err):
		return nil, false, fmt.Errorf("%s: %w", op, entity.ErrAliasExists)
	default:
		return nil, false, fmt.Errorf("%s: failed to insert into urls table: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return url.toEntity(), created, nil
}

func (r *URLRepository) AliasExists(ctx context.Context, alias string) (bool, error) {
	const op = "adapter.repository.postgres.URLRepository.AliasExists"
	const query = `SELECT EXISTS (SELECT 1 FROM urls WHERE alias = $1)`

	var exists bool

	if err := r.db.GetContext(ctx, &exists, query, alias); err != nil {
		return false, fmt.Errorf("%s: failed to check alias in urls table: %w", op, err)
	}

	return exists, nil
}

func (r *URLRepository) RetrieveByAlias(ctx context.Context, alias string) (*entity.ShortLink, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveByAlias"
	const query = `SELECT ` + urlColumns + ` FROM urls WHERE alias = $1`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, alias); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrAliasNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return url.toEntity(), nil
}

// RetrieveAndRecordVisit resolves alias and appends visit to its history in one statement.
// Nothing is recorded when the alias does not exist.
func (r *URLRepository) RetrieveAndRecordVisit(ctx context.Context, alias string, visit entity.Visit) (*entity.ShortLink, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveAndRecordVisit"
	const query = `WITH link AS (
			SELECT ` + urlColumns + ` FROM urls WHERE alias = $1
		), visit AS (
			INSERT INTO visits (url_id, visited_at, os_name, device_kind)
			SELECT id, $2, $3, $4 FROM link
		)
		SELECT ` + urlColumns + ` FROM link`

	var url urlDB

	err := r.db.GetContext(ctx, &url, query, alias, visit.Timestamp, visit.OSName, visit.DeviceKind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrAliasNotFound)
		}

		return nil, fmt.Errorf("%s: failed to record visit in visits table: %w", op, err)
	}

	return url.toEntity(), nil
}

// AppendVisit records visit for an already resolved link.
func (r *URLRepository) AppendVisit(ctx context.Context, linkID int64, visit entity.Visit) error {
	const op = "adapter.repository.postgres.URLRepository.AppendVisit"
	const query = `INSERT INTO visits (url_id, visited_at, os_name, device_kind) VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, linkID, visit.Timestamp, visit.OSName, visit.DeviceKind); err != nil {
		return fmt.Errorf("%s: failed to insert into visits table: %w", op, err)
	}

	return nil
}

func (r *URLRepository) ListByTopic(ctx context.Context, topic string) ([]entity.ShortLink, error) {
	const op = "adapter.repository.postgres.URLRepository.ListByTopic"
	const query = `SELECT ` + urlColumns + ` FROM urls WHERE topic = $1 ORDER BY id`

	links, err := r.selectLinks(ctx, query, topic)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return links, nil
}

func (r *URLRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.ShortLink, error) {
	const op = "adapter.repository.postgres.URLRepository.ListByOwner"
	const query = `SELECT ` + urlColumns + ` FROM urls WHERE owner_id = $1 ORDER BY id`

	links, err := r.selectLinks(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return links, nil
}

func (r *URLRepository) selectLinks(ctx context.Context, query string, args ...any) ([]entity.ShortLink, error) {
	var urls []urlDB

	if err := r.db.SelectContext(ctx, &urls, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select rows from urls table: %w", err)
	}

	links := make([]entity.ShortLink, 0, len(urls))
	for i := range urls {
		links = append(links, *urls[i].toEntity())
	}

	return links, nil
}

// ListVisits returns the visits of the given links keyed by link ID, oldest first.
// At most limit of the newest visits are loaded; limit <= 0 means no cap.
func (r *URLRepository) ListVisits(ctx context.Context, linkIDs []int64, limit int) (map[int64][]entity.Visit, error) {
	const op = "adapter.repository.postgres.URLRepository.ListVisits"

	visits := make(map[int64][]entity.Visit, len(linkIDs))
	if len(linkIDs) == 0 {
		return visits, nil
	}

	query := `SELECT url_id, visited_at, os_name, device_kind FROM visits WHERE url_id IN (?) ORDER BY id`
	args := []any{linkIDs}

	if limit > 0 {
		query = `SELECT url_id, visited_at, os_name, device_kind FROM (
				SELECT id, url_id, visited_at, os_name, device_kind FROM visits
				WHERE url_id IN (?) ORDER BY id DESC LIMIT ?
			) recent ORDER BY id`
		args = append(args, limit)
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rows []visitDB

	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select rows from visits table: %w", op, err)
	}

	for _, row := range rows {
		visits[row.URLID] = append(visits[row.URLID], entity.NewVisit(row.VisitedAt, row.OSName, row.DeviceKind))
	}

	return visits, nil
}
