//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vadimbarashkov/shortlink-analytics/internal/config"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
	"github.com/vadimbarashkov/shortlink-analytics/pkg/postgres"
)

func setupPostgres(t testing.TB) config.Postgres {
	t.Helper()

	ctx := context.Background()

	pgUser := "test"
	pgPassword := "test"
	pgDB := "url_shortener"

	pgCont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDB,
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgCont.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate postgres container: %v", err)
		}
	})

	pgHost, err := pgCont.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	pgPort, err := pgCont.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return config.Postgres{
		User:           pgUser,
		Password:       pgPassword,
		Host:           pgHost,
		Port:           pgPort.Int(),
		DB:             pgDB,
		SSLMode:        "disable",
		MigrationsPath: "file://../../../../migrations",
	}
}

func setupURLRepository(t testing.TB) (*URLRepository, *sqlx.DB) {
	t.Helper()

	ctx := context.Background()
	cfg := setupPostgres(t)

	if _, err := postgres.RunMigrations(cfg.MigrationsPath, cfg.DSN()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := postgres.New(ctx, cfg.DSN())
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("Failed to close database: %v", err)
		}
	})

	return NewURLRepository(db), db
}

func countVisits(t testing.TB, db *sqlx.DB) int {
	t.Helper()

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM visits`); err != nil {
		t.Fatalf("Failed to count visits: %v", err)
	}

	return count
}

func TestURLRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.SkipNow()
	}

	ctx := context.Background()
	repo, db := setupURLRepository(t)

	t.Cleanup(func() {
		db.MustExec(`TRUNCATE TABLE visits, urls, accounts RESTART IDENTITY CASCADE`)
	})

	t.Run("save and dedupe by long url", func(t *testing.T) {
		link, created, err := repo.Save(ctx, &entity.ShortLink{Alias: "abc", LongURL: "https://example.com", Topic: "general"})

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "abc", link.Alias)
		assert.NotZero(t, link.ID)
		assert.Nil(t, link.OwnerID)

		existing, created, err := repo.Save(ctx, &entity.ShortLink{Alias: "other", LongURL: "https://example.com", Topic: "general"})

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, link.ID, existing.ID)
		assert.Equal(t, "abc", existing.Alias)

		exists, err := repo.AliasExists(ctx, "other")

		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("alias taken by another long url", func(t *testing.T) {
		_, _, err := repo.Save(ctx, &entity.ShortLink{Alias: "abc", LongURL: "https://other.example.com", Topic: "general"})

		assert.ErrorIs(t, err, entity.ErrAliasExists)
	})

	t.Run("record visit on missing alias", func(t *testing.T) {
		before := countVisits(t, db)

		link, err := repo.RetrieveAndRecordVisit(ctx, "missing", entity.NewVisit(time.Now(), "iOS", entity.DeviceMobile))

		assert.ErrorIs(t, err, entity.ErrAliasNotFound)
		assert.Nil(t, link)
		assert.Equal(t, before, countVisits(t, db))
	})

	t.Run("concurrent visits are all recorded", func(t *testing.T) {
		const n = 100

		link, err := repo.RetrieveByAlias(ctx, "abc")
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				visit := entity.NewVisit(time.Now(), "Windows", entity.DeviceDesktop)
				if i%2 == 0 {
					_, err := repo.RetrieveAndRecordVisit(ctx, "abc", visit)
					assert.NoError(t, err)
					return
				}
				assert.NoError(t, repo.AppendVisit(ctx, link.ID, visit))
			}(i)
		}
		wg.Wait()

		visits, err := repo.ListVisits(ctx, []int64{link.ID}, 0)

		require.NoError(t, err)
		assert.Len(t, visits[link.ID], n)

		capped, err := repo.ListVisits(ctx, []int64{link.ID}, 10)

		require.NoError(t, err)
		assert.Len(t, capped[link.ID], 10)
	})

	t.Run("concurrent saves of one long url", func(t *testing.T) {
		const n = 20

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
			ids     = make(map[int64]struct{})
		)

		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				link, ok, err := repo.Save(ctx, &entity.ShortLink{
					Alias:   "race" + string(rune('a'+i)),
					LongURL: "https://example.com/race",
					Topic:   "general",
				})
				if !assert.NoError(t, err) {
					return
				}

				mu.Lock()
				defer mu.Unlock()

				if ok {
					created++
				}
				ids[link.ID] = struct{}{}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Len(t, ids, 1)
	})

	t.Run("list by topic and owner", func(t *testing.T) {
		ownerID := uuid.New()
		_, err := NewAccountRepository(db).Upsert(ctx, ownerID, entity.Identity{Subject: "sub", Email: "a@example.com", Name: "A"})
		require.NoError(t, err)

		_, _, err = repo.Save(ctx, &entity.ShortLink{Alias: "n1", LongURL: "https://news.example.com/1", Topic: "news", OwnerID: &ownerID})
		require.NoError(t, err)
		_, _, err = repo.Save(ctx, &entity.ShortLink{Alias: "n2", LongURL: "https://news.example.com/2", Topic: "news"})
		require.NoError(t, err)

		byTopic, err := repo.ListByTopic(ctx, "news")

		require.NoError(t, err)
		require.Len(t, byTopic, 2)
		assert.Equal(t, "n1", byTopic[0].Alias)
		assert.True(t, byTopic[0].OwnedBy(ownerID))

		byOwner, err := repo.ListByOwner(ctx, ownerID)

		require.NoError(t, err)
		require.Len(t, byOwner, 1)
		assert.Equal(t, "n1", byOwner[0].Alias)
	})
}
