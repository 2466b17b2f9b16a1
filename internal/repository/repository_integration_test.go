package repository_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/avivlevi/donormap/internal/models"
	"github.com/avivlevi/donormap/internal/repository"
)

// TestRepositoryIntegration runs the persistence layer against a real
// PostgreSQL instance in Docker. Skipped with -short.
func TestRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	const (
		dbUser     = "test"
		dbPassword = "test"
		dbName     = "donormap_test"
	)

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pool, err := repository.NewDatabase(host, port.Port(), dbUser, dbPassword, dbName)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := repository.NewRepository(pool, slog.Default())
	require.NoError(t, repo.EnsureSchema(ctx))
	// Running it twice must be harmless.
	require.NoError(t, repo.EnsureSchema(ctx))

	t.Run("geocache roundtrip", func(t *testing.T) {
		key := "Tel Aviv, Ibn Gabirol, 5, Community Center"
		coords := models.Coordinates{Latitude: 32.0809, Longitude: 34.7806}

		entry, err := repo.GetCachedLocation(ctx, key)
		require.NoError(t, err)
		require.Nil(t, entry)

		require.NoError(t, repo.SaveLocation(ctx, key, coords, false))

		entry, err = repo.GetCachedLocation(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.InEpsilon(t, coords.Latitude, entry.Coords.Latitude, 0.0001)
		assert.InEpsilon(t, coords.Longitude, entry.Coords.Longitude, 0.0001)
		assert.False(t, entry.Exact)

		// The upsert replaces the whole entry in place.
		better := models.Coordinates{Latitude: 32.081, Longitude: 34.781}
		require.NoError(t, repo.SaveLocation(ctx, key, better, true))

		entry, err = repo.GetCachedLocation(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.InEpsilon(t, better.Latitude, entry.Coords.Latitude, 0.0001)
		assert.True(t, entry.Exact)
		assert.NotEmpty(t, entry.UpdatedAt)
	})

	t.Run("donations replace and read", func(t *testing.T) {
		batch := []models.Donation{
			{
				DonationDate: "2026-08-30", City: "Tel Aviv", Street: "Ibn Gabirol",
				NumHouse: "5", Name: "Community Center", FromHour: "09:00", ToHour: "14:00",
				SchedulingURL: "https://example.org/1", Latitude: 32.0809, Longitude: 34.7806,
				Exact: true,
			},
			{
				DonationDate: "2026-08-30", City: "Haifa", Street: "HaNamal",
				NumHouse: "3", Name: "Port Hall", FromHour: "10:00", ToHour: "16:00",
				Latitude: 32.82, Longitude: 34.99,
			},
			{
				DonationDate: "2026-08-31", City: "Haifa", Street: "Herzl",
				NumHouse: "12", Name: "Clinic", FromHour: "08:00", ToHour: "12:00",
			},
		}
		require.NoError(t, repo.ReplaceDonations(ctx, batch))

		donations, err := repo.DonationsByDate(ctx, "2026-08-30")
		require.NoError(t, err)
		require.Len(t, donations, 2)
		assert.Equal(t, "Haifa", donations[0].City)
		assert.Equal(t, "Tel Aviv", donations[1].City)
		assert.True(t, donations[1].Exact)

		cities, err := repo.Cities(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Haifa", "Tel Aviv"}, cities)

		// A new run replaces the previous batch entirely.
		require.NoError(t, repo.ReplaceDonations(ctx, batch[:1]))

		donations, err = repo.DonationsByDate(ctx, "2026-08-31")
		require.NoError(t, err)
		assert.Empty(t, donations)
	})
}
