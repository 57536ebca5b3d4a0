package uorm_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uorm/uorm"
	"github.com/uorm/uorm/config"
	"github.com/uorm/uorm/logger"
	"github.com/uorm/uorm/query"
	"github.com/uorm/uorm/schema"
)

type Order struct {
	ID       int64     `uorm:"column:id;constraint:PRIMARY KEY AUTO_INCREMENT"`
	Customer string    `uorm:"not null"`
	Total    float64
	Quantity uint32
	Paid     bool
	PlacedAt time.Time `uorm:"default:CURRENT_TIMESTAMP"`
	Draft    string    `uorm:"-"`
}

func openSQLite(t *testing.T) (*uorm.Pool, *schema.Registry) {
	t.Helper()
	cfg := config.Config{Driver: "sqlite", DataName: filepath.Join(t.TempDir(), "uorm.db"), PoolSize: 2}
	pool, err := uorm.Open(context.Background(), cfg, uorm.WithLogger(logger.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	reg := schema.NewRegistry()
	_, err = schema.Parse[Order](reg)
	require.NoError(t, err)
	return pool, reg
}

func TestSQLiteRoundTrip(t *testing.T) {
	pool, reg := openSQLite(t)
	ctx := context.Background()
	assert.Equal(t, 2, pool.Stats().Open)

	migrator := uorm.NewMigrator(pool, uorm.WithRegistry(reg))
	require.NoError(t, uorm.CreateTableFor[Order](ctx, migrator))

	orders, err := uorm.NewMapper[Order](pool, uorm.WithRegistry(reg))
	require.NoError(t, err)
	assert.Equal(t, "orders", orders.Table().Name)

	first := Order{Customer: "ada", Total: 9.5, Quantity: 2, Draft: "not stored"}
	require.NoError(t, orders.Save(ctx, &first))
	assert.Equal(t, int64(1), first.ID)

	found, ok, err := orders.FindOne(ctx, "customer = ?", "ada")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, 9.5, found.Total)
	assert.Equal(t, uint32(2), found.Quantity)
	assert.False(t, found.Paid)
	assert.False(t, found.PlacedAt.IsZero(), "database default should be read back")
	assert.Empty(t, found.Draft)

	found.Paid = true
	found.Total = 12
	require.NoError(t, orders.Update(ctx, &found))

	updated, ok, err := orders.SelectOne(ctx, query.New().Eq("id", found.ID))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, updated.Paid)
	assert.Equal(t, 12.0, updated.Total)

	second := Order{Customer: "grace", Total: 3, PlacedAt: time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)}
	require.NoError(t, orders.Save(ctx, &second))
	assert.Equal(t, int64(2), second.ID)

	all, err := orders.Select(ctx, query.New().OrderBy("id", false))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "grace", all[0].Customer)
	assert.True(t, all[0].PlacedAt.Equal(second.PlacedAt), "got %v", all[0].PlacedAt)

	count, err := orders.Count(ctx, query.New().Eq("paid", true))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, orders.Remove(ctx, &first))
	count, err = orders.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, orders.Truncate(ctx))
	count, err = orders.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	missing, err := orders.Find(ctx, "customer = ?", "nobody")
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NoError(t, uorm.DropTableFor[Order](ctx, migrator))
	_, err = orders.FindAll(ctx)
	assert.True(t, uorm.IsSqlError(err), "querying a dropped table should fail, got %v", err)
}

func TestSQLiteTimesStoredInUTC(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("JST", 9*3600)
	t.Cleanup(func() { time.Local = local })

	pool, reg := openSQLite(t)
	ctx := context.Background()
	migrator := uorm.NewMigrator(pool, uorm.WithRegistry(reg))
	require.NoError(t, uorm.CreateTableFor[Order](ctx, migrator))
	orders, err := uorm.NewMapper[Order](pool, uorm.WithRegistry(reg))
	require.NoError(t, err)

	placed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, orders.Save(ctx, &Order{Customer: "ada", PlacedAt: placed}))
	require.NoError(t, orders.Save(ctx, &Order{Customer: "grace"}))

	utc, ok, err := orders.FindOne(ctx, "placed_at = ?", placed.In(time.Local))
	require.NoError(t, err)
	require.True(t, ok, "a zoned time should match its UTC text")
	assert.Equal(t, "ada", utc.Customer)
	assert.True(t, utc.PlacedAt.Equal(placed), "got %v", utc.PlacedAt)

	defaulted, ok, err := orders.FindOne(ctx, "customer = ?", "grace")
	require.NoError(t, err)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), defaulted.PlacedAt, time.Minute)
}

type Badge struct {
	ID    int64  `uorm:"constraint:PRIMARY KEY AUTO_INCREMENT"`
	Label string `uorm:"default:'none'"`
}

func TestSQLiteSaveAllColumnsDefaulted(t *testing.T) {
	pool, _ := openSQLite(t)
	ctx := context.Background()
	reg := schema.NewRegistry()
	_, err := schema.Parse[Badge](reg)
	require.NoError(t, err)

	migrator := uorm.NewMigrator(pool, uorm.WithRegistry(reg))
	require.NoError(t, uorm.CreateTableFor[Badge](ctx, migrator))
	badges, err := uorm.NewMapper[Badge](pool, uorm.WithRegistry(reg))
	require.NoError(t, err)

	var badge Badge
	require.NoError(t, badges.Save(ctx, &badge))
	assert.Equal(t, int64(1), badge.ID)

	found, ok, err := badges.FindOne(ctx, "id = ?", badge.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "none", found.Label)
}

func TestSQLiteNullArgument(t *testing.T) {
	pool, reg := openSQLite(t)
	ctx := context.Background()
	migrator := uorm.NewMigrator(pool, uorm.WithRegistry(reg))
	require.NoError(t, uorm.CreateTableFor[Order](ctx, migrator))
	orders, err := uorm.NewMapper[Order](pool, uorm.WithRegistry(reg))
	require.NoError(t, err)

	require.NoError(t, orders.Save(ctx, &Order{Customer: "ada"}))
	require.NoError(t, orders.Save(ctx, &Order{Customer: "grace"}))

	found, err := orders.Find(ctx, "? IS NULL AND customer = ?", nil, "grace")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "grace", found[0].Customer)
}
