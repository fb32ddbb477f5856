package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/onlinexam-backend/internal/config"
	"github.com/stemsi/onlinexam-backend/internal/database"
)

// Open builds the backend named by cfg.HistoryBackend. The returned cleanup
// releases resources the backend opened itself; shared pools are left alone.
func Open(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) (Backend, func(), error) {
	noop := func() {}

	switch cfg.HistoryBackend {
	case config.HistoryPostgres:
		return NewPostgresBackend(pool), noop, nil
	case config.HistoryRedis:
		return NewRedisBackend(rdb), noop, nil
	case config.HistoryMemory:
		log.Warn().Msg("Attempt history is kept in memory and lost on restart")
		return NewMemoryBackend(), noop, nil
	case config.HistorySQLite:
		db, err := database.NewSQLite(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, noop, err
		}
		b, err := NewSQLiteBackend(ctx, db)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		return b, func() { db.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown history backend %q", cfg.HistoryBackend)
	}
}
