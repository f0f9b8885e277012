package data

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Rehan-Abrar/Cine-Note/internal/conf"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewWatchlistRepo,
	NewReviewRepo,
	NewMetadataClient,
)

// Data encapsulates database and cache connections
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
	ttl time.Duration
	log *log.Helper
}

// NewData creates Data instance with database and Redis connections
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	l := log.NewHelper(logger)

	// TranslateError maps unique violations to gorm.ErrDuplicatedKey
	db, err := gorm.Open(postgres.Open(c.Database.Source), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		l.Errorf("failed to connect to database: %v", err)
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.Errorf("failed to get database instance: %v", err)
		return nil, nil, err
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(4)
	sqlDB.SetMaxOpenConns(16)
	sqlDB.SetConnMaxLifetime(time.Hour)

	l.Info("database connected successfully")

	if c.Database.Migrate {
		if err := migrate(sqlDB, l); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
	}

	data := &Data{
		db:  db,
		rdb: openRedis(c.Redis, l),
		ttl: 15 * time.Minute,
		log: l,
	}
	if c.Redis != nil && c.Redis.TTL != nil {
		data.ttl = c.Redis.TTL.AsDuration()
	}

	cleanup := func() {
		l.Info("closing data resources")
		if data.rdb != nil {
			if err := data.rdb.Close(); err != nil {
				l.Errorf("failed to close redis: %v", err)
			}
		}
		if err := sqlDB.Close(); err != nil {
			l.Errorf("failed to close database: %v", err)
		}
	}

	return data, cleanup, nil
}

// openRedis returns nil when redis is not configured or unreachable.
// Redis is optional; the metadata gateway calls the API directly without it.
func openRedis(c *conf.Redis, l *log.Helper) *redis.Client {
	if c == nil || c.Addr == "" {
		return nil
	}
	opts := &redis.Options{Addr: c.Addr, Password: c.Password}
	if c.ReadTimeout != nil {
		opts.ReadTimeout = c.ReadTimeout.AsDuration()
	}
	if c.WriteTimeout != nil {
		opts.WriteTimeout = c.WriteTimeout.AsDuration()
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		l.Warnf("failed to connect to redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	l.Info("redis connected successfully")
	return rdb
}

// migrate applies the embedded goose migrations.
func migrate(db *sql.DB, l *log.Helper) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		l.Warnf("could not read schema version: %v", err)
		return nil
	}
	l.Infof("schema at version %d", version)
	return nil
}
