package v1

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/config"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/store"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseType represents the type of database to use
type DatabaseType string

const (
	DatabaseTypePostgres DatabaseType = "postgres"
	DatabaseTypeSQLite   DatabaseType = "sqlite"
	DatabaseTypeMongo    DatabaseType = "mongo"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Type DatabaseType

	// PostgreSQL
	Host     string
	Port     string
	Username string
	Password string
	Database string
	SSLMode  string

	// SQLite
	DatabasePath string

	// MongoDB
	MongoURI      string
	MongoDatabase string

	RunMigration    bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// NewDatabaseConfig creates a new database configuration from environment variables
func NewDatabaseConfig() *DatabaseConfig {
	dbType := DatabaseType(strings.ToLower(config.GetEnvOrDefault("DB_TYPE", string(DatabaseTypePostgres))))
	switch dbType {
	case DatabaseTypePostgres, DatabaseTypeSQLite, DatabaseTypeMongo:
	case "postgresql":
		dbType = DatabaseTypePostgres
	case "mongodb":
		dbType = DatabaseTypeMongo
	default:
		slog.Warn("Unknown DB_TYPE, defaulting to postgres", "db_type", dbType)
		dbType = DatabaseTypePostgres
	}

	cfg := &DatabaseConfig{
		Type:            dbType,
		Host:            config.GetEnvOrDefault("DB_HOST", "localhost"),
		Port:            config.GetEnvOrDefault("DB_PORT", "5432"),
		Username:        config.GetEnvOrDefault("DB_USERNAME", "postgres"),
		Password:        config.GetEnvOrDefault("DB_PASSWORD", ""),
		Database:        config.GetEnvOrDefault("DB_NAME", "cpt_healthcare"),
		SSLMode:         config.GetEnvOrDefault("DB_SSLMODE", "disable"),
		DatabasePath:    config.GetEnvOrDefault("DB_PATH", "./data/cpt-healthcare.db"),
		MongoURI:        config.GetEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:   config.GetEnvOrDefault("MONGODB_DATABASE", "cpt-healthcare"),
		RunMigration:    config.ParseBoolOrDefault("RUN_MIGRATION", false),
		MaxOpenConns:    config.ParseIntOrDefault("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    config.ParseIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: config.ParseDurationOrDefault("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime: config.ParseDurationOrDefault("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
	}

	if dbType == DatabaseTypeSQLite {
		// Writes are serialized through a single connection
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.RunMigration = true
	}
	return cfg
}

// PostgresDSN builds the connection URL, escaping credentials
func (c *DatabaseConfig) PostgresDSN() string {
	dsnURL := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Database,
	}
	q := dsnURL.Query()
	q.Set("sslmode", c.SSLMode)
	dsnURL.RawQuery = q.Encode()
	return dsnURL.String()
}

// OpenRepository connects to the configured database and returns the store behind it
// along with a function that releases the connection.
func OpenRepository(ctx context.Context, cfg *DatabaseConfig) (store.Repository, func() error, error) {
	if cfg.Type == DatabaseTypeMongo {
		client, err := ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		repo := store.NewMongoRepository(client, cfg.MongoDatabase)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return repo, func() error { return client.Disconnect(context.Background()) }, nil
	}

	db, err := ConnectGormDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return store.NewGormRepository(db), sqlDB.Close, nil
}

// ConnectGormDB establishes a GORM connection to PostgreSQL or SQLite
func ConnectGormDB(cfg *DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.Type == DatabaseTypeSQLite {
		if cfg.DatabasePath != ":memory:" {
			dir := filepath.Dir(cfg.DatabasePath)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				slog.Warn("Failed to create database directory", "path", dir, "error", err)
			}
		}
		dialector = sqlite.Open(cfg.DatabasePath)
	} else {
		dialector = postgres.Open(cfg.PostgresDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return configureGormDB(db, cfg)
}

func configureGormDB(db *gorm.DB, cfg *DatabaseConfig) (*gorm.DB, error) {
	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Successfully connected to database with GORM",
		"type", cfg.Type,
		"host", cfg.Host,
		"database", cfg.Database)

	if cfg.RunMigration {
		slog.Info("Running GORM auto-migration")
		if err := store.NewGormRepository(db).AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run auto-migration: %w", err)
		}
		slog.Info("GORM auto-migration completed successfully")
	} else {
		slog.Info("Database connected (migration skipped)")
	}

	return db, nil
}

// ConnectMongo establishes a MongoDB client and verifies it with a ping
func ConnectMongo(ctx context.Context, cfg *DatabaseConfig) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(uint64(cfg.MaxOpenConns)))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	slog.Info("Successfully connected to MongoDB", "database", cfg.MongoDatabase)
	return client, nil
}
