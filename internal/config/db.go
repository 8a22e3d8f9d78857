package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DBConfig holds database connection parameters
type DBConfig struct {
	DSN string
}

// LoadDBConfig loads database configuration from environment variables
func LoadDBConfig() (*DBConfig, error) {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	if dbHost == "" || dbPort == "" || dbUser == "" || dbName == "" {
		return nil, fmt.Errorf("database environment variables not set (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPassword, dbName, getEnv("DB_SSLMODE", "disable"))

	return &DBConfig{DSN: dsn}, nil
}

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, cfg *DBConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(ctx, cfg.DSN)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				logger.Info("connected to postgres")
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn("failed to connect to database",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", maxRetries),
			slog.String("error", err.Error()),
			slog.Duration("retry_in", retryInterval),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// AutoMigrate creates tables if they don't exist
func AutoMigrate(ctx context.Context, db *pgxpool.Pool) error {
	sql := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		phone_number VARCHAR(11) UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
		is_author BOOLEAN NOT NULL DEFAULT FALSE,
		is_seller BOOLEAN NOT NULL DEFAULT FALSE,
		last_login TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id SERIAL PRIMARY KEY,
		user_id INTEGER UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		kind VARCHAR(10) NOT NULL CHECK (kind IN ('user', 'seller', 'author')) DEFAULT 'user',
		first_name VARCHAR(255),
		last_name VARCHAR(255)
	);

	CREATE TABLE IF NOT EXISTS otp_codes (
		id SERIAL PRIMARY KEY,
		phone_number VARCHAR(11) UNIQUE NOT NULL,
		code_hash TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS teams (
		id BIGSERIAL PRIMARY KEY,
		slug VARCHAR(250) UNIQUE NOT NULL,
		image_key TEXT,
		image_url TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS team_translations (
		team_id BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		language_code VARCHAR(5) NOT NULL,
		name VARCHAR(250) NOT NULL,
		PRIMARY KEY (team_id, language_code),
		UNIQUE (language_code, name)
	);

	CREATE TABLE IF NOT EXISTS players (
		id BIGSERIAL PRIMARY KEY,
		image_key TEXT,
		image_url TEXT,
		number INTEGER NOT NULL CHECK (number BETWEEN 1 AND 99),
		position VARCHAR(20) NOT NULL CHECK (position IN ('DEFENDER', 'MIDFIELDER', 'FORWARD', 'GOALKEEPER')),
		goals INTEGER NOT NULL DEFAULT 0,
		games INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS player_translations (
		player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
		language_code VARCHAR(5) NOT NULL,
		name VARCHAR(250) NOT NULL,
		PRIMARY KEY (player_id, language_code),
		UNIQUE (language_code, name)
	);

	CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		slug VARCHAR(250) UNIQUE NOT NULL,
		image_key TEXT,
		image_url TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS category_translations (
		category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		language_code VARCHAR(5) NOT NULL,
		name VARCHAR(250) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (category_id, language_code)
	);

	CREATE TABLE IF NOT EXISTS articles (
		id BIGSERIAL PRIMARY KEY,
		author_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
		team_id BIGINT REFERENCES teams(id) ON DELETE SET NULL,
		slug VARCHAR(250) UNIQUE NOT NULL,
		status VARCHAR(2) NOT NULL CHECK (status IN ('DR', 'PB')) DEFAULT 'DR',
		type VARCHAR(2) NOT NULL CHECK (type IN ('TX', 'SS', 'VD')) DEFAULT 'TX',
		video_url TEXT,
		scheduled_publish_at TIMESTAMP WITH TIME ZONE,
		scheduled_task_id VARCHAR(255),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS article_translations (
		article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		language_code VARCHAR(5) NOT NULL,
		title VARCHAR(250) NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (article_id, language_code)
	);

	CREATE TABLE IF NOT EXISTS article_images (
		id BIGSERIAL PRIMARY KEY,
		article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		object_key TEXT NOT NULL,
		url TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS article_hits (
		article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		ip INET NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (article_id, ip)
	);

	CREATE TABLE IF NOT EXISTS article_likes (
		article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		ip INET NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (article_id, ip)
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status);
	CREATE INDEX IF NOT EXISTS idx_articles_author_id ON articles(author_id);
	CREATE INDEX IF NOT EXISTS idx_articles_team_id ON articles(team_id);
	CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at);
	CREATE INDEX IF NOT EXISTS idx_article_translations_title ON article_translations(language_code, title);
	CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at);

    -- Function to update updated_at column
    CREATE OR REPLACE FUNCTION update_updated_at_column()
    RETURNS TRIGGER AS $$
    BEGIN
       NEW.updated_at = NOW();
       RETURN NEW;
    END;
    $$ language 'plpgsql';

    DO $$
    BEGIN
        IF NOT EXISTS (
            SELECT 1 FROM pg_trigger
            WHERE tgname = 'set_articles_updated_at' AND tgrelid = 'articles'::regclass
        ) THEN
            CREATE TRIGGER set_articles_updated_at
            BEFORE UPDATE ON articles
            FOR EACH ROW
            EXECUTE FUNCTION update_updated_at_column();
        END IF;
        IF NOT EXISTS (
            SELECT 1 FROM pg_trigger
            WHERE tgname = 'set_users_updated_at' AND tgrelid = 'users'::regclass
        ) THEN
            CREATE TRIGGER set_users_updated_at
            BEFORE UPDATE ON users
            FOR EACH ROW
            EXECUTE FUNCTION update_updated_at_column();
        END IF;
    END
    $$;
	`
	_, err := db.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	return nil
}
