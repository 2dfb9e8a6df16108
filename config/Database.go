package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
	"github.com/spf13/viper"

	"pocket-ussd/migrations"
	"pocket-ussd/utils"
)

var DB *pgxpool.Pool

func databaseUrl() string {
	user := viper.GetString("postgres_db.user")
	password := viper.GetString("postgres_db.password")
	host := viper.GetString("postgres_db.cluster")
	port := viper.GetInt("postgres_db.port")
	dbname := viper.GetString("postgres_db.keyspace")
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", user, password, host, port, dbname)
}

func ConnectDb() {
	dbConfig, err := pgxpool.ParseConfig(databaseUrl())
	if err != nil {
		log.Fatalf("Failed to create pgxpool config: %v", err)
	}
	maxConns := viper.GetInt32("postgres_db.max_conns")
	if maxConns <= 0 {
		maxConns = 20
	}
	dbConfig.MaxConns = maxConns
	dbConfig.MinConns = 0
	dbConfig.MaxConnLifetime = time.Hour
	dbConfig.MaxConnIdleTime = 30 * time.Minute
	dbConfig.HealthCheckPeriod = time.Minute
	dbConfig.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Error while creating pgxpool connection: %v", err)
	}
	// pgxpool dials lazily
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("Error while connecting to the database: %v", err)
	}

	DB = pool

	log.Println("Database connected and ready for application use!")
}

// RunMigrations applies the embedded schema migrations over database/sql.
func RunMigrations() error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseUrl())
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	fromVer, _, _ := m.Version()
	start := time.Now()
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			utils.LogMessage("info", fmt.Sprintf("migrations: schema at version %d, nothing to apply", fromVer), ServiceName)
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	toVer, _, _ := m.Version()
	utils.LogMessage("info", fmt.Sprintf("migrations: %d -> %d in %s", fromVer, toVer, time.Since(start).Round(time.Millisecond)), ServiceName)
	return nil
}
