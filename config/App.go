package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"

	"pocket-ussd/utils"
)

var Redis *redis.Client
var App AppConfig
var ServiceName string = "ussd-service"

var (
	sessionDrivers = []string{"postgres", "redis", "memory"}
	ledgerDrivers  = []string{"postgres", "memory"}
)

type AppConfig struct {
	Mode           string
	Port           int
	SessionStore   string
	LedgerStore    string
	SessionTTL     time.Duration
	CatalogFile    string
	MigrateOnStart bool
}

// NeedsPostgres reports whether any configured store lives in Postgres.
func (a AppConfig) NeedsPostgres() bool {
	return a.SessionStore == "postgres" || a.LedgerStore == "postgres"
}

func InitializeConfig() error {
	viper.SetDefault("port", 9000)
	viper.SetDefault("session_store", "postgres")
	viper.SetDefault("ledger_store", "postgres")
	viper.SetDefault("session_ttl_minutes", 5)
	viper.SetDefault("migrate_on_start", true)

	App = AppConfig{
		Mode:           viper.GetString("mode"),
		Port:           viper.GetInt("port"),
		SessionStore:   strings.ToLower(viper.GetString("session_store")),
		LedgerStore:    strings.ToLower(viper.GetString("ledger_store")),
		SessionTTL:     time.Duration(viper.GetInt("session_ttl_minutes")) * time.Minute,
		CatalogFile:    viper.GetString("catalog_file"),
		MigrateOnStart: viper.GetBool("migrate_on_start"),
	}
	if !utils.ContainsString(sessionDrivers, App.SessionStore) {
		return fmt.Errorf("session_store %q is not one of %v", App.SessionStore, sessionDrivers)
	}
	if !utils.ContainsString(ledgerDrivers, App.LedgerStore) {
		return fmt.Errorf("ledger_store %q is not one of %v", App.LedgerStore, ledgerDrivers)
	}
	if App.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl_minutes must be > 0")
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", viper.GetString("redis.host"), viper.GetString("redis.port")),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.database"),
	})
	return nil
}
