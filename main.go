package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"pocket-ussd/catalog"
	"pocket-ussd/config"
	"pocket-ussd/routes"
	"pocket-ussd/store"
	"pocket-ussd/store/memory"
	"pocket-ussd/store/postgres"
	"pocket-ussd/store/redisstore"
	"pocket-ussd/ussd"
	"pocket-ussd/utils"
)

func main() {
	defer utils.SyncLogger()
	utils.InitializeViper("config", "yml")
	if err := config.InitializeConfig(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}
	fmt.Printf("Hello - %s: %d\n", config.ServiceName, config.App.Port)

	menu, err := catalog.Load(config.App.CatalogFile)
	if err != nil {
		panic(fmt.Sprintf("menu catalog: %v", err))
	}

	if config.App.NeedsPostgres() {
		if config.App.MigrateOnStart {
			if err := config.RunMigrations(); err != nil {
				panic(fmt.Sprintf("migrations failed: %v", err))
			}
		}
		config.ConnectDb()
		defer config.DB.Close()
	}

	sessions, ledger := selectStores()
	server := routes.InitRoutes(ussd.NewResolver(sessions, ledger, menu))

	go func() {
		defer utils.PanicRecover()
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		utils.LogMessage("info", "shutting down", config.ServiceName)
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			utils.LogMessage("error", fmt.Sprintf("shutdown: %v", err), config.ServiceName)
		}
	}()

	port := viper.GetInt("port")
	if err := server.Listen(fmt.Sprintf("0.0.0.0:%d", port)); err != nil {
		panic(fmt.Sprintf("server listen failed: %v", err))
	}
}

func selectStores() (store.SessionStore, store.LedgerStore) {
	var mem *memory.Store
	inMemory := func() *memory.Store {
		if mem == nil {
			mem = memory.New()
		}
		return mem
	}

	var sessions store.SessionStore
	switch config.App.SessionStore {
	case "postgres":
		sessions = postgres.New(config.DB)
	case "redis":
		if err := config.Redis.Ping(context.Background()).Err(); err != nil {
			panic(fmt.Sprintf("redis not available: %v", err))
		}
		sessions = redisstore.NewSessionStore(config.Redis, config.App.SessionTTL)
	default:
		sessions = inMemory()
	}

	var ledger store.LedgerStore
	switch config.App.LedgerStore {
	case "postgres":
		ledger = postgres.New(config.DB)
	default:
		ledger = inMemory()
	}
	utils.LogMessage("info", fmt.Sprintf("stores: session=%s ledger=%s", config.App.SessionStore, config.App.LedgerStore), config.ServiceName)
	return sessions, ledger
}
