package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/ktsuchiya/blockmarket-backend/internal/config"
	"github.com/ktsuchiya/blockmarket-backend/internal/db"
	applog "github.com/ktsuchiya/blockmarket-backend/internal/logger"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"github.com/ktsuchiya/blockmarket-backend/internal/rcon"
	"github.com/ktsuchiya/blockmarket-backend/internal/server"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	zlog, err := applog.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	conn, err := db.Connect(cfg)
	if err != nil {
		zlog.Fatalw("db connect failed", "err", err)
	}
	if err := conn.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.ModVersion{},
		&model.Shop{},
		&model.ShopListing{},
		&model.Request{},
		&model.Offer{},
		&model.Negotiation{},
		&model.NegotiationMessage{},
	); err != nil {
		zlog.Fatalw("auto migrate failed", "err", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	// The API stays up without the game console; whispers and code login
	// come back once the server is reachable again.
	console, err := rcon.Dial(cfg.RconAddr, cfg.RconPassword, zlog)
	if err != nil {
		zlog.Warnw("rcon unavailable, starting without console", "err", err)
		console = nil
	}

	srv := server.New(cfg, conn, rdb, console, zlog)
	addr := ":" + cfg.Port
	zlog.Infow("starting server", "addr", addr)
	if err := srv.Start(addr); err != nil {
		zlog.Fatalw("server stopped", "err", err)
	}
}
