package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	userauth "github.com/auric-labs/go-userauth"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := userauth.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	repo := userauth.NewRepositoryManager(db)
	if err := repo.CreateTables(ctx); err != nil {
		return err
	}

	auther := userauth.NewAuthenticator(repo.Users(), cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: userauth.ErrorHandler(nil),
	})

	controller := userauth.NewHTTPController(repo, auther, cfg)
	controller.RegisterRoutes(app)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("shutting down")
		return app.Shutdown()
	}
}
