package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jimiolaniyan/jwtauth/auth"
	"github.com/jimiolaniyan/jwtauth/config"
	"github.com/jimiolaniyan/jwtauth/logging"
)

func main() {
	configPath := pflag.String("config", "", "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Log.Format, cfg.Log.Level).With("env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server stopped", "err", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	accounts, closeStore, err := openRepository(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens := auth.NewTokenService([]byte(cfg.Auth.SigningKey), cfg.Auth.AccessTokenTTL, cfg.Auth.Issuer)
	svc := auth.NewService(accounts, tokens, auth.LogEvents{Logger: logger},
		auth.WithHashCost(cfg.Auth.PasswordHashCost),
		auth.WithPasswordPolicy(auth.DefaultPasswordPolicy(cfg.Auth.PasswordMinLength)),
	)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      auth.NewRouter(svc, logger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server started", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	logger.Info(shutdownCtx, "shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func openRepository(ctx context.Context, cfg config.StorageConfig) (auth.Repository, func(), error) {
	switch cfg.Driver {
	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() { _ = client.Disconnect(context.Background()) }
		if err = client.Ping(connectCtx, nil); err != nil {
			disconnect()
			return nil, nil, err
		}

		c := client.Database(cfg.MongoDatabase).Collection("accounts")
		repo, err := auth.NewMongoAccountRepository(connectCtx, c)
		if err != nil {
			disconnect()
			return nil, nil, err
		}
		return repo, disconnect, nil

	case config.DriverPostgres:
		pool, err := auth.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := auth.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return auth.NewPostgresAccountRepository(pool), pool.Close, nil

	default:
		return auth.NewAccountRepository(), func() {}, nil
	}
}
