package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/goserg/ratingengine/internal/config"
	"github.com/goserg/ratingengine/internal/logger"
	"github.com/goserg/ratingengine/internal/service"
	"github.com/goserg/ratingengine/internal/storage"
	"github.com/goserg/ratingengine/internal/storage/file"
	"github.com/goserg/ratingengine/internal/storage/redis"
	"github.com/goserg/ratingengine/internal/storage/sqlite"
	"github.com/goserg/ratingengine/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	var serverConfigPath string
	flag.StringVar(&serverConfigPath, "server-config", "", "path to server configs")
	flag.Parse()

	cfg, err := config.New(serverConfigPath)
	if err != nil {
		return err
	}
	l := logger.New(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := newStorage(ctx, l, cfg.Storage)
	if err != nil {
		return err
	}
	engine := service.New(st, l,
		service.WithRejectBackdated(cfg.Rating.Backdated == config.BackdatedReject),
		service.WithDriftTolerance(cfg.Rating.DriftTolerance),
	)
	defer func() {
		if err := engine.Close(); err != nil {
			l.WithError(err).Error("storage not closed")
		}
	}()
	if err := engine.Load(ctx); err != nil {
		return err
	}

	server := web.New(engine, cfg.Server, l)
	go func() {
		<-ctx.Done()
		l.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			l.WithError(err).Error("server shutdown")
		}
	}()
	l.WithFields(logrus.Fields{
		"host":    cfg.Server.Host,
		"port":    cfg.Server.Port,
		"storage": cfg.Storage.Driver,
	}).Info("server started")
	return server.Serve()
}

func newStorage(ctx context.Context, l *logrus.Logger, cfg config.Storage) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverFile:
		codec, err := file.CodecByName(cfg.File.Encoding)
		if err != nil {
			return nil, err
		}
		return file.New(l, cfg.File.Dir, codec)
	case config.DriverSqlite:
		return sqlite.New(l, cfg.Sqlite.File)
	case config.DriverRedis:
		return redis.New(ctx, l, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	default:
		return nil, errors.New("unknown storage driver " + cfg.Driver)
	}
}
