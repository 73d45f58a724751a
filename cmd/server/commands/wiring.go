package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ayush/realestate-site/internal/auth"
	"github.com/ayush/realestate-site/internal/config"
	"github.com/ayush/realestate-site/internal/logging"
	"github.com/ayush/realestate-site/internal/store"
)

// newLogger builds the process logger and, when enabled, the Fluent Bit sink.
// The returned func flushes and closes the sink.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	opts := logging.Options{
		Writer:  os.Stdout,
		Level:   logging.ParseLevel(cfg.LogLevel),
		Format:  cfg.LogFormat,
		AppName: cfg.AppName,
	}
	closeFn := func() {}

	if cfg.FluentBit.Enabled {
		client, err := logging.NewFluentClient(logging.FluentConfig{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
		})
		if err != nil {
			return nil, nil, err
		}
		opts.Extra = append(opts.Extra, logging.NewFluentHandler(client, logging.ParseLevel(cfg.FluentBit.Level)))
		closeFn = func() { client.Close() }
	}

	logger := logging.New(opts)
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// newSessionStore picks the session backend named in the config.
func newSessionStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.SessionStore, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rdb, err := store.NewRedisClient(ctx, store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return auth.NewRedisStore(rdb, cfg.SessionTTL, cfg.CookieSecure), func() { rdb.Close() }, nil

	default:
		key := []byte(cfg.SessionSecret)
		if len(key) == 0 {
			generated, err := auth.GenerateSecret()
			if err != nil {
				return nil, nil, err
			}
			key = generated
			logger.Warn("SESSION_SECRET is not set; sessions will not survive a restart")
		}
		cs, err := auth.NewCookieStore(key, cfg.SessionTTL, cfg.CookieSecure)
		if err != nil {
			return nil, nil, err
		}
		return cs, func() {}, nil
	}
}

// newImageStore picks the image backend named in the config.
func newImageStore(ctx context.Context, cfg *config.Config) (store.ImageStore, error) {
	switch cfg.ImageBackend {
	case config.ImageBackendMinio:
		ms, err := store.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, fmt.Errorf("minio connect: %w", err)
		}
		return ms, nil
	default:
		return store.NewDiskStore(cfg.UploadDir)
	}
}
