package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/najdeno/internal/api"
	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/service"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/upload"
)

func main() {
	fs := flag.NewFlagSet("najdeno", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var logLevel string
	fs.StringVar(&logLevel, "log-level", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: najdeno [flags]

Flags:
  -c, -config <path>      YAML config file (default: ./config.yaml if present)
  -d, -db <path>          SQLite database path (overrides database.path)
  -a, -addr <host:port>   listen address (overrides server.addr)
      -log-level <level>  debug, info, warn or error (overrides logging.level)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Every setting can also be given as a NAJDENO_* environment variable,
for example NAJDENO_DATABASE_DRIVER=mongo or NAJDENO_AUTH_JWT_SECRET.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := setupLogger(cfg.Logging, logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server failed")
		if closeLog != nil {
			closeLog()
		}
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx := context.Background()

	st, jwtSecret, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Warn().Err(err).Msg("failed to close store")
		}
	}()

	uploader, uploadsHandler, err := openUploader(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info().Str("backend", cfg.Uploads.Backend).Msg("upload storage ready")

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	authSvc := service.NewAuthService(st, jwtSecret, m, logger)
	itemSvc := service.NewItemService(st, uploader, cfg.Uploads.MaxSize, m, logger)
	commentSvc := service.NewCommentService(st, m, logger)
	healthSvc := service.NewHealthService(st, logger)

	if cfg.Auth.AdminEmail != "" {
		password, err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail)
		switch {
		case err != nil:
			logger.Error().Err(err).Msg("failed to create admin account")
		case password != "":
			printAdminCredentials(cfg.Auth.AdminEmail, password)
		}
	}

	opts := api.Options{
		Auth:          authSvc,
		Items:         itemSvc,
		Comments:      commentSvc,
		Health:        healthSvc,
		Metrics:       m,
		MaxUploadSize: cfg.Uploads.MaxSize,
		Logger:        logger,
	}
	if uploadsHandler != nil {
		opts.Uploads = uploadsHandler
		opts.UploadsPath = cfg.Uploads.PublicPath
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("server forced to shutdown")
		}
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("server started")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}

	logger.Info().Msg("server stopped, closing store")
	return nil
}

// openStore opens the configured backend and resolves the token signing
// secret. An unreachable MongoDB is logged and the server keeps running.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.Store, string, error) {
	switch cfg.Database.Driver {
	case "mongo":
		st, err := store.ConnectMongo(ctx, cfg.Database.MongoURI, cfg.Database.MongoDatabase, cfg.Database.ConnectTimeout)
		if err != nil {
			return nil, "", err
		}

		initCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		defer cancel()
		if err := st.EnsureIndexes(initCtx); err != nil {
			logger.Error().Err(err).Msg("mongodb unavailable, continuing without it")
		} else {
			logger.Info().Str("database", cfg.Database.MongoDatabase).Msg("mongodb connected")
		}
		return st, cfg.Auth.JWTSecret, nil

	default:
		if dir := filepath.Dir(cfg.Database.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, "", fmt.Errorf("creating database dir: %w", err)
			}
		}

		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			return nil, "", fmt.Errorf("opening database: %w", err)
		}

		// Ensure schema exists (idempotent).
		if err := db.EnsureSchema(database); err != nil {
			database.Close()
			return nil, "", fmt.Errorf("ensuring database schema: %w", err)
		}
		logger.Info().Str("path", cfg.Database.Path).Msg("database ready")

		st := store.NewSQLStore(database)
		secret := cfg.Auth.JWTSecret
		if secret == "" {
			// Generated on first run and kept in the database.
			secret, err = st.JWTSecret(ctx)
			if err != nil {
				database.Close()
				return nil, "", fmt.Errorf("loading jwt secret: %w", err)
			}
		}
		return st, secret, nil
	}
}

// openUploader creates the configured image storage. The returned handler is
// non-nil only for local storage, which the API serves itself.
func openUploader(ctx context.Context, cfg *config.Config) (upload.Uploader, http.Handler, error) {
	if cfg.Uploads.Backend == "s3" {
		s3cfg := cfg.Uploads.S3
		up, err := upload.NewS3(ctx, upload.S3Config{
			Endpoint:        s3cfg.Endpoint,
			Region:          s3cfg.Region,
			Bucket:          s3cfg.Bucket,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
			PublicURL:       s3cfg.PublicURL,
			UsePathStyle:    s3cfg.UsePathStyle,
			Prefix:          s3cfg.Prefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("setting up s3 uploads: %w", err)
		}
		return up, nil, nil
	}

	local, err := upload.NewLocal(cfg.Uploads.Dir, cfg.Uploads.PublicPath)
	if err != nil {
		return nil, nil, err
	}
	return local, local.Handler(), nil
}

func printAdminCredentials(email, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password now, it will not be shown again.")
}
