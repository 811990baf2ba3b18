package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/automaxprocs/maxprocs"

	pics2pdf "github.com/alnah/go-pics2pdf"
	"github.com/alnah/go-pics2pdf/internal/bot"
	"github.com/alnah/go-pics2pdf/internal/config"
	"github.com/alnah/go-pics2pdf/internal/directory"
	"github.com/alnah/go-pics2pdf/internal/fileutil"
	"github.com/alnah/go-pics2pdf/internal/session"
)

// Version is set at build time via ldflags.
var Version = "dev"

// mongoConnectTimeout bounds the initial database handshake.
const mongoConnectTimeout = 10 * time.Second

func main() {
	flags, err := parseFlags(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Configure GOMAXPROCS with conditional logging
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if flags.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	// Local development convenience; deployments set real env vars.
	if fileutil.FileExists(".env") {
		_ = godotenv.Load()
	}

	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(flags, logger); err != nil {
		logger.Error("bot exited", "error", err)
		os.Exit(1)
	}
}

func run(flags *cliFlags, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(flags.config)
	if err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	cancel()
	if err != nil {
		return fmt.Errorf("connecting to MongoDB: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}()

	dir := directory.NewMongo(client, cfg.MongoDatabase)
	if err := dir.EnsureOriginal(ctx, cfg.OriginalAdminID); err != nil {
		return err
	}

	workers := flags.workers
	if workers == 0 {
		workers = cfg.Workers
	}
	pool := pics2pdf.NewServicePool(
		pics2pdf.ResolvePoolSize(workers),
		pics2pdf.WithNavigationTimeout(cfg.NavigationTimeout),
		pics2pdf.WithLogger(logger),
	)
	defer pool.Close()

	gw, err := bot.NewTelegram(cfg.BotToken, logger)
	if err != nil {
		return err
	}

	runner := bot.NewPipelineRunner(pool, gw, logger)
	sessions := session.NewManager(runner,
		func(ctx context.Context, userID, text string) {
			if err := gw.SendText(ctx, userID, text); err != nil {
				logger.Error("failed to send prompt", "user", userID, "error", err)
			}
		},
		session.WithTimeout(cfg.DialogTimeout),
	)
	handler := bot.NewHandler(dir, gw, sessions, logger)

	// PaaS platforms expect a listening port for health checks.
	if cfg.Port != "" {
		go serveHealth(cfg.Port, logger)
	}

	logger.Info("bot started", "version", Version, "pool", pool.Size())
	handler.Run(ctx, gw.Updates(ctx))
	logger.Info("bot stopped")
	return nil
}

// serveHealth runs a minimal HTTP listener answering health probes.
func serveHealth(port string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	logger.Info("health listener started", "port", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Error("health listener failed", "error", err)
	}
}
