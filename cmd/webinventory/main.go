package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"golang.org/x/time/rate"

	"github.com/keapril/webinventory/internal/api"
	"github.com/keapril/webinventory/internal/assistant"
	"github.com/keapril/webinventory/internal/config"
	"github.com/keapril/webinventory/internal/logging"
	"github.com/keapril/webinventory/internal/objstore"
	"github.com/keapril/webinventory/internal/remote"
	"github.com/keapril/webinventory/internal/session"
	"github.com/keapril/webinventory/internal/web"
)

func main() {
	fs := flag.NewFlagSet("webinventory", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "")
	fs.StringVar(&addr, "a", ":8080", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var debug bool
	fs.BoolVar(&debug, "debug", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: webinventory [flags]

Flags:
  -c, -config <path>      yaml config file (default: none, environment only)
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -debug                  also log every document store request
  -h, -help               show this help and exit

Environment:
  WEBINV_STORE_URL        document store base URL
  WEBINV_IMAGE_HOST       public host for relative image references
  GEMINI_API_KEY          enables the AI assistant
  R2_ENDPOINT, R2_ACCESS_KEY, R2_SECRET_KEY, R2_BUCKET, R2_PUBLIC_URL
                          enables photo uploads to the bucket
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

	closeLog, err := logging.Setup(logPath, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load timezone", "error", err)
		os.Exit(1)
	}

	opts := []session.Option{session.WithLocation(loc)}
	if cfg.UploadsEnabled() {
		uploader, err := objstore.New(objstore.Config{
			Endpoint:  cfg.Images.Endpoint,
			AccessKey: cfg.Images.AccessKey,
			SecretKey: cfg.Images.SecretKey,
			Bucket:    cfg.Images.Bucket,
			Region:    cfg.Images.Region,
			PublicURL: cfg.Images.PublicURL,
		})
		if err != nil {
			slog.Error("failed to set up photo uploads", "error", err)
			os.Exit(1)
		}
		opts = append(opts, session.WithUploader(uploader))
	} else {
		slog.Info("no bucket configured, photos are stored inline")
	}

	sess := session.New(remote.New(cfg.Store.URL), opts...)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	sess.Load(loadCtx)
	cancelLoad()
	slog.Info("catalog loaded", "store", cfg.Store.URL, "items", len(sess.Items()), "logs", len(sess.Logs()))

	gen, err := newGenerator(cfg.AI)
	if err != nil {
		slog.Error("failed to set up assistant", "error", err)
		os.Exit(1)
	}
	bridge := assistant.NewBridge(gen)

	webRouter, err := web.NewRouter(sess, bridge, cfg.Images.Host)
	if err != nil {
		slog.Error("failed to set up web router", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           api.LoggingMiddleware(webRouter),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newGenerator returns the hosted model client, or nil when no key is set so
// the assistant answers with its fixed notice.
func newGenerator(cfg config.AIConfig) (assistant.Generator, error) {
	if cfg.APIKey == "" {
		slog.Info("no AI credential configured, assistant disabled")
		return nil, nil
	}
	opts := []assistant.GeminiOption{
		assistant.WithBaseURL(cfg.BaseURL),
		assistant.WithModel(cfg.Model),
		assistant.WithTemperature(*cfg.Temperature),
	}
	if cfg.RequestsPerMinute > 0 {
		opts = append(opts, assistant.WithLimiter(rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)))
	}
	g, err := assistant.NewGemini(cfg.APIKey, opts...)
	if err != nil {
		return nil, err
	}
	return g, nil
}
