// Package api assembles the Yo-Yo Pizza assistant and serves its admin HTTP
// endpoints.
//
// Run wires the configured transport, store, number recognizer and dialog
// engine together, starts the inbound event loop, and blocks until the
// process receives a termination signal.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/flow"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/genai"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/menu"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/messaging"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/recognize"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/store"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/twiliowhatsapp"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/whatsapp"
)

// Server configuration defaults.
const (
	// DefaultAPIAddr is the default listen address for the admin API
	DefaultAPIAddr = ":8080"
	// DefaultShutdownTimeout bounds graceful HTTP shutdown
	DefaultShutdownTimeout = 10 * time.Second
)

// MessengerKind selects the message transport.
type MessengerKind string

const (
	MessengerWhatsApp MessengerKind = "whatsapp"
	MessengerTwilio   MessengerKind = "twilio"
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr      string
	Messenger MessengerKind
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the admin API listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithMessenger selects the message transport.
func WithMessenger(kind MessengerKind) Option {
	return func(o *Opts) { o.Messenger = kind }
}

// Server holds the assembled application modules.
type Server struct {
	msgService    messaging.Service
	st            store.Store
	respHandler   *messaging.ResponseHandler
	twilioService *messaging.TwilioService // non-nil when the Twilio transport is active
	httpServer    *http.Server
}

// Run assembles the application from the given module options and blocks
// until SIGINT/SIGTERM. It returns an error when any module fails to start.
func Run(waOpts []whatsapp.Option, storeOpts []store.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAPIAddr
	}
	if cfg.Messenger == "" {
		cfg.Messenger = MessengerWhatsApp
	}
	slog.Debug("API Run configuration", "addr", cfg.Addr, "messenger", cfg.Messenger)

	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to build store: %w", err)
	}
	defer st.Close()

	recognizer := buildRecognizer(genaiOpts)

	srv := &Server{st: st}
	switch cfg.Messenger {
	case MessengerTwilio:
		twClient, err := twiliowhatsapp.NewClient()
		if err != nil {
			return fmt.Errorf("failed to create Twilio client: %w", err)
		}
		twService := messaging.NewTwilioService(twClient)
		srv.msgService = twService
		srv.twilioService = twService
	case MessengerWhatsApp:
		waClient, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return fmt.Errorf("failed to create WhatsApp client: %w", err)
		}
		srv.msgService = messaging.NewWhatsAppService(waClient)
	default:
		return fmt.Errorf("unknown messenger kind %q", cfg.Messenger)
	}

	stateManager := flow.NewStoreBasedStateManager(st)
	orderFlow := flow.NewOrderFlow(stateManager, st, srv.msgService, recognizer, menu.Default())
	srv.respHandler = messaging.NewResponseHandler(srv.msgService, orderFlow, st)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.msgService.Start(ctx); err != nil {
		return fmt.Errorf("failed to start messaging service: %w", err)
	}
	defer srv.msgService.Stop()

	go srv.respHandler.Run(ctx)

	srv.httpServer = &http.Server{Addr: cfg.Addr, Handler: srv.routes()}
	httpErr := make(chan error, 1)
	go func() {
		slog.Info("Admin API listening", "addr", cfg.Addr)
		httpErr <- srv.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-httpErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin API server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Admin API shutdown failed", "error", err)
		return fmt.Errorf("admin API shutdown failed: %w", err)
	}

	slog.Info("Yo-Yo Pizza assistant stopped")
	return nil
}

// routes builds the admin API mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/orders", s.ordersHandler)
	mux.HandleFunc("/responses", s.responsesHandler)
	mux.HandleFunc("/receipts", s.receiptsHandler)
	if s.twilioService != nil {
		mux.HandleFunc("/webhook/twilio", s.twilioService.TwilioWebhookHandler)
	}
	return mux
}

// buildStore constructs the configured store backend. With no DSN the
// assistant runs on the in-memory store.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}

	if cfg.DSN == "" {
		slog.Info("No database DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		slog.Info("Using PostgreSQL store")
		return store.NewPostgresStore(storeOpts...)
	}
	slog.Info("Using SQLite store", "path", cfg.DSN)
	return store.NewSQLiteStore(storeOpts...)
}

// buildRecognizer prefers the GenAI number recognizer when an OpenAI key is
// available and falls back to the offline English recognizer.
func buildRecognizer(genaiOpts []genai.Option) recognize.Recognizer {
	client, err := genai.NewClient(genaiOpts...)
	if err != nil {
		slog.Info("GenAI unavailable, using offline English number recognizer", "reason", err)
		return recognize.NewEnglishRecognizer()
	}
	slog.Info("Using GenAI number recognizer")
	return recognize.NewGenAIRecognizer(client)
}
