// Package app wires the contest runtime and HTTP lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nextchamp/nextchamp/internal/auth"
	"github.com/nextchamp/nextchamp/internal/payment"
	"github.com/nextchamp/nextchamp/internal/platform/config"
	"github.com/nextchamp/nextchamp/internal/services/contest/service"
	"github.com/nextchamp/nextchamp/internal/services/contest/storage"
	contestsqlite "github.com/nextchamp/nextchamp/internal/services/contest/storage/sqlite"
	"github.com/nextchamp/nextchamp/internal/telemetry"
)

type serverEnv struct {
	DBPath string `env:"NEXTCHAMP_DB_PATH"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "contests.db")
	}
	return cfg
}

// Options carries pre-built collaborators for the server. Zero-value fields
// are wired from the environment.
type Options struct {
	Store         storage.Store
	Gateway       payment.Gateway
	Verifier      auth.Verifier
	PaymentConfig *payment.Config
}

// Server hosts the contest HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      storage.Store

	contests *service.ContestService
	payments *service.PaymentService
	users    *service.UserService
	verifier auth.Verifier
}

// New creates a configured contest server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured contest server for the provided address,
// wiring storage, payment gateway, and identity verification from the
// environment.
func NewWithAddr(addr string) (*Server, error) {
	return NewWithOptions(addr, Options{})
}

// NewWithOptions creates a contest server with explicit collaborators.
// Tests use this to substitute a stub gateway or a prepared store.
func NewWithOptions(addr string, opts Options) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	store := opts.Store
	if store == nil {
		env := loadServerEnv()
		store, err = openContestStore(env.DBPath)
		if err != nil {
			_ = listener.Close()
			return nil, err
		}
	}

	paymentCfg := opts.PaymentConfig
	if paymentCfg == nil {
		cfg, err := payment.LoadConfigFromEnv()
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, err
		}
		paymentCfg = &cfg
	}

	gateway := opts.Gateway
	if gateway == nil {
		gateway, err = payment.NewGateway(*paymentCfg)
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, err
		}
	}

	verifier := opts.Verifier
	if verifier == nil {
		authCfg, err := auth.LoadConfigFromEnv(nil)
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, err
		}
		verifier, err = auth.NewTokenVerifier(authCfg)
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, err
		}
	}

	emitter := telemetry.NewEmitter(store)
	server := &Server{
		listener: listener,
		store:    store,
		contests: service.NewContestService(store),
		payments: service.NewPaymentService(gateway, store, emitter, *paymentCfg),
		users:    service.NewUserService(store),
		verifier: verifier,
	}
	server.httpServer = &http.Server{
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a contest server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("contest server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases contest server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close contest store: %v", err)
		}
	}
}

func openContestStore(path string) (storage.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := contestsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open contest sqlite store: %w", err)
	}
	return store, nil
}
