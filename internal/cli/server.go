package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goBountySplit/internal/config"
	"github.com/LeJamon/goBountySplit/internal/core/ledger/service"
	"github.com/LeJamon/goBountySplit/internal/metrics"
	"github.com/LeJamon/goBountySplit/internal/rpc"
	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the bountyd server",
	Long: `Start the bountyd server which provides:
- HTTP JSON-RPC API on rpc_port, with /metrics and /health
- WebSocket commands and subscriptions on ws_port

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.RunE = runServer
}

// node is a running bountyd: the service and its listeners.
type node struct {
	config  *config.Config
	service *service.Service
	metrics *metrics.Metrics
	logger  *zap.Logger

	rpcHandler http.Handler
	ws         *rpc.WebSocketServer
}

// newNode opens storage and builds the HTTP handlers without listening.
func newNode(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*node, error) {
	m := metrics.New()
	svc, err := service.Open(ctx, cfg, m, logger, Version)
	if err != nil {
		return nil, err
	}

	services := &rpc_types.ServiceContainer{Bounty: svc, Logger: logger}
	rpcServer := rpc.NewServer(services, cfg.Server, m, logger)

	n := &node{config: cfg, service: svc, metrics: m, logger: logger}
	if cfg.WSAddress() != "" {
		n.ws = rpc.NewWebSocketServer(rpcServer.Registry(), services, cfg.Server, m, logger)
		svc.Publisher().AddEventHooks(rpc.NewPublisher(services.Subscriptions, logger).Hooks())
	}

	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"bountyd"}`))
	})
	n.rpcHandler = mux
	return n, nil
}

// serve listens on the configured ports until ctx ends, then shuts the
// listeners down and closes the service.
func (n *node) serve(ctx context.Context) error {
	cfg := n.config.Server
	servers := []*http.Server{{
		Addr:         n.config.RPCAddress(),
		Handler:      n.rpcHandler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}}
	if n.ws != nil {
		// Upgraded connections outlive the timeouts
		servers = append(servers, &http.Server{Addr: n.config.WSAddress(), Handler: n.ws})
	}

	listeners := make([]net.Listener, 0, len(servers))
	for _, srv := range servers {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			for _, l := range listeners {
				l.Close()
			}
			return errors.Join(fmt.Errorf("listen %s: %w", srv.Addr, err), n.service.Close())
		}
		n.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		listeners = append(listeners, ln)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range servers {
		srv, ln := srv, listeners[i]
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		n.logger.Info("shutting down")
		if n.ws != nil {
			n.ws.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}
		errs = append(errs, n.service.Close())
		return errors.Join(errs...)
	})

	return g.Wait()
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	n, err := newNode(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("bountyd started",
		zap.String("version", Version),
		zap.Stringer("config", cfg),
		zap.Duration("startup", time.Since(started)))

	return n.serve(ctx)
}
