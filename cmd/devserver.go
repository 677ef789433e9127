package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/powervision/estoque/internal/domain"
	"github.com/powervision/estoque/internal/fakeapi"
	"github.com/powervision/estoque/internal/logging"
)

func newDevServerCmd() *cobra.Command {
	var (
		addr string
		seed bool
	)
	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run an in-memory products API for local testing",
		Example: `  estoque dev-server --seed
  estoque --api-url http://127.0.0.1:8088 products list -u admin --password admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.DevServer.Addr = addr
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.File)
			if err != nil {
				return err
			}
			defer log.Sync()

			opts := []fakeapi.Option{fakeapi.WithLogger(log)}
			if cfg.DevServer.Secret != "" {
				opts = append(opts, fakeapi.WithSecret(cfg.DevServer.Secret))
			}
			api := fakeapi.New(opts...)
			if _, err := api.AddUser(cfg.DevServer.Username, cfg.DevServer.Password); err != nil {
				return fmt.Errorf("dev-server user: %w", err)
			}
			if seed {
				api.Seed(sampleProducts()...)
			}

			ctx, cancel := signalContext()
			defer cancel()
			return serve(ctx, log, cfg.DevServer.Addr, api.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config dev_server.addr)")
	cmd.Flags().BoolVar(&seed, "seed", false, "start with a few sample products")
	return cmd
}

// serve runs handler on addr until ctx is cancelled.
func serve(ctx context.Context, log *zap.Logger, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("dev_server_listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("dev-server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dev-server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("dev_server_stopped")
	return nil
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{Name: "Cabo USB-C", Description: "1 metro, trançado", Price: 29.9, Quantity: 40},
		{Name: "Fonte 12V", Description: "Bivolt, 2A", Price: 54.5, Quantity: 12},
		{Name: "Câmera de ação", Description: "4K, à prova d'água", Price: 899, Quantity: 3},
	}
}
