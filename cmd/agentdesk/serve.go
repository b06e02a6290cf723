package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agentdesk/internal/kms"
)

func runServe(cmd *cobra.Command, args []string) error {
	store, err := kms.Open(serveDB, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveSeed {
		if err := store.Seed(ctx, kms.SampleArticles); err != nil {
			return err
		}
		n, _ := store.Count(ctx)
		logger.Info("article corpus seeded", zap.Int("articles", n))
	}

	srv := &http.Server{
		Addr:    serveAddr,
		Handler: kms.NewServer(store, logger).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("knowledge backend listening", zap.String("addr", serveAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
