package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"manuals-rag/internal/di"
	"manuals-rag/internal/infra/config"
	"manuals-rag/internal/infra/logger"
	"manuals-rag/internal/infra/telemetry"
	"manuals-rag/internal/usecase"
)

var (
	version = "dev"

	// Serve command flags
	port        string
	otelEnabled bool

	// Ask command flags
	askTopK        int
	askTemperature float64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "manuals-rag",
	Short:   "RAG chat service for biomedical device manuals",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	serveCmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	serveCmd.Flags().BoolVar(&otelEnabled, "otel", false, "export logs via OTLP")
	askCmd.Flags().IntVar(&askTopK, "top-k", usecase.DefaultTopK, "number of passages to retrieve (1-10)")
	askCmd.Flags().Float64Var(&askTemperature, "temperature", 1.0, "generation temperature (0.0-1.0)")
	rootCmd.AddCommand(serveCmd, askCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log := logger.NewWithOTel(otelEnabled)
	slog.SetDefault(log)

	if otelEnabled {
		shutdown, err := telemetry.Setup(cmd.Context(), "manuals-rag")
		if err != nil {
			return fmt.Errorf("telemetry setup failed: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(flushCtx)
		}()
	}

	components := di.NewApplicationComponents(cfg, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.POST("/v1/chat/answer", components.Handler.Answer)
	e.GET("/healthz", components.Handler.Healthz)
	e.GET("/readyz", components.Handler.Readyz)

	listenPort := cfg.Port
	if port != "" {
		listenPort = port
	}
	addr := fmt.Sprintf(":%s", listenPort)

	g, gctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		log.Info("Starting server", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-gctx.Done():
			return nil
		case sig := <-quit:
			log.Info("Shutting down", "signal", sig.String())
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askTopK < 1 || askTopK > usecase.MaxTopK {
		return fmt.Errorf("top-k must be between 1 and %d", usecase.MaxTopK)
	}
	if askTemperature < 0 || askTemperature > 1 {
		return fmt.Errorf("temperature must be between 0.0 and 1.0")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log := logger.New()
	slog.SetDefault(log)

	components := di.NewApplicationComponents(cfg, log)

	question := strings.Join(args, " ")
	result, err := components.AnswerUsecase.Execute(cmd.Context(), usecase.AnswerQuestionInput{
		Question:    question,
		TopK:        askTopK,
		Temperature: askTemperature,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Answer)
	if len(result.Sources) > 0 {
		fmt.Fprintln(out, "\nFuentes:")
		for i, s := range result.Sources {
			line := fmt.Sprintf("%d. %s", i+1, s.Source)
			if s.PageNumber != nil {
				line += fmt.Sprintf(" (página %d)", *s.PageNumber)
			}
			line += fmt.Sprintf(" - relevancia %.2f", s.Score)
			fmt.Fprintln(out, line)
		}
	}
	return nil
}
