package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/notblessy/mealplan-admin/config"
	"github.com/notblessy/mealplan-admin/db"
	"github.com/notblessy/mealplan-admin/handler"
	"github.com/notblessy/mealplan-admin/repository"
	"github.com/notblessy/mealplan-admin/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "mealplan-admin",
	Short:         "Administrative backend for sequential meal plans",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return cfg.SetupLogger()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		postgres, err := openDatabase()
		if err != nil {
			return err
		}
		logrus.Info("Database migrated")
		return db.Close(postgres)
	},
}

var closeExpiredCmd = &cobra.Command{
	Use:   "close-expired",
	Short: "Close every open plan whose end date has passed",
	RunE: func(cmd *cobra.Command, args []string) error {
		postgres, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close(postgres)

		closed, err := newPlanService(postgres).CloseExpired(cmd.Context())
		if err != nil {
			return err
		}
		logrus.Infof("Closed %d expired plans", closed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, closeExpiredCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func openDatabase() (*gorm.DB, error) {
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}

	return db.NewPostgres(cfg.DatabaseURL)
}

func newPlanService(postgres *gorm.DB) service.PlanService {
	return service.NewPlanService(service.PlanServiceConfig{
		PlanRepo: repository.NewPlanRepository(postgres),
		Dates:    service.NewDateService(cfg.Holidays),
	})
}

func serve() error {
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	postgres, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close(postgres)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	handler.SetupRoutes(e, newPlanService(postgres), handler.AdminCredentials{
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
	}, cfg.JWTSecret)

	wg := &sync.WaitGroup{}

	// HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Infof("HTTP server starting on %s", cfg.HTTPAddr)

		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("HTTP server error: %v", err)
		}
	}()

	// Signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutdown signal received")

	ctxTimeout, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(ctxTimeout); err != nil {
		logrus.Errorf("Server shutdown error: %v", err)
	}

	wg.Wait()
	logrus.Info("All services shut down gracefully")
	return nil
}
