package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rasa-cafe/auth"
	"rasa-cafe/broker"
	"rasa-cafe/controller"
	"rasa-cafe/database"
	"rasa-cafe/metrics"
	"rasa-cafe/notification"
	"rasa-cafe/order"
	"rasa-cafe/report"
	"rasa-cafe/route"
	"rasa-cafe/scheduler"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close(db)

	g, gctx := errgroup.WithContext(ctx)

	hub := notification.NewHub(log)
	var notifier order.Notifier = hub
	if cfg.RabbitMQURL != "" {
		relay, err := broker.Dial(cfg.RabbitMQURL, hub, log)
		if err != nil {
			return err
		}
		defer relay.Close()
		notifier = relay
		g.Go(func() error { return relay.Run(gctx) })
	}

	engine := order.NewEngine(db, notifier,
		order.WithLocation(loc),
		order.WithMaxAttempts(cfg.OrderMaxAttempts),
		order.WithLogger(log))

	var gen report.Generator
	gemini, err := report.NewGeminiGenerator(ctx, cfg.Reporting.APIKey, cfg.Reporting.Model)
	switch {
	case err == nil:
		gen = gemini
	case errors.Is(err, report.ErrNotConfigured):
		log.Warn("GEMINI_API_KEY not set, reports are disabled")
	default:
		return err
	}
	agent := report.NewAgent(db, gen, cfg.Reporting.MaxAttempts, cfg.Reporting.SiteName, log)

	ctl := controller.New(db, engine, hub, agent, log)
	ctl.ImagesDir = cfg.ImagesDir
	ctl.Heartbeat = cfg.Heartbeat

	router, err := newRouter(ctl)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
		// open event streams end with the process context
		BaseContext: func(net.Listener) context.Context { return gctx },
	}
	g.Go(func() error {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down server", zap.Int("open_streams", hub.Len()))
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Scheduler.Enabled {
		jobs := scheduler.New(db, loc, log)
		g.Go(func() error { return jobs.Start(gctx, cfg.Scheduler.CreditRefill) })
	}

	return g.Wait()
}

func newRouter(ctl *controller.Controller) (*gin.Engine, error) {
	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Debug("running in debug mode")
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	metrics.Register()
	router.Use(metrics.PrometheusMiddleware())
	router.GET("/metrics", metrics.Handler())

	authHandler := auth.NewHandler(ctl.DB, cfg.JWTSecret, cfg.Release(), log)
	route.APIRoutes(router, ctl, authHandler, cfg.JWTSecret)
	log.Info("routes configured")

	if err := os.MkdirAll(cfg.ImagesDir, 0755); err != nil {
		return nil, err
	}
	router.Static("/images", cfg.ImagesDir)
	return router, nil
}
