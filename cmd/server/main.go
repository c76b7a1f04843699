package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"whatsapp-cloud-go/internal/api"
	"whatsapp-cloud-go/internal/config"
	"whatsapp-cloud-go/internal/database"
	"whatsapp-cloud-go/internal/logger"
	"whatsapp-cloud-go/internal/store"
	"whatsapp-cloud-go/internal/webhook"
	"whatsapp-cloud-go/internal/ws"
	"whatsapp-cloud-go/pkg/whatsapp"
)

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.LogLevel, cfg.LogConsole)
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var journal *store.Journal
	db, err := database.Open(cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		log.Info().Msg("event journal disabled")
	case err != nil:
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open database")
	default:
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		journal = store.NewJournal(db)
	}

	whatsappClient := whatsapp.NewClient(cfg.ClientOptions(log))

	hub := ws.NewHub(*log)
	go hub.Run(ctx)

	webhookHandler := webhook.NewHandler(cfg, *log)
	webhookHandler.Hub = hub
	webhookHandler.Reader = whatsappClient
	whatsappHandler := api.NewWhatsAppHandler(whatsappClient, *log)
	eventsHandler := api.NewEventsHandler(journal)
	if journal != nil {
		webhookHandler.Journal = journal
		whatsappHandler.Journal = journal
	}

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Webhook Routes
	r.GET("/webhook", webhookHandler.VerifyWebhook)
	r.POST("/webhook", webhookHandler.HandleMessage)

	// Live event feed
	r.GET("/ws", gin.WrapF(hub.ServeWs))

	apiGroup := r.Group("/api")
	{
		whatsappHandler.Register(apiGroup)

		apiGroup.GET("/events", eventsHandler.GetEvents)
		apiGroup.GET("/events/:id/receipts", eventsHandler.GetReceipts)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("phone_number_id", whatsappClient.PhoneNumberID()).
		Str("api_version", whatsappClient.Version()).
		Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("failed to run server")
	}
	log.Info().Msg("server stopped")
}
