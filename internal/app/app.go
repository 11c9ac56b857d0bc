package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/pitchsmith/pitchsmith/internal/config"
	"github.com/pitchsmith/pitchsmith/internal/conversation"
	"github.com/pitchsmith/pitchsmith/internal/db"
	"github.com/pitchsmith/pitchsmith/internal/generator"
	adminapi "github.com/pitchsmith/pitchsmith/internal/http/api/admin"
	"github.com/pitchsmith/pitchsmith/internal/http/api/front"
	"github.com/pitchsmith/pitchsmith/internal/llm"
	"github.com/pitchsmith/pitchsmith/internal/postprocess"
	"github.com/pitchsmith/pitchsmith/internal/quota"
	"github.com/pitchsmith/pitchsmith/internal/ratelimit"
	"github.com/pitchsmith/pitchsmith/internal/settings"
	"github.com/pitchsmith/pitchsmith/internal/tone"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the API server with database-backed components and blocks
// until the context is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtCfg, errJWT := config.LoadJWTConfig(configPath)
	if errJWT != nil {
		return errJWT
	}
	modelCfg, errModel := config.LoadModelConfig(configPath)
	if errModel != nil {
		return errModel
	}
	defaults, errDefaults := config.LoadSettingsDefaults(configPath)
	if errDefaults != nil {
		return errDefaults
	}

	settingsStore := settings.NewStore(conn, defaults)
	quotaMgr := quota.NewManager(conn, settingsStore.Quota, nil)
	limiter := ratelimit.NewManager(settingsStore.RateLimit, nil, nil)
	threads := conversation.NewStore(conn, nil)
	client := llm.NewOpenAIClient(llm.Config{
		APIKey:    modelCfg.APIKey,
		BaseURL:   modelCfg.BaseURL,
		Model:     modelCfg.Model,
		MaxTokens: modelCfg.MaxTokens,
	})
	engine := generator.NewEngine(conn, quotaMgr, client, threads, tone.NewSelector(nil), postprocess.NewProcessor(nil, nil), generator.Options{
		MaxTokens: modelCfg.MaxTokens,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	front.RegisterFrontRoutes(router, front.Deps{
		DB:      conn,
		JWT:     jwtCfg,
		Engine:  engine,
		Threads: threads,
		Quota:   quotaMgr,
		Limiter: limiter,
	})
	adminapi.RegisterAdminRoutes(router, conn, jwtCfg)

	if port <= 0 {
		port = 8318
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", port).Info("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}
