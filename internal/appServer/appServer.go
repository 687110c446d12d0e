// launching the HTTP server, storage, cache and kafka producer
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"validascan/config"
	"validascan/internal/database"
	"validascan/internal/pkg/cache"
	"validascan/internal/pkg/compressor"
	"validascan/internal/pkg/kafka"
	"validascan/internal/pkg/storage"
	"validascan/internal/pkg/upstream"
	"validascan/internal/service"
	"validascan/internal/transport"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(new(logrus.JSONFormatter))

	fileStorage := storage.NewFileStorage(cfg.Storage.BasePath)
	scanRepo := database.NewScanRepository(fileStorage)
	resultCache := newCache(cfg)
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	comp := compressor.New(cfg.Compressor.MaxWidth, cfg.Compressor.JPEGQuality, cfg.Compressor.DecodeTimeout)
	client := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.ProcessTimeout)

	scanService := service.NewScanService(
		scanRepo, resultCache, producer, comp, client, cfg.Upstream.BaseURL, cfg.Redis.TTL)
	scanHandler := transport.NewScanHandler(scanService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(scanHandler)); err != nil {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	if err := producer.Close(); err != nil {
		logrus.Errorf("error occured on kafka producer close: %s", err.Error())
	}
	if err := resultCache.Close(); err != nil {
		logrus.Errorf("error occured on cache close: %s", err.Error())
	}
}

func newCache(cfg *config.Config) cache.Cache {
	if cfg.Redis.Addr == "" {
		logrus.Print("no redis address configured, using in-memory result cache")
		return cache.NewMemory()
	}

	redisCache, err := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logrus.Warnf("redis unreachable at %s, falling back to in-memory cache: %s", cfg.Redis.Addr, err.Error())
		return cache.NewMemory()
	}
	return redisCache
}
