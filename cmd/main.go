package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/report-map/internal/config"
	"github.com/ukydev/report-map/internal/db"
	"github.com/ukydev/report-map/internal/feed"
	"github.com/ukydev/report-map/internal/logging"
	"github.com/ukydev/report-map/internal/server"
)

func openStore(ctx context.Context, cfg *config.Config, logger *log.Entry) (db.ReportCollection, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("Using in-memory report store; reports are lost on restart")
		return db.NewMemoryReportCollection(), func() {}, nil
	}

	client, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	store := db.NewMongoReportCollection(client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection))

	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.EnsureIndexes(idxCtx); err != nil {
		logger.WithError(err).Warn("Failed to create report indexes")
	}

	logger.WithFields(log.Fields{
		"database":   cfg.MongoDatabase,
		"collection": cfg.MongoCollection,
	}).Info("Connected to MongoDB")

	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}
	return store, closeFn, nil
}

func openFeed(cfg *config.Config, logger *log.Entry) (feed.Publisher, func(), error) {
	if !cfg.FeedEnabled() {
		return feed.NopPublisher{}, func() {}, nil
	}
	publisher, err := feed.ConnectMQTT(feed.MQTTOptions{
		Broker:         cfg.MQTTBroker,
		ClientID:       cfg.MQTTClientID,
		Topic:          cfg.MQTTTopic,
		ConnectTimeout: 10 * time.Second,
		PublishTimeout: cfg.MQTTPublishTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.WithFields(log.Fields{
		"broker": cfg.MQTTBroker,
		"topic":  cfg.MQTTTopic,
	}).Info("Publishing new reports to MQTT")
	return publisher, publisher.Close, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	logger := logging.ForService(logging.New(cfg.LogLevel, cfg.LogFormat), "report-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open report store")
	}
	defer closeStore()

	publisher, closeFeed, err := openFeed(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to MQTT broker")
	}
	defer closeFeed()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := server.NewRouter(server.Deps{
		Store:         store,
		Publisher:     publisher,
		Log:           logger,
		AllowedOrigin: cfg.AllowedOrigin,
		Registry:      registry,
	})
	if err := server.Run(ctx, cfg.Addr(), router, logger); err != nil {
		logger.WithError(err).Error("HTTP server stopped")
	}
	router.Drain()
}
