package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lrencallado/microservices-demo/internal/checkout"
	"github.com/lrencallado/microservices-demo/internal/config"
	"github.com/lrencallado/microservices-demo/internal/httpx"
	kafkax "github.com/lrencallado/microservices-demo/internal/kafka"
	"github.com/lrencallado/microservices-demo/internal/logging"
	"github.com/lrencallado/microservices-demo/internal/postgres"
	"github.com/lrencallado/microservices-demo/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New("checkout")
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, checkout.TopicOrderCreated)
	defer prod.Close()

	store := &checkout.PGOrderStore{DB: db}
	saga := checkout.NewSaga(
		checkout.NewHTTPCatalogClient(cfg.CatalogBaseURL),
		store,
		prod,
		log,
	)

	router := httpx.NewRouter(log)
	oh := &httpx.OrdersHandler{
		Saga:  saga,
		Store: store,
		Redis: rdb,
		Log:   log,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
}
