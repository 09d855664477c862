package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lrencallado/microservices-demo/internal/checkout"
	"github.com/lrencallado/microservices-demo/internal/config"
	kafkax "github.com/lrencallado/microservices-demo/internal/kafka"
	"github.com/lrencallado/microservices-demo/internal/logging"
	"github.com/lrencallado/microservices-demo/internal/notifier"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New("notifier")
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := &notifier.Notifier{
		Mailer: &notifier.SMTPMailer{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom},
		Log:    log,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, checkout.TopicOrderCreated, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("notifier consumer started",
			zap.String("group", cfg.ConsumerGroup),
			zap.String("topic", checkout.TopicOrderCreated))
		if err := cons.Start(ctx, n.HandleOrderCreated); err != nil {
			log.Error("consumer exit", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down consumer...")
	cancel()
	<-done
}
