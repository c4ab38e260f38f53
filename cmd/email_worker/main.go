package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-accounts/config"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-user-accounts/pkg/mailer"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)
	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	// Prefetch for fair dispatch between workers
	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries("")
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	sender := mailer.NewBreakerSender(mg, uint32(cfg.MailBreakerFailures), cfg.MailBreakerTimeout, logger)
	p := newProcessor(cfg, sender, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			if err := p.handle(ctx, msg.Body); err != nil {
				helpers.LogError(logger, "email job dropped", err, logrus.Fields{"delivery_tag": msg.DeliveryTag})
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		}
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	select {
	case <-stop:
	case <-done:
		logger.Warn("delivery channel closed")
	}
	logger.Info("shutting down...")
	cancel()
	consumer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
