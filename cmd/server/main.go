package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olekhv/contactbook/internal/config"
	"github.com/olekhv/contactbook/internal/imagehost"
	"github.com/olekhv/contactbook/internal/mail"
	"github.com/olekhv/contactbook/internal/server"
	"github.com/olekhv/contactbook/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	store, err := postgres.New(ctx, cfg.DatabaseURL, cfg.TempCodeTTL())
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer store.Close()

	srv := server.New(cfg, store, newMailer(cfg), newUploader(cfg))

	go func() {
		log.Printf("contactbook backend listening on %s", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func newMailer(cfg config.Config) mail.Mailer {
	if cfg.SMTPHost == "" {
		log.Println("SMTP_HOST not set; emails will be logged instead of sent")
		return mail.LogMailer{}
	}
	return mail.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, cfg.BaseURL)
}

func newUploader(cfg config.Config) imagehost.Uploader {
	if cfg.CloudinaryCloud == "" {
		log.Println("Cloudinary credentials not set; avatar upload is disabled")
		return imagehost.Disabled{}
	}
	uploader, err := imagehost.NewCloudinary(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret)
	if err != nil {
		log.Fatalf("init image host: %v", err)
	}
	return uploader
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
