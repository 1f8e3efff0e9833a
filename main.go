package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/internal/notify"
	"github.com/example/studybot/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	var notifier scheduler.Notifier
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		tn, err := notify.NewTelegramNotifier(token)
		if err != nil {
			log.Fatalf("Failed to create telegram notifier: %v", err)
		}
		notifier = tn
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, reminders disabled")
	}

	sched := scheduler.New(notifier)
	sched.Start()
	defer sched.Stop()

	log.Println("Study scheduler started. Press Ctrl+C to stop.")

	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down", sig)
}
