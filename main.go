package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrsingh-rishi/voicescribe/api"
	"github.com/mrsingh-rishi/voicescribe/config"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := api.NewApp(cfg, nil)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("transcription proxy listening on %s (model %s)", addr, cfg.Model)
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}
