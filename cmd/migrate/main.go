// Command migrate applies or rolls back the embedded schema migrations.
package main

import (
	"flag"
	"log"

	"gemini-chat/backend/internal/config"
	"gemini-chat/backend/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		log.Fatalf("migrate %s: %v", *direction, err)
	}
	log.Printf("migrations %s complete", *direction)
}
