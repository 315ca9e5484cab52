/*
main.go - Application entry point

PURPOSE:
  Loads .env and environment configuration, sets up logging and runs the
  billing CLI. The serve subcommand starts the HTTP API; the other
  subcommands read a user's document straight from the database.

STARTUP SEQUENCE:
  1. godotenv.Load (missing .env is fine)
  2. config.Load from the environment
  3. logger.Setup
  4. Cobra command dispatch

COMMANDS:
  serve      HTTP API with graceful shutdown and the alert scheduler
  invoice    Print an invoice as JSON
  alerts     Print closing-day alerts
  schedule   Print a month, week or day view

ENVIRONMENT:
  PORT, DB_PATH, LOG_LEVEL, LOG_FORMAT, ALERT_CHECK_INTERVAL,
  ALERT_SCHEDULER_ENABLED, CORS_ALLOWED_ORIGINS. Flags override.

EXAMPLES:
  # Run the API on a file database
  ./server serve --db ./data/billing.db

  # March 2024 invoice for a client
  ./server invoice --user alice --client acme-co --year 2024 --month 3

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment variables
*/
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/warp/billing-engine/config"
	"github.com/warp/billing-engine/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	Execute(cfg)
}
