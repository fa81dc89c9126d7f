package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"telemed-chat/config"
	"telemed-chat/internal/domain/auth"
	"telemed-chat/internal/services"
	"telemed-chat/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const usage = `
Telemed Chat - Database CLI Tool

Usage:
  migrate [flags] command

Commands:
  up          Create or update the chat tables
  status      Show database connection and table status
  reset       Drop the chat tables and migrate again (DANGEROUS)
  token       Print an access token for local testing

Flags:
  -user string   User id for the token command (default: random)
  -email string  Email claim for the token command
  -ttl duration  Lifetime of the token (default 1h)

Examples:
  go run ./cmd/migrate up
  go run ./cmd/migrate -user 4b7c... token
`

func main() {
	userID := flag.String("user", "", "User id for the token command")
	email := flag.String("email", "", "Email claim for the token command")
	ttl := flag.Duration("ttl", time.Hour, "Lifetime of the token")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	cfg := config.LoadConfig()

	if command == "token" {
		issueToken(cfg, *userID, *email, *ttl)
		return
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	switch command {
	case "up":
		log.Println("Running migrations...")
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	case "status":
		showStatus(db)
	case "reset":
		log.Println("WARNING: dropping all chat tables")
		if err := database.Reset(db); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
		log.Println("Database reset completed")
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func showStatus(db *gorm.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.HealthCheck(ctx, db); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	tables, err := database.Status(ctx, db)
	if err != nil {
		log.Fatalf("Status failed: %v", err)
	}
	for _, table := range tables {
		if table.Exists {
			log.Printf("Table %-24s exists (%d rows)", table.Name, table.Rows)
		} else {
			log.Printf("Table %-24s does not exist", table.Name)
		}
	}
}

func issueToken(cfg *config.Config, userID, email string, ttl time.Duration) {
	id := uuid.New()
	if userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			log.Fatalf("Invalid user id: %v", err)
		}
		id = parsed
	}

	token, err := services.NewAuthService(cfg).IssueAccessToken(auth.Principal{ID: id, Email: email}, ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Fprintf(os.Stderr, "user %s\n", id)
	fmt.Println(token)
}
