package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	emailPkg "advent/internal/adapters/email"
	web "advent/internal/adapters/http"
	"advent/internal/adapters/storage"
	userStore "advent/internal/adapters/storage/user"
	windowStore "advent/internal/adapters/storage/window"
	"advent/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("ADVENT_DB", "advent.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	users := userStore.NewSQLiteStore(db)
	windows := windowStore.NewSQLiteStore(db)
	stores := &web.Stores{
		UserStore:   users,
		WindowStore: windows,
	}

	// Seed default admin if no users exist
	adminUsername := envOrDefault("ADVENT_ADMIN_USER", "admin")
	adminPassword := envOrDefault("ADVENT_ADMIN_PASSWORD", "adventcalendar")
	seedDeps := orchestrators.CreateUserDeps{UserStore: users}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminUsername, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Seed the 24 calendar windows if none exist
	seedWinDeps := orchestrators.SeedWindowsDeps{WindowStore: windows}
	if err := orchestrators.ExecuteSeedWindows(context.Background(), seedWinDeps); err != nil {
		log.Fatalf("failed to seed windows: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("ADVENT_RESEND_KEY")
	emailFrom := envOrDefault("ADVENT_RESEND_FROM", "Advent Calendar <noreply@example.com>")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom)
		log.Println("Email sender configured (noop — set ADVENT_RESEND_KEY for real delivery)")
	}

	mux := web.NewMux("static", stores)

	addr := envOrDefault("ADVENT_ADDR", ":8080")
	log.Printf("Advent %s starting on %s (env=%s)", version, addr, envOrDefault("ADVENT_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
