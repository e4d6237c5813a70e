package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/healthdesk/healthdesk/internal/api"
	"github.com/healthdesk/healthdesk/internal/auth"
	"github.com/healthdesk/healthdesk/internal/catalog"
	"github.com/healthdesk/healthdesk/internal/messaging"
	"github.com/healthdesk/healthdesk/internal/scheduler"
	"github.com/healthdesk/healthdesk/internal/store"
	"github.com/healthdesk/healthdesk/internal/twiliosms"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for HealthDesk state data
	DefaultStateDir = "/var/lib/healthdesk"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "healthdesk.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := auth.SeedDemoUsers(st); err != nil {
		slog.Error("Failed to seed demo users", "error", err)
		os.Exit(1)
	}

	cat, err := buildCatalog(flags)
	if err != nil {
		slog.Error("Failed to load catalog", "error", err)
		os.Exit(1)
	}

	msgService := buildMessagingService(flags)

	// Reminder job runs on the cron scheduler alongside the API server.
	sched := scheduler.NewScheduler()
	defer sched.Stop()
	reminder := scheduler.NewReminderJob(st, msgService)
	if err := sched.AddJob(*flags.reminderCron, func() {
		if err := reminder.Run(context.Background()); err != nil {
			slog.Error("Reminder job failed", "error", err)
		}
	}); err != nil {
		slog.Error("Failed to schedule reminder job", "error", err, "cron", *flags.reminderCron)
		os.Exit(1)
	}

	slog.Info("Bootstrapping HealthDesk with configured modules")
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr, "reminder_cron", *flags.reminderCron)

	server := api.NewServer(st, cat, msgService)
	if err := server.Run(*flags.apiAddr); err != nil {
		slog.Error("HealthDesk failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("HealthDesk exited successfully")
}

// Config holds environment configuration
type Config struct {
	DbDriver     string
	DatabaseURL  string
	StateDir     string
	CatalogFile  string
	APIAddr      string
	ReminderCron string
	TwilioSID    string
	TwilioToken  string
	TwilioFrom   string
}

// Flags holds command line flag values
type Flags struct {
	stateDir     *string
	dbDriver     *string
	dbDSN        *string
	catalogFile  *string
	apiAddr      *string
	reminderCron *string
	twilioSID    *string
	twilioToken  *string
	twilioFrom   *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DbDriver:     os.Getenv("HEALTHDESK_DB_DRIVER"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		StateDir:     os.Getenv("HEALTHDESK_STATE_DIR"),
		CatalogFile:  os.Getenv("HEALTHDESK_CATALOG_FILE"),
		APIAddr:      os.Getenv("API_ADDR"),
		ReminderCron: os.Getenv("REMINDER_SCHEDULE"),
		TwilioSID:    os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:   os.Getenv("TWILIO_FROM_NUMBER"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No HEALTHDESK_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	} else {
		slog.Debug("HEALTHDESK_STATE_DIR found in environment", "state_dir", config.StateDir)
	}

	if config.ReminderCron == "" {
		config.ReminderCron = scheduler.DefaultReminderCron
	}

	slog.Debug("environment variables loaded",
		"HEALTHDESK_DB_DRIVER", config.DbDriver,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"HEALTHDESK_STATE_DIR", config.StateDir,
		"HEALTHDESK_CATALOG_FILE", config.CatalogFile,
		"API_ADDR", config.APIAddr,
		"REMINDER_SCHEDULE", config.ReminderCron,
		"TWILIO_CONFIGURED", config.TwilioSID != "" && config.TwilioToken != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for HealthDesk data (overrides $HEALTHDESK_STATE_DIR)"),
		dbDriver:     flag.String("db-driver", config.DbDriver, "store driver: memory, sqlite3 or postgres (overrides $HEALTHDESK_DB_DRIVER)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseURL, "database DSN for the SQLite or Postgres store (overrides $DATABASE_URL)"),
		catalogFile:  flag.String("catalog-file", config.CatalogFile, "YAML file overriding the built-in intent and doctor catalog (overrides $HEALTHDESK_CATALOG_FILE)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		reminderCron: flag.String("reminder-cron", config.ReminderCron, "cron schedule for appointment reminders (overrides $REMINDER_SCHEDULE)"),
		twilioSID:    flag.String("twilio-account-sid", config.TwilioSID, "Twilio account SID (overrides $TWILIO_ACCOUNT_SID)"),
		twilioToken:  flag.String("twilio-auth-token", config.TwilioToken, "Twilio auth token (overrides $TWILIO_AUTH_TOKEN)"),
		twilioFrom:   flag.String("twilio-from-number", config.TwilioFrom, "Twilio sender number (overrides $TWILIO_FROM_NUMBER)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDriver", *flags.dbDriver,
		"dbDSN_set", *flags.dbDSN != "",
		"catalogFile", *flags.catalogFile,
		"apiAddr", *flags.apiAddr,
		"reminderCron", *flags.reminderCron,
		"twilioConfigured", *flags.twilioSID != "" && *flags.twilioToken != "")

	// Persistent driver without a DSN defaults to SQLite in the state directory
	if *flags.dbDSN == "" && *flags.dbDriver == store.DriverSQLite {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite in state directory", "sqlite_path", *flags.dbDSN)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if *flags.dbDSN == "" {
		return nil
	}
	// Ensure state directory exists if we're using a file-based DSN
	if !strings.Contains(*flags.dbDSN, "postgres://") && !strings.Contains(*flags.dbDSN, "host=") {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStore selects the store backend. A DSN without an explicit driver picks
// Postgres for URL-style DSNs and SQLite for file paths.
func buildStore(flags Flags) (store.Store, error) {
	driver := *flags.dbDriver
	if driver == "" && *flags.dbDSN != "" {
		if strings.Contains(*flags.dbDSN, "postgres://") || strings.Contains(*flags.dbDSN, "host=") {
			driver = store.DriverPostgres
		} else {
			driver = store.DriverSQLite
		}
		slog.Debug("Detected store driver from DSN", "driver", driver)
	}
	if driver == "" {
		slog.Debug("No database configured, using in-memory store")
	}
	return store.NewStore(store.WithDriver(driver), store.WithDSN(*flags.dbDSN))
}

// buildCatalog loads the catalog override file or falls back to the built-in
// intents and doctors.
func buildCatalog(flags Flags) (*catalog.Catalog, error) {
	if *flags.catalogFile == "" {
		return catalog.Default(), nil
	}
	slog.Info("Loading catalog override", "path", *flags.catalogFile)
	return catalog.LoadFile(*flags.catalogFile)
}

// buildMessagingService wires Twilio SMS notifications when credentials are
// configured and falls back to the logging sink otherwise.
func buildMessagingService(flags Flags) messaging.Service {
	if *flags.twilioSID == "" || *flags.twilioToken == "" || *flags.twilioFrom == "" {
		slog.Info("Twilio not configured, notifications disabled")
		return messaging.NewNoopService()
	}
	client, err := twiliosms.NewClient(
		twiliosms.WithAccountSID(*flags.twilioSID),
		twiliosms.WithAuthToken(*flags.twilioToken),
		twiliosms.WithFromNumber(*flags.twilioFrom),
	)
	if err != nil {
		slog.Error("Failed to initialize Twilio client, notifications disabled", "error", err)
		return messaging.NewNoopService()
	}
	slog.Info("Twilio SMS notifications enabled")
	return messaging.NewTwilioService(client)
}
