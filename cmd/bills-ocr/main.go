package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/bills-ocr/internal/bill"
	"github.com/zombor/bills-ocr/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: loading .env: %v\n", err)
		os.Exit(1)
	}

	fs := ff.NewFlagSet("bills-ocr")
	var (
		port          = fs.IntLong("port", 8000, "HTTP server port")
		dataDir       = fs.StringLong("data-dir", "data", "Directory for the ledger and history database")
		ledgerPath    = fs.StringLong("ledger", "", "Ledger workbook path (default <data-dir>/bills.xlsx)")
		dbPath        = fs.StringLong("db", "", "History database path (default <data-dir>/bills.db)")
		archivePath   = fs.StringLong("archive", "", "Directory to keep original uploads in (disabled when empty)")
		engineType    = fs.StringLong("engine", "tesseract", "OCR engine: 'tesseract', 'gemini' or 'ollama'")
		tesseractBin  = fs.StringLong("tesseract", "", "Path to the tesseract binary (searched for when empty)")
		tesseractLang = fs.StringLong("tesseract-lang", "eng", "Tesseract language")
		tesseractPSM  = fs.IntLong("tesseract-psm", 6, "Tesseract page segmentation mode (0 leaves tesseract's default)")
		tessdataDir   = fs.StringLong("tessdata-dir", "", "Tesseract tessdata directory")
		tesseractWait = fs.DurationLong("tesseract-timeout", 60*time.Second, "Timeout for one tesseract run")
		enhance       = fs.BoolLong("enhance", "Boost contrast and sharpness before tesseract")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llava", "Ollama vision model name (e.g., llava, minicpm-v, qwen2-vl)")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel      = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILLS_OCR"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var level slog.LevelVar
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level})))

	if *ledgerPath == "" {
		*ledgerPath = filepath.Join(*dataDir, "bills.xlsx")
	}
	if *dbPath == "" {
		*dbPath = filepath.Join(*dataDir, "bills.db")
	}
	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		slog.Error("Failed to create data directory", "path", *dataDir, "error", err)
		os.Exit(1)
	}

	// Initialize OCR engine based on type
	var engine scanning.Engine
	var err error
	switch *engineType {
	case "tesseract":
		bin := scanning.DiscoverTesseract(*tesseractBin)
		if bin == "" {
			// Keep serving; every upload reports how to install tesseract
			slog.Warn("Tesseract not found", "hint", "install tesseract or set --tesseract / BILLS_OCR_TESSERACT")
		} else {
			slog.Info("Using tesseract", "path", bin, "lang", *tesseractLang, "psm", *tesseractPSM)
		}
		engine = scanning.NewTesseract(scanning.TesseractConfig{
			Binary:      bin,
			Lang:        *tesseractLang,
			PSM:         *tesseractPSM,
			TessdataDir: *tessdataDir,
			Timeout:     *tesseractWait,
			Enhance:     *enhance,
		})
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini engine...", "model", *geminiModel)
		engine, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama engine...", "url", *ollamaURL, "model", *ollamaModel)
		engine, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid engine type", "type", *engineType, "valid", "tesseract, gemini or ollama")
		os.Exit(1)
	}
	defer engine.Close()

	ledger := bill.NewExcelLedger(*ledgerPath)
	if err := ledger.Ensure(); err != nil {
		slog.Error("Failed to initialize ledger", "path", *ledgerPath, "error", err)
		os.Exit(1)
	}

	slog.Info("Initializing database...", "path", *dbPath)
	db, err := bill.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var store bill.Storage
	if *archivePath != "" {
		slog.Info("Archiving uploads", "path", *archivePath)
		local, err := bill.NewLocalStorage(*archivePath)
		if err != nil {
			slog.Error("Failed to initialize storage", "error", err)
			os.Exit(1)
		}
		store = local
	}

	billService := bill.NewService(engine, ledger, db, store)

	basicAuth := bill.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := bill.NewServer(billService, basicAuth)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Warn("Server shutdown", "error", err)
	}
}
