package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	ServerPort        string
	TesseractDataPath string
	MaxFileSize       int64
	// Tolerance is the absolute currency difference still treated as a
	// match. 0.01 by default; widen via VERIFY_TOLERANCE for documents known
	// to round off totals.
	Tolerance         decimal.Decimal
	MerchantScanDepth int
	HistoryDBPath     string
}

func LoadConfig() *Config {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	tesseractDataPath := os.Getenv("TESSDATA_PREFIX")
	if tesseractDataPath == "" {
		tesseractDataPath = "/usr/share/tesseract-ocr/5/tessdata/"
	}

	maxFileSize := int64(10 * 1024 * 1024) // 10 MB
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxFileSize = n
		} else {
			log.Printf("Ignoring invalid MAX_FILE_SIZE %q", v)
		}
	}

	tolerance := decimal.RequireFromString("0.01")
	if v := os.Getenv("VERIFY_TOLERANCE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && d.IsPositive() {
			tolerance = d
		} else {
			log.Printf("Ignoring invalid VERIFY_TOLERANCE %q", v)
		}
	}

	scanDepth := 12
	if v := os.Getenv("MERCHANT_SCAN_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 8 && n <= 20 {
			scanDepth = n
		} else {
			log.Printf("Ignoring MERCHANT_SCAN_DEPTH %q, must be 8-20", v)
		}
	}

	historyPath := os.Getenv("HISTORY_DB_PATH")
	if historyPath == "" {
		historyPath = "history.db"
	}

	return &Config{
		ServerPort:        serverPort,
		TesseractDataPath: tesseractDataPath,
		MaxFileSize:       maxFileSize,
		Tolerance:         tolerance,
		MerchantScanDepth: scanDepth,
		HistoryDBPath:     historyPath,
	}
}
