package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds the service configuration read from environment variables
type Config struct {
	Port string

	// MoySklad JSON API 1.2
	MoySkladBaseURL        string
	MoySkladToken          string
	MoySkladLogin          string
	MoySkladPassword       string
	MoySkladOrganizationID string
	MoySkladRateLimit      time.Duration

	// Google service account (Sheets and Drive)
	GoogleCredentialsPath string

	// EGAIS mapping table: commercial name -> EGAIS name
	EgaisSpreadsheetID string
	EgaisSheetName     string
	EgaisRange         string

	// EGAIS assortment written back from Kontur.Market
	AssortmentSpreadsheetID string
	AssortmentSheetName     string
	AssortmentRange         string

	ExcludeWordsPath     string
	ExcludeWordsEncoding string

	ExportDir            string
	DriveArchiveFolderID string

	TelegramToken        string
	TelegramChatID       int64
	TelegramAllowedChats []int64

	KafkaBrokers []string
	KafkaTopic   string

	KonturBaseURL       string
	KonturAuthURL       string
	KonturAssortmentURL string
	KonturLogin         string
	KonturPassword      string
	ChromePath          string

	Location *time.Location
}

const (
	defaultPort            = "8080"
	defaultMoySkladBaseURL = "https://api.moysklad.ru/api/remap/1.2"
	defaultEgaisSheetName  = "Соответсвия ЕГАИС"
	defaultEgaisRange      = "B2:C"
	defaultAssortmentSheet = "ЕГАИС наименования"
	defaultAssortmentRange = "A2:B"
	defaultExportDir       = "."
	defaultKonturAuthURL   = "https://auth.kontur.ru/api/authentication/password/auth-by-password"
	defaultKonturBaseURL   = "https://market.kontur.ru"
	defaultTimezone        = "Europe/Moscow"
	// MoySklad allows 45 requests per 3 seconds per account
	defaultMoySkladRateLimit = 100 * time.Millisecond
)

// Load reads the configuration from the environment and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Port:                    getEnv("PORT", defaultPort),
		MoySkladBaseURL:         strings.TrimRight(getEnv("MOYSKLAD_BASE_URL", defaultMoySkladBaseURL), "/"),
		MoySkladToken:           os.Getenv("MOYSKLAD_TOKEN"),
		MoySkladLogin:           os.Getenv("MOYSKLAD_LOGIN"),
		MoySkladPassword:        os.Getenv("MOYSKLAD_PASSWORD"),
		MoySkladOrganizationID:  os.Getenv("MOYSKLAD_ORGANIZATION_ID"),
		GoogleCredentialsPath:   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		EgaisSpreadsheetID:      os.Getenv("EGAIS_SPREADSHEET_ID"),
		EgaisSheetName:          getEnv("EGAIS_SHEET_NAME", defaultEgaisSheetName),
		EgaisRange:              getEnv("EGAIS_RANGE", defaultEgaisRange),
		AssortmentSpreadsheetID: os.Getenv("ASSORTMENT_SPREADSHEET_ID"),
		AssortmentSheetName:     getEnv("ASSORTMENT_SHEET_NAME", defaultAssortmentSheet),
		AssortmentRange:         getEnv("ASSORTMENT_RANGE", defaultAssortmentRange),
		ExcludeWordsPath:        os.Getenv("EXCLUDE_WORDS_PATH"),
		ExcludeWordsEncoding:    strings.ToLower(getEnv("EXCLUDE_WORDS_ENCODING", "utf-8")),
		ExportDir:               getEnv("EXPORT_DIR", defaultExportDir),
		DriveArchiveFolderID:    os.Getenv("DRIVE_ARCHIVE_FOLDER_ID"),
		TelegramToken:           os.Getenv("TELEGRAM_TOKEN"),
		KafkaBrokers:            splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:              getEnv("KAFKA_TOPIC", "egais.writeoff.runs"),
		KonturBaseURL:           strings.TrimRight(getEnv("KONTUR_BASE_URL", defaultKonturBaseURL), "/"),
		KonturAuthURL:           getEnv("KONTUR_AUTH_URL", defaultKonturAuthURL),
		KonturAssortmentURL:     os.Getenv("KONTUR_ASSORTMENT_URL"),
		KonturLogin:             os.Getenv("KONTUR_LOGIN"),
		KonturPassword:          os.Getenv("KONTUR_PASSWORD"),
		ChromePath:              os.Getenv("CHROME_PATH"),
	}

	// Remove leading colon if present
	cfg.Port = strings.TrimPrefix(cfg.Port, ":")

	rateLimit, err := getDuration("MOYSKLAD_RATE_LIMIT", defaultMoySkladRateLimit)
	if err != nil {
		return nil, err
	}
	cfg.MoySkladRateLimit = rateLimit

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		cfg.TelegramChatID = id
	}

	for _, v := range splitList(os.Getenv("TELEGRAM_ALLOWED_CHATS")) {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_CHATS entry %q: %w", v, err)
		}
		cfg.TelegramAllowedChats = append(cfg.TelegramAllowedChats, id)
	}

	tz := getEnv("TIMEZONE", defaultTimezone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the required settings are present
func (c *Config) Validate() error {
	if c.GoogleCredentialsPath == "" {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS environment variable is not set")
	}
	if c.MoySkladOrganizationID == "" {
		return fmt.Errorf("MOYSKLAD_ORGANIZATION_ID environment variable is not set")
	}
	if c.EgaisSpreadsheetID == "" {
		return fmt.Errorf("EGAIS_SPREADSHEET_ID environment variable is not set")
	}
	if c.MoySkladToken == "" && (c.MoySkladLogin == "" || c.MoySkladPassword == "") {
		return fmt.Errorf("MoySklad credentials not set. Set MOYSKLAD_TOKEN or MOYSKLAD_LOGIN and MOYSKLAD_PASSWORD")
	}
	switch c.ExcludeWordsEncoding {
	case "utf-8", "utf8", "windows-1251", "cp1251":
	default:
		return fmt.Errorf("unsupported EXCLUDE_WORDS_ENCODING %q (use utf-8 or windows-1251)", c.ExcludeWordsEncoding)
	}
	return nil
}

// ChatAllowed reports whether the bot may answer in the chat.
// With no allow-list configured every chat is allowed.
func (c *Config) ChatAllowed(chatID int64) bool {
	if len(c.TelegramAllowedChats) == 0 {
		return true
	}
	for _, id := range c.TelegramAllowedChats {
		if id == chatID {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
