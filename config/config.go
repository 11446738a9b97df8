package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	AppID    int
	AppHash  string
	BotToken string
	OwnerID  int64

	MongoURL string
	DBName   string

	DownloadDir string
	MetadataDir string

	ForceSubChannels []string

	DebounceWindow time.Duration
	SequenceDelay  time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		AppHash:     getEnv("APP_HASH", ""),
		BotToken:    getEnv("BOT_TOKEN", ""),
		MongoURL:    getEnv("MONGO_URL", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "renamebot"),
		DownloadDir: getEnv("DOWNLOAD_DIR", "./downloads"),
		MetadataDir: getEnv("METADATA_DIR", "./metadata"),
	}

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}

	appID, _ := strconv.Atoi(getEnv("APP_ID", "0"))
	cfg.AppID = appID

	ownerID, _ := strconv.ParseInt(getEnv("OWNER_ID", "0"), 10, 64)
	cfg.OwnerID = ownerID

	channelsStr := getEnv("FORCE_SUB_CHANNELS", "")
	if channelsStr != "" {
		for _, ch := range strings.Split(channelsStr, ",") {
			ch = strings.TrimSpace(strings.TrimPrefix(ch, "@"))
			if ch != "" {
				cfg.ForceSubChannels = append(cfg.ForceSubChannels, ch)
			}
		}
	}

	debounceSecs, _ := strconv.Atoi(getEnv("DEBOUNCE_SECONDS", "10"))
	cfg.DebounceWindow = time.Duration(debounceSecs) * time.Second

	delayMs, _ := strconv.Atoi(getEnv("SEQUENCE_DELAY_MS", "500"))
	cfg.SequenceDelay = time.Duration(delayMs) * time.Millisecond

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
