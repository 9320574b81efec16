package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr               string
	SupervisorPassword string
	TokenTTL           time.Duration
	DataFile           string
	DatabaseURL        string
	RedisURL           string
	CORSOrigin         string
	MeiliURL           string
	MeiliMasterKey     string
	// LiveKit room token issuance
	LiveKitURL       string
	LiveKitAPIKey    string
	LiveKitAPISecret string
}

func Load() Config {
	return Config{
		Addr:               getenv("API_ADDR", ":8787"),
		SupervisorPassword: getenv("SUPERVISOR_PASSWORD", "frontdesk-dev-password"),
		TokenTTL:           time.Duration(getenvInt("FRONTDESK_TOKEN_TTL_SECONDS", 3600)) * time.Second,
		DataFile:           getenv("FRONTDESK_DATA_FILE", "./data/frontdesk.json"),
		// DATABASE_URL is optional; when set the snapshot store moves to Postgres
		DatabaseURL: getenv("DATABASE_URL", ""),
		// REDIS_URL is optional; when set supervisor tokens live in Redis
		RedisURL:         getenv("REDIS_URL", ""),
		CORSOrigin:       getenv("FRONTDESK_CORS_ORIGIN", "*"),
		MeiliURL:         getenv("MEILI_URL", ""),
		MeiliMasterKey:   getenv("MEILI_MASTER_KEY", ""),
		LiveKitURL:       getenv("LIVEKIT_URL", ""),
		LiveKitAPIKey:    getenv("LIVEKIT_API_KEY", ""),
		LiveKitAPISecret: getenv("LIVEKIT_API_SECRET", ""),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
