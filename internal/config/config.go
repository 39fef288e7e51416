package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int

	JWTIssuer           string
	JWTAccessSecret     string
	JWTRefreshSecret    string
	AccessTokenTTLMin   int
	RefreshTokenTTLDays int

	RedisAddr     string
	RedisPassword string

	WhatsAppBaseURL string
	WhatsAppToken   string
	WhatsAppPhoneID string

	GeocodeBaseURL     string
	GeocodeCacheTTLMin int

	WorkerPollSeconds int
	JobMaxAttempts    int

	CORSOrigins string
}

func Load() Config {
	return Config{
		AppEnv:   get("APP_ENV", "dev"),
		HTTPAddr: get("HTTP_ADDR", ":8080"),

		DatabaseURL: get("DATABASE_URL", ""),
		DBMaxConns:  getInt("DB_MAX_CONNS", 10),
		DBMinConns:  getInt("DB_MIN_CONNS", 2),

		JWTIssuer:           get("JWT_ISSUER", "grocer"),
		JWTAccessSecret:     get("JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret:    get("JWT_REFRESH_SECRET", ""),
		AccessTokenTTLMin:   getInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTokenTTLDays: getInt("REFRESH_TOKEN_TTL_DAYS", 30),

		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),

		WhatsAppBaseURL: get("WHATSAPP_BASE_URL", "https://graph.facebook.com/v19.0"),
		WhatsAppToken:   get("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneID: get("WHATSAPP_PHONE_ID", ""),

		GeocodeBaseURL:     get("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeCacheTTLMin: getInt("GEOCODE_CACHE_TTL_MIN", 60),

		WorkerPollSeconds: getInt("WORKER_POLL_SECONDS", 5),
		JobMaxAttempts:    getInt("JOB_MAX_ATTEMPTS", 3),

		CORSOrigins: get("CORS_ORIGINS", "http://localhost:5173"),
	}
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
