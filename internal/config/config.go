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
	Port            string
	DatabaseURL     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	JWTSecret       string
	SessionTTL      time.Duration
	GoogleAudience  string
	AllowOrigins    []string
	RateLimitRPS    float64
	LogLevel        string
	LogFormat       string
	LogstashTCPAddr string

	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool
	MinIOBucketVideos string
	MinIOBucketImages string
	MinIOPublicURL    string

	FFMPEGPath            string
	ThumbnailMaxDimension int
	VideoMaxBytes         int64
	ThumbnailMaxBytes     int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TrendingInterval time.Duration
	TrendingLockTTL  time.Duration

	FeedDefaultPageSize int
	FeedMaxPageSize     int
	ListDefaultPageSize int
	ListMaxPageSize     int
	SearchResultLimit   int
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		DBMaxOpenConns:  getenvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:  getenvInt("DB_MAX_IDLE_CONNS", 5),
		JWTSecret:       must("JWT_SECRET"),
		SessionTTL:      getenvDuration("SESSION_TTL", 24*time.Hour),
		GoogleAudience:  getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		RateLimitRPS:    getenvFloat("RATE_LIMIT_RPS", 20),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "json"),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		MinIOEndpoint:     must("MINIO_ENDPOINT"),
		MinIOAccessKey:    must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:    must("MINIO_SECRET_KEY"),
		MinIOUseSSL:       getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketVideos: getenv("MINIO_BUCKET_VIDEOS", "travelreel-videos"),
		MinIOBucketImages: getenv("MINIO_BUCKET_IMAGES", "travelreel-images"),
		MinIOPublicURL:    getenv("MINIO_PUBLIC_URL", ""),

		FFMPEGPath:            getenv("FFMPEG_PATH", "ffmpeg"),
		ThumbnailMaxDimension: getenvInt("THUMBNAIL_MAX_DIMENSION", 720),
		VideoMaxBytes:         getenvInt64("VIDEO_MAX_BYTES", 100*1024*1024),
		ThumbnailMaxBytes:     getenvInt64("THUMBNAIL_MAX_BYTES", 5*1024*1024),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		TrendingInterval: getenvDuration("TRENDING_INTERVAL", 15*time.Minute),
		TrendingLockTTL:  getenvDuration("TRENDING_LOCK_TTL", 5*time.Minute),

		FeedDefaultPageSize: getenvInt("FEED_DEFAULT_PAGE_SIZE", 10),
		FeedMaxPageSize:     getenvInt("FEED_MAX_PAGE_SIZE", 100),
		ListDefaultPageSize: getenvInt("LIST_DEFAULT_PAGE_SIZE", 20),
		ListMaxPageSize:     getenvInt("LIST_MAX_PAGE_SIZE", 100),
		SearchResultLimit:   getenvInt("SEARCH_RESULT_LIMIT", 10),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v, err := strconv.Atoi(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func getenvInt64(k string, d int64) int64 {
	if v, err := strconv.ParseInt(getenv(k, ""), 10, 64); err == nil && v > 0 {
		return v
	}
	return d
}

func getenvFloat(k string, d float64) float64 {
	if v, err := strconv.ParseFloat(getenv(k, ""), 64); err == nil && v > 0 {
		return v
	}
	return d
}

func getenvDuration(k string, d time.Duration) time.Duration {
	raw := getenv(k, "")
	if raw == "" {
		return d
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", k, raw, d)
		return d
	}
	return v
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
