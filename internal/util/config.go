package util

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

//nolint:gochecknoglobals // here its ok
var once sync.Once

func init() {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	})
}

const (
	defaultServerAddr      = "localhost:8080"
	defaultWriteTimeout    = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultGracefulTimeout = 5 * time.Second

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour

	defaultMaxSessionsPerUser = 2
	defaultCleanupInterval    = 6 * time.Hour

	defaultTokenIssuer   = "identity-service"
	defaultTokenAudience = "creatorly-platform"

	defaultRateLimit     = 100
	defaultRateInterval  = 1 * time.Minute
	defaultRateBlockTime = 5 * time.Minute

	JWTLeeWay = 5 * time.Second
)

type ServerConfig struct {
	ServerAddr      string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

func NewServerConfig() *ServerConfig {
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = defaultServerAddr
	}

	return &ServerConfig{
		ServerAddr:      addr,
		WriteTimeout:    parseDurationOrDefault("WRITE_TIMEOUT", defaultWriteTimeout),
		ReadTimeout:     parseDurationOrDefault("READ_TIMEOUT", defaultReadTimeout),
		IdleTimeout:     parseDurationOrDefault("IDLE_TIMEOUT", defaultIdleTimeout),
		GracefulTimeout: parseDurationOrDefault("GRACEFUL_TIMEOUT", defaultGracefulTimeout),
	}
}

type TokenConfig struct {
	JwtSecretKey []byte
	// SessionHMACKey peppers the refresh-token hash stored with each session.
	SessionHMACKey []byte
	Issuer         string
	Audience       string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
}

func NewTokenConfig() *TokenConfig {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	hmacKey := os.Getenv("SESSION_HMAC_KEY")
	if hmacKey == "" {
		log.Fatal("SESSION_HMAC_KEY is not set")
	}

	issuer := os.Getenv("TOKEN_ISSUER")
	if issuer == "" {
		issuer = defaultTokenIssuer
	}
	audience := os.Getenv("TOKEN_AUDIENCE")
	if audience == "" {
		audience = defaultTokenAudience
	}

	return &TokenConfig{
		JwtSecretKey:   []byte(secret),
		SessionHMACKey: []byte(hmacKey),
		Issuer:         issuer,
		Audience:       audience,
		AccessTTL:      parseDurationOrDefault("ACCESS_TOKEN_TTL", defaultAccessTTL),
		RefreshTTL:     parseDurationOrDefault("REFRESH_TOKEN_TTL", defaultRefreshTTL),
	}
}

type SessionConfig struct {
	MaxSessionsPerUser int
	CleanupInterval    time.Duration
}

func NewSessionConfig() *SessionConfig {
	return &SessionConfig{
		MaxSessionsPerUser: parseIntOrDefault("MAX_SESSIONS_PER_USER", defaultMaxSessionsPerUser),
		CleanupInterval:    parseDurationOrDefault("SESSION_CLEANUP_INTERVAL", defaultCleanupInterval),
	}
}

type RateLimiterConfig struct {
	Limit     int
	Interval  time.Duration
	BlockTime time.Duration
}

func NewRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		Limit:     parseIntOrDefault("RATE_LIMIT_LIMIT", defaultRateLimit),
		Interval:  parseDurationOrDefault("RATE_LIMIT_INTERVAL", defaultRateInterval),
		BlockTime: parseDurationOrDefault("RATE_LIMIT_BLOCK_TIME", defaultRateBlockTime),
	}
}

func GetSecurityWebhookURL() string {
	return os.Getenv("SECURITY_WEBHOOK_URL")
}

func parseDurationOrDefault(varName string, def time.Duration) time.Duration {
	if v := os.Getenv(varName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", varName, v, def)
	}
	return def
}

func parseIntOrDefault(varName string, def int) int {
	if v := os.Getenv(varName); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Invalid integer in %s: %s, using default %d", varName, v, def)
	}
	return def
}
