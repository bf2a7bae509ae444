package config

import (
	"os"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	Environment   string
	OwnerIdentity string
	// OwnerTokenHash is the bcrypt hash the owner gate verifies X-Owner-Token
	// against. When CERTREG_OWNER_TOKEN_HASH is unset, main hashes the
	// plaintext dev token at startup.
	OwnerTokenHash string
	OwnerToken     string
	JWTSigningKey  string
	TokenTTL       time.Duration

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// DatabaseConfig holds postgres connection settings. Empty URL means the
// service runs on in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds redis connection settings for the token ledger.
// Empty URL means the in-memory ledger is used.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds notification fan-out settings. Empty Brokers disables the
// kafka sink; notifications still reach the in-process store.
type KafkaConfig struct {
	Brokers         string
	Topic           string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

var defaultTokenTTL = 15 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CERTREG_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("CERTREG_ENV")
	if env == "" {
		env = "dev"
	}

	ownerIdentity := os.Getenv("CERTREG_OWNER_IDENTITY")
	if ownerIdentity == "" {
		ownerIdentity = "registry-owner"
	}

	ownerToken := os.Getenv("CERTREG_OWNER_TOKEN")
	if ownerToken == "" {
		// Use a default for development - should be overridden in production
		ownerToken = "dev-owner-token-change-in-production"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := defaultTokenTTL
	if s := os.Getenv("TOKEN_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			tokenTTL = d
		}
	}

	kafkaTopic := os.Getenv("KAFKA_NOTIFICATION_TOPIC")
	if kafkaTopic == "" {
		kafkaTopic = "certreg.notifications"
	}

	return Server{
		Addr:           addr,
		Environment:    env,
		OwnerIdentity:  ownerIdentity,
		OwnerToken:     ownerToken,
		OwnerTokenHash: os.Getenv("CERTREG_OWNER_TOKEN_HASH"),
		JWTSigningKey:  jwtSigningKey,
		TokenTTL:       tokenTTL,
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:         os.Getenv("KAFKA_BROKERS"),
			Topic:           kafkaTopic,
			Acks:            os.Getenv("KAFKA_ACKS"),
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		},
	}
}
