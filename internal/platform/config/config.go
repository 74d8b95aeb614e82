package config

import (
	"os"
	"strconv"
	"strings"
)

// Config captures everything main needs to wire the service.
type Config struct {
	Addr          string
	JWTSigningKey string

	// Collection bootstrap parameters. Only consulted when no collection
	// state is persisted yet; the cap is immutable after that.
	AdminAccount   string
	MintCap        uint64
	PhaseLimit     uint64
	MintPrice      uint64
	PlaceholderURI string

	// Optional backends. Empty values select the in-memory implementations.
	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string
	AuditTopic   string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:           envOr("CURIO_ADDR", ":8080"),
		JWTSigningKey:  envOr("CURIO_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminAccount:   envOr("CURIO_ADMIN_ACCOUNT", "admin"),
		MintCap:        envUint("CURIO_MINT_CAP", 10000),
		PhaseLimit:     envUint("CURIO_PHASE_LIMIT", 100),
		MintPrice:      envUint("CURIO_MINT_PRICE", 1),
		PlaceholderURI: envOr("CURIO_PLACEHOLDER_URI", "ipfs://placeholder"),
		DatabaseURL:    os.Getenv("CURIO_DATABASE_URL"),
		RedisURL:       os.Getenv("CURIO_REDIS_URL"),
		AuditTopic:     envOr("CURIO_AUDIT_TOPIC", "curio.audit"),
	}
	if brokers := os.Getenv("CURIO_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
