// Package config defines service configuration and its loading order.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory match submission queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize caps the duplicate-match-id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// DefaultMMR seeds players whose first match fails the validity gate.
	DefaultMMR int `koanf:"default_mmr"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// MinTotalFrags is the validity gate's combined frag floor.
	MinTotalFrags int `koanf:"min_total_frags"`

	// MinTotalDamage is the validity gate's combined damage floor.
	MinTotalDamage int `koanf:"min_total_damage"`

	// MinActivePlayers is the validity gate's active participant floor.
	MinActivePlayers int `koanf:"min_active_players"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		QueueSize:           10_000,
		DedupeSize:          50_000,
		DefaultMMR:          1000,
		MaxLeaderboardLimit: 100,
		MinTotalFrags:       10,
		MinTotalDamage:      1000,
		MinActivePlayers:    1,
	}
}
