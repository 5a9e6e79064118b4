package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	NATS struct {
		URL      string `yaml:"url"`
		Stream   string `yaml:"stream"`
		Subject  string `yaml:"subject"`
		Consumer string `yaml:"consumer"`
	} `yaml:"nats"`
	Questions struct {
		TTL string `yaml:"ttl"`
	} `yaml:"questions"`
	Game Game `yaml:"game"`
}

// Game collects the round and grading policies. Zero values are filled in
// by ApplyDefaults so an empty block yields a playable configuration.
type Game struct {
	// AcceptLateAnswers admits submissions while answers are revealed.
	// When false, post-reveal submissions are marked late and score nothing.
	AcceptLateAnswers bool `yaml:"accept_late_answers"`
	// AllowEmptyRedo lets a team that submitted only blanks submit again.
	AllowEmptyRedo bool `yaml:"allow_empty_redo"`
	// AutoHideOnAdvance flips the phase back to hidden when a round advances.
	AutoHideOnAdvance bool `yaml:"auto_hide_on_advance"`
	// StartQuestion is the catalog index the session opens with.
	StartQuestion int `yaml:"start_question"`
	// BandFloor and BandCeiling bound the year band when no smaller or
	// larger reference value is known yet.
	BandFloor   int `yaml:"band_floor"`
	BandCeiling int `yaml:"band_ceiling"`
	// PointsCorrect and PointsPerfect are the per-part awards.
	PointsCorrect int `yaml:"points_correct"`
	PointsPerfect int `yaml:"points_perfect"`
	// Delimiter separates fields of the submission wire format.
	Delimiter string `yaml:"delimiter"`
}

// ApplyDefaults fills unset game fields with the session defaults.
func (g *Game) ApplyDefaults() {
	if g.BandFloor == 0 {
		g.BandFloor = 1950
	}
	if g.BandCeiling == 0 {
		g.BandCeiling = 2025
	}
	if g.PointsCorrect == 0 {
		g.PointsCorrect = 1
	}
	if g.PointsPerfect == 0 {
		g.PointsPerfect = 2
	}
	if g.Delimiter == "" {
		g.Delimiter = "§"
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.Game.ApplyDefaults()
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
