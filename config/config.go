package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del dashboard.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Sync    SyncConfig    `yaml:"sync"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// BackendConfig apunta al backend de trading.
type BackendConfig struct {
	BaseURL  string `yaml:"base_url"`
	Currency string `yaml:"currency"` // el backend convierte; aquí solo se propaga
}

// SyncConfig controla los ciclos y la cache del engine.
type SyncConfig struct {
	FastIntervalSeconds int `yaml:"fast_interval_seconds"` // ciclo dashboard
	SlowIntervalSeconds int `yaml:"slow_interval_seconds"` // ciclo charts, ~2× fast
	StaggerSeconds      int `yaml:"stagger_seconds"`       // retraso del refresh ancho
	DebounceMs          int `yaml:"debounce_ms"`           // ventana de coalescing

	// TTLSeconds sobreescribe el TTL por recurso (key = nombre del recurso).
	// Los recursos no listados usan los defaults del engine.
	TTLSeconds map[string]int `yaml:"ttl_seconds"`
}

// StorageConfig controla dónde se persiste el histórico.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o vacío = sin histórico
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Las variables de entorno sobreescriben el YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse %q: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:  "http://localhost:8000",
			Currency: "USD",
		},
		Sync: SyncConfig{
			FastIntervalSeconds: 180,
			SlowIntervalSeconds: 360,
			StaggerSeconds:      5,
			DebounceMs:          2000,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PANELBOT_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("PANELBOT_CURRENCY"); v != "" {
		cfg.Backend.Currency = v
	}
	if v := os.Getenv("PANELBOT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

func (c *Config) validate() error {
	if c.Backend.Currency == "" {
		return fmt.Errorf("backend.currency must not be empty")
	}
	if c.Sync.FastIntervalSeconds <= 0 {
		return fmt.Errorf("sync.fast_interval_seconds must be positive")
	}
	if c.Sync.SlowIntervalSeconds <= 0 {
		return fmt.Errorf("sync.slow_interval_seconds must be positive")
	}
	if c.Sync.DebounceMs <= 0 {
		return fmt.Errorf("sync.debounce_ms must be positive")
	}
	for res, secs := range c.Sync.TTLSeconds {
		if secs <= 0 {
			return fmt.Errorf("sync.ttl_seconds.%s must be positive", res)
		}
	}
	return nil
}

// FastInterval devuelve el periodo del ciclo rápido.
func (c *Config) FastInterval() time.Duration {
	return time.Duration(c.Sync.FastIntervalSeconds) * time.Second
}

// SlowInterval devuelve el periodo del ciclo lento.
func (c *Config) SlowInterval() time.Duration {
	return time.Duration(c.Sync.SlowIntervalSeconds) * time.Second
}

// Stagger devuelve el retraso del refresh ancho dentro del ciclo rápido.
func (c *Config) Stagger() time.Duration {
	return time.Duration(c.Sync.StaggerSeconds) * time.Second
}

// DebounceWindow devuelve la ventana de coalescing.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Sync.DebounceMs) * time.Millisecond
}
