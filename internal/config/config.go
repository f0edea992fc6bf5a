package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Log       LogConfig
	Data      DataConfig
	Gacha     GachaConfig
	Battle    BattleConfig
	Cache     CacheConfig
	HistoryDB HistoryDBConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"akasha-terminal-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	Timezone    string `envconfig:"APP_TIMEZONE" default:"Asia/Shanghai"`
}

// LogConfig holds structured-logging settings.
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"console"` // console or json
	FilePath   string `envconfig:"LOG_FILE" default:""`
	MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"5"`
	MaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"14"`
}

// DataConfig holds the on-disk layout of user records and catalogs.
type DataConfig struct {
	UserDir      string        `envconfig:"DATA_USER_DIR" default:"./data/users"`
	WeaponFile   string        `envconfig:"DATA_WEAPON_FILE" default:"./data/weapon.json"`
	TaskFile     string        `envconfig:"DATA_TASK_FILE" default:"./data/task.json"`
	BattleFile   string        `envconfig:"DATA_BATTLE_FILE" default:"./data/battle_config.json"`
	WatchCatalog bool          `envconfig:"DATA_WATCH_CATALOG" default:"true"`
	LockTimeout  time.Duration `envconfig:"DATA_LOCK_TIMEOUT" default:"5s"`
}

// GachaConfig holds draw pricing and pity tuning.
type GachaConfig struct {
	DrawCost        int     `envconfig:"GACHA_DRAW_COST" default:"160"`
	FiveStarBase    float64 `envconfig:"GACHA_FIVE_STAR_BASE" default:"1.0"`
	FourStarBase    float64 `envconfig:"GACHA_FOUR_STAR_BASE" default:"5.0"`
	SoftPityStart   int     `envconfig:"GACHA_SOFT_PITY_START" default:"64"`
	SoftPityStep    float64 `envconfig:"GACHA_SOFT_PITY_STEP" default:"6.5"`
	FourStarPity    int     `envconfig:"GACHA_FOUR_STAR_PITY" default:"9"`
	MaxBatch        int     `envconfig:"GACHA_MAX_BATCH" default:"10"`
	Seed            uint64  `envconfig:"GACHA_SEED" default:"0"` // 0 = crypto source
	HistoryEnabled  bool    `envconfig:"GACHA_HISTORY_ENABLED" default:"true"`
}

// BattleConfig holds duel tuning. Values here are overridden by the
// optional battle_config.json file when present.
type BattleConfig struct {
	CooldownSeconds int     `envconfig:"BATTLE_COOLDOWN_SECONDS" default:"300"`
	LevelCoeff      float64 `envconfig:"BATTLE_LEVEL_COEFF" default:"2.0"`
	WinExp          int     `envconfig:"BATTLE_WIN_EXP" default:"10"`
	WinMoney        int     `envconfig:"BATTLE_WIN_MONEY" default:"20"`
	BotID           string  `envconfig:"BATTLE_BOT_ID" default:"akasha"`
}

// CacheConfig holds cooldown-cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"`
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// HistoryDBConfig holds the draw-history database settings.
type HistoryDBConfig struct {
	Type string `envconfig:"HISTORY_DB_TYPE" default:"sqlite"` // sqlite or mysql
	Path string `envconfig:"HISTORY_DB_PATH" default:"./data/history.db"`

	Host     string `envconfig:"HISTORY_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"HISTORY_DB_PORT" default:"3306"`
	Name     string `envconfig:"HISTORY_DB_NAME" default:"akasha"`
	User     string `envconfig:"HISTORY_DB_USER" default:"root"`
	Password string `envconfig:"HISTORY_DB_PASS" default:""`
}

// CooldownDuration returns the duel cooldown as a duration.
func (b *BattleConfig) CooldownDuration() time.Duration {
	return time.Duration(b.CooldownSeconds) * time.Second
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// MySQLDSN returns the MySQL data source name.
func (h *HistoryDBConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		h.User, h.Password, h.Host, h.Port, h.Name)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Location resolves the configured timezone, falling back to UTC when the
// name is unknown.
func (a *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
