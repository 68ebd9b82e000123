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
	Server      ServerConfig
	App         AppConfig
	Discord     DiscordConfig
	Minecraft   MinecraftConfig
	BridgeDB    BridgeDBConfig
	InventoryDB InventoryDBConfig
	Cache       CacheConfig
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
	Name        string `envconfig:"APP_NAME" default:"mc-bridge-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// DiscordConfig holds Discord application credentials and destinations.
type DiscordConfig struct {
	PublicKey        string `envconfig:"DISCORD_PUBLIC_KEY" required:"true"`
	BotToken         string `envconfig:"DISCORD_TOKEN" required:"true"`
	ApplicationID    string `envconfig:"DISCORD_APPLICATION_ID" default:""`
	GuildID          string `envconfig:"DISCORD_GUILD_ID" default:""`
	DefaultChannelID string `envconfig:"DISCORD_CHANNEL_ID" default:""`
}

// MinecraftConfig holds settings for the Minecraft-facing REST API.
type MinecraftConfig struct {
	APIKey string `envconfig:"MINECRAFT_API_KEY" required:"true"`
}

// BridgeDBConfig holds the bridge SQLite database settings.
type BridgeDBConfig struct {
	Path string `envconfig:"BRIDGE_DB_PATH" default:"./data/bridge.db"`
}

// InventoryDBConfig holds inventory database settings.
type InventoryDBConfig struct {
	Type string `envconfig:"INVENTORY_DB_TYPE" default:"sqlite"` // sqlite or mysql
	Path string `envconfig:"INVENTORY_DB_PATH" default:"./data/inventory.db"`
	// MySQL settings
	Host     string `envconfig:"INVENTORY_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"INVENTORY_DB_PORT" default:"3306"`
	Name     string `envconfig:"INVENTORY_DB_NAME" default:"mcbridge"`
	User     string `envconfig:"INVENTORY_DB_USER" default:"root"`
	Password string `envconfig:"INVENTORY_DB_PASS" default:""`
}

// CacheConfig holds cache settings for Discord name resolution.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MySQLDSN returns the MySQL data source name.
func (i *InventoryDBConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		i.User, i.Password, i.Host, i.Port, i.Name)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
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
