// backend-go/internal/config/config.go
package config

import (
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Source      SourceConfig
	Drive       DriveConfig
	ObjectStore ObjectStoreConfig
	Auth        AuthConfig
	Jobs        JobsConfig
	Engine      EngineConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port           string
	ProxyPort      string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	LinksTTLSeconds     int
	SelectionTTLSeconds int
}

// SourceConfig controls how spreadsheet links are fetched and decoded.
type SourceConfig struct {
	FetchTimeout  time.Duration
	MaxBytes      int64
	LegacyCharset string
	UserAgent     string
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

type ObjectStoreConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Region         string
	UseSSL         bool
	MaxObjectBytes int64
}

type AuthConfig struct {
	Realm      string
	BcryptCost int
}

type JobsConfig struct {
	ProbeEnabled  bool
	ProbeSchedule string
	Timezone      string
}

type EngineConfig struct {
	CandidatesFile string
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("PROXY_PORT", "8081")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 90)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "pnl_dashboard")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_LINKS_TTL_SECONDS", 300)
		viper.SetDefault("CACHE_SELECTION_TTL_SECONDS", 3600)
		viper.SetDefault("SOURCE_FETCH_TIMEOUT", "60s")
		viper.SetDefault("SOURCE_MAX_BYTES", 20<<20)
		viper.SetDefault("SOURCE_LEGACY_CHARSET", "windows-1253")
		viper.SetDefault("SOURCE_USER_AGENT", "pnl-dashboard/1.0")
		viper.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
		viper.SetDefault("GOOGLE_DRIVE_FOLDER_ID", "")
		viper.SetDefault("S3_ENDPOINT", "")
		viper.SetDefault("S3_ACCESS_KEY", "")
		viper.SetDefault("S3_SECRET_KEY", "")
		viper.SetDefault("S3_REGION", "us-east-1")
		viper.SetDefault("S3_USE_SSL", true)
		viper.SetDefault("AUTH_REALM", "pnl-dashboard")
		viper.SetDefault("AUTH_BCRYPT_COST", 12)
		viper.SetDefault("JOBS_PROBE_ENABLED", false)
		viper.SetDefault("JOBS_PROBE_SCHEDULE", "0 6 * * *")
		viper.SetDefault("JOBS_TIMEZONE", "Europe/Athens")
		viper.SetDefault("PNL_CANDIDATES_FILE", "")
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("LOG_FORMAT", "console")

		// Read from environment variables
		viper.AutomaticEnv()

		maxBytes := viper.GetInt64("SOURCE_MAX_BYTES")
		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				ProxyPort:      viper.GetString("PROXY_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				LinksTTLSeconds:     viper.GetInt("CACHE_LINKS_TTL_SECONDS"),
				SelectionTTLSeconds: viper.GetInt("CACHE_SELECTION_TTL_SECONDS"),
			},
			Source: SourceConfig{
				FetchTimeout:  viper.GetDuration("SOURCE_FETCH_TIMEOUT"),
				MaxBytes:      maxBytes,
				LegacyCharset: viper.GetString("SOURCE_LEGACY_CHARSET"),
				UserAgent:     viper.GetString("SOURCE_USER_AGENT"),
			},
			Drive: DriveConfig{
				CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
				FolderID:        viper.GetString("GOOGLE_DRIVE_FOLDER_ID"),
			},
			ObjectStore: ObjectStoreConfig{
				Endpoint:       viper.GetString("S3_ENDPOINT"),
				AccessKey:      viper.GetString("S3_ACCESS_KEY"),
				SecretKey:      viper.GetString("S3_SECRET_KEY"),
				Region:         viper.GetString("S3_REGION"),
				UseSSL:         viper.GetBool("S3_USE_SSL"),
				MaxObjectBytes: maxBytes,
			},
			Auth: AuthConfig{
				Realm:      viper.GetString("AUTH_REALM"),
				BcryptCost: viper.GetInt("AUTH_BCRYPT_COST"),
			},
			Jobs: JobsConfig{
				ProbeEnabled:  viper.GetBool("JOBS_PROBE_ENABLED"),
				ProbeSchedule: viper.GetString("JOBS_PROBE_SCHEDULE"),
				Timezone:      viper.GetString("JOBS_TIMEZONE"),
			},
			Engine: EngineConfig{
				CandidatesFile: viper.GetString("PNL_CANDIDATES_FILE"),
			},
			Log: LogConfig{
				Level:  viper.GetString("LOG_LEVEL"),
				Format: viper.GetString("LOG_FORMAT"),
			},
		}
	})

	return instance
}

// DSN renders the lib/pq keyword connection string.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host + " port=" + c.Port + " user=" + c.User + " password=" + c.Password +
		" dbname=" + c.DBName + " sslmode=" + c.SSLMode
}

// URL renders the connection string as a postgres:// URL for pgx.
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}
