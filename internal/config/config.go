package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	defaultConfigFile   = "todo.toml"
	defaultPostgresName = "testdb"
	defaultSQLiteFile   = "todo.db"
)

type Config struct {
	Port        string `toml:"port"`
	ServiceName string `toml:"service_name"`
	GinMode     string `toml:"gin_mode"`

	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

type DatabaseConfig struct {
	Driver   string `toml:"driver"`
	URL      string `toml:"url"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`

	MaxOpenConns    int      `toml:"max_open_conns"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	ConnMaxIdleTime Duration `toml:"conn_max_idle_time"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

type ClientConfig struct {
	APIURL       string   `toml:"api_url"`
	HTTPTimeout  Duration `toml:"http_timeout"`
	ErrorTimeout Duration `toml:"error_timeout"`
	LogFile      string   `toml:"log_file"`
}

// Duration decodes TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Load builds the server configuration. Values come from defaults, then the
// [server] table of the optional TOML file, then the environment (with .env
// loaded into it first).
func Load() (*Config, error) {
	cfg := &Config{
		Port:        "3000",
		ServiceName: "todolist",
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "postgres",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: Duration{30 * time.Second},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}

	_ = godotenv.Load()

	var file struct {
		Server Config `toml:"server"`
	}
	file.Server = *cfg
	if err := decodeFile(&file); err != nil {
		return nil, err
	}
	cfg = &file.Server

	cfg.Port = envString("PORT", cfg.Port)
	cfg.ServiceName = envString("SERVICE_NAME", cfg.ServiceName)
	cfg.GinMode = envString("GIN_MODE", cfg.GinMode)

	db := &cfg.Database
	db.Driver = envString("DB_DRIVER", db.Driver)
	db.URL = envString("DATABASE_URL", db.URL)
	db.Host = envString("DB_HOST", db.Host)
	db.Port = envString("DB_PORT", db.Port)
	db.User = envString("DB_USER", db.User)
	db.Password = envString("DB_PASSWORD", db.Password)
	db.Name = envString("DB_NAME", db.Name)
	db.SSLMode = envString("DB_SSLMODE", db.SSLMode)

	var err error
	if db.MaxOpenConns, err = envInt("DB_MAX_OPEN_CONNS", db.MaxOpenConns); err != nil {
		return nil, err
	}
	if db.MaxIdleConns, err = envInt("DB_MAX_IDLE_CONNS", db.MaxIdleConns); err != nil {
		return nil, err
	}
	if db.ConnMaxIdleTime, err = envDuration("DB_CONN_MAX_IDLE_TIME", db.ConnMaxIdleTime); err != nil {
		return nil, err
	}
	if db.ConnMaxLifetime, err = envDuration("DB_CONN_MAX_LIFETIME", db.ConnMaxLifetime); err != nil {
		return nil, err
	}

	cfg.Log.Level = envString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envString("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.File = envString("LOG_FILE", cfg.Log.File)

	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT must not be empty")
	}
	if db.Driver != "postgres" && db.Driver != "sqlite3" {
		return nil, fmt.Errorf("DB_DRIVER must be postgres or sqlite3, got %q", db.Driver)
	}

	return cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise a connection string built from
// the individual settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite3" {
		if d.Name == "" {
			return defaultSQLiteFile
		}
		return d.Name
	}

	name := d.Name
	if name == "" {
		name = defaultPostgresName
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// LoadClient builds the terminal client configuration.
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	var file struct {
		Client ClientConfig `toml:"client"`
	}
	file.Client = ClientConfig{
		APIURL:       "http://localhost:3000",
		HTTPTimeout:  Duration{10 * time.Second},
		ErrorTimeout: Duration{5 * time.Second},
	}
	if err := decodeFile(&file); err != nil {
		return nil, err
	}
	cfg := &file.Client

	cfg.APIURL = envString("TODO_API_URL", cfg.APIURL)
	cfg.LogFile = envString("TODO_LOG_FILE", cfg.LogFile)

	var err error
	if cfg.HTTPTimeout, err = envDuration("TODO_HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.ErrorTimeout, err = envDuration("TODO_ERROR_TIMEOUT", cfg.ErrorTimeout); err != nil {
		return nil, err
	}

	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("TODO_API_URL: %w", err)
	}

	return cfg, nil
}

// decodeFile reads TODO_CONFIG, or todo.toml when present in the working
// directory. A missing default file is not an error.
func decodeFile(v any) error {
	path := os.Getenv("TODO_CONFIG")
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return nil
		}
		path = defaultConfigFile
	}

	if _, err := toml.DecodeFile(path, v); err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback Duration) (Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return Duration{}, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return Duration{d}, nil
}
