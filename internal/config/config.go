package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr            string
		CORSOrigin      string
		PublicDir       string
		BodyLimit       int64
		ShutdownTimeout time.Duration
	}
	Database struct {
		Driver string
		Path   string
		URI    string
		Name   string
	}
	Auth struct {
		AccessTokenSecret  string
		AccessTokenExpiry  time.Duration
		RefreshTokenSecret string
		RefreshTokenExpiry time.Duration
		CookieSecure       bool
	}
	Media struct {
		Bucket        string
		Region        string
		Endpoint      string
		AccessKey     string
		SecretKey     string
		PublicBaseURL string
		KeyPrefix     string
	}
	Upload struct {
		TempDir string
		MaxSize int64
	}
	Log struct {
		Level string
	}
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv(".env")

	v := viper.New()
	v.SetEnvPrefix("BLOGAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8000")
	v.SetDefault("server.corsorigin", "*")
	v.SetDefault("server.publicdir", "public")
	v.SetDefault("server.bodylimit", 18*1024)
	v.SetDefault("server.shutdowntimeout", 10*time.Second)
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/blog.db")
	v.SetDefault("database.uri", "")
	v.SetDefault("database.name", "blog")
	v.SetDefault("auth.accesstokensecret", "")
	v.SetDefault("auth.accesstokenexpiry", 15*time.Minute)
	v.SetDefault("auth.refreshtokensecret", "")
	v.SetDefault("auth.refreshtokenexpiry", 240*time.Hour)
	v.SetDefault("auth.cookiesecure", true)
	v.SetDefault("media.bucket", "")
	v.SetDefault("media.region", "us-east-1")
	v.SetDefault("media.endpoint", "")
	v.SetDefault("media.accesskey", "")
	v.SetDefault("media.secretkey", "")
	v.SetDefault("media.publicbaseurl", "")
	v.SetDefault("media.keyprefix", "blog-media")
	v.SetDefault("upload.tempdir", "public/temp")
	v.SetDefault("upload.maxsize", 5<<20)
	v.SetDefault("log.level", "info")
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.AccessTokenSecret) == "" {
		errs = append(errs, errors.New("auth access token secret is required"))
	}
	if strings.TrimSpace(c.Auth.RefreshTokenSecret) == "" {
		errs = append(errs, errors.New("auth refresh token secret is required"))
	}
	if c.Auth.AccessTokenSecret != "" && c.Auth.AccessTokenSecret == c.Auth.RefreshTokenSecret {
		errs = append(errs, errors.New("access and refresh token secrets must differ"))
	}
	if c.Auth.AccessTokenExpiry <= 0 || c.Auth.RefreshTokenExpiry <= 0 {
		errs = append(errs, errors.New("token expiries must be positive"))
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if strings.TrimSpace(c.Database.URI) == "" {
			errs = append(errs, errors.New("database uri is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	if strings.TrimSpace(c.Media.Bucket) == "" {
		errs = append(errs, errors.New("media bucket is required"))
	}
	return errors.Join(errs...)
}

// PostgresDSN joins the connection URI with the database name when the URI has no path.
func (c Config) PostgresDSN() string {
	uri := strings.TrimRight(c.Database.URI, "/")
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if strings.Contains(rest, "/") || c.Database.Name == "" {
		return uri
	}
	if q := strings.Index(uri, "?"); q >= 0 {
		return uri[:q] + "/" + c.Database.Name + uri[q:]
	}
	return uri + "/" + c.Database.Name
}

func loadDotEnv(path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
