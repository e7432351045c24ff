package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config
// files. It is built once in main and passed to every component that needs
// it; nothing reads process environment after Load returns.
type Config struct {
	Server struct {
		Addr string
	}
	Env      string
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret         string
		TokenTTLHours     int
		CookieExpiresDays int
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
}

// Production reports whether the process runs in production mode. Anything
// else is treated as development: secure cookies off, error detail exposed.
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("BLOGMANITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// legacy env names kept for parity with existing deployments
	_ = v.BindEnv("auth.jwtsecret", "BLOGMANITY_AUTH_JWTSECRET", "JWT_SECRET")
	_ = v.BindEnv("auth.cookieexpiresdays", "BLOGMANITY_AUTH_COOKIEEXPIRESDAYS", "COOKIE_EXPIRES")
	_ = v.BindEnv("env", "BLOGMANITY_ENV", "NODE_ENV")

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("env", "development")
	v.SetDefault("database.path", "data/blogmanity.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlhours", 24*7)
	v.SetDefault("auth.cookieexpiresdays", 7)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "blogmanity@server.com")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "blogmanity")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func loadDotEnv() {
	file, err := os.Open(".env")
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
