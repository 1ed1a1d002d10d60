package api

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/archval/pkg/store"
	"github.com/dd0wney/archval/pkg/validation"
)

// Config is the service configuration. Values come from an optional YAML
// file with environment overrides on top, so containerized deployments can
// run file-less.
type Config struct {
	Host        string       `yaml:"host"`
	Port        int          `yaml:"port"`
	FormatStyle string       `yaml:"format_style"`
	RulesDir    string       `yaml:"rules_dir"`
	CatalogDir  string       `yaml:"catalog_dir"`
	AuthSecret  string       `yaml:"auth_secret"`
	Store       store.Config `yaml:"store"`
}

// LoadConfig builds a Config from defaults, an optional YAML file, and
// environment overrides, in that order.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		Port:        8080,
		FormatStyle: "multiline",
		RulesDir:    "rules",
		CatalogDir:  "catalogs",
		Store:       store.Config{}.WithDefaults(),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.Store = cfg.Store.WithDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Store.URI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		c.Store.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Store.Password = v
	}
	if v := os.Getenv("NEO4J_DATABASE"); v != "" {
		c.Store.Database = v
	}
	if v := os.Getenv("ARCHVAL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("ARCHVAL_AUTH_SECRET"); v != "" {
		c.AuthSecret = v
	}
	if v := os.Getenv("ARCHVAL_RULES_DIR"); v != "" {
		c.RulesDir = v
	}
	if v := os.Getenv("ARCHVAL_CATALOG_DIR"); v != "" {
		c.CatalogDir = v
	}
}

// Validate checks the configuration, collecting every problem at once.
func (c Config) Validate() error {
	return validation.NewConfigValidator("api.Config").
		OneOf("FormatStyle", c.FormatStyle, []string{"multiline", "single"}).
		Custom("Port", func() error {
			if c.Port < 1 || c.Port > 65535 {
				return fmt.Errorf("port %d out of range", c.Port)
			}
			return nil
		}).
		Custom("Store", c.Store.Validate).
		When(c.AuthSecret != "", func(cv *validation.ConfigValidator) {
			cv.Custom("AuthSecret", func() error {
				if len(c.AuthSecret) < 32 {
					return fmt.Errorf("auth secret must be at least 32 characters")
				}
				return nil
			})
		}).
		Validate()
}

// Addr returns the host:port the server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
