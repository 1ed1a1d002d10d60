package store

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dd0wney/archval/pkg/validation"
)

const (
	// DefaultDatabase is the logical database used when none is configured.
	DefaultDatabase = "neo4j"
	// DefaultTimeout bounds every network call to the store. The store
	// protocol itself has no deadline, so an explicit per-call bound keeps
	// a hung store from wedging a validation run.
	DefaultTimeout = 30 * time.Second
)

// Config is the opaque connection descriptor for the graph store. It is
// sourced by the caller (HTTP layer, CLI flags, environment) and passed in;
// this package only validates and consumes it.
type Config struct {
	URI      string        `yaml:"uri" json:"uri"`
	Username string        `yaml:"username" json:"username"`
	Password string        `yaml:"password" json:"-"`
	Database string        `yaml:"database" json:"database"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// WithDefaults returns a copy with unset optional fields filled in.
func (c Config) WithDefaults() Config {
	c.Database = validation.DefaultOr(c.Database, DefaultDatabase)
	c.Timeout = validation.DefaultOrDuration(c.Timeout, DefaultTimeout)
	return c
}

// Validate checks the descriptor before any network attempt is made.
func (c Config) Validate() error {
	return validation.NewConfigValidator("store.Config").
		Required("URI", c.URI).
		Required("Username", c.Username).
		Required("Password", c.Password).
		Custom("URI", func() error {
			u, err := url.Parse(c.URI)
			if err != nil {
				return fmt.Errorf("invalid URI: %w", err)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("URI scheme must be http or https, got %q", u.Scheme)
			}
			if u.Host == "" {
				return fmt.Errorf("URI has no host")
			}
			return nil
		}).
		Validate()
}
