package workspace

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/utilitywarehouse/git-pushmirror/giturl"
	"github.com/utilitywarehouse/git-pushmirror/repository"
)

// Config is the configuration to create Workspace
type Config struct {
	// Workspace is the path to the root dir where all configuration
	// directories will be created
	Workspace string `json:"workspace" yaml:"workspace" toml:"workspace"`

	// Auth config used by all the mirrors if not set at configuration
	// or mirror level
	Auth repository.Auth `json:"auth" yaml:"auth" toml:"auth"`

	// List of configurations, processed in the given order
	Configurations []Configuration `json:"configurations" yaml:"configurations" toml:"configurations"`
}

// Configuration is a named group of mirrors. Name is used as the
// directory under the workspace where all its mirrors are cloned.
type Configuration struct {
	Name string `json:"name" yaml:"name" toml:"name"`

	// Auth config for the mirrors of this configuration if not set at mirror level
	Auth repository.Auth `json:"auth" yaml:"auth" toml:"auth"`

	Mirrors []repository.Config `json:"mirrors" yaml:"mirrors" toml:"mirrors"`
}

// ValidateAndApplyDefaults will validate workspace and names of configurations
// and mirrors and apply defaults. mirror names are derived from source URL if
// not set and auth is inherited from configuration or root.
func (conf *Config) ValidateAndApplyDefaults() error {
	if strings.TrimSpace(conf.Workspace) == "" {
		return fmt.Errorf("workspace path cannot be empty")
	}

	conf.applyDefaults()

	return conf.validateConfigurations()
}

// applyDefaults will add root and configuration defaults to mirror config where needed
func (conf *Config) applyDefaults() {
	for i := range conf.Configurations {
		c := &conf.Configurations[i]
		if c.Auth.IsZero() {
			c.Auth = conf.Auth
		}

		for j := range c.Mirrors {
			m := &c.Mirrors[j]
			if m.Name == "" {
				m.Name = giturl.RepoName(m.Source)
			}
			if m.Auth.IsZero() {
				m.Auth = c.Auth
			}
		}
	}
}

// validateConfigurations makes sure every configuration and mirror maps to its
// own directory
func (conf *Config) validateConfigurations() error {
	var errs []error

	configNames := make(map[string]bool)

	for _, c := range conf.Configurations {
		if err := validateDirName(c.Name); err != nil {
			errs = append(errs, fmt.Errorf("configuration name '%s' is invalid: %w", c.Name, err))
		}
		if configNames[c.Name] {
			errs = append(errs, fmt.Errorf("duplicate configuration name '%s' found", c.Name))
		}
		configNames[c.Name] = true

		mirrorNames := make(map[string]bool)

		for _, m := range c.Mirrors {
			// mirrors without both remotes are rejected when processed
			// so they don't stop the other mirrors
			if strings.TrimSpace(m.Source) == "" || strings.TrimSpace(m.Destination) == "" {
				continue
			}

			if err := validateDirName(m.Name); err != nil {
				errs = append(errs, fmt.Errorf("configuration '%s' mirror name '%s' is invalid: %w", c.Name, m.Name, err))
			}
			if mirrorNames[m.Name] {
				errs = append(errs, fmt.Errorf("configuration '%s' has duplicate mirror name '%s'", c.Name, m.Name))
			}
			mirrorNames[m.Name] = true
		}
	}

	return errors.Join(errs...)
}

// validateDirName returns error if name is not a single path element
func validateDirName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("name cannot be empty")
	case name == "." || name == "..":
		return fmt.Errorf("name cannot be a relative path")
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return fmt.Errorf("name cannot contain path separator")
	}
	return nil
}
