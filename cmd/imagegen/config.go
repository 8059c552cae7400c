package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Packages
	imagegen "github.com/dragon84867/qwen-code-examples"
	schema "github.com/dragon84867/qwen-code-examples/pkg/schema"
	version "github.com/dragon84867/qwen-code-examples/pkg/version"
	yaml "gopkg.in/yaml.v3"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Config is the resolved configuration for one run. Defaults come from an
// optional YAML file; flags and environment variables take precedence.
type Config struct {
	Model      string        `yaml:"model"`
	Output     string        `yaml:"output"`
	Endpoint   string        `yaml:"endpoint"`
	Modalities []string      `yaml:"modalities"`
	System     string        `yaml:"system"`
	Timeout    time.Duration `yaml:"timeout"`

	// Never read from the file
	APIKey string `yaml:"-"`
	Prompt string `yaml:"-"`
}

//////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// The name of the config file
	configFile = "config.yaml"
)

//////////////////////////////////////////////////////////////////
// LIFECYCLE

// LoadConfig reads the YAML defaults file at path. With an empty path the
// file in the user configuration directory is read if it exists.
func LoadConfig(path string) (*Config, error) {
	config := new(Config)
	explicit := path != ""
	if !explicit {
		dir, err := os.UserConfigDir()
		if err != nil {
			return config, nil
		}
		path = filepath.Join(dir, version.Name, configFile)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return config, nil
	} else if err != nil {
		return nil, imagegen.ErrBadParameter.Withf("config: %v", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, imagegen.ErrBadParameter.Withf("config %q: %v", path, err)
	}

	// Return success
	return config, nil
}

//////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Merge overlays values set on the command line or in the environment
func (c *Config) Merge(cli *CLI) {
	c.APIKey = strings.TrimSpace(cli.APIKey)
	c.Prompt = cli.Prompt
	c.Model = first(cli.Model, c.Model, schema.DefaultModel)
	c.Output = first(cli.Output, c.Output)
	c.Endpoint = first(cli.Endpoint, c.Endpoint)
	c.System = first(cli.System, c.System)
	if len(cli.Modalities) > 0 {
		c.Modalities = cli.Modalities
	}
	if cli.Timeout > 0 {
		c.Timeout = cli.Timeout
	}
}

// Validate checks the API key and prompt are present
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return imagegen.ErrMissingConfiguration.With("please set the DASHSCOPE_API_KEY environment variable")
	}
	if strings.TrimSpace(c.Prompt) == "" {
		return imagegen.ErrMissingConfiguration.With("please provide a prompt")
	}
	if c.Timeout < 0 {
		return imagegen.ErrBadParameter.With("timeout cannot be negative")
	}
	return nil
}

//////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// first returns the first non-empty value
func first(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
