package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type ServerConfig struct {
	Server `yaml:"server"`
	Pow    `yaml:"pow"`
	Log    `yaml:"log"`
}

type ClientConfig struct {
	Client `yaml:"client"`
	Pow    `yaml:"pow"`
	Log    `yaml:"log"`
}

type SearchConfig struct {
	Search `yaml:"search"`
	Pow    `yaml:"pow"`
	Log    `yaml:"log"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
}

func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := load(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Pow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := load(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Pow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func LoadSearchConfig(path string) (*SearchConfig, error) {
	cfg := &SearchConfig{}
	if err := load(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Pow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Search.Validate(cfg.Pow.Width); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// load reads the file at path when one is given, then applies the
// environment on top of it.
func load(path string, cfg interface{}) error {
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return nil
}
