package main

import (
	"fmt"
	"os"

	"multicompile/internal/compile/compiler"
	"multicompile/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const defaultLogLevel = "info"

// AppConfig holds multicompile config.
type AppConfig struct {
	Logger   logger.Config   `yaml:"logger"`
	Compiler compiler.Config `yaml:"compiler"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

// loadAppConfig decodes path over the defaults. An empty path yields the
// defaults alone.
func loadAppConfig(path string) (*AppConfig, error) {
	cfg := AppConfig{Compiler: compiler.DefaultConfig()}
	if path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = defaultLogLevel
	}
	cfg.Compiler.ApplyDefaults()
	return &cfg, nil
}
