package config

import (
	_ "embed"
	"fmt"

	"go.uber.org/zap"
)

//go:embed default.yaml
var defaultConfigBytes []byte

// DefaultConfigProvider serves the configuration embedded from default.yaml; it watches no file and handles no signals
type DefaultConfigProvider struct {
	logger   *zap.Logger
	cfg      *Config
	callback func(*Config) error
}

// NewDefaultConfigProvider creates a new provider for default config
func NewDefaultConfigProvider(logger *zap.Logger) *DefaultConfigProvider {
	return &DefaultConfigProvider{
		logger: logger,
	}
}

// Start parses the embedded default config and passes it to the registered callback, if any
func (p *DefaultConfigProvider) Start() error {
	cfg, err := UnmarshalConfig(defaultConfigBytes)
	if err != nil {
		return fmt.Errorf("failed to unmarshal default config: %w", err)
	}

	p.cfg = cfg

	if p.callback != nil {
		return p.callback(p.cfg)
	}

	return nil
}

// Stop does nothing; this provider watches nothing
func (p *DefaultConfigProvider) Stop() {}

// OnConfigChange registers a callback for config changes
func (p *DefaultConfigProvider) OnConfigChange(callback func(*Config) error) {
	p.callback = callback
}

// Reload passes the already-parsed default config to the callback again
func (p *DefaultConfigProvider) Reload() error {
	return p.callback(p.cfg)
}
