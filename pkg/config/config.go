package config

import (
	"fmt"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"
)

// Config is the session daemon's local bootstrap configuration: defaults
// applied to shadow entities, the consumer endpoints to dial, and the
// protocol version this daemon accepts from registering applications.
//
// This is distinct from, and does not replace, the user-facing tracing
// session configuration (sessions/channels/events/contexts), which is owned
// by the command layer and supplied through sessiond.Sessiond's public API.
type Config struct {
	Channel  ChannelDefaults         `yaml:"channel" validate:"required"`
	Metadata MetadataChannelDefaults `yaml:"metadata" validate:"required"`
	Consumer ConsumerEndpoints       `yaml:"consumer" validate:"required"`
	Protocol ProtocolSupport         `yaml:"protocol" validate:"required"`
	FDBudget FDBudget                `yaml:"fd_budget" validate:"required"`
	Apps     AppsSocket              `yaml:"apps" validate:"required"`
}

func (c *Config) SetDefaults() {
	if c.Channel.Output == "" {
		c.Channel.Output = OutputModeSplice
	}
	if c.Consumer.SubDir == "" {
		c.Consumer.SubDir = "ust"
	}
	if c.Apps.Path == "" {
		c.Apps.Path = "/var/run/lttng/apps.sock"
	}
}

func (c *Config) Validate() error {
	validate := validator.New()

	c.SetDefaults()

	return validate.Struct(c)
}

func UnmarshalConfig(bytes []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &config, nil
}
