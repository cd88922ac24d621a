// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific file when set.
	ConfigFilePath string
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider backed by the filesystem.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// StaticProvider returns a fixed config; used by tests and embedders.
type StaticProvider struct {
	Config *Config
	Err    error
}

// Load returns the fixed config, or DefaultConfig when none is set.
func (p StaticProvider) Load(context.Context, LoadOptions) (*Config, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Config == nil {
		return DefaultConfig(), nil
	}
	return p.Config, nil
}
