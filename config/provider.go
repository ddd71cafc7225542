package config

import (
	"sync/atomic"
)

// Provider gives concurrent readers access to the current Config and
// allows it to be swapped atomically on reload.
type Provider struct {
	current atomic.Pointer[Config]
}

func NewProvider(cfg *Config) *Provider {
	p := &Provider{}
	p.current.Store(cfg)
	return p
}

// Get returns the current configuration. The returned pointer must be
// treated as read-only.
func (p *Provider) Get() *Config {
	return p.current.Load()
}

// Update replaces the current configuration.
func (p *Provider) Update(cfg *Config) {
	p.current.Store(cfg)
}
