package ecommerce

import (
	"fmt"
	"sync"

	"github.com/erp/omnisync/internal/domain/channel"
)

// Registry is the compile-time channel.AdapterRegistry. Built-in factories
// are installed on first lookup; factories registered earlier take precedence.
type Registry struct {
	mu        sync.RWMutex
	factories map[channel.Channel]channel.AdapterFactory
	settings  Settings
	builtins  sync.Once
}

// NewRegistry creates a registry whose built-in adapters use settings
func NewRegistry(settings Settings) *Registry {
	return &Registry{
		factories: make(map[channel.Channel]channel.AdapterFactory),
		settings:  settings.withDefaults(),
	}
}

var _ channel.AdapterRegistry = (*Registry)(nil)

// Register binds factory to a channel name
func (r *Registry) Register(name string, factory channel.AdapterFactory) error {
	ch, err := channel.Parse(name)
	if err != nil {
		return err
	}
	if factory == nil {
		return fmt.Errorf("%w: %s", channel.ErrInvalidAdapter, ch)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[ch] = factory
	return nil
}

// Get builds a new adapter for the named channel from creds
func (r *Registry) Get(name string, creds channel.Credentials) (channel.Adapter, error) {
	r.builtins.Do(r.installBuiltins)

	ch, err := channel.Parse(name)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	factory, ok := r.factories[ch]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no adapter registered for %s", channel.ErrUnknownChannel, ch)
	}

	adapter, err := factory(creds)
	if err != nil {
		return nil, err
	}
	if adapter == nil {
		return nil, fmt.Errorf("%w: %s factory returned nil", channel.ErrInvalidAdapter, ch)
	}
	return adapter, nil
}

// Registered lists channels with a factory, in AllChannels order
func (r *Registry) Registered() []channel.Channel {
	r.builtins.Do(r.installBuiltins)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []channel.Channel
	for _, ch := range channel.AllChannels() {
		if _, ok := r.factories[ch]; ok {
			out = append(out, ch)
		}
	}
	return out
}

func (r *Registry) installBuiltins() {
	s := r.settings
	builtins := map[channel.Channel]channel.AdapterFactory{
		channel.Amazon: func(creds channel.Credentials) (channel.Adapter, error) { return NewAmazonAdapter(creds, s) },
		channel.Ebay:   func(creds channel.Credentials) (channel.Adapter, error) { return NewEbayAdapter(creds, s) },
		channel.Woot:   func(creds channel.Credentials) (channel.Adapter, error) { return NewWootAdapter(creds, s) },
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for ch, f := range builtins {
		if _, ok := r.factories[ch]; !ok {
			r.factories[ch] = f
		}
	}
}
