// Package channel holds the channel-facing side of the order engine: the
// closed set of supported sales channels, the adapter port used to poll them
// and the ephemeral order payloads they produce.
package channel

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrUnknownChannel is returned when a channel name is outside the
	// supported set or has no registered adapter
	ErrUnknownChannel = errors.New("channel: unknown channel")
	// ErrInvalidAdapter is returned when registering a nil adapter factory
	ErrInvalidAdapter = errors.New("channel: invalid adapter factory")
	// ErrNotConfigured is returned when required credentials are missing
	ErrNotConfigured = errors.New("channel: credentials not configured")

	// ErrTransient is the parent of every failure that should be retried on the
	// next scheduled pass rather than immediately
	ErrTransient = errors.New("channel: transient failure")
	// ErrChannelUnavailable indicates the remote API could not be reached
	ErrChannelUnavailable = fmt.Errorf("%w: channel unavailable", ErrTransient)
	// ErrChannelRequestFailed indicates the remote API rejected the request
	ErrChannelRequestFailed = fmt.Errorf("%w: channel request failed", ErrTransient)
	// ErrChannelRateLimited indicates the remote API throttled the caller
	ErrChannelRateLimited = fmt.Errorf("%w: channel rate limited", ErrTransient)
	// ErrChannelInvalidResponse indicates the remote API answered with an unreadable body
	ErrChannelInvalidResponse = fmt.Errorf("%w: invalid channel response", ErrTransient)

	// ErrMalformedPayload is returned when an order or line misses required fields
	ErrMalformedPayload = errors.New("channel: malformed order payload")
)

// ---------------------------------------------------------------------------
// Channel
// ---------------------------------------------------------------------------

// Channel identifies an external sales channel
type Channel string

const (
	// Amazon is the Amazon Selling Partner marketplace
	Amazon Channel = "amazon"
	// Ebay is the eBay marketplace
	Ebay Channel = "ebay"
	// Woot is the Woot deals marketplace
	Woot Channel = "woot"
)

// AllChannels returns every supported channel in a stable order
func AllChannels() []Channel {
	return []Channel{Amazon, Ebay, Woot}
}

// IsValid returns true if the channel belongs to the supported set
func (c Channel) IsValid() bool {
	switch c {
	case Amazon, Ebay, Woot:
		return true
	default:
		return false
	}
}

// String returns the string representation of Channel
func (c Channel) String() string {
	return string(c)
}

// DisplayName returns a human-readable channel name
func (c Channel) DisplayName() string {
	switch c {
	case Amazon:
		return "Amazon"
	case Ebay:
		return "eBay"
	case Woot:
		return "Woot"
	default:
		return string(c)
	}
}

// Parse converts a channel name into a Channel, rejecting names outside the supported set
func Parse(name string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(name)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, name)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

// Credentials are the per-connection secrets and settings handed to an adapter
// factory. Keys are channel specific (e.g. "access_token", "marketplace_id").
type Credentials map[string]string

// Get returns the value for key, or "" when absent
func (c Credentials) Get(key string) string {
	if c == nil {
		return ""
	}
	return c[key]
}

// Require returns ErrNotConfigured naming the first missing key
func (c Credentials) Require(keys ...string) error {
	for _, k := range keys {
		if strings.TrimSpace(c.Get(k)) == "" {
			return fmt.Errorf("%w: missing %s", ErrNotConfigured, k)
		}
	}
	return nil
}
