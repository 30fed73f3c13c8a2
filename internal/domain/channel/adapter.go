package channel

import (
	"context"
	"iter"
)

// Adapter polls one sales channel for orders.
type Adapter interface {
	// Channel returns the channel this adapter serves
	Channel() Channel

	// FetchOrders returns a lazy sequence of order payloads. Paging happens
	// inside the sequence; the first remote failure is yielded as an error and
	// ends the sequence. Callers treat those errors as transient.
	FetchOrders(ctx context.Context) iter.Seq2[*OrderPayload, error]
}

// AdapterFactory builds a fresh adapter from connection credentials
type AdapterFactory func(creds Credentials) (Adapter, error)

// AdapterRegistry resolves channel names to adapters
type AdapterRegistry interface {
	// Register binds a factory to a channel name. Names outside the supported
	// set and nil factories are rejected.
	Register(name string, factory AdapterFactory) error

	// Get returns a new adapter instance for the named channel. It returns
	// ErrUnknownChannel when nothing is registered under that name.
	Get(name string, creds Credentials) (Adapter, error)

	// Registered lists the channels that currently have a factory
	Registered() []Channel
}
