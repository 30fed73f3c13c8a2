package channel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_IsValid(t *testing.T) {
	tests := []struct {
		channel Channel
		isValid bool
	}{
		{Amazon, true},
		{Ebay, true},
		{Woot, true},
		{Channel("etsy"), false},
		{Channel(""), false},
		{Channel("AMAZON"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.channel), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.channel.IsValid())
		})
	}
}

func TestParse(t *testing.T) {
	c, err := Parse(" EBay ")
	require.NoError(t, err)
	assert.Equal(t, Ebay, c)

	_, err = Parse("etsy")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestTransientErrors(t *testing.T) {
	for _, err := range []error{ErrChannelUnavailable, ErrChannelRequestFailed, ErrChannelRateLimited, ErrChannelInvalidResponse} {
		assert.True(t, errors.Is(err, ErrTransient), err.Error())
	}
	assert.False(t, errors.Is(ErrUnknownChannel, ErrTransient))
}

func TestCredentials_Require(t *testing.T) {
	creds := Credentials{"access_token": "tok", "marketplace_id": " "}
	assert.NoError(t, creds.Require("access_token"))

	err := creds.Require("access_token", "marketplace_id")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "marketplace_id")

	var empty Credentials
	assert.Equal(t, "", empty.Get("x"))
}

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want OrderStatus
		ok   bool
	}{
		{"NEW", OrderStatusNew, true},
		{"Unshipped", OrderStatusNew, true},
		{"fulfilled", OrderStatusShipped, true},
		{"Canceled", OrderStatusCancelled, true},
		{"CANCELLED", OrderStatusCancelled, true},
		{"returned", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseOrderStatus(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
