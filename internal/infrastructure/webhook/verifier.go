// Package webhook verifies signed order webhooks and normalizes their JSON
// bodies into channel order payloads.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/omnisync/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultReplayWindow is how long an accepted signature stays remembered
const DefaultReplayWindow = 300 * time.Second

var (
	// ErrVerificationFailed is the parent of every rejection; nothing is stored
	ErrVerificationFailed = errors.New("webhook: verification failed")
	// ErrSignatureMissing is returned when the request carries no signature
	ErrSignatureMissing = fmt.Errorf("%w: signature missing", ErrVerificationFailed)
	// ErrSignatureMismatch is returned when no configured secret produces the signature
	ErrSignatureMismatch = fmt.Errorf("%w: signature mismatch", ErrVerificationFailed)
	// ErrReplayDetected is returned for a valid signature already accepted inside the window
	ErrReplayDetected = fmt.Errorf("%w: replayed signature", ErrVerificationFailed)
	// ErrNoSecrets is returned when no signing secret is configured
	ErrNoSecrets = fmt.Errorf("%w: no webhook secret configured", ErrVerificationFailed)
)

// Verifier checks HMAC-SHA256 signatures against a list of secrets and
// rejects signatures it has already accepted within the replay window.
type Verifier struct {
	secrets [][]byte
	store   shared.ReplayStore
	window  time.Duration
	logger  *zap.Logger
}

// NewVerifier creates a Verifier. Secrets are tried in order so a rotated
// secret can be listed after the current one. Blank secrets are ignored.
func NewVerifier(secrets []string, store shared.ReplayStore, window time.Duration, logger *zap.Logger) (*Verifier, error) {
	var keys [][]byte
	for _, s := range secrets {
		if strings.TrimSpace(s) == "" {
			continue
		}
		keys = append(keys, []byte(s))
	}
	if len(keys) == 0 {
		return nil, ErrNoSecrets
	}
	if store == nil {
		return nil, errors.New("webhook: replay store is required")
	}
	if window <= 0 {
		window = DefaultReplayWindow
	}
	return &Verifier{
		secrets: keys,
		store:   store,
		window:  window,
		logger:  logger.Named("webhook_verifier"),
	}, nil
}

// Verify reports whether signatureHex is a fresh, valid signature of payload.
// A non-nil error means the replay store could not be consulted.
func (v *Verifier) Verify(ctx context.Context, payload []byte, signatureHex string) (bool, error) {
	err := v.Check(ctx, payload, signatureHex)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrVerificationFailed) {
		return false, nil
	}
	return false, err
}

// Check is Verify with the rejection reason. Rejections wrap ErrVerificationFailed.
func (v *Verifier) Check(ctx context.Context, payload []byte, signatureHex string) error {
	sig, err := decodeSignature(signatureHex)
	if err != nil {
		return err
	}

	matched := -1
	for i, secret := range v.secrets {
		mac := hmac.New(sha256.New, secret)
		_, _ = mac.Write(payload)
		if hmac.Equal(sig, mac.Sum(nil)) {
			matched = i
			break
		}
	}
	if matched < 0 {
		return ErrSignatureMismatch
	}

	fresh, err := v.store.Remember(ctx, hex.EncodeToString(sig), v.window)
	if err != nil {
		return fmt.Errorf("webhook: replay store: %w", err)
	}
	if !fresh {
		return ErrReplayDetected
	}
	if matched > 0 {
		v.logger.Info("Webhook signed with a rotated secret", zap.Int("secret_index", matched))
	}
	return nil
}

// Sign returns the hex signature of payload under secret
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func decodeSignature(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToLower(s), "sha256=")
	if s == "" {
		return nil, ErrSignatureMissing
	}
	sig, err := hex.DecodeString(s)
	if err != nil || len(sig) != sha256.Size {
		return nil, ErrSignatureMismatch
	}
	return sig, nil
}
