package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
)

const testSecret = "whsec_test_secret"

var fixedNow = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func newTestVerifier() *WebhookVerifier {
	v := NewWebhookVerifier(testSecret, 5*time.Minute)
	v.nowFn = func() time.Time { return fixedNow }
	return v
}

func signatureHex(secret string, ts time.Time, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func signPayload(t *testing.T, secret string, ts time.Time, payload []byte) string {
	t.Helper()
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), signatureHex(secret, ts, payload))
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	t.Parallel()

	v := newTestVerifier()
	payload := []byte(`{"id":"evt_1"}`)
	if err := v.Verify(payload, signPayload(t, testSecret, fixedNow, payload)); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	t.Parallel()

	v := newTestVerifier()
	header := signPayload(t, testSecret, fixedNow, []byte(`{"id":"evt_1"}`))
	err := v.Verify([]byte(`{"id":"evt_2"}`), header)
	if !errors.Is(err, domain.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	v := newTestVerifier()
	payload := []byte(`{"id":"evt_1"}`)
	err := v.Verify(payload, signPayload(t, "whsec_other", fixedNow, payload))
	if !errors.Is(err, domain.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	t.Parallel()

	v := newTestVerifier()
	payload := []byte(`{"id":"evt_1"}`)
	err := v.Verify(payload, signPayload(t, testSecret, fixedNow.Add(-6*time.Minute), payload))
	if !errors.Is(err, domain.ErrSignatureInvalid) {
		t.Fatalf("expected tolerance rejection, got %v", err)
	}
	// Just inside the window still passes.
	if err := v.Verify(payload, signPayload(t, testSecret, fixedNow.Add(-4*time.Minute), payload)); err != nil {
		t.Fatalf("in-window signature rejected: %v", err)
	}
}

func TestVerifyAcceptsAnyMatchingV1(t *testing.T) {
	t.Parallel()

	v := newTestVerifier()
	payload := []byte(`{"id":"evt_1"}`)
	header := fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", fixedNow.Unix(), signatureHex(testSecret, fixedNow, payload))
	if err := v.Verify(payload, header); err != nil {
		t.Fatalf("matching signature among several rejected: %v", err)
	}
}

func TestVerifyRejectsMalformedHeader(t *testing.T) {
	t.Parallel()

	v := newTestVerifier()
	for _, header := range []string{"", "v1=abcd", "t=123", "t=notanumber,v1=abcd"} {
		if err := v.Verify([]byte("{}"), header); !errors.Is(err, domain.ErrSignatureInvalid) {
			t.Fatalf("header %q: expected ErrSignatureInvalid, got %v", header, err)
		}
	}
}
