package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
)

// WebhookVerifier authenticates inbound payment events against the shared
// signing secret. The header carries a unix timestamp and one or more HMAC
// signatures in the form "t=<unix>,v1=<hex>"; the expected signature is
// HMAC-SHA256 over "<t>.<raw body>". Comparison is constant time and payloads
// outside the timestamp tolerance are rejected.
type WebhookVerifier struct {
	secret    []byte
	tolerance time.Duration
	nowFn     func() time.Time
}

func NewWebhookVerifier(secret string, tolerance time.Duration) *WebhookVerifier {
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &WebhookVerifier{
		secret:    []byte(secret),
		tolerance: tolerance,
		nowFn:     time.Now,
	}
}

func (v *WebhookVerifier) Verify(payload []byte, header string) error {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	skew := v.nowFn().Sub(time.Unix(timestamp, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", domain.ErrSignatureInvalid)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		raw, decodeErr := hex.DecodeString(sig)
		if decodeErr != nil {
			continue
		}
		if hmac.Equal(expected, raw) {
			return nil
		}
	}
	return fmt.Errorf("%w: no matching v1 signature", domain.ErrSignatureInvalid)
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if strings.TrimSpace(header) == "" {
		return 0, nil, fmt.Errorf("%w: missing signature header", domain.ErrSignatureInvalid)
	}

	var timestamp int64 = -1
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			parsed, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp", domain.ErrSignatureInvalid)
			}
			timestamp = parsed
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: header needs t and v1 fields", domain.ErrSignatureInvalid)
	}
	return timestamp, signatures, nil
}
