// Package gateway simulates the payment-intent handshake of a card processor.
// No network calls are made; ids and webhook signatures follow Stripe's shapes
// so a real provider can replace Simulator behind the Client interface.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Webhook event types dispatched by the payment service.
const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
)

// Metadata keys set on every intent and echoed back in its webhook events.
const (
	MetadataDonationID = "donation_id"
	MetadataCampaignID = "campaign_id"
)

// SignatureTolerance is how old a signed webhook timestamp may be.
const SignatureTolerance = 5 * time.Minute

// ErrNotConfigured is returned when no webhook secret is set.
var ErrNotConfigured = errors.New("gateway: webhook secret not configured")

// ErrInvalidSignature is returned for any signature header that does not verify.
var ErrInvalidSignature = errors.New("gateway: invalid webhook signature")

// Intent is a freshly created payment intent.
type Intent struct {
	ID           string
	ClientSecret string
}

// WebhookEventObject is the data.object of a payment_intent event.
type WebhookEventObject struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// WebhookEvent is a gateway webhook delivery.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object WebhookEventObject `json:"object"`
	} `json:"data"`
}

// Client is the payment gateway as seen by the payment service.
type Client interface {
	// CreatePaymentIntent opens a payment intent. metadata is echoed back in webhooks.
	CreatePaymentIntent(ctx context.Context, amount int64, metadata map[string]string) (Intent, error)
	// ReceiptURL returns the receipt location for a confirmed intent.
	ReceiptURL(intentID string) string
	// VerifyWebhookSignature checks a "t=<unix>,v1=<hex hmac>" header.
	VerifyWebhookSignature(payload []byte, sigHeader string) error
	ParseWebhookEvent(payload []byte) (WebhookEvent, error)
}

// Simulator is the in-process Client.
type Simulator struct {
	WebhookSecret string
	now           func() time.Time
}

// NewSimulator creates a Simulator. An empty webhookSecret disables webhook verification.
func NewSimulator(webhookSecret string) *Simulator {
	return &Simulator{WebhookSecret: webhookSecret, now: time.Now}
}

func randomHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CreatePaymentIntent fabricates pi_<hex> and pi_<hex>_secret_<hex>.
func (s *Simulator) CreatePaymentIntent(_ context.Context, amount int64, _ map[string]string) (Intent, error) {
	if amount <= 0 {
		return Intent{}, errors.New("gateway: amount must be greater than 0")
	}
	id := "pi_" + randomHex()
	return Intent{ID: id, ClientSecret: id + "_secret_" + randomHex()}, nil
}

func (s *Simulator) ReceiptURL(intentID string) string {
	return "https://dashboard.stripe.com/payments/" + intentID
}

// VerifyWebhookSignature は署名ヘッダーを HMAC-SHA256 で検証する
func (s *Simulator) VerifyWebhookSignature(payload []byte, sigHeader string) error {
	if s.WebhookSecret == "" {
		return ErrNotConfigured
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("%w: malformed header", ErrInvalidSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}
	if s.now().Sub(time.Unix(ts, 0)) > SignatureTolerance {
		return fmt.Errorf("%w: timestamp too old", ErrInvalidSignature)
	}

	expected := computeSignature(s.WebhookSecret, timestamp, payload)
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func (s *Simulator) ParseWebhookEvent(payload []byte) (WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return WebhookEvent{}, fmt.Errorf("gateway: parse webhook: %w", err)
	}
	return event, nil
}

func computeSignature(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + string(payload)))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader builds a valid signature header for payload at time t.
// Used by tests and local tooling that replays webhooks.
func SignatureHeader(secret string, payload []byte, t time.Time) string {
	ts := strconv.FormatInt(t.Unix(), 10)
	return "t=" + ts + ",v1=" + computeSignature(secret, ts, payload)
}
