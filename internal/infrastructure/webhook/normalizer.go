package webhook

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/shared/valueobject"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/shopspring/decimal"
)

//go:embed schema/order_webhook.json
var envelopeSchema []byte

const envelopeSchemaURL = "https://omnisync.local/schemas/order_webhook.json"

// timestamp layouts accepted for placed_at and created_at
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer turns webhook JSON into canonical order payloads
type Normalizer struct {
	schema *jsonschema.Schema
	now    func() time.Time
}

// NormalizerOption configures a Normalizer
type NormalizerOption func(*Normalizer)

// WithNow overrides the clock used when a payload carries no timestamp
func WithNow(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) {
		n.now = now
	}
}

// NewNormalizer compiles the embedded envelope schema
func NewNormalizer(opts ...NormalizerOption) (*Normalizer, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(envelopeSchema))
	if err != nil {
		return nil, fmt.Errorf("webhook: read envelope schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(envelopeSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("webhook: add envelope schema: %w", err)
	}
	sch, err := c.Compile(envelopeSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("webhook: compile envelope schema: %w", err)
	}

	n := &Normalizer{schema: sch, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// envelope is the loose wire shape; flexible fields accept strings or numbers
type envelope struct {
	ExtID     flexString     `json:"ext_id"`
	Channel   string         `json:"channel"`
	Status    string         `json:"status"`
	Currency  string         `json:"currency"`
	Total     *flexString    `json:"total"`
	PlacedAt  *string        `json:"placed_at"`
	CreatedAt *string        `json:"created_at"`
	Items     []envelopeItem `json:"items"`
}

type envelopeItem struct {
	SKU       string      `json:"sku"`
	Quantity  *flexString `json:"quantity"`
	UnitPrice *flexString `json:"unit_price"`
	Price     *flexString `json:"price"`
}

// flexString holds a JSON string or number as text. Integral numbers are
// written in plain decimal form.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	// 456, 456.0 and 4.56e2 are the same number and must yield the same text
	if d, err := decimal.NewFromString(n.String()); err == nil && d.IsInteger() {
		*f = flexString(d.String())
		return nil
	}
	*f = flexString(n.String())
	return nil
}

// Parse validates payload and extracts the canonical order. Order-level
// problems wrap channel.ErrMalformedPayload. Bad items are kept as-is so the
// synchronizer can skip and report them line by line.
func (n *Normalizer) Parse(payload []byte) (*channel.OrderPayload, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", channel.ErrMalformedPayload, err)
	}
	if err := n.schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrMalformedPayload, err)
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrMalformedPayload, err)
	}

	ch, err := channel.Parse(env.Channel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", channel.ErrMalformedPayload, err)
	}

	status := channel.OrderStatusNew
	if strings.TrimSpace(env.Status) != "" {
		s, ok := channel.ParseOrderStatus(env.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", channel.ErrMalformedPayload, env.Status)
		}
		status = s
	}

	cur, err := valueobject.ParseCurrency(env.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", channel.ErrMalformedPayload, err)
	}

	placedAt, err := n.timestamp(env.PlacedAt, env.CreatedAt)
	if err != nil {
		return nil, err
	}

	lines := make([]channel.OrderLinePayload, 0, len(env.Items))
	for _, it := range env.Items {
		lines = append(lines, toLine(it))
	}

	var total decimal.Decimal
	if env.Total != nil && *env.Total != "" {
		total, err = decimal.NewFromString(string(*env.Total))
		if err != nil {
			return nil, fmt.Errorf("%w: total %q", channel.ErrMalformedPayload, *env.Total)
		}
	} else {
		total = sumLines(lines)
	}

	return &channel.OrderPayload{
		ExtID:    string(env.ExtID),
		Channel:  ch,
		PlacedAt: placedAt,
		Status:   status,
		Currency: cur.String(),
		Total:    total,
		Lines:    lines,
	}, nil
}

// timestamp picks placed_at, then created_at, then now. A present but
// unreadable value is malformed rather than silently replaced.
func (n *Normalizer) timestamp(candidates ...*string) (time.Time, error) {
	for _, c := range candidates {
		if c == nil || strings.TrimSpace(*c) == "" {
			continue
		}
		t, ok := parseTime(strings.TrimSpace(*c))
		if !ok {
			return time.Time{}, fmt.Errorf("%w: timestamp %q", channel.ErrMalformedPayload, *c)
		}
		return t, nil
	}
	return n.now().UTC(), nil
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// toLine converts an item leniently; unreadable fields stay zero and the line
// fails validation downstream
func toLine(it envelopeItem) channel.OrderLinePayload {
	line := channel.OrderLinePayload{SKU: strings.TrimSpace(it.SKU)}
	if it.Quantity != nil {
		if q, err := decimal.NewFromString(string(*it.Quantity)); err == nil && q.IsInteger() {
			// keep the value from wrapping; anything above the bound fails validation
			switch {
			case q.GreaterThan(decimal.NewFromInt(channel.MaxQuantity)):
				q = decimal.NewFromInt(channel.MaxQuantity + 1)
			case q.IsNegative():
				q = decimal.Zero
			}
			line.Quantity = int(q.IntPart())
		}
	}
	price := it.UnitPrice
	if price == nil || *price == "" {
		price = it.Price
	}
	if price != nil && *price != "" {
		if d, err := decimal.NewFromString(string(*price)); err == nil {
			line.UnitPrice = decimal.NewNullDecimal(d)
		}
	}
	return line
}

func sumLines(lines []channel.OrderLinePayload) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Validate() != nil {
			continue
		}
		total = total.Add(l.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
