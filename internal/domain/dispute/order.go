package dispute

import (
	"time"

	"github.com/riskledger/backend/internal/domain/shared"
	"github.com/riskledger/backend/internal/domain/shared/valueobject"
)

// CustomerInfo is the customer portion of a canonical order
type CustomerInfo struct {
	Email           string `json:"email"`
	DisplayName     string `json:"display_name"`
	Location        string `json:"location"`
	PriorOrderCount int    `json:"prior_order_count"`
}

// CanonicalOrder is the single order shape every source is mapped into.
// It is rebuilt from scratch on every import batch; the classifier and
// validator decide its category and dispute fields once, after which the
// reconciler merges it into the persisted record.
type CanonicalOrder struct {
	OrderNo          string            `json:"order_no"`
	OccurredAt       time.Time         `json:"occurred_at"`
	OccurredAtRaw    string            `json:"occurred_at_raw,omitempty"`
	Customer         CustomerInfo      `json:"customer"`
	Total            valueobject.Money `json:"total"`
	PaymentState     PaymentState      `json:"payment_state"`
	FulfillmentState FulfillmentState  `json:"fulfillment_state"`
	Tags             *TagSet           `json:"tags"`
	RiskFlag         bool              `json:"risk_flag"`
	DisputeState     DisputeState      `json:"dispute_state"`
	Category         Category          `json:"category"`
	OriginalCategory Category          `json:"original_category"`
	ValidationErrors []string          `json:"validation_errors,omitempty"`
	ExtraFields      map[string]string `json:"extra_fields,omitempty"`
	ItemsCount       int               `json:"items_count"`
	ShippingMethod   string            `json:"shipping_method,omitempty"`
	Cancelled        bool              `json:"cancelled,omitempty"`
}

// NewCanonicalOrder creates an order at baseline: no dispute, uncategorized
func NewCanonicalOrder(orderNo string) (*CanonicalOrder, error) {
	if orderNo == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NO", "Order number cannot be empty")
	}
	return &CanonicalOrder{
		OrderNo:          orderNo,
		PaymentState:     PaymentStateUnknown,
		FulfillmentState: FulfillmentStateUnknown,
		Tags:             NewTagSet(),
		DisputeState:     DisputeStateNone,
		Category:         CategoryAuto,
		OriginalCategory: CategoryAuto,
		ItemsCount:       1,
	}, nil
}

// SetOccurredAt records the order timestamp, keeping the raw value when it
// could not be parsed so the validator can report it
func (o *CanonicalOrder) SetOccurredAt(t time.Time, raw string) {
	if t.IsZero() {
		o.OccurredAtRaw = raw
		return
	}
	o.OccurredAt = t
	o.OccurredAtRaw = ""
}

// ApplyClassification copies a classification outcome onto the order and,
// for explicit operator choices, injects the marker tag (idempotent)
func (o *CanonicalOrder) ApplyClassification(c Classification) {
	o.Category = c.Category
	o.DisputeState = c.DisputeState
	o.RiskFlag = c.RiskFlag
	if c.InjectedTag != "" {
		o.Tags.Add(c.InjectedTag)
	}
}

// IsQuarantined returns true when the order sits in the INVALID bucket
func (o *CanonicalOrder) IsQuarantined() bool {
	return o.Category == CategoryInvalid
}

// Quarantine moves the order into the INVALID bucket. A quarantined order
// never contributes risk or dispute signal to the ledger, and remembers the
// category it would otherwise have received so recovery does not guess.
func (o *CanonicalOrder) Quarantine(reasons []string, rememberedCategory Category) {
	o.Category = CategoryInvalid
	o.DisputeState = DisputeStateNone
	o.RiskFlag = false
	o.ValidationErrors = reasons
	o.OriginalCategory = rememberedCategory
}

// applyCategory re-points the order at a concrete bucket, deriving dispute
// state and risk flag from the fixed category table
func (o *CanonicalOrder) applyCategory(c Category) {
	outcome := outcomeForCategory(c, o.RiskFlag)
	o.Category = c
	o.DisputeState = outcome.DisputeState
	o.RiskFlag = outcome.RiskFlag
}
