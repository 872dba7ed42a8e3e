// Package feed maps already-fetched live order feed nodes into the canonical
// order shape. Transport (pagination, proxies, retries) lives upstream; this
// boundary is a pure mapping.
package feed

import (
	"strings"
	"time"

	"github.com/riskledger/backend/internal/domain/dispute"
	"github.com/riskledger/backend/internal/domain/shared/valueobject"
)

// MoneyNode is the amount shape carried by feed nodes
type MoneyNode struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// CustomerNode is the nested customer object on a feed node
type CustomerNode struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName"`
	City           string `json:"city,omitempty"`
	Province       string `json:"province,omitempty"`
	Country        string `json:"country,omitempty"`
	NumberOfOrders int    `json:"numberOfOrders"`
}

// OrderNode is one deserialized order from the live feed
type OrderNode struct {
	Name              string        `json:"name"`
	CreatedAt         string        `json:"createdAt"`
	Tags              []string      `json:"tags"`
	TotalPrice        MoneyNode     `json:"totalPriceSet"`
	Customer          *CustomerNode `json:"customer,omitempty"`
	FinancialStatus   string        `json:"displayFinancialStatus"`
	FulfillmentStatus string        `json:"displayFulfillmentStatus"`
	RiskLevel         string        `json:"riskLevel,omitempty"`
	ShippingMethod    string        `json:"shippingMethod,omitempty"`
	CancelledAt       string        `json:"cancelledAt,omitempty"`
	LineItemCount     int           `json:"lineItemCount,omitempty"`
}

// NativeRiskHint reports whether the feed itself flags the order as risky
func (n *OrderNode) NativeRiskHint() bool {
	return strings.EqualFold(strings.TrimSpace(n.RiskLevel), "high")
}

// MapOrderNode converts one feed node into a canonical order. Classification
// and validation run downstream; this only reshapes fields.
func MapOrderNode(node *OrderNode) (*dispute.CanonicalOrder, error) {
	order, err := dispute.NewCanonicalOrder(strings.TrimSpace(node.Name))
	if err != nil {
		return nil, err
	}

	order.SetOccurredAt(parseTimestamp(node.CreatedAt), node.CreatedAt)
	order.Tags = dispute.NewTagSet(node.Tags...)
	order.PaymentState = dispute.ParsePaymentState(node.FinancialStatus)
	order.FulfillmentState = dispute.ParseFulfillmentState(node.FulfillmentStatus)
	order.ShippingMethod = strings.TrimSpace(node.ShippingMethod)
	order.Cancelled = strings.TrimSpace(node.CancelledAt) != ""
	if node.LineItemCount > 0 {
		order.ItemsCount = node.LineItemCount
	}

	if node.TotalPrice.Amount != "" {
		money, err := valueobject.NewMoneyFromString(
			node.TotalPrice.Amount,
			valueobject.Currency(strings.ToUpper(strings.TrimSpace(node.TotalPrice.CurrencyCode))),
		)
		if err == nil {
			order.Total = money
		}
	}

	if c := node.Customer; c != nil {
		order.Customer = dispute.CustomerInfo{
			Email:           strings.TrimSpace(c.Email),
			DisplayName:     strings.TrimSpace(c.DisplayName),
			Location:        joinLocation(c.City, c.Province, c.Country),
			PriorOrderCount: c.NumberOfOrders,
		}
	}

	return order, nil
}

// timestampLayouts are tried in order when parsing feed timestamps
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func joinLocation(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
