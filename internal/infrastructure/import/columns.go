package csvimport

import "strings"

// Recognized column names (Shopify-style order export). Lookup is
// case-insensitive; these are the canonical spellings.
const (
	ColOrderNo           = "Name"
	ColCreatedAt         = "Created at"
	ColEmail             = "Email"
	ColTotal             = "Total"
	ColCurrency          = "Currency"
	ColFinancialStatus   = "Financial Status"
	ColFulfillmentStatus = "Fulfillment Status"
	ColTags              = "Tags"
	ColRiskLevel         = "Risk Level"
	ColShippingCity      = "Shipping City"
	ColShippingProvince  = "Shipping Province"
	ColShippingCountry   = "Shipping Country"
	ColShippingMethod    = "Shipping Method"
	ColLineitemQuantity  = "Lineitem quantity"
	ColCancelledAt       = "Cancelled at"
)

// recognizedColumns drives the split between mapped fields and extraFields
var recognizedColumns = []string{
	ColOrderNo, ColCreatedAt, ColEmail, ColTotal, ColCurrency,
	ColFinancialStatus, ColFulfillmentStatus, ColTags, ColRiskLevel,
	ColShippingCity, ColShippingProvince, ColShippingCountry,
	ColShippingMethod, ColLineitemQuantity, ColCancelledAt,
}

// ColumnMap is a case-insensitive header name to column index lookup.
// Only the identity column is required; every other column is optional
// and resolves to an empty value when absent.
type ColumnMap struct {
	indexByName map[string]int
	headers     []string
}

// NewColumnMap builds the lookup from a parsed header row. The identity
// column must resolve or the whole batch fails.
func NewColumnMap(headers []string) (*ColumnMap, error) {
	m := &ColumnMap{
		indexByName: make(map[string]int, len(headers)),
		headers:     headers,
	}
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, exists := m.indexByName[key]; !exists {
			m.indexByName[key] = i
		}
	}
	if !m.Has(ColOrderNo) {
		return nil, NewMissingColumnError(ColOrderNo)
	}
	return m, nil
}

// Has reports whether a column resolves, case-insensitively
func (m *ColumnMap) Has(name string) bool {
	_, ok := m.indexByName[strings.ToLower(name)]
	return ok
}

// Get returns the trimmed field value for a column, empty when the column
// is absent or the row is short
func (m *ColumnMap) Get(fields []string, name string) string {
	idx, ok := m.indexByName[strings.ToLower(name)]
	if !ok || idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}

// ExtraFields collects values of unrecognized columns, keyed by the header
// spelling from the file
func (m *ColumnMap) ExtraFields(fields []string) map[string]string {
	recognized := make(map[string]bool, len(recognizedColumns))
	for _, c := range recognizedColumns {
		recognized[strings.ToLower(c)] = true
	}

	var extra map[string]string
	for i, h := range m.headers {
		name := strings.TrimSpace(h)
		if name == "" || recognized[strings.ToLower(name)] {
			continue
		}
		if i >= len(fields) {
			continue
		}
		value := strings.TrimSpace(fields[i])
		if value == "" {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[name] = value
	}
	return extra
}
