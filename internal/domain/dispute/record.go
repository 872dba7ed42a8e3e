package dispute

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/riskledger/backend/internal/domain/shared"
)

// Source tags recorded on a persisted record, one per signal origin
const (
	SourceOrders           = "orders"
	SourceFraud            = "fraud"
	SourceDisputeOpen      = "dispute-open"
	SourceDisputeSubmitted = "dispute-submitted"
	SourceDisputeWon       = "dispute-won"
	SourceDisputeLost      = "dispute-lost"
)

// DisputeRecord is the persisted, merchant-scoped record for one order
// number. It accumulates signal across imports: the dispute state never
// moves backward, the risk label is sticky once raised, and the sources
// set only grows. The snapshot always reflects the latest import.
type DisputeRecord struct {
	shared.OwnerAggregateRoot
	OrderNo            string
	LatestDisputeState DisputeState
	LatestRiskLabel    RiskLabel
	Sources            map[string]bool
	Snapshot           CanonicalOrder
	LastImportedAt     time.Time
}

// NewDisputeRecord creates a record from the first sighting of an order
func NewDisputeRecord(ownerID uuid.UUID, order *CanonicalOrder) (*DisputeRecord, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if order == nil || order.OrderNo == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NO", "Order number cannot be empty")
	}
	r := &DisputeRecord{
		OwnerAggregateRoot: shared.NewOwnerAggregateRoot(ownerID),
		OrderNo:            order.OrderNo,
		LatestDisputeState: DisputeStateNone,
		Sources:            make(map[string]bool),
	}
	r.Merge(order)
	return r, nil
}

// Merge folds one imported order into the record. Merge is idempotent and
// commutative per order number: the state only escalates by rank, the risk
// label only rises, and sources accumulate. The snapshot is last-write-wins.
func (r *DisputeRecord) Merge(incoming *CanonicalOrder) {
	if incoming.DisputeState.Rank() > r.LatestDisputeState.Rank() {
		r.LatestDisputeState = incoming.DisputeState
	}
	if incoming.RiskFlag {
		r.LatestRiskLabel = RiskLabelHigh
	}
	if r.Sources == nil {
		r.Sources = make(map[string]bool)
	}
	r.Sources[SourceTag(incoming)] = true
	r.Snapshot = *incoming
	r.LastImportedAt = time.Now()
}

// SourceTag names the signal origin an imported order represents
func SourceTag(o *CanonicalOrder) string {
	switch o.DisputeState {
	case DisputeStateNeedsResponse:
		return SourceDisputeOpen
	case DisputeStateUnderReview:
		return SourceDisputeSubmitted
	case DisputeStateWon:
		return SourceDisputeWon
	case DisputeStateLost:
		return SourceDisputeLost
	}
	if o.RiskFlag {
		return SourceFraud
	}
	return SourceOrders
}

// SourceList returns the accumulated sources in stable order
func (r *DisputeRecord) SourceList() []string {
	out := make([]string, 0, len(r.Sources))
	for s := range r.Sources {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// IsQuarantined reports whether the latest snapshot sits in quarantine
func (r *DisputeRecord) IsQuarantined() bool {
	return r.Snapshot.IsQuarantined()
}
