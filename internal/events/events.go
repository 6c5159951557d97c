package events

import "context"

// Sale lifecycle event streams and types. The WS hub subscribes to StreamSale
// and fans events out to connected buyers and sellers.
const StreamSale = "events:sale"

const (
	EventDomainStatusChanged  = "domain_status_changed"
	EventPaymentSettled       = "payment_settled"
	EventEscrowStatusChanged  = "escrow_status_changed"
	EventNegotiationMessage   = "negotiation_message"
	EventPaymentStatusChanged = "payment_status_changed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
