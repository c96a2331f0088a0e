// Package eventlog journals vault operations for audit and replay.
// Events can be appended to an in-memory sink, a JSONL stream, or a
// SQLite store.
package eventlog

import (
	"time"

	"github.com/google/uuid"
)

// Operation names journaled by the vault.
const (
	OpInitialize    = "initialize"
	OpRedeem        = "redeem"
	OpConfigure     = "configure_auction"
	OpTransfer      = "transfer_shares"
	OpSettle        = "settle"
	OpWithdraw      = "withdraw"
	OpRequestRandom = "request_randomization"
	OpSettleWinners = "settle_winners"
	OpClaimJackpot  = "claim_jackpot"
)

// Event is one journaled vault operation.
type Event struct {
	ID     string            `json:"id"`
	Time   time.Time         `json:"time"`
	Op     string            `json:"op"`
	Actor  string            `json:"actor"`            // hex address
	Block  uint64            `json:"block"`
	Amount string            `json:"amount,omitempty"` // decimal base units
	Attrs  map[string]string `json:"attrs,omitempty"`
}

// Sink receives journal events.
type Sink interface {
	Append(e Event) error
}

// New constructs an event with a fresh id and UTC timestamp.
func New(op, actor string, block uint64) Event {
	return Event{
		ID:    uuid.NewString(),
		Time:  time.Now().UTC(),
		Op:    op,
		Actor: actor,
		Block: block,
	}
}

// WithAmount attaches a value amount to the event.
func (e Event) WithAmount(amount string) Event {
	e.Amount = amount
	return e
}

// WithAttr attaches one key/value attribute to the event.
func (e Event) WithAttr(key, value string) Event {
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[key] = value
	return e
}

// Memory is an in-memory sink, useful in tests and simulations.
type Memory struct {
	Events []Event
}

// Append stores the event.
func (m *Memory) Append(e Event) error {
	m.Events = append(m.Events, e)
	return nil
}

// ByOp returns the stored events matching an operation name.
func (m *Memory) ByOp(op string) []Event {
	var out []Event
	for _, e := range m.Events {
		if e.Op == op {
			out = append(out, e)
		}
	}
	return out
}
