// Package identity recovers the customer and repair order an event belongs to,
// filling gaps from facts learned on earlier events.
package identity

import (
	"regexp"
	"strings"

	"github.com/DIMO-Network/shop-notifier/internal/events"
	"github.com/DIMO-Network/shop-notifier/internal/payload"
)

// Tags led by a business object rather than a person. A leading capitalised
// pair on these is not a name.
var objectLedPrefixes = []string{"repair order", "purchase order"}

var leadingNamePattern = regexp.MustCompile(`^([\p{Lu}][\p{L}'\-]*)\s+([\p{Lu}][\p{L}'\-]*)(?:\s|$)`)

// Resolver produces a best effort identity for each event and teaches the Store
// whatever the event asserts.
type Resolver struct {
	store *Store
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve never fails; fields it cannot recover are events.Unknown.
func (r *Resolver) Resolve(ev events.RawEvent) events.ResolvedIdentity {
	p := ev.Payload
	identity := events.UnknownIdentity()

	// Only facts the payload states are written; numbers recovered from the store are read-only.
	number, fromPayload := p.String("repairOrderNumber").Get()
	hasNumber := fromPayload
	roID, hasID := internalID(p).Get()
	if fromPayload && hasID {
		r.store.RememberNumber(roID, number)
	}
	if !hasNumber && hasID {
		number, hasNumber = r.store.Number(roID)
	}
	if hasNumber {
		identity.RepairOrderNumber = number
	}

	if name, ok := customerName(p).Get(); ok {
		if fromPayload {
			r.store.RememberCustomer(number, name)
		}
		identity.CustomerName = name
		return identity
	}
	if payer, ok := p.String("payerName").Get(); ok {
		identity.CustomerName = payer
		return identity
	}
	if hasNumber {
		if cached, ok := r.store.CustomerName(number); ok {
			identity.CustomerName = cached
			return identity
		}
	}
	if name, ok := nameFromTag(ev.Tag).Get(); ok {
		identity.CustomerName = name
	}
	return identity
}

func internalID(p payload.Object) payload.Opt[string] {
	if id, ok := p.String("repairOrderId").Get(); ok {
		return payload.Some(id)
	}
	return p.String("id")
}

func customerName(p payload.Object) payload.Opt[string] {
	first, okFirst := p.String("customer", "firstName").Get()
	last, okLast := p.String("customer", "lastName").Get()
	if !okFirst || !okLast {
		return payload.Missing[string]()
	}
	return payload.Some(first + " " + last)
}

// nameFromTag reads a leading "First Last" pair, as emitted for events a person initiated.
func nameFromTag(tag string) payload.Opt[string] {
	tag = strings.TrimSpace(tag)
	lower := strings.ToLower(tag)
	for _, prefix := range objectLedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return payload.Missing[string]()
		}
	}
	m := leadingNamePattern.FindStringSubmatch(tag)
	if m == nil {
		return payload.Missing[string]()
	}
	return payload.Some(m[1] + " " + m[2])
}
