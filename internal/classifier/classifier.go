// Package classifier decides which business event a shop webhook represents.
// Classification walks an ordered rule table and the first match wins.
package classifier

import (
	"sync/atomic"

	"github.com/DIMO-Network/shop-notifier/internal/events"
	"github.com/DIMO-Network/shop-notifier/internal/payload"
)

// Classifier holds a rule table that can be swapped while events are being classified.
type Classifier struct {
	rules atomic.Pointer[[]Rule]
}

// New creates a Classifier over the given rules.
func New(rules []Rule) *Classifier {
	c := &Classifier{}
	c.SetRules(rules)
	return c
}

// NewDefault creates a Classifier over DefaultRules.
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// Classify returns the kind built by the first matching rule, or Unrecognized.
// It has no side effects.
func (c *Classifier) Classify(ev events.RawEvent) events.Kind {
	for _, rule := range *c.rules.Load() {
		if rule.Match(ev) {
			return rule.Build(ev)
		}
	}
	return events.Unrecognized{RawTag: ev.Tag}
}

// Rules returns a copy of the current table.
func (c *Classifier) Rules() []Rule {
	current := *c.rules.Load()
	out := make([]Rule, len(current))
	copy(out, current)
	return out
}

// SetRules replaces the table. In-flight classifications finish on the old one.
func (c *Classifier) SetRules(rules []Rule) {
	table := make([]Rule, len(rules))
	copy(table, rules)
	c.rules.Store(&table)
}

var defaultClassifier = NewDefault()

// Classify classifies a tag and payload with the built-in rules.
func Classify(tag string, p payload.Object) events.Kind {
	return defaultClassifier.Classify(events.RawEvent{Tag: tag, Payload: p})
}
