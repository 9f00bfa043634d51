// Package events defines the shop event model shared by the classifier, the identity resolver
// and the notification formatter.
package events

import (
	"time"

	"github.com/DIMO-Network/shop-notifier/internal/payload"
)

// Unknown is rendered wherever a value could not be recovered from an event.
const Unknown = "Unknown"

// Kind names, also used as metric labels and in notification conditions.
const (
	KindEstimateViewed       = "estimate_viewed"
	KindWorkAuthorization    = "work_authorization"
	KindRepairOrderCompleted = "repair_order_completed"
	KindPaymentMade          = "payment_made"
	KindInspectionCompleted  = "inspection_completed"
	KindPartsReceived        = "parts_received"
	KindUnrecognized         = "unrecognized"
)

// RawEvent is one inbound event. Tag is free text chosen by the emitter.
type RawEvent struct {
	Tag     string
	Payload payload.Object
}

// FromBody converts a decoded webhook body of the form {"event": ..., "data": {...}}
// into a RawEvent. A missing or malformed tag or data object degrades to empty values.
func FromBody(body payload.Object) RawEvent {
	return RawEvent{
		Tag:     body.String("event").Or(""),
		Payload: body.Object("data").Or(payload.Object{}),
	}
}

// Kind is the classified business meaning of an event.
type Kind interface {
	// Name returns the stable kind name.
	Name() string
	isKind()
}

// EstimateViewed is emitted when the customer opens an estimate.
type EstimateViewed struct{}

// WorkAuthorization is emitted when the customer approves or declines jobs.
type WorkAuthorization struct {
	ApprovedCount int
	DeclinedCount int
}

// RepairOrderCompleted is emitted when a repair order moves to the completed status.
type RepairOrderCompleted struct {
	LaborCents  int64
	PartsCents  int64
	FeeCents    int64
	TotalCents  int64
	CompletedAt payload.Opt[time.Time]
	Jobs        []JobLine
	Fees        []FeeLine
}

// JobLine is a single job performed on a completed repair order.
type JobLine struct {
	Name       string
	LaborHours float64
	LaborCents int64
}

// FeeLine is a single fee charged on a completed repair order.
type FeeLine struct {
	Name       string
	TotalCents int64
}

// PaymentMade is emitted when a payment is recorded against a repair order.
// IsPaidInFull is best effort and only as good as the fields the emitter sent.
type PaymentMade struct {
	AmountCents   int64
	PaymentMethod string
	IsPaidInFull  bool
	PaidAt        payload.Opt[time.Time]
}

// InspectionCompleted is emitted when a vehicle inspection is marked complete.
type InspectionCompleted struct {
	InspectionName string
	CompletedAt    payload.Opt[time.Time]
	Groups         []InspectionGroup
}

// InspectionGroup is a titled set of inspection tasks.
type InspectionGroup struct {
	Title string
	Tasks []InspectionTask
}

// InspectionTask is one inspected item.
type InspectionTask struct {
	Name     string
	Rating   string
	Reported bool
	Finding  string
}

// PartsReceived is emitted when a purchase order is received.
type PartsReceived struct {
	PurchaseOrderID string
}

// Unrecognized is any event no rule matched. It is logged, never notified.
type Unrecognized struct {
	RawTag string
}

func (EstimateViewed) Name() string       { return KindEstimateViewed }
func (WorkAuthorization) Name() string    { return KindWorkAuthorization }
func (RepairOrderCompleted) Name() string { return KindRepairOrderCompleted }
func (PaymentMade) Name() string          { return KindPaymentMade }
func (InspectionCompleted) Name() string  { return KindInspectionCompleted }
func (PartsReceived) Name() string        { return KindPartsReceived }
func (Unrecognized) Name() string         { return KindUnrecognized }

func (EstimateViewed) isKind()       {}
func (WorkAuthorization) isKind()    {}
func (RepairOrderCompleted) isKind() {}
func (PaymentMade) isKind()          {}
func (InspectionCompleted) isKind()  {}
func (PartsReceived) isKind()        {}
func (Unrecognized) isKind()         {}

// ResolvedIdentity is the customer and repair order an event belongs to.
// Both fields are always set, to Unknown when nothing could be recovered.
type ResolvedIdentity struct {
	CustomerName      string
	RepairOrderNumber string
}

// UnknownIdentity returns an identity with both fields Unknown.
func UnknownIdentity() ResolvedIdentity {
	return ResolvedIdentity{CustomerName: Unknown, RepairOrderNumber: Unknown}
}
