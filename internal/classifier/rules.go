package classifier

import (
	"regexp"
	"strings"
	"time"

	"github.com/DIMO-Network/shop-notifier/internal/events"
	"github.com/DIMO-Network/shop-notifier/internal/payload"
)

// Rule is one entry of the classification table. The first rule whose Match
// returns true builds the event kind.
type Rule struct {
	Name  string
	Match func(ev events.RawEvent) bool
	Build func(ev events.RawEvent) events.Kind
}

// DefaultRules returns the built-in rule table in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "estimate-viewed",
			Match: tagContainsAll("estimate", "viewed"),
			Build: buildEstimateViewed,
		},
		{
			Name:  "work-authorization",
			Match: tagContainsAll("approved", "declined"),
			Build: buildWorkAuthorization,
		},
		{
			Name:  "repair-order-completed",
			Match: statusIsComplete,
			Build: buildRepairOrderCompleted,
		},
		{
			Name:  "payment-made",
			Match: isPayment,
			Build: buildPaymentMade,
		},
		{
			Name:  "inspection-completed",
			Match: tagContainsAll("inspection", "complete"),
			Build: buildInspectionCompleted,
		},
		{
			Name:  "parts-received",
			Match: tagContainsAll("purchase order", "received"),
			Build: buildPartsReceived,
		},
	}
}

// builders maps kind names to their constructors so alias rules can reuse them.
var builders = map[string]func(events.RawEvent) events.Kind{
	events.KindEstimateViewed:       buildEstimateViewed,
	events.KindWorkAuthorization:    buildWorkAuthorization,
	events.KindRepairOrderCompleted: buildRepairOrderCompleted,
	events.KindPaymentMade:          buildPaymentMade,
	events.KindInspectionCompleted:  buildInspectionCompleted,
	events.KindPartsReceived:        buildPartsReceived,
}

var purchaseOrderPattern = regexp.MustCompile(`(?i)purchase\s+order\s*#\s*(\d+)`)

func tagContainsAll(words ...string) func(events.RawEvent) bool {
	return func(ev events.RawEvent) bool {
		return containsAll(ev.Tag, words)
	}
}

func containsAll(tag string, words []string) bool {
	lower := strings.ToLower(tag)
	for _, w := range words {
		if !strings.Contains(lower, strings.ToLower(w)) {
			return false
		}
	}
	return true
}

func statusIsComplete(ev events.RawEvent) bool {
	status, ok := ev.Payload.String("repairOrderStatus", "name").Get()
	if !ok {
		return false
	}
	return strings.EqualFold(status, "complete") || strings.EqualFold(status, "completed")
}

func isPayment(ev events.RawEvent) bool {
	if containsAll(ev.Tag, []string{"payment made"}) {
		return true
	}
	paid, okPaid := ev.Payload.Int64("amountPaid").Get()
	total, okTotal := ev.Payload.Int64("totalSales").Get()
	return okPaid && okTotal && paid > 0 && paid == total
}

// isPaidInFull looks for an explicit signal that the order balance was settled.
// Emitters are inconsistent about which of these fields they send.
func isPaidInFull(p payload.Object) bool {
	paid, okPaid := p.Int64("amountPaid").Get()
	total, okTotal := p.Int64("totalSales").Get()
	if okPaid && okTotal && paid > 0 && paid >= total {
		return true
	}
	for _, key := range []string{"paymentStatus", "status"} {
		if status, ok := p.String(key).Get(); ok && strings.EqualFold(status, "succeeded") {
			return true
		}
	}
	return false
}

func buildEstimateViewed(events.RawEvent) events.Kind {
	return events.EstimateViewed{}
}

func buildWorkAuthorization(ev events.RawEvent) events.Kind {
	var kind events.WorkAuthorization
	for _, job := range ev.Payload.Objects("jobs").Or(nil) {
		if job.Bool("authorized").Or(false) {
			kind.ApprovedCount++
		} else {
			kind.DeclinedCount++
		}
	}
	return kind
}

func buildRepairOrderCompleted(ev events.RawEvent) events.Kind {
	p := ev.Payload
	kind := events.RepairOrderCompleted{
		LaborCents:  p.Int64("laborSales").Or(0),
		PartsCents:  p.Int64("partsSales").Or(0),
		FeeCents:    p.Int64("feeTotal").Or(0),
		TotalCents:  p.Int64("totalSales").Or(0),
		CompletedAt: timeAt(p, "completedDate"),
	}
	for _, job := range p.Objects("jobs").Or(nil) {
		kind.Jobs = append(kind.Jobs, events.JobLine{
			Name:       job.String("name").Or(events.Unknown),
			LaborHours: job.Float64("laborHours").Or(0),
			LaborCents: job.Int64("laborTotal").Or(0),
		})
	}
	for _, fee := range p.Objects("fees").Or(nil) {
		kind.Fees = append(kind.Fees, events.FeeLine{
			Name:       fee.String("name").Or(events.Unknown),
			TotalCents: fee.Int64("total").Or(0),
		})
	}
	return kind
}

func buildPaymentMade(ev events.RawEvent) events.Kind {
	p := ev.Payload
	amount, ok := p.Int64("amount").Get()
	if !ok {
		amount = p.Int64("amountPaid").Or(0)
	}
	method, ok := p.String("paymentType", "name").Get()
	if !ok {
		method = p.String("paymentMethod").Or(events.Unknown)
	}
	return events.PaymentMade{
		AmountCents:   amount,
		PaymentMethod: method,
		IsPaidInFull:  isPaidInFull(p),
		PaidAt:        timeAt(p, "paymentDate"),
	}
}

func buildInspectionCompleted(ev events.RawEvent) events.Kind {
	p := ev.Payload
	kind := events.InspectionCompleted{
		InspectionName: p.String("name").Or(events.Unknown),
		CompletedAt:    timeAt(p, "completedDate"),
	}
	for _, group := range p.Objects("inspectionTasks").Or(nil) {
		g := events.InspectionGroup{Title: group.String("title").Or("")}
		for _, task := range group.Objects("tasks").Or(nil) {
			g.Tasks = append(g.Tasks, events.InspectionTask{
				Name:     task.String("name").Or(events.Unknown),
				Rating:   task.String("inspectionRating").Or(""),
				Reported: task.Bool("reported").Or(false),
				Finding:  task.String("finding").Or(""),
			})
		}
		kind.Groups = append(kind.Groups, g)
	}
	return kind
}

func buildPartsReceived(ev events.RawEvent) events.Kind {
	if id, ok := ev.Payload.String("purchaseOrderId").Get(); ok {
		return events.PartsReceived{PurchaseOrderID: id}
	}
	if m := purchaseOrderPattern.FindStringSubmatch(ev.Tag); m != nil {
		return events.PartsReceived{PurchaseOrderID: m[1]}
	}
	return events.PartsReceived{PurchaseOrderID: events.Unknown}
}

func timeAt(p payload.Object, key string) payload.Opt[time.Time] {
	s, ok := p.String(key).Get()
	if !ok {
		return payload.Missing[time.Time]()
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return payload.Missing[time.Time]()
	}
	return payload.Some(t.UTC())
}
