// Package notification renders classified shop events into chat notification content.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/DIMO-Network/shop-notifier/internal/events"
	"github.com/DIMO-Network/shop-notifier/internal/payload"
)

const timeLayout = "Jan 2, 2006 3:04 PM MST"

// Field is one labelled value shown alongside the body.
type Field struct {
	Label string
	Value string
}

// Content is a transport independent notification.
type Content struct {
	Kind   string
	Title  string
	Body   string
	Fields []Field
}

// Format renders kind for identity. It returns false for events that must not be notified.
func Format(kind events.Kind, identity events.ResolvedIdentity) (*Content, bool) {
	id := normalize(identity)
	switch k := kind.(type) {
	case events.EstimateViewed:
		return &Content{
			Kind:  k.Name(),
			Title: repairOrderTitle("👀", id),
			Body:  "Customer viewed the estimate.",
			Fields: []Field{
				{Label: "Customer", Value: id.CustomerName},
				{Label: "Repair Order", Value: id.RepairOrderNumber},
			},
		}, true
	case events.WorkAuthorization:
		return &Content{
			Kind:  k.Name(),
			Title: repairOrderTitle("✅", id),
			Body:  fmt.Sprintf("Customer approved %d job(s) and declined %d job(s).", k.ApprovedCount, k.DeclinedCount),
			Fields: []Field{
				{Label: "Approved", Value: fmt.Sprint(k.ApprovedCount)},
				{Label: "Declined", Value: fmt.Sprint(k.DeclinedCount)},
			},
		}, true
	case events.RepairOrderCompleted:
		return &Content{
			Kind:  k.Name(),
			Title: repairOrderTitle("🔧", id),
			Body:  completedBody(k),
			Fields: []Field{
				{Label: "Labor", Value: Dollars(k.LaborCents)},
				{Label: "Parts", Value: Dollars(k.PartsCents)},
				{Label: "Fees", Value: Dollars(k.FeeCents)},
				{Label: "Total", Value: Dollars(k.TotalCents)},
			},
		}, true
	case events.PaymentMade:
		return &Content{
			Kind:  k.Name(),
			Title: repairOrderTitle("🧾", id),
			Body:  paymentBody(k),
			Fields: []Field{
				{Label: "Amount", Value: Dollars(k.AmountCents)},
				{Label: "Method", Value: orUnknown(k.PaymentMethod)},
				{Label: "Status", Value: paidStatus(k.IsPaidInFull)},
			},
		}, true
	case events.InspectionCompleted:
		return &Content{
			Kind:  k.Name(),
			Title: repairOrderTitle("🔍", id),
			Body:  inspectionBody(k),
			Fields: []Field{
				{Label: "Inspection", Value: orUnknown(k.InspectionName)},
				{Label: "Customer", Value: id.CustomerName},
			},
		}, true
	case events.PartsReceived:
		po := orUnknown(k.PurchaseOrderID)
		return &Content{
			Kind:   k.Name(),
			Title:  "📦 Purchase Order #" + po,
			Body:   "Parts have been received for this order.",
			Fields: []Field{{Label: "Purchase Order", Value: po}},
		}, true
	default:
		return nil, false
	}
}

// Dollars renders integer cents as a dollar amount with two decimals.
func Dollars(cents int64) string {
	sign := ""
	abs := uint64(cents)
	if cents < 0 {
		sign = "-"
		// two's complement negation also covers math.MinInt64
		abs = -abs
	}
	return fmt.Sprintf("%s$%d.%02d", sign, abs/100, abs%100)
}

func normalize(id events.ResolvedIdentity) events.ResolvedIdentity {
	id.CustomerName = orUnknown(id.CustomerName)
	id.RepairOrderNumber = orUnknown(id.RepairOrderNumber)
	return id
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return events.Unknown
	}
	return s
}

func repairOrderTitle(icon string, id events.ResolvedIdentity) string {
	return fmt.Sprintf("%s Repair Order #%s - %s", icon, id.RepairOrderNumber, id.CustomerName)
}

func paidStatus(paidInFull bool) string {
	if paidInFull {
		return "✅ Paid in Full"
	}
	return "⚠️ Partially Paid"
}

func completedBody(k events.RepairOrderCompleted) string {
	var b strings.Builder
	b.WriteString("Work has been completed.")
	writeTime(&b, "Completed on", k.CompletedAt)
	if len(k.Jobs) > 0 {
		b.WriteString("\n\n**Services Performed:**")
		for _, job := range k.Jobs {
			fmt.Fprintf(&b, "\n- %s\n  - Labor Hours: %g\n  - Labor Cost: %s", job.Name, job.LaborHours, Dollars(job.LaborCents))
		}
	}
	if len(k.Fees) > 0 {
		b.WriteString("\n\n**Fees:**")
		for _, fee := range k.Fees {
			fmt.Fprintf(&b, "\n- %s: %s", fee.Name, Dollars(fee.TotalCents))
		}
	}
	fmt.Fprintf(&b, "\n\n**Total Sales:** %s", Dollars(k.TotalCents))
	return b.String()
}

func paymentBody(k events.PaymentMade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 Payment Received: **%s** (%s)", Dollars(k.AmountCents), orUnknown(k.PaymentMethod))
	writeTime(&b, "📅 Payment Date", k.PaidAt)
	b.WriteString("\n" + paidStatus(k.IsPaidInFull))
	return b.String()
}

func inspectionBody(k events.InspectionCompleted) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Inspection \"**%s**\" has been completed.", orUnknown(k.InspectionName))
	writeTime(&b, "Completed on", k.CompletedAt)
	if len(k.Groups) == 0 {
		return b.String()
	}
	b.WriteString("\n\n**Inspection Details:**")
	for _, group := range k.Groups {
		b.WriteString("\n")
		if group.Title != "" {
			fmt.Fprintf(&b, "\n**%s**", group.Title)
		}
		for _, task := range group.Tasks {
			fmt.Fprintf(&b, "\n- %s: %s %s", task.Name, taskMarker(task), taskStatus(task))
			if task.Finding != "" {
				fmt.Fprintf(&b, " (%s)", task.Finding)
			}
		}
	}
	return b.String()
}

func taskMarker(task events.InspectionTask) string {
	switch {
	case task.Rating == "Fair":
		return "⚠️"
	case task.Rating == "Poor" || task.Reported:
		return "❌"
	default:
		return "✅"
	}
}

func taskStatus(task events.InspectionTask) string {
	switch {
	case task.Rating != "":
		return task.Rating
	case task.Reported:
		return "Issue Found"
	default:
		return "No Issues"
	}
}

func writeTime(b *strings.Builder, label string, at payload.Opt[time.Time]) {
	if t, ok := at.Get(); ok {
		fmt.Fprintf(b, "\n%s: %s", label, t.Format(timeLayout))
	}
}
