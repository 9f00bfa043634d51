// Package celcondition compiles and evaluates the optional notification condition.
package celcondition

import (
	"fmt"

	"github.com/DIMO-Network/shop-notifier/internal/events"
	"github.com/google/cel-go/cel"
	celtypes "github.com/google/cel-go/common/types"
)

// Vars are the values a condition can refer to.
type Vars struct {
	Kind              string
	CustomerName      string
	RepairOrderNumber string
	AmountCents       int64
	TotalCents        int64
	PaidInFull        bool
}

// VarsFor extracts condition variables from a classified event.
func VarsFor(kind events.Kind, identity events.ResolvedIdentity) Vars {
	vars := Vars{
		CustomerName:      identity.CustomerName,
		RepairOrderNumber: identity.RepairOrderNumber,
	}
	if kind != nil {
		vars.Kind = kind.Name()
	}
	switch k := kind.(type) {
	case events.PaymentMade:
		vars.AmountCents = k.AmountCents
		vars.PaidInFull = k.IsPaidInFull
	case events.RepairOrderCompleted:
		vars.TotalCents = k.TotalCents
	}
	return vars
}

func (v Vars) activation() map[string]any {
	return map[string]any{
		"kind":              v.Kind,
		"customerName":      v.CustomerName,
		"repairOrderNumber": v.RepairOrderNumber,
		"amountCents":       v.AmountCents,
		"totalCents":        v.TotalCents,
		"paidInFull":        v.PaidInFull,
	}
}

// PrepareCondition compiles celCondition and checks that it yields a bool.
func PrepareCondition(celCondition string) (cel.Program, error) {
	opts := []cel.EnvOption{
		cel.Variable("kind", cel.StringType),
		cel.Variable("customerName", cel.StringType),
		cel.Variable("repairOrderNumber", cel.StringType),
		cel.Variable("amountCents", cel.IntType),
		cel.Variable("totalCents", cel.IntType),
		cel.Variable("paidInFull", cel.BoolType),
		cel.CrossTypeNumericComparisons(true),
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(celCondition)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to program CEL expression: %w", err)
	}

	out, _, err := prg.Eval(Vars{}.activation())
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate CEL condition: %w", err)
	}
	if out.Type() != celtypes.BoolType {
		return nil, fmt.Errorf("output type is not bool: %s", out.Type())
	}
	return prg, nil
}

// EvaluateCondition runs prg against vars.
func EvaluateCondition(prg cel.Program, vars Vars) (bool, error) {
	out, _, err := prg.Eval(vars.activation())
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL condition: %w", err)
	}
	return out.Type() == celtypes.BoolType && out.Value() == true, nil
}

// Filter decides whether a classified event should be notified.
type Filter struct {
	program cel.Program
}

// NewFilter compiles condition. An empty condition lets every event through.
func NewFilter(condition string) (*Filter, error) {
	if condition == "" {
		return &Filter{}, nil
	}
	prg, err := PrepareCondition(condition)
	if err != nil {
		return nil, err
	}
	return &Filter{program: prg}, nil
}

// ShouldNotify evaluates the condition for an event.
func (f *Filter) ShouldNotify(kind events.Kind, identity events.ResolvedIdentity) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}
	return EvaluateCondition(f.program, VarsFor(kind, identity))
}
