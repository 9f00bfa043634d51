package celcondition

import (
	"testing"

	"github.com/DIMO-Network/shop-notifier/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareCondition(t *testing.T) {
	tests := []struct {
		name        string
		condition   string
		expectError bool
	}{
		{
			name:        "empty condition",
			condition:   "",
			expectError: true,
		},
		{
			name:        "kind condition",
			condition:   "kind == 'payment_made'",
			expectError: false,
		},
		{
			name:        "numeric condition",
			condition:   "amountCents >= 10000",
			expectError: false,
		},
		{
			name:        "complex condition with multiple variables",
			condition:   "kind != 'estimate_viewed' && (paidInFull || totalCents > 0)",
			expectError: false,
		},
		{
			name:        "invalid CEL syntax",
			condition:   "amountCents > >",
			expectError: true,
		},
		{
			name:        "undefined variable",
			condition:   "unknownVar == 5",
			expectError: true,
		},
		{
			name:        "type mismatch",
			condition:   "amountCents == 'string'",
			expectError: true,
		},
		{
			name:        "non bool output",
			condition:   "amountCents + 10",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PrepareCondition(tt.condition)
			if tt.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEvaluateCondition(t *testing.T) {
	grant := events.ResolvedIdentity{CustomerName: "Grant Bodmer", RepairOrderNumber: "12558"}
	tests := []struct {
		name      string
		condition string
		kind      events.Kind
		expected  bool
	}{
		{
			name:      "kind matches",
			condition: "kind == 'payment_made'",
			kind:      events.PaymentMade{AmountCents: 27000},
			expected:  true,
		},
		{
			name:      "kind does not match",
			condition: "kind == 'payment_made'",
			kind:      events.EstimateViewed{},
			expected:  false,
		},
		{
			name:      "large payments only",
			condition: "kind != 'payment_made' || amountCents >= 10000",
			kind:      events.PaymentMade{AmountCents: 500},
			expected:  false,
		},
		{
			name:      "paid in full",
			condition: "paidInFull",
			kind:      events.PaymentMade{AmountCents: 500, IsPaidInFull: true},
			expected:  true,
		},
		{
			name:      "completed total",
			condition: "totalCents > 1000",
			kind:      events.RepairOrderCompleted{TotalCents: 1700},
			expected:  true,
		},
		{
			name:      "identity",
			condition: "customerName.startsWith('Grant') && repairOrderNumber == '12558'",
			kind:      events.EstimateViewed{},
			expected:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prg, err := PrepareCondition(tt.condition)
			require.NoError(t, err)
			got, err := EvaluateCondition(prg, VarsFor(tt.kind, grant))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFilter(t *testing.T) {
	t.Run("empty condition allows everything", func(t *testing.T) {
		f, err := NewFilter("")
		require.NoError(t, err)
		ok, err := f.ShouldNotify(events.EstimateViewed{}, events.UnknownIdentity())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("nil filter allows everything", func(t *testing.T) {
		var f *Filter
		ok, err := f.ShouldNotify(events.EstimateViewed{}, events.UnknownIdentity())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("invalid condition", func(t *testing.T) {
		_, err := NewFilter("kind ==")
		require.Error(t, err)
	})

	t.Run("condition applies", func(t *testing.T) {
		f, err := NewFilter("kind != 'estimate_viewed'")
		require.NoError(t, err)
		ok, err := f.ShouldNotify(events.EstimateViewed{}, events.UnknownIdentity())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
