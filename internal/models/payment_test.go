package models

import "testing"

func TestIsValidPaymentTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{PaymentStatusPending, PaymentStatusPaid, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusPending, PaymentStatusCanceled, true},
		{PaymentStatusPending, PaymentStatusExpired, true},

		// Escrow release outcomes only reachable from paid
		{PaymentStatusPaid, PaymentStatusReleasedToSeller, true},
		{PaymentStatusPaid, PaymentStatusRefundPending, true},
		{PaymentStatusPending, PaymentStatusReleasedToSeller, false},
		{PaymentStatusPending, PaymentStatusRefundPending, false},

		// Exactly one paid transition per intent
		{PaymentStatusPaid, PaymentStatusPaid, false},
		{PaymentStatusExpired, PaymentStatusPaid, false},
		{PaymentStatusCanceled, PaymentStatusPaid, false},
		{PaymentStatusReleasedToSeller, PaymentStatusRefundPending, false},
		{PaymentStatusRefundPending, PaymentStatusReleasedToSeller, false},

		{"nonexistent", PaymentStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidPaymentTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidPaymentTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestTerminalPaymentStatusesHaveNoTransitions(t *testing.T) {
	terminal := []string{
		PaymentStatusFailed, PaymentStatusCanceled, PaymentStatusExpired,
		PaymentStatusReleasedToSeller, PaymentStatusRefundPending,
	}
	for _, status := range terminal {
		transitions := ValidPaymentTransitions[status]
		if len(transitions) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, transitions)
		}
	}
}
