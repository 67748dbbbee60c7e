package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to string }{
		{OrderStatusCreated, OrderStatusPendingPayment},
		{OrderStatusCreated, OrderStatusPaid},
		{OrderStatusCreated, OrderStatusCancelled},
		{OrderStatusPendingPayment, OrderStatusPaid},
		{OrderStatusPendingPayment, OrderStatusCancelled},
		{OrderStatusPaid, OrderStatusShipped},
		{OrderStatusPaid, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
	}
	for _, tc := range allowed {
		assert.True(t, OrderStatusCanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to string }{
		{OrderStatusPaid, OrderStatusPendingPayment},
		{OrderStatusShipped, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusShipped},
		{OrderStatusDelivered, OrderStatusCancelled},
		{OrderStatusCancelled, OrderStatusPaid},
		{OrderStatusCreated, OrderStatusDelivered},
	}
	for _, tc := range denied {
		assert.False(t, OrderStatusCanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	for _, to := range []string{OrderStatusCreated, OrderStatusPendingPayment, OrderStatusPaid,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		assert.False(t, OrderStatusCanTransition(OrderStatusCancelled, to))
		assert.False(t, OrderStatusCanTransition(OrderStatusDelivered, to))
	}
}
