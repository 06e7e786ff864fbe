package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderDispatched, true},
		{OrderConfirmed, OrderPending, false},
		{OrderDispatched, OrderCancelled, true},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderCancelled, false},
		{OrderCancelled, OrderConfirmed, false},
		{OrderProcessing, OrderProcessing, false},
		{OrderPending, OrderStatus("shipped"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestProductEffectivePrice(t *testing.T) {
	sale := 399.0
	tooHigh := 900.0

	assert.Equal(t, 399.0, Product{Price: 500, SalePrice: &sale}.EffectivePrice())
	assert.Equal(t, 500.0, Product{Price: 500, SalePrice: &tooHigh}.EffectivePrice())
	assert.Equal(t, 500.0, Product{Price: 500}.EffectivePrice())
}

func TestOrderAmountDueOnline(t *testing.T) {
	o := Order{TotalAmount: 1200, CODFee: 80, PaymentMethod: PaymentCOD}
	assert.Equal(t, 80.0, o.AmountDueOnline())

	o.PaymentMethod = PaymentOnline
	assert.Equal(t, 1200.0, o.AmountDueOnline())
}

func TestAddressFullName(t *testing.T) {
	assert.Equal(t, "Asha Rao", Address{FirstName: "Asha", LastName: "Rao"}.FullName())
	assert.Equal(t, "Ravi", Address{Name: "Ravi", FirstName: "X"}.FullName())
	assert.Equal(t, "", Address{}.FullName())
}
