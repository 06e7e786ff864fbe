package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mutate(s string, i int) string {
	b := []byte(s)
	if b[i] == 'x' {
		b[i] = 'y'
	} else {
		b[i] = 'x'
	}
	return string(b)
}

func TestVerifySignature(t *testing.T) {
	const secret = "s3cr3t"
	orderID, paymentID := "order_Nx8a1", "pay_Q2zk9"
	sig := Sign(secret, orderID, paymentID)

	assert.True(t, VerifySignature(secret, orderID, paymentID, sig))
	assert.Len(t, sig, 64)

	for i := range orderID {
		assert.False(t, VerifySignature(secret, mutate(orderID, i), paymentID, sig), "order id mutation %d", i)
	}
	for i := range paymentID {
		assert.False(t, VerifySignature(secret, orderID, mutate(paymentID, i), sig), "payment id mutation %d", i)
	}
	for i := range sig {
		assert.False(t, VerifySignature(secret, orderID, paymentID, mutate(sig, i)), "signature mutation %d", i)
	}
}

func TestVerifySignatureRejectsEmptyInputs(t *testing.T) {
	assert.False(t, VerifySignature("", "o", "p", Sign("", "o", "p")))
	assert.False(t, VerifySignature("k", "", "p", Sign("k", "", "p")))
	assert.False(t, VerifySignature("k", "o", "p", ""))
}

func TestSeparatorIsPartOfMessage(t *testing.T) {
	assert.NotEqual(t, Sign("k", "ab", "c"), Sign("k", "a", "bc"))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(8000), ToMinorUnits(80))
	assert.Equal(t, int64(172997), ToMinorUnits(1729.97))
	assert.Equal(t, int64(1), ToMinorUnits(0.005))
}
