package services

import (
	"context"
	"testing"

	"github.com/Anand-732/MartLedger/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteRejectsInvalidPincode(t *testing.T) {
	p := &rateTableProvider{}

	for _, pin := range []string{"", "12345", "1234567", "012345", "abcdef", "12 456"} {
		_, err := p.Quote(context.Background(), "560001", pin, 500)
		require.Error(t, err, "pincode %q should be rejected", pin)
		assert.True(t, utils.IsCode(err, utils.CodeValidation))
	}
}

func TestPincodePattern(t *testing.T) {
	assert.True(t, pincodePattern.MatchString("560001"))
	assert.True(t, pincodePattern.MatchString("110001"))
	assert.False(t, pincodePattern.MatchString("060001"))
	assert.False(t, pincodePattern.MatchString("56001"))
}
