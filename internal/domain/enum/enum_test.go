package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleStatus_JSON(t *testing.T) {
	var s SaleStatus
	require.NoError(t, json.Unmarshal([]byte(`"completed"`), &s))
	assert.Equal(t, SaleStatusCompleted, s)

	require.NoError(t, json.Unmarshal([]byte(`2`), &s))
	assert.Equal(t, SaleStatusCancelled, s)

	assert.Error(t, json.Unmarshal([]byte(`"shipped"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`7`), &s))

	out, err := json.Marshal(SaleStatusPending)
	require.NoError(t, err)
	assert.JSONEq(t, `"Pending"`, string(out))
}

func TestPaymentStatus_Parse(t *testing.T) {
	st, err := ParsePaymentStatus(" Failed ")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusFailed, st)

	_, err = ParsePaymentStatus("lost")
	assert.Error(t, err)
	assert.Equal(t, "Unknown", PaymentStatus(9).String())
}

func TestStatus_Scan(t *testing.T) {
	var s SaleStatus
	require.NoError(t, s.Scan(int64(1)))
	assert.Equal(t, SaleStatusCompleted, s)
	require.NoError(t, s.Scan(nil))
	assert.Equal(t, SaleStatusPending, s)
	assert.Error(t, s.Scan("x"))
}
