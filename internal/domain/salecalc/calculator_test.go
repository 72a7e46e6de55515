package salecalc

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestCalculator_SaleScenario(t *testing.T) {
	c := New()

	idx := c.AddLineItem()
	require.Equal(t, 0, idx)
	require.NoError(t, c.SetUnitPrice(0, d("100")))
	require.NoError(t, c.SetQuantity(0, d("3")))

	assertDecimal(t, "300", c.LineItems()[0].Subtotal())
	assertDecimal(t, "300", c.Totals().TotalAmount)

	require.NoError(t, c.SetDiscountPercent(0, d("10")))
	assertDecimal(t, "270", c.LineItems()[0].Subtotal())
	assertDecimal(t, "270", c.Totals().TotalAmount)

	c.SetTaxPercent(d("11"))
	totals := c.Totals()
	assertDecimal(t, "29.7", totals.TaxAmount)
	assertDecimal(t, "299.7", totals.FinalAmount)

	idx = c.AddLineItem()
	require.Equal(t, 1, idx)
	require.NoError(t, c.SetUnitPrice(1, d("50")))
	require.NoError(t, c.SetQuantity(1, d("2")))
	assertDecimal(t, "100", c.LineItems()[1].Subtotal())
	assertDecimal(t, "370", c.Totals().TotalAmount)

	require.NoError(t, c.RemoveLineItem(0))
	assert.Equal(t, 1, c.Len())
	assertDecimal(t, "100", c.Totals().TotalAmount)
	assertDecimal(t, "111", c.Totals().FinalAmount)
}

func TestCalculator_AddLineItemIsZero(t *testing.T) {
	c := New()
	c.AddLineItem()

	item := c.LineItems()[0]
	assert.Empty(t, item.ProductID)
	assert.True(t, item.UnitPrice.IsZero())
	assert.True(t, item.Quantity.IsZero())
	assert.True(t, item.DiscountPercent.IsZero())
	assert.True(t, item.Subtotal().IsZero())
	assert.True(t, c.Totals().TotalAmount.IsZero())
}

func TestCalculator_SetProduct(t *testing.T) {
	c := New()
	c.AddLineItem()
	require.NoError(t, c.SetQuantity(0, d("2")))

	require.NoError(t, c.SetProduct(0, "p-1", decimal.NewNullDecimal(d("12.50"))))
	item := c.LineItems()[0]
	assert.Equal(t, "p-1", item.ProductID)
	assertDecimal(t, "12.5", item.UnitPrice)
	assertDecimal(t, "25", c.Totals().TotalAmount)

	t.Run("unresolved product zeroes the price", func(t *testing.T) {
		require.NoError(t, c.SetProduct(0, "missing", decimal.NullDecimal{}))
		item := c.LineItems()[0]
		assert.Equal(t, "missing", item.ProductID)
		assert.True(t, item.UnitPrice.IsZero())
		assert.True(t, c.Totals().TotalAmount.IsZero())
	})

	t.Run("price override after product", func(t *testing.T) {
		require.NoError(t, c.SetProduct(0, "p-1", decimal.NewNullDecimal(d("12.50"))))
		require.NoError(t, c.SetUnitPrice(0, d("10")))
		assertDecimal(t, "20", c.Totals().TotalAmount)
	})
}

func TestCalculator_DiscountUsesCurrentLineAmount(t *testing.T) {
	c := New()
	c.AddLineItem()
	require.NoError(t, c.SetDiscountPercent(0, d("25")))
	require.NoError(t, c.SetUnitPrice(0, d("40")))
	require.NoError(t, c.SetQuantity(0, d("2")))

	item := c.LineItems()[0]
	assertDecimal(t, "80", item.LineAmount())
	assertDecimal(t, "60", item.Subtotal())
}

func TestCalculator_AcceptsOddValues(t *testing.T) {
	c := New()
	c.AddLineItem()
	require.NoError(t, c.SetUnitPrice(0, d("-10")))
	require.NoError(t, c.SetQuantity(0, d("3")))
	require.NoError(t, c.SetDiscountPercent(0, d("150")))

	// -30 - (-30 * 1.5) = 15
	assertDecimal(t, "15", c.Totals().TotalAmount)
}

func TestCalculator_InvalidIndexLeavesStateUnchanged(t *testing.T) {
	c := New()
	c.AddLineItem()
	require.NoError(t, c.SetUnitPrice(0, d("100")))
	require.NoError(t, c.SetQuantity(0, d("1")))
	c.SetTaxPercent(d("10"))

	before := c.LineItems()
	beforeTotals := c.Totals()

	for _, idx := range []int{-1, 1, 5} {
		assert.ErrorIs(t, c.RemoveLineItem(idx), ErrInvalidIndex)
		assert.ErrorIs(t, c.SetUnitPrice(idx, d("1")), ErrInvalidIndex)
		assert.ErrorIs(t, c.SetQuantity(idx, d("1")), ErrInvalidIndex)
		assert.ErrorIs(t, c.SetDiscountPercent(idx, d("1")), ErrInvalidIndex)
		assert.ErrorIs(t, c.SetProduct(idx, "x", decimal.NullDecimal{}), ErrInvalidIndex)
	}

	assert.Equal(t, before, c.LineItems())
	assert.True(t, beforeTotals.FinalAmount.Equal(c.Totals().FinalAmount))
}

func TestCalculator_Reset(t *testing.T) {
	c := New()
	c.AddLineItem()
	require.NoError(t, c.SetUnitPrice(0, d("9.99")))
	require.NoError(t, c.SetQuantity(0, d("4")))
	c.SetTaxPercent(d("11"))

	c.Reset()

	assert.Empty(t, c.LineItems())
	totals := c.Totals()
	assert.True(t, totals.TotalAmount.IsZero())
	assert.True(t, totals.FinalAmount.IsZero())
	assert.True(t, totals.TaxPercent.IsZero())
}

func TestCalculator_LineItemsReturnsCopy(t *testing.T) {
	c := New()
	c.AddLineItem()
	items := c.LineItems()
	items[0].UnitPrice = d("999")

	assert.True(t, c.LineItems()[0].UnitPrice.IsZero())
}

func TestCalculator_SnapshotRestore(t *testing.T) {
	c := New()
	c.AddLineItem()
	require.NoError(t, c.SetProduct(0, "p-1", decimal.NewNullDecimal(d("19.90"))))
	require.NoError(t, c.SetQuantity(0, d("3")))
	require.NoError(t, c.SetDiscountPercent(0, d("5")))
	c.SetTaxPercent(d("11"))

	items, tax := c.Snapshot()
	restored := Restore(items, tax)

	assert.Equal(t, c.LineItems(), restored.LineItems())
	assert.True(t, c.Totals().FinalAmount.Equal(restored.Totals().FinalAmount))

	require.NoError(t, restored.SetQuantity(0, d("1")))
	assertDecimal(t, "3", c.LineItems()[0].Quantity)
}

// Random edit sequences must keep every derived value consistent with the
// stored inputs.
func TestCalculator_DerivedValuesNeverStale(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := New()

	randDec := func(max int64) decimal.Decimal {
		return decimal.New(rng.Int63n(max*100), -2)
	}

	for step := 0; step < 2000; step++ {
		switch op := rng.Intn(7); {
		case op == 0 || c.Len() == 0:
			c.AddLineItem()
		case op == 1:
			_ = c.RemoveLineItem(rng.Intn(c.Len()))
		case op == 2:
			_ = c.SetUnitPrice(rng.Intn(c.Len()), randDec(500))
		case op == 3:
			_ = c.SetQuantity(rng.Intn(c.Len()), decimal.NewFromInt(rng.Int63n(20)))
		case op == 4:
			_ = c.SetDiscountPercent(rng.Intn(c.Len()), randDec(100))
		case op == 5:
			c.SetTaxPercent(randDec(30))
		default:
			_ = c.SetProduct(rng.Intn(c.Len()), "p", decimal.NewNullDecimal(randDec(200)))
		}

		sum := decimal.Zero
		for _, item := range c.LineItems() {
			amount := item.UnitPrice.Mul(item.Quantity)
			want := amount.Mul(decimal.NewFromInt(1).Sub(item.DiscountPercent.Div(hundred)))
			require.Truef(t, want.Equal(item.Subtotal()), "step %d: subtotal %s != %s", step, item.Subtotal(), want)
			sum = sum.Add(item.Subtotal())
		}

		totals := c.Totals()
		require.True(t, sum.Equal(totals.TotalAmount), "step %d", step)
		wantFinal := totals.TotalAmount.Mul(decimal.NewFromInt(1).Add(c.TaxPercent().Div(hundred)))
		require.Truef(t, wantFinal.Equal(totals.FinalAmount), "step %d: final %s != %s", step, totals.FinalAmount, wantFinal)
	}
}

func TestMoneyHelpers(t *testing.T) {
	assert.Equal(t, int64(29970), ToCents(d("299.7")))
	assert.Equal(t, int64(1001), ToCents(d("10.005")))
	assert.Equal(t, int64(-1001), ToCents(d("-10.005")))
	assertDecimal(t, "299.7", FromCents(29970))
	assertDecimal(t, "0.33", RoundCurrency(d("1").Div(d("3"))))
}
