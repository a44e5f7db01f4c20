package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTenantCoercion(t *testing.T) {
	tenant, err := toTenant(map[string]any{
		"name":         "  John Doe ",
		"email":        "j@x.com",
		"monthly_rent": "$1,200.50",
		"arrears":      150.0,
		"status":       "MOVING-OUT",
		"rent_status":  "late",
		"move_in_date": "2024-03-01",
	})
	require.NoError(t, err)

	assert.Equal(t, "John Doe", tenant.Name)
	assert.InDelta(t, 1200.50, tenant.MonthlyRent, 0.0001)
	assert.InDelta(t, 150, tenant.Arrears, 0.0001)
	assert.Equal(t, "moving-out", tenant.Status)
	assert.Equal(t, "late", tenant.RentStatus)
	require.NotNil(t, tenant.MoveInDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *tenant.MoveInDate)
	assert.Nil(t, tenant.MoveOutDate)
}

func TestToTenantRequiresName(t *testing.T) {
	_, err := toTenant(map[string]any{"email": "j@x.com"})
	require.Error(t, err)
}

func TestToTenantRejectsNegativeRent(t *testing.T) {
	_, err := toTenant(map[string]any{"name": "John", "monthly_rent": -10.0})
	require.Error(t, err)
}

func TestToTenantDefaultsEnums(t *testing.T) {
	tenant, err := toTenant(map[string]any{"name": "John", "status": "whatever"})
	require.NoError(t, err)
	assert.Equal(t, "active", tenant.Status)
	assert.Equal(t, "current", tenant.RentStatus)
}

func TestToBuildingCoercion(t *testing.T) {
	building, err := toBuilding(map[string]any{
		"name":        "Oak House",
		"address":     "12 Oak St",
		"city":        "Springfield",
		"total_units": "24",
		"floors":      6.0,
		"year_built":  "1987",
		"status":      "maintenance",
	})
	require.NoError(t, err)

	assert.Equal(t, 24, building.TotalUnits)
	assert.Equal(t, 6, building.Floors)
	assert.Equal(t, 1987, building.YearBuilt)
	assert.Equal(t, "maintenance", building.Status)
}

func TestToExpenseRequiresCategory(t *testing.T) {
	_, err := toExpense(map[string]any{"amount": 10.0})
	require.Error(t, err)
}

func TestToUnitCoercion(t *testing.T) {
	unit, err := toUnit(map[string]any{
		"unit_number": "4A",
		"bedrooms":    "2",
		"bathrooms":   1.0,
		"size_sqft":   "850",
		"rent_amount": "1,450",
		"status":      "occupied",
	})
	require.NoError(t, err)

	assert.Equal(t, "4A", unit.UnitNumber)
	assert.Equal(t, 2, unit.Bedrooms)
	assert.Equal(t, 1, unit.Bathrooms)
	assert.InDelta(t, 850, unit.SizeSqft, 0.0001)
	assert.InDelta(t, 1450, unit.RentAmount, 0.0001)
}

func TestToPaymentCoercion(t *testing.T) {
	payment, err := toPayment(map[string]any{
		"amount":           "980.25",
		"payment_type":     "RENT",
		"payment_date":     "01/15/2024",
		"reference_number": "TX-104",
	})
	require.NoError(t, err)

	assert.InDelta(t, 980.25, payment.Amount, 0.0001)
	assert.Equal(t, "rent", payment.PaymentType)
	assert.Equal(t, "completed", payment.Status)
	require.NotNil(t, payment.PaymentDate)
	assert.Equal(t, "TX-104", payment.ReferenceNumber)
}

func TestToPaymentRequiresAmount(t *testing.T) {
	_, err := toPayment(map[string]any{"payment_type": "rent"})
	require.Error(t, err)
}

func TestToPaymentUnknownTypeFallsBackToOther(t *testing.T) {
	payment, err := toPayment(map[string]any{"amount": 10.0, "payment_type": "miscellaneous"})
	require.NoError(t, err)
	assert.Equal(t, "other", payment.PaymentType)
}

func TestGetDateUnparseableIsNil(t *testing.T) {
	tenant, err := toTenant(map[string]any{"name": "John", "move_in_date": "soonish"})
	require.NoError(t, err)
	assert.Nil(t, tenant.MoveInDate)
}
