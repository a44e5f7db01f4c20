package ingestion

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"property-ingestion-backend/internal/models"

	"github.com/google/uuid"
)

// Commit-time validation is mandatory: bulk normalization may have fallen
// back to raw rows, so every record is re-coerced and checked here before it
// touches a target table.

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	time.RFC3339,
}

func toTenant(m map[string]any) (models.Tenant, error) {
	name := getString(m, "name", "tenant_name", "tenant")
	if name == "" {
		return models.Tenant{}, fmt.Errorf("name is required")
	}
	rent, err := getAmount(m, "monthly_rent", "rent", "rent_amount")
	if err != nil {
		return models.Tenant{}, err
	}
	arrears, err := getAmount(m, "arrears", "balance_due")
	if err != nil {
		return models.Tenant{}, err
	}

	return models.Tenant{
		Name:        name,
		Email:       getString(m, "email"),
		Phone:       getString(m, "phone", "phone_number"),
		BuildingID:  getUUID(m, "building_id"),
		Building:    getString(m, "building", "building_name"),
		Unit:        getString(m, "unit", "unit_number"),
		MoveInDate:  getDate(m, "move_in_date", "move_in"),
		MoveOutDate: getDate(m, "move_out_date", "move_out"),
		MonthlyRent: rent,
		Status:      getEnum(m, "status", []string{"active", "moving-out", "moved-out"}, "active"),
		RentStatus:  getEnum(m, "rent_status", []string{"current", "late"}, "current"),
		Arrears:     arrears,
	}, nil
}

func toBuilding(m map[string]any) (models.Building, error) {
	name := getString(m, "name", "building_name", "building")
	if name == "" {
		return models.Building{}, fmt.Errorf("name is required")
	}
	totalUnits, err := getCount(m, "total_units", "units")
	if err != nil {
		return models.Building{}, err
	}
	floors, err := getCount(m, "floors")
	if err != nil {
		return models.Building{}, err
	}
	yearBuilt, err := getCount(m, "year_built", "year")
	if err != nil {
		return models.Building{}, err
	}

	return models.Building{
		Name:         name,
		Address:      getString(m, "address"),
		City:         getString(m, "city"),
		BuildingType: getString(m, "building_type", "type"),
		TotalUnits:   totalUnits,
		Floors:       floors,
		YearBuilt:    yearBuilt,
		Status:       getEnum(m, "status", []string{"active", "maintenance", "archived"}, "active"),
	}, nil
}

func toExpense(m map[string]any) (models.Expense, error) {
	category := getString(m, "category", "expense_category")
	if category == "" {
		return models.Expense{}, fmt.Errorf("category is required")
	}
	amount, err := getAmount(m, "amount", "cost")
	if err != nil {
		return models.Expense{}, err
	}

	return models.Expense{
		Category:      category,
		Description:   getString(m, "description"),
		Amount:        amount,
		ExpenseDate:   getDate(m, "expense_date", "date"),
		Vendor:        getString(m, "vendor", "supplier"),
		PaymentMethod: getString(m, "payment_method"),
		Status:        getEnum(m, "status", []string{"pending", "paid", "overdue"}, "pending"),
	}, nil
}

func toUnit(m map[string]any) (models.Unit, error) {
	unitNumber := getString(m, "unit_number", "unit", "number")
	if unitNumber == "" {
		return models.Unit{}, fmt.Errorf("unit_number is required")
	}
	bedrooms, err := getCount(m, "bedrooms", "beds")
	if err != nil {
		return models.Unit{}, err
	}
	bathrooms, err := getCount(m, "bathrooms", "baths")
	if err != nil {
		return models.Unit{}, err
	}
	size, err := getAmount(m, "size_sqft", "sqft", "size")
	if err != nil {
		return models.Unit{}, err
	}
	rent, err := getAmount(m, "rent_amount", "rent", "monthly_rent")
	if err != nil {
		return models.Unit{}, err
	}

	return models.Unit{
		UnitNumber: unitNumber,
		Bedrooms:   bedrooms,
		Bathrooms:  bathrooms,
		SizeSqft:   size,
		RentAmount: rent,
		Status:     getEnum(m, "status", []string{"vacant", "occupied", "maintenance"}, "vacant"),
	}, nil
}

func toPayment(m map[string]any) (models.Payment, error) {
	amount, err := getAmount(m, "amount")
	if err != nil {
		return models.Payment{}, err
	}
	if _, present := firstValue(m, "amount"); !present {
		return models.Payment{}, fmt.Errorf("amount is required")
	}

	return models.Payment{
		Amount:          amount,
		PaymentType:     getEnum(m, "payment_type", []string{"rent", "deposit", "maintenance", "utility", "late_fee", "other"}, "other"),
		PaymentMethod:   getString(m, "payment_method", "method"),
		PaymentDate:     getDate(m, "payment_date", "date"),
		Status:          getEnum(m, "status", []string{"pending", "completed", "failed", "refunded"}, "completed"),
		ReferenceNumber: getString(m, "reference_number", "reference"),
		Description:     getString(m, "description"),
	}, nil
}

func firstValue(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func getString(m map[string]any, keys ...string) string {
	v, ok := firstValue(m, keys...)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", s))
	}
}

// getAmount coerces a money-ish value. Missing values are 0; negative values
// are rejected because every monetary field in the canonical schemas is >= 0.
func getAmount(m map[string]any, keys ...string) (float64, error) {
	v, ok := firstValue(m, keys...)
	if !ok {
		return 0, nil
	}

	var amount float64
	switch n := v.(type) {
	case float64:
		amount = n
	case int:
		amount = float64(n)
	case string:
		cleaned := strings.TrimSpace(n)
		cleaned = strings.TrimPrefix(cleaned, "$")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		if cleaned == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("%s is not a number: %q", keys[0], n)
		}
		amount = parsed
	default:
		return 0, fmt.Errorf("%s has unexpected type %T", keys[0], v)
	}

	if amount < 0 {
		return 0, fmt.Errorf("%s must not be negative: %v", keys[0], amount)
	}
	return amount, nil
}

func getCount(m map[string]any, keys ...string) (int, error) {
	amount, err := getAmount(m, keys...)
	if err != nil {
		return 0, err
	}
	return int(amount), nil
}

func getDate(m map[string]any, keys ...string) *time.Time {
	raw := getString(m, keys...)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func getUUID(m map[string]any, keys ...string) *uuid.UUID {
	raw := getString(m, keys...)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func getEnum(m map[string]any, key string, allowed []string, fallback string) string {
	v := strings.ToLower(getString(m, key))
	for _, a := range allowed {
		if v == a {
			return a
		}
	}
	return fallback
}
