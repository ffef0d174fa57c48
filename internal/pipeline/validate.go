package pipeline

import (
	"fmt"

	"go-data-dashboard/internal/model"
	"go-data-dashboard/pkg/utils"
)

// ValidateTable splits rows into those that pass the dataset rules and the
// errors of those that do not. Without rules every row passes.
func ValidateTable(table *model.Table, rules *model.ValidationRules) ([]model.GenericRecord, []error) {
	if rules == nil {
		return table.Rows, nil
	}
	valid := make([]model.GenericRecord, 0, len(table.Rows))
	var errs []error
	for i, rec := range table.Rows {
		if err := validateRecord(rec, rules); err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		valid = append(valid, rec)
	}
	return valid, errs
}

// validateRecord applies validation rules to a record.
func validateRecord(rec model.GenericRecord, rules *model.ValidationRules) error {
	// Check required fields
	for _, field := range rules.RequiredFields {
		if v, ok := rec[field]; !ok || v == nil {
			return fmt.Errorf("missing required field: %s", field)
		}
	}

	// Check numeric fields; empty cells are allowed
	for _, field := range rules.NumericFields {
		val, ok := rec[field]
		if !ok || val == nil {
			continue
		}
		switch val.(type) {
		case float64, float32, int, int64:
			// ok
		default:
			return fmt.Errorf("field %s must be numeric, got %T", field, val)
		}
	}

	// Check min values
	for field, min := range rules.MinValues {
		if val, ok := rec[field]; ok && val != nil {
			if utils.Numeric(val) < min {
				return fmt.Errorf("field %s below minimum: got %v, want ≥ %v", field, val, min)
			}
		}
	}

	// Check max values
	for field, max := range rules.MaxValues {
		if val, ok := rec[field]; ok && val != nil {
			if utils.Numeric(val) > max {
				return fmt.Errorf("field %s above maximum: got %v, want ≤ %v", field, val, max)
			}
		}
	}

	return nil
}
