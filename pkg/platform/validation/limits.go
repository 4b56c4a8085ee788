package validation

import (
	"fmt"

	dErrors "faceguard/pkg/domain-errors"
)

// Request size limits
const (
	// MaxJSONBodySize bounds JSON request bodies (registration, login).
	MaxJSONBodySize = 64 * 1024

	// MaxImageSize bounds a single uploaded image.
	MaxImageSize = 16 << 20
)

// Field limits
const (
	MaxUserIDLength   = 128
	MaxUsernameLength = 64
	MaxPasswordLength = 72 // bcrypt truncates beyond 72 bytes
	MaxEmailLength    = 255
	MaxPhoneLength    = 32
	MaxPurposeLength  = 100
	MaxDataTypes      = 20
	MaxDataTypeLength = 64
	MaxRetentionDays  = 3650
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckEachStringLength validates that each string in a slice does not exceed the maximum length.
func CheckEachStringLength(fieldName string, values []string, max int) error {
	for _, v := range values {
		if len(v) > max {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
		}
	}
	return nil
}

// Required rejects empty values with a validation error naming the field.
func Required(fieldName, value string) error {
	if value == "" {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("missing required field: %s", fieldName))
	}
	return nil
}
