package models

import (
	"strings"

	pkgstrings "faceguard/pkg/platform/strings"
	"faceguard/pkg/platform/validation"

	dErrors "faceguard/pkg/domain-errors"
)

// RecordRequest is a consent submission as received from a caller.
type RecordRequest struct {
	UserID          string   `json:"user_id"`
	Purpose         string   `json:"purpose"`
	RetentionPeriod int      `json:"retention_period"`
	DataTypes       []string `json:"data_types"`

	// DefaultsApplied lists the optional fields that were filled in by Normalize.
	DefaultsApplied []string `json:"-"`
}

// Normalize trims input and substitutes the default purpose and data types
// for omitted optional fields.
func (r *RecordRequest) Normalize() {
	if r == nil {
		return
	}
	r.UserID = strings.TrimSpace(r.UserID)
	r.Purpose = strings.TrimSpace(r.Purpose)
	r.DataTypes = pkgstrings.DedupeAndTrim(r.DataTypes)
	r.DefaultsApplied = nil
	if r.Purpose == "" {
		r.Purpose = DefaultPurpose
		r.DefaultsApplied = append(r.DefaultsApplied, "purpose")
	}
	if len(r.DataTypes) == 0 {
		r.DataTypes = DefaultDataTypes()
		r.DefaultsApplied = append(r.DefaultsApplied, "data_types")
	}
}

func (r *RecordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Required("user_id", r.UserID); err != nil {
		return err
	}
	if err := validation.CheckStringLength("user_id", r.UserID, validation.MaxUserIDLength); err != nil {
		return err
	}
	if r.RetentionPeriod <= 0 {
		return dErrors.New(dErrors.CodeValidation, "retention_period must be a positive number of days")
	}
	if r.RetentionPeriod > validation.MaxRetentionDays {
		return dErrors.New(dErrors.CodeValidation, "retention_period exceeds the maximum allowed")
	}
	if err := validation.CheckStringLength("purpose", r.Purpose, validation.MaxPurposeLength); err != nil {
		return err
	}
	if err := validation.CheckSliceCount("data_types", len(r.DataTypes), validation.MaxDataTypes); err != nil {
		return err
	}
	return validation.CheckEachStringLength("data_types", r.DataTypes, validation.MaxDataTypeLength)
}
