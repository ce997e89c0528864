// Zaparoo Covers
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Covers.
//
// Zaparoo Covers is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Covers is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Covers.  If not, see <http://www.gnu.org/licenses/>.

// Package validation checks user-supplied input using go-playground/validator.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Common validation errors.
var (
	ErrMissingParams = errors.New("missing params")
	ErrInvalidParams = errors.New("invalid params")
)

// Validator handles validation of input structs.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator with registered custom validators.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON or TOML name so messages match the input.
	v.RegisterTagNameFunc(fieldName)

	_ = v.RegisterValidation("provider", validateProvider)
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &Validator{validate: v}
}

// DefaultValidator is a shared validator instance.
var DefaultValidator = NewValidator()

// Validate validates a struct and returns a formatted error if validation fails.
func (v *Validator) Validate(params any) error {
	if err := v.validate.Struct(params); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewError(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ValidateAndUnmarshal unmarshals JSON params and validates them.
// Returns ErrMissingParams if params is empty, ErrInvalidParams if unmarshal fails,
// or an Error if validation fails.
func ValidateAndUnmarshal[T any](params json.RawMessage, dest *T) error {
	if len(bytes.TrimSpace(params)) == 0 {
		return ErrMissingParams
	}
	if err := json.Unmarshal(params, dest); err != nil {
		return ErrInvalidParams
	}
	return DefaultValidator.Validate(dest)
}

// ParseItems decodes a batch of game items. The input must be a JSON array
// whose elements are all objects with a title and a system name. Any problem
// fails the whole batch with an error wrapping covers.ErrInvalidInput.
func ParseItems(data []byte) ([]covers.GameItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: %w", covers.ErrInvalidInput, ErrMissingParams)
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array of games", covers.ErrInvalidInput)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", covers.ErrInvalidInput, err)
	}

	items := make([]covers.GameItem, len(raw))
	for i, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return nil, fmt.Errorf("%w: item %d is not an object", covers.ErrInvalidInput, i)
		}

		var item covers.GameItem
		if err := ValidateAndUnmarshal(elem, &item); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", covers.ErrInvalidInput, i, err)
		}

		// Output only carries covers found by this run.
		items[i] = covers.GameItem{Title: item.Title, SystemName: item.SystemName}
	}

	return items, nil
}

func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "toml"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// validateProvider checks the value names a known provider.
func validateProvider(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	switch strings.ToLower(val) {
	case "rawg", "thegamesdb", "igdb":
		return true
	default:
		return false
	}
}
