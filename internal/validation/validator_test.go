// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return one non-nil instance")
	}
}

type lookupRequest struct {
	Title string `query:"title" validate:"required,notblank,max=20"`
	K     int    `query:"k" validate:"gte=0,lte=50"`
	Sort  string `json:"sort,omitempty" validate:"omitempty,oneof=score title"`
	Limit int    `validate:"min=1,max=100"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     lookupRequest
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{name: "valid", input: lookupRequest{Title: "Alien", K: 5, Limit: 10}},
		{name: "valid zero k", input: lookupRequest{Title: "Alien", Limit: 1, Sort: "score"}},
		{name: "missing title", input: lookupRequest{Limit: 10}, wantField: "title", wantTag: "required", wantMsg: "title is required"},
		{name: "blank title", input: lookupRequest{Title: "   ", Limit: 10}, wantField: "title", wantTag: "notblank", wantMsg: "title must not be blank"},
		{name: "long title", input: lookupRequest{Title: strings.Repeat("x", 21), Limit: 10}, wantField: "title", wantTag: "max", wantMsg: "title must be at most 20 characters"},
		{name: "k too large", input: lookupRequest{Title: "Alien", K: 51, Limit: 10}, wantField: "k", wantTag: "lte", wantMsg: "k must be less than or equal to 50"},
		{name: "negative k", input: lookupRequest{Title: "Alien", K: -1, Limit: 10}, wantField: "k", wantTag: "gte"},
		{name: "bad sort", input: lookupRequest{Title: "Alien", Limit: 10, Sort: "year"}, wantField: "sort", wantTag: "oneof", wantMsg: "sort must be one of: score title"},
		{name: "untagged field", input: lookupRequest{Title: "Alien"}, wantField: "Limit", wantTag: "min", wantMsg: "Limit must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() expected error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("error = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
			if tt.wantMsg != "" && errs[0].Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	t.Run("single error", func(t *testing.T) {
		t.Parallel()

		err := ValidateStruct(&lookupRequest{Limit: 1})
		apiErr := err.ToAPIError()
		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("Code = %q", apiErr.Code)
		}
		if apiErr.Message != "title is required" {
			t.Errorf("Message = %q", apiErr.Message)
		}
		if apiErr.Details["field"] != "title" {
			t.Errorf("Details = %v", apiErr.Details)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		t.Parallel()

		err := ValidateStruct(&lookupRequest{K: 100})
		apiErr := err.ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) != 3 {
			t.Fatalf("Details[fields] = %v, want 3 entries", apiErr.Details["fields"])
		}
		for _, name := range []string{"title", "k", "Limit"} {
			if !strings.Contains(apiErr.Message, name+":") {
				t.Errorf("Message %q should mention %s", apiErr.Message, name)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		apiErr := (&RequestValidationError{}).ToAPIError()
		if apiErr.Message != "Validation failed" {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})
}

func TestNotBlank_NonString(t *testing.T) {
	t.Parallel()

	type badTag struct {
		N int `validate:"notblank"`
	}
	if err := ValidateStruct(&badTag{N: 3}); err == nil {
		t.Error("notblank on a non-string should fail")
	}
}
