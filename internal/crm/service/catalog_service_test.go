package service

import (
	"testing"

	"github.com/alims/leadcrm/internal/crm/entity"
)

func TestValidateValueNumber(t *testing.T) {
	field := &entity.CustomerField{Name: "budget", FieldType: entity.FieldTypeNumber}

	v, err := ValidateValue(field, "42.5")
	if err != nil {
		t.Fatalf("ValidateValue failed: %v", err)
	}
	if v.(float64) != 42.5 {
		t.Errorf("expected 42.5, got %v", v)
	}

	if _, err := ValidateValue(field, "abc"); err == nil {
		t.Error("expected error for non-numeric value")
	}
}

func TestValidateValueBoolean(t *testing.T) {
	field := &entity.CustomerField{Name: "subscribed", FieldType: entity.FieldTypeBoolean}

	for raw, want := range map[string]bool{"yes": true, "TRUE": true, "1": true, "no": false, "0": false} {
		v, err := ValidateValue(field, raw)
		if err != nil {
			t.Fatalf("ValidateValue(%q) failed: %v", raw, err)
		}
		if v.(bool) != want {
			t.Errorf("ValidateValue(%q) = %v, want %v", raw, v, want)
		}
	}

	if _, err := ValidateValue(field, "maybe"); err == nil {
		t.Error("expected error for invalid boolean")
	}
}

func TestValidateValueSelect(t *testing.T) {
	field := &entity.CustomerField{
		Name:      "source",
		FieldType: entity.FieldTypeSelect,
		Options:   "Web, Referral, Walk-in",
	}

	v, err := ValidateValue(field, "referral")
	if err != nil {
		t.Fatalf("ValidateValue failed: %v", err)
	}
	if v.(string) != "Referral" {
		t.Errorf("expected canonical option Referral, got %v", v)
	}

	if _, err := ValidateValue(field, "TV"); err == nil {
		t.Error("expected error for unknown option")
	}
}

func TestValidateValueDate(t *testing.T) {
	field := &entity.CustomerField{Name: "visited_on", FieldType: entity.FieldTypeDate}

	v, err := ValidateValue(field, "2024-03-15")
	if err != nil {
		t.Fatalf("ValidateValue failed: %v", err)
	}
	if v.(string) != "2024-03-15" {
		t.Errorf("expected normalized date, got %v", v)
	}

	if _, err := ValidateValue(field, "not-a-date"); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestValidateValueRequiredEmpty(t *testing.T) {
	required := &entity.CustomerField{Name: "budget", FieldType: entity.FieldTypeNumber, Required: true}
	if _, err := ValidateValue(required, "  "); err == nil {
		t.Error("expected error for empty required value")
	}

	optional := &entity.CustomerField{Name: "budget", FieldType: entity.FieldTypeNumber}
	v, err := ValidateValue(optional, "")
	if err != nil {
		t.Fatalf("ValidateValue failed: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil for empty optional value, got %v", v)
	}
}

func TestValidateValuePhone(t *testing.T) {
	field := &entity.CustomerField{Name: "alt_phone", FieldType: entity.FieldTypePhone}

	v, err := ValidateValue(field, "+1 (555) 123-4567")
	if err != nil {
		t.Fatalf("ValidateValue failed: %v", err)
	}
	if v.(string) != "+15551234567" {
		t.Errorf("expected separators stripped, got %v", v)
	}
}

func TestIsBaseField(t *testing.T) {
	if !IsBaseField("phone_number") {
		t.Error("phone_number should be a base field")
	}
	if IsBaseField("budget") {
		t.Error("budget should not be a base field")
	}
}
