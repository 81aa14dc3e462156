package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReportInput_Cast(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantTyp *string
		wantLat *float64
		wantLon *float64
		wantErr string
	}{
		{"all fields", `{"type":"flood","latitude":52.52,"longitude":13.405}`, strPtr("flood"), floatPtr(52.52), floatPtr(13.405), ""},
		{"empty object", `{}`, nil, nil, nil, ""},
		{"null fields", `{"type":null,"latitude":null}`, nil, nil, nil, ""},
		{"numeric strings", `{"latitude":" 52.5 ","longitude":"-0.12"}`, nil, floatPtr(52.5), floatPtr(-0.12), ""},
		{"empty string number", `{"latitude":""}`, nil, nil, nil, ""},
		{"boolean number", `{"latitude":true,"longitude":false}`, nil, floatPtr(1), floatPtr(0), ""},
		{"number as type", `{"type":42}`, strPtr("42"), nil, nil, ""},
		{"fraction as type", `{"type":-0.5}`, strPtr("-0.5"), nil, nil, ""},
		{"large number as type", `{"type":1e21}`, strPtr("1e+21"), nil, nil, ""},
		{"tiny number as type", `{"type":1.5e-7}`, strPtr("1.5e-7"), nil, nil, ""},
		{"below exponent threshold", `{"type":123456789012345680000}`, strPtr("123456789012345680000"), nil, nil, ""},
		{"negative zero as type", `{"type":-0}`, strPtr("0"), nil, nil, ""},
		{"boolean as type", `{"type":true}`, strPtr("true"), nil, nil, ""},
		{"bad number", `{"latitude":"north"}`, nil, nil, nil, `Cast to Number failed for value "north" at path "latitude"`},
		{"nan string", `{"longitude":"NaN"}`, nil, nil, nil, `at path "longitude"`},
		{"object number", `{"latitude":{"deg":1}}`, nil, nil, nil, `at path "latitude"`},
		{"array type", `{"type":["a"]}`, nil, nil, nil, `Cast to string failed`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := DecodeReportInput([]byte(tt.body))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			r, err := in.Cast()
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				var castErr *CastError
				if !errors.As(err, &castErr) {
					t.Errorf("expected *CastError, got %T", err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			checkString(t, "type", r.Type, tt.wantTyp)
			checkFloat(t, "latitude", r.Latitude, tt.wantLat)
			checkFloat(t, "longitude", r.Longitude, tt.wantLon)
		})
	}
}

func TestDecodeReportInput(t *testing.T) {
	t.Run("keys match exactly", func(t *testing.T) {
		in, err := DecodeReportInput([]byte(`{"TYPE":"flood","Latitude":1,"LONGITUDE":2,"type":"fire"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(in.Type) != `"fire"` {
			t.Errorf("type = %s, want \"fire\"", in.Type)
		}
		if in.Latitude != nil || in.Longitude != nil {
			t.Errorf("expected mixed-case coordinates to be ignored, got %s/%s", in.Latitude, in.Longitude)
		}
	})

	t.Run("unknown keys ignored", func(t *testing.T) {
		in, err := DecodeReportInput([]byte(`{"latitude":"52.5","severity":3}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(in.Latitude) != `"52.5"` {
			t.Errorf("latitude = %s", in.Latitude)
		}
	})

	for _, body := range []string{"", "  \n", "[]", `[{"type":"flood"}]`} {
		in, err := DecodeReportInput([]byte(body))
		if err != nil {
			t.Errorf("body %q: unexpected error: %v", body, err)
		}
		if in.Type != nil || in.Latitude != nil || in.Longitude != nil {
			t.Errorf("body %q: expected no fields, got %+v", body, in)
		}
	}

	for _, body := range []string{`"flood"`, "42", "null", "true"} {
		if _, err := DecodeReportInput([]byte(body)); !errors.Is(err, ErrBodyNotObject) {
			t.Errorf("body %q: expected ErrBodyNotObject, got %v", body, err)
		}
	}

	for _, body := range []string{`{bad json`, `[1,`, `nope`} {
		_, err := DecodeReportInput([]byte(body))
		if err == nil || errors.Is(err, ErrBodyNotObject) {
			t.Errorf("body %q: expected a syntax error, got %v", body, err)
		}
	}
}

func TestReport_JSON(t *testing.T) {
	id := primitive.NewObjectID()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := Report{
		ID:        id,
		Type:      strPtr("fire"),
		Latitude:  floatPtr(48.8566),
		Longitude: floatPtr(2.3522),
		CreatedAt: created,
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["id"] != id.Hex() {
		t.Errorf("id = %v, want %s", out["id"], id.Hex())
	}
	if out["type"] != "fire" {
		t.Errorf("type = %v, want fire", out["type"])
	}
	if out["createdAt"] != "2024-05-01T12:00:00Z" {
		t.Errorf("createdAt = %v", out["createdAt"])
	}

	// Unset fields are omitted rather than zeroed.
	data, _ = json.Marshal(Report{ID: id, CreatedAt: created})
	if strings.Contains(string(data), "latitude") || strings.Contains(string(data), "type") {
		t.Errorf("expected absent fields to be omitted, got %s", data)
	}
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func checkString(t *testing.T, field string, got, want *string) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Errorf("%s = %q, want unset", field, *got)
	case want != nil && got == nil:
		t.Errorf("%s unset, want %q", field, *want)
	case want != nil && *got != *want:
		t.Errorf("%s = %q, want %q", field, *got, *want)
	}
}

func checkFloat(t *testing.T, field string, got, want *float64) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Errorf("%s = %v, want unset", field, *got)
	case want != nil && got == nil:
		t.Errorf("%s unset, want %v", field, *want)
	case want != nil && *got != *want:
		t.Errorf("%s = %v, want %v", field, *got, *want)
	}
}
