package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ReportInput holds the fields of a create request exactly as they arrived.
// Values are cast into a Report only when the report is stored.
type ReportInput struct {
	Type      json.RawMessage `json:"type,omitempty"`
	Latitude  json.RawMessage `json:"latitude,omitempty"`
	Longitude json.RawMessage `json:"longitude,omitempty"`
}

// ErrBodyNotObject is returned for request bodies that are valid JSON but
// neither an object nor an array.
var ErrBodyNotObject = errors.New("request body must be a JSON object or array")

// DecodeReportInput reads a create request body. Keys match exactly and
// unknown keys are ignored. An empty body or a top-level array carries no
// fields.
func DecodeReportInput(body []byte) (ReportInput, error) {
	var in ReportInput
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return in, nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return in, err
		}
		return in, nil
	case '{':
	default:
		if !json.Valid(trimmed) {
			var v interface{}
			return in, json.Unmarshal(trimmed, &v)
		}
		return in, ErrBodyNotObject
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return in, err
	}
	in.Type = fields["type"]
	in.Latitude = fields["latitude"]
	in.Longitude = fields["longitude"]
	return in, nil
}

// CastError reports a field whose value could not be converted to the
// type of the stored field.
type CastError struct {
	Path  string
	Kind  string
	Value string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("Cast to %s failed for value %q at path %q", e.Kind, e.Value, e.Path)
}

// Cast converts the raw input into a Report. ID and CreatedAt are left zero.
// Absent and null fields stay unset.
func (in ReportInput) Cast() (Report, error) {
	var r Report
	var err error
	if r.Type, err = castString("type", in.Type); err != nil {
		return Report{}, err
	}
	if r.Latitude, err = castNumber("latitude", in.Latitude); err != nil {
		return Report{}, err
	}
	if r.Longitude, err = castNumber("longitude", in.Longitude); err != nil {
		return Report{}, err
	}
	return r, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func castString(path string, raw json.RawMessage) (*string, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, &CastError{Path: path, Kind: "string", Value: string(raw)}
	}

	var s string
	switch val := v.(type) {
	case string:
		s = val
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, &CastError{Path: path, Kind: "string", Value: val.String()}
		}
		s = formatNumber(f)
	case bool:
		s = strconv.FormatBool(val)
	default:
		return nil, &CastError{Path: path, Kind: "string", Value: string(bytes.TrimSpace(raw))}
	}
	return &s, nil
}

func castNumber(path string, raw json.RawMessage) (*float64, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, &CastError{Path: path, Kind: "Number", Value: string(raw)}
	}

	var f float64
	switch val := v.(type) {
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return nil, &CastError{Path: path, Kind: "Number", Value: val.String()}
		}
		f = parsed
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return nil, &CastError{Path: path, Kind: "Number", Value: val}
		}
		f = parsed
	case bool:
		if val {
			f = 1
		}
	default:
		return nil, &CastError{Path: path, Kind: "Number", Value: string(bytes.TrimSpace(raw))}
	}
	return &f, nil
}

// formatNumber renders f the way a JavaScript number converts to a string:
// plain decimals in [1e-6, 1e21) and exponent form outside it.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + exp[:1] + digits
}
