// Package schema validates and coerces request payloads before any domain
// logic runs. Errors are collected per field, several per field if needed,
// and the message strings are part of the API contract.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"interviewd/backend/internal/domain"
)

const (
	msgRequired    = "Missing data for required field."
	msgNotNull     = "Field may not be null."
	msgNotString   = "Not a valid string."
	msgNotDatetime = "Not a valid datetime."
	msgFutureOnly  = "Input upcoming date and time only"
	msgUnknown     = "Unknown field."
	msgInvalidBody = "Invalid input type."
)

// FieldErrors maps a field name to its validation messages. A nil map
// means the payload passed.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

type CreateRequest struct {
	InterviewerName string
	IntervieweeName string
	ScheduledAt     time.Time
	Note            *string
}

type UpdateRequest struct {
	Note string
}

var createFields = map[string]bool{
	"interviewer_name":       true,
	"interviewee_name":       true,
	"date_time_of_interview": true,
	"note":                   true,
}

var updateFields = map[string]bool{
	"note": true,
}

// DecodeCreate parses and validates a create payload. The future-date rule
// is checked against now at minute precision: a slot in the current minute
// or earlier is rejected.
func DecodeCreate(body []byte, now time.Time) (CreateRequest, FieldErrors) {
	fields, errs := decodeObject(body)
	if errs != nil {
		return CreateRequest{}, errs
	}

	errs = FieldErrors{}
	var req CreateRequest

	req.InterviewerName = stringField(fields, "interviewer_name", 2, 100, errs)
	req.IntervieweeName = stringField(fields, "interviewee_name", 2, 100, errs)
	req.ScheduledAt = datetimeField(fields, "date_time_of_interview", now, errs)

	if raw, ok := fields["note"]; ok {
		if note, ok := optionalString(raw, "note", 5, 300, errs); ok {
			req.Note = &note
		}
	}

	rejectUnknown(fields, createFields, errs)

	if len(errs) > 0 {
		return CreateRequest{}, errs
	}
	return req, nil
}

// DecodeUpdate parses and validates an update payload. Only note is
// accepted, and it is required here.
func DecodeUpdate(body []byte) (UpdateRequest, FieldErrors) {
	fields, errs := decodeObject(body)
	if errs != nil {
		return UpdateRequest{}, errs
	}

	errs = FieldErrors{}
	req := UpdateRequest{
		Note: stringField(fields, "note", 5, 300, errs),
	}

	rejectUnknown(fields, updateFields, errs)

	if len(errs) > 0 {
		return UpdateRequest{}, errs
	}
	return req, nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, FieldErrors) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, FieldErrors{"_schema": {msgInvalidBody}}
	}
	return fields, nil
}

func stringField(fields map[string]json.RawMessage, name string, min, max int, errs FieldErrors) string {
	raw, ok := fields[name]
	if !ok {
		errs.add(name, msgRequired)
		return ""
	}
	s, ok := optionalString(raw, name, min, max, errs)
	if !ok {
		return ""
	}
	return s
}

func optionalString(raw json.RawMessage, name string, min, max int, errs FieldErrors) (string, bool) {
	if isNull(raw) {
		errs.add(name, msgNotNull)
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		errs.add(name, msgNotString)
		return "", false
	}
	if n := utf8.RuneCountInString(s); n < min {
		errs.add(name, fmt.Sprintf("Shorter than minimum length %d.", min))
		return "", false
	} else if n > max {
		errs.add(name, fmt.Sprintf("Longer than maximum length %d.", max))
		return "", false
	}
	return s, true
}

func datetimeField(fields map[string]json.RawMessage, name string, now time.Time, errs FieldErrors) time.Time {
	raw, ok := fields[name]
	if !ok {
		errs.add(name, msgRequired)
		return time.Time{}
	}
	if isNull(raw) {
		errs.add(name, msgNotNull)
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		errs.add(name, msgNotDatetime)
		return time.Time{}
	}
	t, err := domain.ParseMinute(s)
	if err != nil {
		errs.add(name, msgNotDatetime)
		return time.Time{}
	}

	// Both sides are wall-clock times at minute precision, so re-parsing
	// now through the same layout puts them in the same frame.
	nowMinute, err := domain.ParseMinute(domain.FormatMinute(now))
	if err != nil {
		errs.add(name, msgNotDatetime)
		return time.Time{}
	}
	if !t.After(nowMinute) {
		errs.add(name, msgFutureOnly)
		return time.Time{}
	}
	return t
}

func rejectUnknown(fields map[string]json.RawMessage, known map[string]bool, errs FieldErrors) {
	for name := range fields {
		if !known[name] {
			errs.add(name, msgUnknown)
		}
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
