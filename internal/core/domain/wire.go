package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Zone-less layouts are read in the local zone.
var looseTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// looseID accepts a JSON string or number. Anything else reads as "".
func looseID(msg json.RawMessage) string {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || string(msg) == "null" {
		return ""
	}
	if msg[0] == '"' {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return ""
		}
		return s
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err != nil {
		return ""
	}
	return n.String()
}

// looseTime accepts RFC 3339, zone-less timestamps and epoch numbers
// (milliseconds when large enough, seconds otherwise). Unparsable input
// reads as the zero time.
func looseTime(msg json.RawMessage) time.Time {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || string(msg) == "null" {
		return time.Time{}
	}
	if msg[0] != '"' {
		n, err := strconv.ParseInt(string(msg), 10, 64)
		if err != nil || n <= 0 {
			return time.Time{}
		}
		if n >= 1e12 {
			return time.UnixMilli(n)
		}
		return time.Unix(n, 0)
	}

	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	for _, layout := range looseTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// UnmarshalJSON tolerates numeric ids and loosely formatted timestamps.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type plain Notification
	aux := struct {
		*plain
		ID        json.RawMessage `json:"id"`
		UserID    json.RawMessage `json:"userId"`
		JobID     json.RawMessage `json:"jobId"`
		CreatedAt json.RawMessage `json:"createdAt"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.ID = looseID(aux.ID)
	n.UserID = looseID(aux.UserID)
	n.JobID = looseID(aux.JobID)
	n.CreatedAt = looseTime(aux.CreatedAt)
	return nil
}

// UnmarshalJSON rejects only a malformed document or a non-string type;
// optional fields that do not parse are left empty.
func (e *PushEvent) UnmarshalJSON(data []byte) error {
	aux := struct {
		Type      string          `json:"type"`
		ID        json.RawMessage `json:"id"`
		JobTitle  json.RawMessage `json:"jobTitle"`
		Reason    json.RawMessage `json:"reason"`
		JobID     json.RawMessage `json:"jobId"`
		Message   json.RawMessage `json:"message"`
		CreatedAt json.RawMessage `json:"createdAt"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = PushEvent{
		Type:      aux.Type,
		ID:        looseID(aux.ID),
		JobTitle:  looseText(aux.JobTitle),
		Reason:    looseText(aux.Reason),
		JobID:     looseID(aux.JobID),
		Message:   looseText(aux.Message),
		CreatedAt: looseTime(aux.CreatedAt),
	}
	return nil
}

func looseText(msg json.RawMessage) string {
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return ""
	}
	return s
}
