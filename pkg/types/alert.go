package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// KV is a string-keyed label or annotation set as sent by Alertmanager.
// Keys are never guaranteed to be present; use Get with an explicit default.
type KV map[string]string

// Get returns the value stored under key, or def when the key is absent or
// its value is empty. A nil KV is valid and always yields def.
func (kv KV) Get(key, def string) string {
	if v, ok := kv[key]; ok && v != "" {
		return v
	}
	return def
}

// Has reports whether key is present, regardless of its value.
func (kv KV) Has(key string) bool {
	_, ok := kv[key]
	return ok
}

// UnmarshalJSON decodes a JSON object leniently. Numbers and booleans keep
// their literal text, null and nested values become "". Anything other than
// an object decodes to an empty set.
func (kv *KV) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*kv = KV{}
		return nil
	}
	out := make(KV, len(raw))
	for k, v := range raw {
		out[k] = scalarString(v)
	}
	*kv = out
	return nil
}

// Alert is one alert instance inside an AlertEvent.
type Alert struct {
	Labels      KV `json:"labels"`
	Annotations KV `json:"annotations"`

	// Fields below are informational; the translator does not read them.
	// Timestamps are kept as sent.
	Status       string `json:"status,omitempty"`
	StartsAt     string `json:"startsAt,omitempty"`
	EndsAt       string `json:"endsAt,omitempty"`
	GeneratorURL string `json:"generatorURL,omitempty"`
	Fingerprint  string `json:"fingerprint,omitempty"`
}

// UnmarshalJSON decodes one alert leniently: a wrong-typed field falls back
// to its zero value and a non-object alert decodes to an empty Alert.
func (a *Alert) UnmarshalJSON(data []byte) error {
	var raw struct {
		Labels       KV              `json:"labels"`
		Annotations  KV              `json:"annotations"`
		Status       json.RawMessage `json:"status"`
		StartsAt     json.RawMessage `json:"startsAt"`
		EndsAt       json.RawMessage `json:"endsAt"`
		GeneratorURL json.RawMessage `json:"generatorURL"`
		Fingerprint  json.RawMessage `json:"fingerprint"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*a = Alert{}
		return nil
	}
	*a = Alert{
		Labels:       raw.Labels,
		Annotations:  raw.Annotations,
		Status:       scalarString(raw.Status),
		StartsAt:     scalarString(raw.StartsAt),
		EndsAt:       scalarString(raw.EndsAt),
		GeneratorURL: scalarString(raw.GeneratorURL),
		Fingerprint:  scalarString(raw.Fingerprint),
	}
	return nil
}

// AlertEvent is the top-level webhook body posted by Alertmanager.
// Status is compared only against "firing"; any other value is treated as
// resolved.
type AlertEvent struct {
	Status string  `json:"status"`
	Alerts []Alert `json:"alerts"`

	Receiver        string `json:"receiver,omitempty"`
	GroupKey        string `json:"groupKey,omitempty"`
	Version         string `json:"version,omitempty"`
	ExternalURL     string `json:"externalURL,omitempty"`
	TruncatedAlerts int    `json:"truncatedAlerts,omitempty"`
}

// UnmarshalJSON decodes an event leniently. Only a body that is not a JSON
// object is an error; wrong-typed fields fall back to their zero value.
func (e *AlertEvent) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status          json.RawMessage `json:"status"`
		Alerts          json.RawMessage `json:"alerts"`
		Receiver        json.RawMessage `json:"receiver"`
		GroupKey        json.RawMessage `json:"groupKey"`
		Version         json.RawMessage `json:"version"`
		ExternalURL     json.RawMessage `json:"externalURL"`
		TruncatedAlerts json.RawMessage `json:"truncatedAlerts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var alerts []Alert
	if err := json.Unmarshal(raw.Alerts, &alerts); err != nil {
		alerts = nil
	}
	truncated, err := strconv.Atoi(scalarString(raw.TruncatedAlerts))
	if err != nil {
		truncated = 0
	}

	*e = AlertEvent{
		Status:          scalarString(raw.Status),
		Alerts:          alerts,
		Receiver:        scalarString(raw.Receiver),
		GroupKey:        scalarString(raw.GroupKey),
		Version:         scalarString(raw.Version),
		ExternalURL:     scalarString(raw.ExternalURL),
		TruncatedAlerts: truncated,
	}
	return nil
}

// Split returns one sub-event per alert, in input order. Each sub-event carries
// the parent status and contains exactly that alert, so per-alert rendering
// only ever sees its own labels and instance.
func (e AlertEvent) Split() []AlertEvent {
	out := make([]AlertEvent, 0, len(e.Alerts))
	for _, a := range e.Alerts {
		out = append(out, AlertEvent{
			Status:          e.Status,
			Alerts:          []Alert{a},
			Receiver:        e.Receiver,
			GroupKey:        e.GroupKey,
			Version:         e.Version,
			ExternalURL:     e.ExternalURL,
			TruncatedAlerts: e.TruncatedAlerts,
		})
	}
	return out
}

// Notification is the push-notification tuple produced for one alert.
type Notification struct {
	Title    string
	Body     string
	Tags     string
	Priority string
}

// scalarString renders a raw JSON value as a string: strings unquoted,
// numbers and booleans as written, everything else (null, objects, arrays,
// absent) as "".
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	default:
		return string(raw)
	}
}
