package types

import (
	"encoding/json"
	"testing"
)

func TestKV_Get(t *testing.T) {
	kv := KV{"present": "v", "empty": ""}

	if got := kv.Get("present", "def"); got != "v" {
		t.Errorf("present: got %q, want v", got)
	}
	if got := kv.Get("empty", "def"); got != "def" {
		t.Errorf("empty: got %q, want def", got)
	}
	if got := kv.Get("absent", "def"); got != "def" {
		t.Errorf("absent: got %q, want def", got)
	}

	var nilKV KV
	if got := nilKV.Get("x", "def"); got != "def" {
		t.Errorf("nil KV: got %q, want def", got)
	}
}

func TestKV_Has(t *testing.T) {
	kv := KV{"empty": ""}
	if !kv.Has("empty") {
		t.Error("Has(empty): got false, want true")
	}
	if kv.Has("absent") {
		t.Error("Has(absent): got true, want false")
	}
}

func TestAlertEvent_Split(t *testing.T) {
	ev := AlertEvent{
		Status:   "firing",
		Receiver: "ntfy",
		Alerts: []Alert{
			{Labels: KV{"instance": "a"}},
			{Labels: KV{"instance": "b"}},
		},
	}

	subs := ev.Split()
	if len(subs) != 2 {
		t.Fatalf("Split: got %d sub-events, want 2", len(subs))
	}
	for i, want := range []string{"a", "b"} {
		s := subs[i]
		if s.Status != "firing" || s.Receiver != "ntfy" {
			t.Errorf("sub[%d]: parent fields not carried: %+v", i, s)
		}
		if len(s.Alerts) != 1 || s.Alerts[0].Labels["instance"] != want {
			t.Errorf("sub[%d]: got alerts %+v, want only instance %q", i, s.Alerts, want)
		}
	}

	if got := (AlertEvent{Status: "firing"}).Split(); len(got) != 0 {
		t.Errorf("empty event: got %d sub-events, want 0", len(got))
	}
}

func TestAlertEvent_DecodeAlertmanagerPayload(t *testing.T) {
	const payload = `{
	  "version": "4",
	  "groupKey": "{}:{alertname=\"Disk\"}",
	  "truncatedAlerts": 0,
	  "status": "firing",
	  "receiver": "ntfy",
	  "externalURL": "http://alertmanager:9093",
	  "alerts": [{
	    "status": "firing",
	    "labels": {"alertname": "Disk", "instance": "db1"},
	    "annotations": {"summary": "Disk full"},
	    "startsAt": "2024-05-01T10:00:00Z",
	    "endsAt": "0001-01-01T00:00:00Z",
	    "generatorURL": "http://prometheus:9090/graph",
	    "fingerprint": "abc123"
	  }]
	}`
	var ev AlertEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ev.Status != "firing" || ev.Receiver != "ntfy" || ev.Version != "4" {
		t.Errorf("event fields: got %+v", ev)
	}
	if len(ev.Alerts) != 1 {
		t.Fatalf("alerts: got %d, want 1", len(ev.Alerts))
	}
	a := ev.Alerts[0]
	if a.Annotations.Get("summary", "") != "Disk full" || a.Fingerprint != "abc123" {
		t.Errorf("alert fields: got %+v", a)
	}
	if a.StartsAt != "2024-05-01T10:00:00Z" {
		t.Errorf("startsAt: got %q", a.StartsAt)
	}
}

func TestAlertEvent_DecodeWrongTypedFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty startsAt", `{"status":"firing","alerts":[{"labels":{"alertname":"Disk","instance":"db1"},"startsAt":""}]}`},
		{"string truncatedAlerts", `{"status":"firing","truncatedAlerts":"0","alerts":[{"labels":{"alertname":"Disk","instance":"db1"}}]}`},
		{"numeric startsAt", `{"status":"firing","alerts":[{"labels":{"alertname":"Disk","instance":"db1"},"startsAt":17,"endsAt":null}]}`},
		{"annotations not an object", `{"status":"firing","alerts":[{"labels":{"alertname":"Disk","instance":"db1"},"annotations":"oops"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev AlertEvent
			if err := json.Unmarshal([]byte(tt.payload), &ev); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if ev.Status != "firing" || len(ev.Alerts) != 1 {
				t.Fatalf("event: got %+v", ev)
			}
			if got := ev.Alerts[0].Labels.Get("alertname", ""); got != "Disk" {
				t.Errorf("alertname: got %q, want Disk", got)
			}
			if got := ev.Alerts[0].Labels.Get("instance", ""); got != "db1" {
				t.Errorf("instance: got %q, want db1", got)
			}
		})
	}
}

func TestKV_DecodeNonStringValues(t *testing.T) {
	var kv KV
	payload := `{"alertname":"Disk","value":1,"ok":true,"gone":null,"nested":{"a":"b"},"list":[1]}`
	if err := json.Unmarshal([]byte(payload), &kv); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := map[string]string{"alertname": "Disk", "value": "1", "ok": "true", "gone": "", "nested": "", "list": ""}
	for k, v := range want {
		if !kv.Has(k) {
			t.Errorf("%s: missing", k)
		}
		if kv[k] != v {
			t.Errorf("%s: got %q, want %q", k, kv[k], v)
		}
	}
}

func TestAlertEvent_DecodeOddShapes(t *testing.T) {
	var ev AlertEvent
	if err := json.Unmarshal([]byte(`{"status":7,"alerts":"none","truncatedAlerts":"x"}`), &ev); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ev.Status != "7" || len(ev.Alerts) != 0 || ev.TruncatedAlerts != 0 {
		t.Errorf("event: got %+v", ev)
	}

	if err := json.Unmarshal([]byte(`{"alerts":["x",{"labels":{"instance":"a"}}]}`), &ev); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(ev.Alerts) != 2 || ev.Alerts[1].Labels.Get("instance", "") != "a" {
		t.Errorf("alerts: got %+v", ev.Alerts)
	}

	if err := json.Unmarshal([]byte(`["not","an","object"]`), &ev); err == nil {
		t.Error("array body: expected error, got nil")
	}
}
