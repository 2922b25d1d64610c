package ntfy

import (
	"strings"

	"github.com/prometheus/common/model"

	"github.com/obsidianstack/ntfy-bridge/pkg/types"
)

const (
	defaultTitle = "Alert"

	tagsFiring   = "warning,skull"
	tagsResolved = "green_circle"

	priorityDefault  = "3"
	priorityResolved = "2"
)

// severityPriority maps the severity label of a firing alert to an ntfy
// priority level (1–5, higher is more urgent).
var severityPriority = map[string]string{
	"critical": "5",
	"warning":  "4",
}

// IsFiring reports whether status denotes a firing alert group.
// Anything other than "firing" (case-insensitive) counts as resolved.
func IsFiring(status string) bool {
	return strings.EqualFold(status, string(model.AlertFiring))
}

// Translate builds the notification for one alert. labels and annotations are
// the alert's own sets; alerts supplies the instance list for the trailing
// "Instance(s):" line.
//
// Translate has no side effects and is safe for concurrent use.
func Translate(status string, labels, annotations types.KV, alerts []types.Alert) types.Notification {
	firing := IsFiring(status)

	n := types.Notification{
		Title:    labels.Get(string(model.AlertNameLabel), defaultTitle),
		Tags:     tagsResolved,
		Priority: priorityResolved,
	}

	var lines []string
	if firing {
		severity := labels.Get("severity", "")
		lines = append(lines,
			"Status: FIRING",
			"Severity: "+strings.ToUpper(severity),
		)
		if annotations.Has("summary") {
			lines = append(lines, "Summary: "+annotations["summary"])
		}
		if annotations.Has("description") {
			lines = append(lines, "Description: "+annotations["description"])
		}

		n.Tags = tagsFiring
		n.Priority = priorityDefault
		if p, ok := severityPriority[severity]; ok {
			n.Priority = p
		}
	} else {
		n.Title += " Resolved"
		lines = append(lines, "Alert has been resolved.")
	}

	lines = append(lines, "Instance(s): "+instances(alerts))
	n.Body = strings.Join(lines, "\n")
	return n
}

// TranslateEvent translates a single-alert sub-event as produced by
// types.AlertEvent.Split. An event without alerts renders with empty label
// and annotation sets.
func TranslateEvent(ev types.AlertEvent) types.Notification {
	var labels, annotations types.KV
	if len(ev.Alerts) > 0 {
		labels = ev.Alerts[0].Labels
		annotations = ev.Alerts[0].Annotations
	}
	return Translate(ev.Status, labels, annotations, ev.Alerts)
}

// instances space-joins the instance label of every alert. Only the outer
// whitespace is trimmed; gaps left by alerts without an instance stay.
func instances(alerts []types.Alert) string {
	parts := make([]string, 0, len(alerts))
	for _, a := range alerts {
		parts = append(parts, a.Labels.Get(string(model.InstanceLabel), ""))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
