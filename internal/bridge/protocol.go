// Package bridge defines the message contract between a print job viewer and
// the local print agent listening on the user's workstation, plus a Go client
// that speaks it.
package bridge

import (
	"bytes"
	"encoding/json"
)

// DefaultAgentURL is where the local print agent listens unless configured otherwise.
const DefaultAgentURL = "ws://localhost:8765"

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// TypeJSON marks a directive that has no recognisable command field; its raw
// form is the directive's own JSON text.
const TypeJSON = "json"

// Directive is one printer instruction as the agent receives it.
type Directive struct {
	Type string `json:"type"`
	Raw  string `json:"raw"`
}

// Message is sent once per job. Directives must be executed in order.
type Message struct {
	JobID      string      `json:"jobId"`
	Directives []Directive `json:"directives"`
}

// Ack is the agent's reply. A frame carrying Index reports progress on a
// single directive; a frame without it settles the whole job.
type Ack struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
	Index   *int   `json:"index,omitempty"`
	Message string `json:"message,omitempty"`
}

func NewMessage(jobID string, directives []Directive) Message {
	if directives == nil {
		directives = []Directive{}
	}
	return Message{JobID: jobID, Directives: directives}
}

// DirectiveFromJSON derives the wire form of a stored directive object.
//
//	{"type":"zpl","raw":"^XA..."} -> {zpl, ^XA...}
//	{"zpl":"^XA..."}              -> {zpl, ^XA...}
//	anything else                 -> {json, <compact object text>}
func DirectiveFromJSON(data []byte) Directive {
	compact := compactJSON(data)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Directive{Type: TypeJSON, Raw: compact}
	}

	if t, ok := stringField(fields, "type"); ok && t != "" {
		if raw, ok := stringField(fields, "raw"); ok {
			return Directive{Type: t, Raw: raw}
		}
		return Directive{Type: t, Raw: compact}
	}

	if len(fields) == 1 {
		for name := range fields {
			if s, ok := stringField(fields, name); ok {
				return Directive{Type: name, Raw: s}
			}
		}
	}

	return Directive{Type: TypeJSON, Raw: compact}
}

func stringField(fields map[string]json.RawMessage, name string) (string, bool) {
	v, ok := fields[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func compactJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}
