package core

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"
)

// Directive is one opaque print instruction. The relay only checks that it is
// a JSON object; its bytes are kept (compacted) exactly as submitted.
type Directive struct {
	raw json.RawMessage
}

func NewDirective(data []byte) (Directive, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Directive{}, &ValidationError{Reason: "each directive must be a JSON object"}
	}
	if !utf8.Valid(trimmed) {
		return Directive{}, &ValidationError{Reason: "directive is not valid UTF-8"}
	}
	if !json.Valid(trimmed) {
		return Directive{}, &ValidationError{Reason: "directive is not valid JSON"}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return Directive{}, &ValidationError{Reason: "directive is not valid JSON"}
	}
	return Directive{raw: json.RawMessage(buf.Bytes())}, nil
}

// MustDirective is NewDirective for literals known to be valid.
func MustDirective(s string) Directive {
	d, err := NewDirective([]byte(s))
	if err != nil {
		panic(err)
	}
	return d
}

func (d Directive) IsZero() bool {
	return len(d.raw) == 0
}

// Bytes returns a copy of the directive's compact JSON.
func (d Directive) Bytes() []byte {
	return append([]byte(nil), d.raw...)
}

func (d Directive) String() string {
	return string(d.raw)
}

func (d Directive) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("{}"), nil
	}
	return d.raw, nil
}

func (d *Directive) UnmarshalJSON(data []byte) error {
	parsed, err := NewDirective(data)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type PrintJob struct {
	ID         string
	Directives []Directive
	CreatedAt  time.Time
}

// JobStore is the durable source of truth for print jobs. Insert is atomic:
// a failed insert leaves nothing behind under any id. Get never writes.
type JobStore interface {
	Insert(ctx context.Context, job *PrintJob) error
	Get(ctx context.Context, id string) (*PrintJob, error)
}
