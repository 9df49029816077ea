package db

import (
	"time"

	"github.com/orrn/printbridge/internal/core"
)

// PrintJob is the print_jobs row.
type PrintJob struct {
	ID        string    `db:"id"`
	DataJSON  string    `db:"data_json"`
	CreatedAt time.Time `db:"created_at"`
}

// jobDocument is the JSON stored in data_json. It keeps the request's
// {"data": [...]} envelope.
type jobDocument struct {
	Data []core.Directive `json:"data"`
}
