package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/orrn/printbridge/internal/bridge"
)

// JobView is what a viewer sees for one id. When Found is false only
// RequestedID and ErrorMessage are set.
type JobView struct {
	Found        bool
	RequestedID  string
	ErrorMessage string

	JobID     string
	CreatedAt time.Time
	// Data is the stored payload as submitted.
	Data []Directive
	// Directives and Message are derived together from Data: the first is
	// for people, the second is handed to the local print agent.
	Directives []bridge.Directive
	Message    bridge.Message
}

type JobViewer struct {
	store  JobStore
	logger *zap.Logger
}

func NewJobViewer(store JobStore, logger *zap.Logger) *JobViewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobViewer{store: store, logger: logger}
}

// View resolves id to its job. An unknown id is a normal outcome and yields
// a not-found view with a nil error; only storage faults return an error.
func (v *JobViewer) View(ctx context.Context, id string) (*JobView, error) {
	if id == "" {
		return notFoundView(id), nil
	}

	job, err := v.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			v.logger.Info("print job not found", zap.String("job_id", id))
			return notFoundView(id), nil
		}
		return nil, fmt.Errorf("failed to load print job %s: %w", id, err)
	}

	directives := make([]bridge.Directive, 0, len(job.Directives))
	for _, d := range job.Directives {
		directives = append(directives, bridge.DirectiveFromJSON(d.Bytes()))
	}

	data := job.Directives
	if data == nil {
		data = []Directive{}
	}

	return &JobView{
		Found:       true,
		RequestedID: id,
		JobID:       job.ID,
		CreatedAt:   job.CreatedAt,
		Data:        data,
		Directives:  directives,
		Message:     bridge.NewMessage(job.ID, directives),
	}, nil
}

func notFoundView(id string) *JobView {
	return &JobView{
		Found:        false,
		RequestedID:  id,
		ErrorMessage: fmt.Sprintf("Print job with ID '%s' not found.", id),
	}
}
