package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreatedJob struct {
	ID      string
	ViewURL string
}

// JobCreator mints ids for new jobs and commits them to the store before
// handing back a viewer URL.
type JobCreator struct {
	store  JobStore
	logger *zap.Logger
	newID  func() string
	now    func() time.Time
}

func NewJobCreator(store JobStore, logger *zap.Logger) *JobCreator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobCreator{
		store:  store,
		logger: logger,
		newID:  func() string { return uuid.New().String() },
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create stores the directives as a new job. baseURL is the externally
// visible address of the relay (scheme, host and any path prefix). On error
// no job exists and no id is returned.
func (c *JobCreator) Create(ctx context.Context, directives []Directive, baseURL string) (*CreatedJob, error) {
	for i, d := range directives {
		if d.IsZero() {
			return nil, &ValidationError{Reason: fmt.Sprintf("directive %d is empty", i)}
		}
	}
	if baseURL == "" {
		return nil, errors.New("base url is required to build a viewer url")
	}

	job := &PrintJob{
		ID:         c.newID(),
		Directives: append([]Directive{}, directives...),
		CreatedAt:  c.now(),
	}

	if err := c.store.Insert(ctx, job); err != nil {
		c.logger.Error("failed to store print job", zap.String("job_id", job.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to create print job: %w", err)
	}

	c.logger.Info("print job created",
		zap.String("job_id", job.ID),
		zap.Int("directives", len(job.Directives)))

	return &CreatedJob{
		ID:      job.ID,
		ViewURL: ViewURL(baseURL, job.ID),
	}, nil
}

func ViewURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/view?id=" + url.QueryEscape(id)
}
