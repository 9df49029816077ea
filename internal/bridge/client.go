package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	// ErrAgentUnreachable means no connection to the local agent could be
	// made. It says nothing about whether the job exists.
	ErrAgentUnreachable = errors.New("local print agent unreachable")
	ErrAgentRejected    = errors.New("local print agent rejected job")
	ErrInvalidAck       = errors.New("invalid acknowledgement from local print agent")
)

type ClientConfig struct {
	AgentURL       string
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	AckTimeout     time.Duration
}

type Client struct {
	cfg    ClientConfig
	dialer *websocket.Dialer
	logger *zap.Logger
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.AgentURL == "" {
		cfg.AgentURL = DefaultAgentURL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Send delivers one job to the local agent and waits for its job-level
// acknowledgement. Progress frames for single directives are logged and
// skipped. Cancelling ctx aborts both connecting and waiting.
func (c *Client) Send(ctx context.Context, msg Message) (*Ack, error) {
	conn, err := c.dialWithRetry(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	deadline := time.Now().Add(c.cfg.AckTimeout)
	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteJSON(msg); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to send job %s: %w", msg.JobID, err)
	}

	_ = conn.SetReadDeadline(deadline)
	for {
		var ack Ack
		if err := conn.ReadJSON(&ack); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to read acknowledgement for job %s: %w", msg.JobID, err)
		}

		if ack.JobID != msg.JobID {
			c.logger.Debug("ignoring acknowledgement for another job", zap.String("job_id", ack.JobID))
			continue
		}

		if ack.Index != nil {
			c.logger.Debug("directive acknowledged",
				zap.String("job_id", ack.JobID),
				zap.Int("index", *ack.Index),
				zap.String("status", ack.Status))
			continue
		}

		switch ack.Status {
		case StatusOK:
			return &ack, nil
		case StatusError:
			return &ack, fmt.Errorf("%w: %s", ErrAgentRejected, ack.Message)
		default:
			return nil, fmt.Errorf("%w: status %q", ErrInvalidAck, ack.Status)
		}
	}
}

func (c *Client) dialWithRetry(ctx context.Context) (*websocket.Conn, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		conn, _, err := c.dialer.DialContext(ctx, c.cfg.AgentURL, nil)
		if err == nil {
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err

		if attempt < c.cfg.MaxAttempts {
			backoff := c.backoff(attempt)
			c.logger.Warn("local print agent not reachable, retrying",
				zap.String("agent_url", c.cfg.AgentURL),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.cfg.MaxAttempts),
				zap.Duration("backoff", backoff),
				zap.Error(err))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("%w at %s after %d attempts: %v", ErrAgentUnreachable, c.cfg.AgentURL, c.cfg.MaxAttempts, lastErr)
}

func (c *Client) backoff(attempt int) time.Duration {
	return RetryDelay(c.cfg.InitialBackoff, c.cfg.MaxBackoff, attempt)
}

// RetryDelay is the pause after failed attempt n (1-based): initial, doubled
// per attempt, never above limit.
func RetryDelay(initial, limit time.Duration, n int) time.Duration {
	d := initial
	for i := 1; i < n; i++ {
		if d >= limit/2 {
			return limit
		}
		d *= 2
	}
	if d > limit {
		return limit
	}
	return d
}

// RetryDelays lists the pauses between maxAttempts connection attempts.
func RetryDelays(initial, limit time.Duration, maxAttempts int) []time.Duration {
	if maxAttempts < 2 {
		return []time.Duration{}
	}
	delays := make([]time.Duration, 0, maxAttempts-1)
	for n := 1; n < maxAttempts; n++ {
		delays = append(delays, RetryDelay(initial, limit, n))
	}
	return delays
}
