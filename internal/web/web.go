// Package web holds the HTML templates and the browser-side bridge script
// served by the relay.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/orrn/printbridge/internal/bridge"
	"github.com/orrn/printbridge/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the page templates. Pages are addressed by their define
// name: "index", "print_page" and "error_page".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"formatTime": formatTime,
		"inc":        func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
}

// Static serves the browser assets.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// BridgeSettings tells the browser script where the local agent listens and
// how hard to try reaching it. RetryDelaysMs[i] is the pause after failed
// attempt i+1, computed with the same schedule as bridge.Client.
type BridgeSettings struct {
	AgentURL      string  `json:"agentUrl"`
	MaxAttempts   int     `json:"maxAttempts"`
	RetryDelaysMs []int64 `json:"retryDelaysMs"`
	AckTimeoutMs  int64   `json:"ackTimeoutMs"`
}

func NewBridgeSettings(cfg config.BridgeConfig) BridgeSettings {
	delays := bridge.RetryDelays(cfg.InitialBackoff, cfg.MaxBackoff, cfg.MaxAttempts)
	delaysMs := make([]int64, 0, len(delays))
	for _, d := range delays {
		delaysMs = append(delaysMs, d.Milliseconds())
	}
	return BridgeSettings{
		AgentURL:      cfg.AgentURL,
		MaxAttempts:   cfg.MaxAttempts,
		RetryDelaysMs: delaysMs,
		AckTimeoutMs:  cfg.AckTimeout.Milliseconds(),
	}
}

// PageJob is the machine-readable block embedded in the print page.
type PageJob struct {
	Message bridge.Message `json:"message"`
	Bridge  BridgeSettings `json:"bridge"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
