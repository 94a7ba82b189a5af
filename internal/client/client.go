// Package client is the orchestrator-facing boundary: connection checks,
// version reporting and model opening. A Client starts as an empty shell;
// the routine session is only constructed when OpenModel succeeds
// (two-phase initialization).
package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/san-kum/mjbridge/internal/mj"
	"github.com/san-kum/mjbridge/internal/routine"
)

const (
	// ConnectorVersion identifies this bridge build to the orchestrator.
	ConnectorVersion = "1.0.0"

	// EngineVersion identifies the builtin dynamics engine.
	EngineVersion = "0.3.0"
)

// ErrNoModel is returned when a session is requested before OpenModel
// succeeded.
var ErrNoModel = errors.New("client: no model open")

// OpenResult is the orchestrator-visible outcome of OpenModel.
type OpenResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Client holds at most one open model session.
type Client struct {
	session   *routine.Session
	modelPath string
}

func New() *Client {
	return &Client{}
}

// TestConnection verifies the bridge can run at all. The builtin engine
// has no external process to probe, so this only confirms the runtime.
func (c *Client) TestConnection() error {
	if runtime.Version() == "" {
		return errors.New("client: go runtime unavailable")
	}
	return nil
}

func (c *Client) SimulatorVersion() string {
	return fmt.Sprintf("mjbridge builtin engine %s (%s)", EngineVersion, runtime.Version())
}

// OpenModel validates and loads a model file. Failures are reported in the
// result rather than raised: a missing file names the path, an unsupported
// extension lists the accepted ones, and a loader failure carries the
// underlying message.
func (c *Client) OpenModel(path string) OpenResult {
	if _, err := os.Stat(path); err != nil {
		return OpenResult{Error: fmt.Sprintf("Model file not found: %s", path)}
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !supported(ext) {
		return OpenResult{Error: fmt.Sprintf("Unsupported model file type %q (supported: %s)",
			ext, strings.Join(mj.SupportedExtensions, ", "))}
	}

	sess, err := routine.NewSession(path)
	if err != nil {
		return OpenResult{Error: fmt.Sprintf("Failed to load model: %v", err)}
	}

	c.session = sess
	c.modelPath = path
	return OpenResult{Success: true}
}

// Session returns the open routine session.
func (c *Client) Session() (*routine.Session, error) {
	if c.session == nil {
		return nil, ErrNoModel
	}
	return c.session, nil
}

func (c *Client) ModelPath() string { return c.modelPath }

func supported(ext string) bool {
	for _, e := range mj.SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
