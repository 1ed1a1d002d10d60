// Package store is the client for the external graph store's HTTP
// transactional endpoint. It sends whole Cypher statements as single
// requests and surfaces store-side rejections (including trigger
// exceptions) as structured errors for the violation interpreter.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dd0wney/archval/pkg/logging"
)

var (
	// ErrNotConnected indicates the store could not be reached.
	ErrNotConnected = errors.New("graph store unreachable")
)

// StatementError is a store-side rejection of a statement. Its text mirrors
// the driver-style error blob the violation interpreter knows how to parse:
// trigger exceptions arrive inside Message.
type StatementError struct {
	Code    string
	Message string
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("{code: %s} {message: %s}", e.Code, e.Message)
}

// QueryResult is the rows returned by a read-only query. Columns preserves
// the store's column order so rendered violation rows are reproducible.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// Client talks to one graph store over its HTTP transactional API. The
// client owns its underlying connections: the instance that created it is
// the only one that may Close it. A Client is safe for sequential reuse
// across validation runs but holds no per-run state.
type Client struct {
	cfg  Config
	http *http.Client
	log  logging.Logger
}

// NewClient validates the descriptor and builds a client. No network
// traffic happens here; call VerifyConnectivity to test the store.
func NewClient(cfg Config, log logging.Logger) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.With(logging.Component("store"), logging.Store(cfg.URI)),
	}, nil
}

// Database returns the logical database this client writes to.
func (c *Client) Database() string { return c.cfg.Database }

// VerifyConnectivity runs a trivial query to prove the store is reachable
// and the credentials work.
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	if _, err := c.commit(ctx, "RETURN 1 AS ok"); err != nil {
		c.log.Warn("Connectivity check failed", logging.Error(err))
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return nil
}

// ExecuteWrite sends one creation statement in a single transactional
// request. A store-side rejection (constraint or trigger) comes back as a
// *StatementError; the transaction is rolled back by the store, so nothing
// is committed on failure.
func (c *Client) ExecuteWrite(ctx context.Context, statement string) error {
	_, err := c.commit(ctx, statement)
	return err
}

// Query runs one read-only statement and returns its rows in store order.
func (c *Client) Query(ctx context.Context, query string) (*QueryResult, error) {
	resp, err := c.commit(ctx, query)
	if err != nil {
		return nil, err
	}
	result := &QueryResult{}
	if len(resp.Results) > 0 {
		result.Columns = resp.Results[0].Columns
		for _, d := range resp.Results[0].Data {
			result.Rows = append(result.Rows, d.Row)
		}
	}
	return result, nil
}

// Cleanup wipes every node and relationship in the database. It is
// idempotent: running it against an already-empty store succeeds.
func (c *Client) Cleanup(ctx context.Context) error {
	if err := c.ExecuteWrite(ctx, "MATCH (n) DETACH DELETE n"); err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	return nil
}

// Close releases the client's network resources. Only the creator of the
// client may call it.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Wire types for the transactional endpoint.

type txStatement struct {
	Statement string `json:"statement"`
}

type txRequest struct {
	Statements []txStatement `json:"statements"`
}

type txError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type txData struct {
	Row []any `json:"row"`
}

type txResult struct {
	Columns []string `json:"columns"`
	Data    []txData `json:"data"`
}

type txResponse struct {
	Results []txResult `json:"results"`
	Errors  []txError  `json:"errors"`
}

// commit posts one statement to the auto-commit transactional endpoint and
// decodes the response. Statement-level failures are *StatementError;
// transport failures are plain errors.
func (c *Client) commit(ctx context.Context, statement string) (*txResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(txRequest{Statements: []txStatement{{Statement: statement}}})
	if err != nil {
		return nil, fmt.Errorf("encoding statement: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.commitURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("authentication rejected (status %d)", resp.StatusCode)
	}

	var decoded txResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}

	if len(decoded.Errors) > 0 {
		first := decoded.Errors[0]
		return nil, &StatementError{Code: first.Code, Message: first.Message}
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("store returned status %d", resp.StatusCode)
	}
	return &decoded, nil
}

func (c *Client) commitURL() string {
	base := strings.TrimRight(c.cfg.URI, "/")
	return fmt.Sprintf("%s/db/%s/tx/commit", base, c.cfg.Database)
}
