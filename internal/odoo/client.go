// SPDX-License-Identifier: AGPL-3.0-or-later

// Package odoo is a minimal JSON-RPC client for the Odoo /jsonrpc endpoint.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/odoosync/odoosync/internal/config"
)

// ErrReadOnly is returned when a write is attempted against an instance
// configured as read-only.
var ErrReadOnly = errors.New("write operations not allowed on read-only instance")

// RPCError is an error payload returned by the Odoo server.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("odoo error: %s", e.Message)
}

// Client talks to one Odoo instance. Callers construct and own their client;
// there is no package-level instance.
type Client struct {
	url      string
	database string
	username string
	apiKey   string
	readOnly bool

	http      *http.Client
	uid       int
	requestID atomic.Int64
}

// Option tweaks client construction.
type Option func(*Client)

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient builds a client for the given instance parameters.
func NewClient(url, database, username, apiKey string, readOnly bool, opts ...Option) *Client {
	c := &Client{
		url:      strings.TrimRight(url, "/"),
		database: database,
		username: username,
		apiKey:   apiKey,
		readOnly: readOnly,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a client from an instance configuration.
func NewClientFromConfig(inst *config.InstanceConfig, opts ...Option) *Client {
	return NewClient(inst.URL, inst.Database, inst.Username, inst.APIKey, inst.ReadOnly, opts...)
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			Message string `json:"message"`
		} `json:"data"`
	} `json:"error"`
}

// call performs one JSON-RPC request against /jsonrpc.
func (c *Client) call(ctx context.Context, service, method string, args []any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      c.requestID.Add(1),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/jsonrpc", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("odoo returned status %d: %s", resp.StatusCode, string(body))
	}

	var rpc rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpc); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	if rpc.Error != nil {
		msg := rpc.Error.Data.Message
		if msg == "" {
			msg = rpc.Error.Message
		}
		return nil, &RPCError{Code: rpc.Error.Code, Message: msg}
	}

	return rpc.Result, nil
}

// Authenticate logs in and caches the user id for subsequent calls.
func (c *Client) Authenticate(ctx context.Context) (int, error) {
	raw, err := c.call(ctx, "common", "authenticate", []any{c.database, c.username, c.apiKey, map[string]any{}})
	if err != nil {
		return 0, fmt.Errorf("authentication failed: %w", err)
	}

	var uid int
	// Odoo answers false for bad credentials, which is not an int.
	if err := json.Unmarshal(raw, &uid); err != nil || uid == 0 {
		return 0, fmt.Errorf("authentication failed for %s@%s: check credentials and API key", c.username, c.database)
	}

	c.uid = uid
	return uid, nil
}

func (c *Client) ensureAuth(ctx context.Context) error {
	if c.uid != 0 {
		return nil
	}
	_, err := c.Authenticate(ctx)
	return err
}

// ExecuteKw invokes a model method via object.execute_kw, decoding the
// result into out when out is non-nil.
func (c *Client) ExecuteKw(ctx context.Context, model, method string, args []any, kwargs map[string]any, out any) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	raw, err := c.call(ctx, "object", "execute_kw",
		[]any{c.database, c.uid, c.apiKey, model, method, args, kwargs})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s.%s result: %w", model, method, err)
	}
	return nil
}

// SearchReadOptions narrow a SearchRead call.
type SearchReadOptions struct {
	Fields []string
	Limit  int
	Offset int
	Order  string
}

// SearchRead searches records and reads the requested fields.
func (c *Client) SearchRead(ctx context.Context, model string, domain []any, opts SearchReadOptions) ([]map[string]any, error) {
	kwargs := map[string]any{}
	if len(opts.Fields) > 0 {
		kwargs["fields"] = opts.Fields
	}
	if opts.Limit > 0 {
		kwargs["limit"] = opts.Limit
	}
	if opts.Offset > 0 {
		kwargs["offset"] = opts.Offset
	}
	if opts.Order != "" {
		kwargs["order"] = opts.Order
	}

	var records []map[string]any
	err := c.ExecuteKw(ctx, model, "search_read", []any{normalizeDomain(domain)}, kwargs, &records)
	return records, err
}

// Search returns ids of records matching the domain.
func (c *Client) Search(ctx context.Context, model string, domain []any) ([]int, error) {
	var ids []int
	err := c.ExecuteKw(ctx, model, "search", []any{normalizeDomain(domain)}, nil, &ids)
	return ids, err
}

// SearchCount counts records matching the domain.
func (c *Client) SearchCount(ctx context.Context, model string, domain []any) (int, error) {
	var n int
	err := c.ExecuteKw(ctx, model, "search_count", []any{normalizeDomain(domain)}, nil, &n)
	return n, err
}

// Read reads records by id.
func (c *Client) Read(ctx context.Context, model string, ids []int, fields []string) ([]map[string]any, error) {
	kwargs := map[string]any{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}
	var records []map[string]any
	err := c.ExecuteKw(ctx, model, "read", []any{ids}, kwargs, &records)
	return records, err
}

// Create creates a record and returns its id.
func (c *Client) Create(ctx context.Context, model string, vals map[string]any) (int, error) {
	if c.readOnly {
		return 0, ErrReadOnly
	}
	var id int
	err := c.ExecuteKw(ctx, model, "create", []any{vals}, nil, &id)
	return id, err
}

// Write updates records in place.
func (c *Client) Write(ctx context.Context, model string, ids []int, vals map[string]any) error {
	if c.readOnly {
		return ErrReadOnly
	}
	return c.ExecuteKw(ctx, model, "write", []any{ids, vals}, nil, nil)
}

// Unlink deletes records.
func (c *Client) Unlink(ctx context.Context, model string, ids []int) error {
	if c.readOnly {
		return ErrReadOnly
	}
	return c.ExecuteKw(ctx, model, "unlink", []any{ids}, nil, nil)
}

// TaskLoggedHours sums validated timesheet hours on a task. Errors degrade
// to zero hours: logged time is advisory in reports.
func (c *Client) TaskLoggedHours(ctx context.Context, taskID int) float64 {
	if taskID <= 0 {
		return 0
	}
	records, err := c.SearchRead(ctx, "account.analytic.line",
		[]any{
			[]any{"task_id", "=", taskID},
			[]any{"validated", "=", true},
		},
		SearchReadOptions{Fields: []string{"unit_amount"}})
	if err != nil {
		return 0
	}

	var total float64
	for _, rec := range records {
		if v, ok := rec["unit_amount"].(float64); ok {
			total += v
		}
	}
	return total
}

// ConnectionInfo summarizes a successful connection test.
type ConnectionInfo struct {
	ServerVersion string
	UserID        int
	UserName      string
	UserLogin     string
	Database      string
	URL           string
	ReadOnly      bool
}

// TestConnection verifies credentials and returns server and user info.
func (c *Client) TestConnection(ctx context.Context) (*ConnectionInfo, error) {
	raw, err := c.call(ctx, "common", "version", []any{})
	if err != nil {
		return nil, err
	}
	var version struct {
		ServerVersion string `json:"server_version"`
	}
	_ = json.Unmarshal(raw, &version)

	uid, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	users, err := c.Read(ctx, "res.users", []int{uid}, []string{"name", "login"})
	if err != nil {
		return nil, fmt.Errorf("reading user record: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user record %d not found", uid)
	}

	name, _ := users[0]["name"].(string)
	login, _ := users[0]["login"].(string)
	return &ConnectionInfo{
		ServerVersion: version.ServerVersion,
		UserID:        uid,
		UserName:      name,
		UserLogin:     login,
		Database:      c.database,
		URL:           c.url,
		ReadOnly:      c.readOnly,
	}, nil
}

// normalizeDomain keeps nil domains encodable as the empty Odoo domain.
func normalizeDomain(domain []any) []any {
	if domain == nil {
		return []any{}
	}
	return domain
}
