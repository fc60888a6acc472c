// Package anki is the adapter for the AnkiConnect HTTP API (protocol
// version 6). It exposes the small set of note operations the rest of
// the system needs: query, fetch, field writes and tag management.
package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is where a local Anki instance with the
	// AnkiConnect add-on listens.
	DefaultBaseURL = "http://127.0.0.1:8765"

	protocolVersion = 6
	requestTimeout  = 30 * time.Second
)

// ErrTransport marks failures to reach AnkiConnect or to decode its
// reply. Callers treat these as fatal for the whole operation.
var ErrTransport = errors.New("anki: transport error")

// RemoteError is an error reported by AnkiConnect itself (the request
// reached Anki but the action failed).
type RemoteError struct {
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("anki: %s failed: %s", e.Action, e.Message)
}

// Store is the contract the compaction workflow consumes. *Client
// implements it against a live AnkiConnect; tests implement it in memory.
type Store interface {
	FindNotes(ctx context.Context, query string) ([]int64, error)
	NotesInfo(ctx context.Context, ids []int64) ([]Note, error)
	UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error
	AddTags(ctx context.Context, ids []int64, tag string) error
	RemoveTags(ctx context.Context, ids []int64, tag string) error
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type rpcRequest struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// rpc performs one AnkiConnect call and decodes the result into out.
// A nil out discards the result.
func (c *Client) rpc(ctx context.Context, action string, params any, out any) error {
	body, err := json.Marshal(rpcRequest{Action: action, Version: protocolVersion, Params: params})
	if err != nil {
		return fmt.Errorf("%w: encode %s request: %v", ErrTransport, action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransport, action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s reply: %v", ErrTransport, action, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrTransport, action, resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: decode %s reply: %v", ErrTransport, action, err)
	}
	if envelope.Error != nil && *envelope.Error != "" {
		return &RemoteError{Action: action, Message: *envelope.Error}
	}
	if out != nil && len(envelope.Result) > 0 && string(envelope.Result) != "null" {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("%w: decode %s result: %v", ErrTransport, action, err)
		}
	}
	return nil
}

// FindNotes returns the IDs of notes matching an Anki search query.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	if err := c.rpc(ctx, "findNotes", map[string]any{"query": query}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// NotesInfo fetches full note records for the given IDs.
func (c *Client) NotesInfo(ctx context.Context, ids []int64) ([]Note, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var notes []Note
	if err := c.rpc(ctx, "notesInfo", map[string]any{"notes": ids}, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// UpdateNoteFields writes field values on a single note.
func (c *Client) UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error {
	params := map[string]any{
		"note": map[string]any{"id": id, "fields": fields},
	}
	return c.rpc(ctx, "updateNoteFields", params, nil)
}

// AddTags applies a tag to the given notes.
func (c *Client) AddTags(ctx context.Context, ids []int64, tag string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.rpc(ctx, "addTags", map[string]any{"notes": ids, "tags": tag}, nil)
}

// RemoveTags strips a tag from the given notes.
func (c *Client) RemoveTags(ctx context.Context, ids []int64, tag string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.rpc(ctx, "removeTags", map[string]any{"notes": ids, "tags": tag}, nil)
}

// DeckNames lists all deck names known to Anki.
func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.rpc(ctx, "deckNames", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ModelFieldNames returns the field names of a note type.
func (c *Client) ModelFieldNames(ctx context.Context, modelName string) ([]string, error) {
	var names []string
	if err := c.rpc(ctx, "modelFieldNames", map[string]any{"modelName": modelName}, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Ping reports whether AnkiConnect is reachable.
func (c *Client) Ping(ctx context.Context) bool {
	var version int
	return c.rpc(ctx, "version", nil, &version) == nil
}
