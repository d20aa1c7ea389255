// Package seed fetches the raw to-do records used to populate an empty
// board.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dori/dsboard/internal/board"
)

// DefaultURL serves the dummyjson todos collection
const DefaultURL = "https://dummyjson.com/todos"

// DefaultLimit matches the default band layout
const DefaultLimit = 15

// maxBody caps how much of a response is read
const maxBody = 4 << 20

//go:embed todos.schema.json
var schemaJSON []byte

const schemaURL = "todos.schema.json"

var (
	// ErrStatus is returned for non-2xx responses
	ErrStatus = errors.New("seed: unexpected status")
	// ErrPayload is returned when a response does not match the schema
	ErrPayload = errors.New("seed: invalid payload")
)

// Provider supplies raw records
type Provider interface {
	Fetch(ctx context.Context) ([]board.RawTask, error)
}

// Static is a Provider that always returns the same records
type Static []board.RawTask

// Fetch returns a copy of the records
func (s Static) Fetch(context.Context) ([]board.RawTask, error) {
	out := make([]board.RawTask, len(s))
	copy(out, s)
	return out, nil
}

// HTTPProvider fetches records from a dummyjson style endpoint:
// GET {URL}?limit={Limit} returning {"todos":[{"id":1,"todo":"..."}]}.
type HTTPProvider struct {
	URL     string
	Limit   int
	Timeout time.Duration
	Client  *http.Client
}

// NewHTTPProvider returns a provider for endpoint with the given limit and
// per-request timeout
func NewHTTPProvider(endpoint string, limit int, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		URL:     endpoint,
		Limit:   limit,
		Timeout: timeout,
		Client:  http.DefaultClient,
	}
}

type payload struct {
	Todos []board.RawTask `json:"todos"`
}

// Fetch performs one request. Transport, status, schema and decode failures
// are all returned as errors; there is no retry.
func (p *HTTPProvider) Fetch(ctx context.Context) ([]board.RawTask, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	endpoint, err := p.requestURL()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("seed: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("seed: fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("seed: read body: %w", err)
	}
	return Decode(raw)
}

func (p *HTTPProvider) requestURL() (string, error) {
	u, err := url.Parse(p.URL)
	if err != nil {
		return "", fmt.Errorf("seed: bad url %q: %w", p.URL, err)
	}
	if p.Limit > 0 {
		q := u.Query()
		q.Set("limit", strconv.Itoa(p.Limit))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Decode validates raw against the payload schema and returns its records
func Decode(raw []byte) ([]board.RawTask, error) {
	var doc any
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayload, err)
	}
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPayload, firstCause(err))
	}

	var p payload
	if err := sonic.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayload, err)
	}
	return p.Todos, nil
}

var (
	schemaOnce  sync.Once
	todosSchema *jsonschema.Schema
	schemaErr   error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("seed: load schema: %w", err)
			return
		}
		todosSchema, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("seed: compile schema: %w", schemaErr)
		}
	})
	return todosSchema, schemaErr
}

// firstCause returns the innermost message of a schema validation error
func firstCause(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return fmt.Sprintf("%s: %s", ve.InstanceLocation, ve.Message)
}
