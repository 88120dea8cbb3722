/*
Package server implements msgpack IPC for course-section autocomplete.

The server reads msgpack values from stdin and writes one msgpack response per
request to stdout. Messages are processed synchronously with timing info
included in responses. Logs go to stderr.

# IPC

On start the server writes a status message:

	{"status": "ready"}

Every request carries an ID that is echoed back. A request without an
action is a completion request, either free text:

	{"id": "req_001", "i": "cs1200 j", "l": 10}

or a structured field set:

	{"id": "req_002", "f": {"prefix": "CS", "number": "1200", "professorName": "Jane Doe"}, "l": 10}

The server responds with matching records in traversal order and the time
taken in microseconds:

	{"id": "req_001", "r": [{"prefix": "CS", "number": "1200", "professorName": "Jane Doe"}], "c": 1, "t": 42}

Free text without a limit uses search.raw_limit, fields without a limit use
server.default_limit; both are capped at server.max_limit.

Requests with an action manage the server:

	{"id": "cfg_001", "action": "get_config"}
	{"id": "cfg_002", "action": "set_config", "max_limit": 32}
	{"id": "cfg_003", "action": "reload"}
	{"id": "st_001", "action": "stats"}
	{"id": "h_001", "action": "health"}

Failures are reported as CompletionError with an HTTP-like code: 400 for bad
requests, 429 when the rate limit is exceeded, 500 for internal errors.
*/
package server

import "github.com/bastiangx/courseserve/pkg/catalog"

// Actions accepted in Envelope.Action.
const (
	ActionComplete  = ""
	ActionGetConfig = "get_config"
	ActionSetConfig = "set_config"
	ActionReload    = "reload"
	ActionStats     = "stats"
	ActionHealth    = "health"
)

// Envelope is decoded first to route a message.
type Envelope struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action,omitempty"`
}

// CompletionRequest asks for completions of free text or of a field set.
type CompletionRequest struct {
	ID     string          `msgpack:"id"`
	Input  string          `msgpack:"i,omitempty"`
	Fields *catalog.Record `msgpack:"f,omitempty"`
	Limit  int             `msgpack:"l,omitempty"`
}

// CompletionResponse carries the matching records.
type CompletionResponse struct {
	ID        string           `msgpack:"id"`
	Results   []catalog.Record `msgpack:"r"`
	Count     int              `msgpack:"c"`
	TimeTaken int64            `msgpack:"t"`
}

// CompletionError holds basic error information for failed requests
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// ConfigRequest reads or changes runtime limits. Nil fields are left as is.
type ConfigRequest struct {
	ID           string `msgpack:"id"`
	Action       string `msgpack:"action"`
	MaxLimit     *int   `msgpack:"max_limit,omitempty"`
	DefaultLimit *int   `msgpack:"default_limit,omitempty"`
	RawLimit     *int   `msgpack:"raw_limit,omitempty"`
}

// ConfigResponse reports the limits in effect after a config operation.
type ConfigResponse struct {
	ID           string `msgpack:"id"`
	Status       string `msgpack:"status"`
	Error        string `msgpack:"error,omitempty"`
	MaxLimit     int    `msgpack:"max_limit"`
	DefaultLimit int    `msgpack:"default_limit"`
	RawLimit     int    `msgpack:"raw_limit"`
	MaxInput     int    `msgpack:"max_input"`
}

// StatsResponse reports graph statistics and the served request count.
type StatsResponse struct {
	ID       string         `msgpack:"id"`
	Graph    map[string]int `msgpack:"graph"`
	Requests uint64         `msgpack:"requests"`
}

// StatusMessage is the ready signal and the health reply.
type StatusMessage struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}
