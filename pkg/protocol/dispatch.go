package protocol

import (
	"fmt"

	"github.com/google/uuid"
)

// HandlerFunc is invoked once per registered handler, for every decoded
// message of its code, with the originating connection's id.
type HandlerFunc func(client uuid.UUID, msg Message)

// Entry is one row of a dispatch Table: a wire code, its name (for log
// messages), its decoder, and the handlers registered against it.
type Entry struct {
	Code     uint16
	Name     string
	Decode   func([]byte) (Message, error)
	Handlers []HandlerFunc
}

// Table is the hand-maintained dispatch table of §9: a flat, append-only
// map from wire code to decoder and handler list. No macro or codegen
// derives it — new message codes are added by calling register.
type Table struct {
	entries map[uint16]*Entry
}

// NewClientTable builds the dispatch table for client->server messages.
func NewClientTable() *Table {
	t := &Table{entries: make(map[uint16]*Entry)}
	t.register(CodeChunkLoad, "ChunkLoad", DecodeChunkLoad)
	t.register(CodeLandscapeUpdate, "LandscapeUpdate", DecodeLandscapeUpdate)
	return t
}

func (t *Table) register(code uint16, name string, decode func([]byte) (Message, error)) {
	t.entries[code] = &Entry{Code: code, Name: name, Decode: decode}
}

// Handle registers a handler for every message decoded at code. Codes
// not yet in the table panic: wiring a handler against a code that
// doesn't exist is a programming error, not a runtime condition.
func (t *Table) Handle(code uint16, h HandlerFunc) {
	e, ok := t.entries[code]
	if !ok {
		panic(fmt.Sprintf("protocol: Handle called for unregistered code %d", code))
	}
	e.Handlers = append(e.Handlers, h)
}

// Dispatch decodes payload using the entry for code and invokes every
// handler registered for it. An unrecognized code is a framing error.
// Intended for tests and single-goroutine callers; the transport's read
// task uses Decode plus the pipeline's own Route call instead, so
// handler invocation always happens on the scheduler goroutine.
func (t *Table) Dispatch(client uuid.UUID, code uint16, payload []byte) error {
	e, ok := t.entries[code]
	if !ok {
		return fmt.Errorf("protocol: unknown message code %d", code)
	}
	msg, err := e.Decode(payload)
	if err != nil {
		return fmt.Errorf("protocol: decode %s: %w", e.Name, err)
	}
	t.routeEntry(e, client, msg)
	return nil
}

// Decode turns a wire code and payload into a Message without invoking
// any handlers, for use by the transport's read task: decoding happens
// off the scheduler goroutine, but handler invocation must not.
func (t *Table) Decode(code uint16, payload []byte) (Message, string, error) {
	e, ok := t.entries[code]
	if !ok {
		return nil, "", fmt.Errorf("protocol: unknown message code %d", code)
	}
	msg, err := e.Decode(payload)
	if err != nil {
		return nil, e.Name, fmt.Errorf("protocol: decode %s: %w", e.Name, err)
	}
	return msg, e.Name, nil
}

// Route invokes every handler registered for msg.Code() with msg. The
// caller (the pipeline's Receive stage) must run this on the single
// scheduler goroutine.
func (t *Table) Route(client uuid.UUID, msg Message) {
	e, ok := t.entries[msg.Code()]
	if !ok {
		return
	}
	t.routeEntry(e, client, msg)
}

func (t *Table) routeEntry(e *Entry, client uuid.UUID, msg Message) {
	for _, h := range e.Handlers {
		h(client, msg)
	}
}
