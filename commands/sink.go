package commands

import (
	"github.com/tmc/macperms/internal/wire"
)

// StreamSink writes events to a wire.Writer, interleaved with responses.
type StreamSink struct {
	w *wire.Writer
}

// NewStreamSink returns a sink writing to w.
func NewStreamSink(w *wire.Writer) *StreamSink {
	return &StreamSink{w: w}
}

// EmitTo implements photokit.EventSink.
func (s *StreamSink) EmitTo(target, event string, payload any) error {
	return s.w.WriteEvent(wire.Event{Event: event, Target: target, Payload: payload})
}

// FuncSink adapts a function to photokit.EventSink.
type FuncSink func(target, event string, payload any) error

// EmitTo implements photokit.EventSink.
func (f FuncSink) EmitTo(target, event string, payload any) error {
	return f(target, event, payload)
}

// DiscardSink drops every event.
var DiscardSink = FuncSink(func(string, string, any) error { return nil })
