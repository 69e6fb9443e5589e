// Package wire frames serve-loop messages as JSON lines or CBOR sequences.
package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Codec names.
const (
	JSON = "json"
	CBOR = "cbor"
)

// Request is an inbound command.
type Request struct {
	ID   string
	Cmd  string
	Args Args
}

// Args holds a request's undecoded arguments.
type Args struct {
	raw       []byte
	unmarshal func([]byte, any) error
}

// Decode unmarshals the arguments into v. Absent arguments leave v untouched.
func (a Args) Decode(v any) error {
	if len(a.raw) == 0 || a.unmarshal == nil {
		return nil
	}
	return a.unmarshal(a.raw, v)
}

// Empty reports whether the request carried no arguments.
func (a Args) Empty() bool { return len(a.raw) == 0 }

// Response answers the Request with the same ID. Error is set when the
// command failed; commands without a result leave both empty.
type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Event is an unsolicited message addressed to a target.
type Event struct {
	Event   string `json:"event"`
	Target  string `json:"target"`
	Payload any    `json:"payload"`
}

type jsonRequest struct {
	ID   string          `json:"id"`
	Cmd  string          `json:"cmd"`
	Args json.RawMessage `json:"args,omitempty"`
}

type cborRequest struct {
	ID   string          `json:"id"`
	Cmd  string          `json:"cmd"`
	Args cbor.RawMessage `json:"args,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("wire: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("wire: CBOR decoder initialization failed: " + err.Error())
	}
}

// MalformedError reports a request that could not be decoded while the
// stream itself is still usable. Only JSON lines can recover this way; a bad
// CBOR item ends the stream.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string { return "wire: malformed request: " + e.Err.Error() }

func (e *MalformedError) Unwrap() error { return e.Err }

// Reader decodes a stream of requests.
type Reader struct {
	src  io.Reader
	next func() (*Request, error)
}

// NewReader returns a Reader for codec. JSON requests are one object per
// line; blank lines are skipped.
func NewReader(codec string, r io.Reader) (*Reader, error) {
	switch codec {
	case JSON:
		br := bufio.NewReader(r)
		return &Reader{src: r, next: func() (*Request, error) {
			for {
				line, err := br.ReadBytes('\n')
				line = bytes.TrimSpace(line)
				if len(line) == 0 {
					if err != nil {
						return nil, err
					}
					continue
				}
				var req jsonRequest
				if err := json.Unmarshal(line, &req); err != nil {
					return nil, &MalformedError{Err: err}
				}
				return &Request{ID: req.ID, Cmd: req.Cmd, Args: Args{raw: req.Args, unmarshal: unmarshalJSONArgs}}, nil
			}
		}}, nil
	case CBOR:
		dec := decMode.NewDecoder(r)
		return &Reader{src: r, next: func() (*Request, error) {
			var req cborRequest
			if err := dec.Decode(&req); err != nil {
				return nil, err
			}
			return &Request{ID: req.ID, Cmd: req.Cmd, Args: Args{raw: req.Args, unmarshal: decMode.Unmarshal}}, nil
		}}, nil
	}
	return nil, fmt.Errorf("wire: unknown codec %q", codec)
}

// ReadRequest returns the next request, or io.EOF at a clean end of stream.
// A *MalformedError means the request was skipped and reading can go on.
func (r *Reader) ReadRequest() (*Request, error) {
	return r.next()
}

// Close closes the underlying input if it is an io.Closer, which unblocks a
// pending ReadRequest.
func (r *Reader) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func unmarshalJSONArgs(data []byte, v any) error {
	if string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Writer encodes responses and events. It is safe for concurrent use; each
// message is written whole.
type Writer struct {
	mu  sync.Mutex
	enc interface{ Encode(any) error }
}

// NewWriter returns a Writer for codec.
func NewWriter(codec string, w io.Writer) (*Writer, error) {
	switch codec {
	case JSON:
		return &Writer{enc: json.NewEncoder(w)}, nil
	case CBOR:
		return &Writer{enc: encMode.NewEncoder(w)}, nil
	}
	return nil, fmt.Errorf("wire: unknown codec %q", codec)
}

// WriteResponse writes one response.
func (w *Writer) WriteResponse(resp Response) error {
	return w.write(resp)
}

// WriteEvent writes one event.
func (w *Writer) WriteEvent(ev Event) error {
	return w.write(ev)
}

func (w *Writer) write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}
