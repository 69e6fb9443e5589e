package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tmc/macperms/internal/wire"
)

// Server answers requests read from a stream. Each request runs on its own
// goroutine; responses and events share one writer.
type Server struct {
	svc *Service
	d   *Dispatcher
	r   *wire.Reader
	w   *wire.Writer
	log *slog.Logger
}

// NewServer returns a Server dispatching to svc. The Service's events should
// go to NewStreamSink(w) so they reach the same stream.
func NewServer(svc *Service, r *wire.Reader, w *wire.Writer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{svc: svc, d: NewDispatcher(svc), r: r, w: w, log: log}
}

// Run serves requests and drives the Service's Watcher until the input ends
// or ctx is done. A clean end of input returns nil.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.Serve(ctx)
	})
	g.Go(func() error {
		if err := s.svc.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	return g.Wait()
}

// Serve handles requests until the input ends or ctx is done, then waits for
// in-flight requests. A request that cannot be decoded is answered with an
// error and skipped when the codec can resynchronise. When ctx is done the
// input is closed, so the reading goroutine does not outlive Serve.
func (s *Server) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	type readResult struct {
		req *wire.Request
		err error
	}
	reqs := make(chan readResult)
	go func() {
		for {
			req, err := s.r.ReadRequest()
			select {
			case reqs <- readResult{req, err}:
			case <-ctx.Done():
				return
			}
			var malformed *wire.MalformedError
			if err != nil && !errors.As(err, &malformed) {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if err := s.r.Close(); err != nil {
				s.log.Debug("close input", "err", err)
			}
			return ctx.Err()
		case rr := <-reqs:
			if errors.Is(rr.err, io.EOF) {
				s.log.Debug("input closed")
				return nil
			}
			var malformed *wire.MalformedError
			if errors.As(rr.err, &malformed) {
				s.log.Warn("skipping malformed request", "err", malformed.Err)
				if err := s.w.WriteResponse(wire.Response{Error: malformed.Error()}); err != nil {
					return fmt.Errorf("write response: %w", err)
				}
				continue
			}
			if rr.err != nil {
				return fmt.Errorf("read request: %w", rr.err)
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.handle(ctx, rr.req)
			}()
		}
	}
}

func (s *Server) handle(ctx context.Context, req *wire.Request) {
	s.log.Debug("command", "id", req.ID, "cmd", req.Cmd)
	resp := wire.Response{ID: req.ID}
	result, err := s.d.Dispatch(ctx, req.Cmd, req.Args)
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Result = result
	}
	if err := s.w.WriteResponse(resp); err != nil {
		s.log.Error("write response failed", "id", req.ID, "err", err)
	}
}
