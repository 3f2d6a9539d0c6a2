package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Handler processes one session command.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve answers session commands on listener until the context is
// cancelled or the listener closes. Each connection may issue any number
// of newline-delimited JSON requests; responses come back in request
// order.
func Serve(ctx context.Context, listener net.Listener, handler Handler, logger *slog.Logger) error {
	var conns sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				conns.Wait()
				return nil
			}
			return fmt.Errorf("accept session connection: %w", err)
		}

		conns.Add(1)
		go func(c net.Conn) {
			defer conns.Done()
			defer c.Close()
			// Unblocks a pending decode so shutdown never waits on an
			// idle client.
			stop := context.AfterFunc(ctx, func() { _ = c.Close() })
			defer stop()
			serveConn(ctx, c, handler, logger)
		}(conn)
	}
}

// serveConn drains one client connection. A malformed request terminates
// the connection after an error response; a request without a command is
// rejected but keeps the connection open.
func serveConn(ctx context.Context, conn net.Conn, handler Handler, logger *slog.Logger) {
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return
			}
			_ = enc.Encode(Response{OK: false, Error: fmt.Sprintf("decode request: %v", err)})
			return
		}
		if req.Command == "" {
			_ = enc.Encode(Response{OK: false, Error: "missing command"})
			continue
		}

		start := time.Now()
		resp := handler.Handle(ctx, req)
		logger.Debug("session command served",
			"command", req.Command,
			"say_length", len(req.Text),
			"ok", resp.OK,
			"state", resp.State,
			"duration_ms", time.Since(start).Milliseconds(),
		)

		if err := enc.Encode(resp); err != nil {
			logger.Warn("failed to write session response", "command", req.Command, "error", err.Error())
			return
		}
	}
}
