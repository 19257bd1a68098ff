// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http/httputil"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/kesh-dev/transact/message"
	"github.com/kesh-dev/transact/pool"
	"github.com/kesh-dev/transact/xerr"
)

// Options configures one exchange.
type Options struct {
	// ExpectTimeout bounds how long the writer waits for a "100 Continue"
	// interim response before sending the request body anyway. Default 1s
	// per §9 ("Expect/100-continue timing... choose 1s and make it
	// configurable").
	ExpectTimeout time.Duration

	// ResponseSink, if non-nil, receives the response body as it arrives
	// instead of it being buffered into the Response (the `response_stream`
	// option, §6).
	ResponseSink io.Writer
}

func (o Options) expectTimeout() time.Duration {
	if o.ExpectTimeout > 0 {
		return o.ExpectTimeout
	}
	return time.Second
}

// A Stream drives one request/response exchange over a Transport (§4.7):
// it writes the request line, headers, and body while concurrently parsing
// the response status line, headers, and body, so a server that rejects an
// oversized upload early is not starved behind the still-uploading writer.
type Stream struct {
	t  Transport
	br *bufio.Reader
	p  *parser
}

// New constructs a Stream over t. t is typically a *pool.Transaction,
// optionally wrapped by the Debug and Timeout layers' decorators, both of
// which satisfy Transport.
func New(t Transport) *Stream {
	br := bufio.NewReader(t)
	return &Stream{t: t, br: br, p: newParser(br)}
}

// Do runs one exchange: it sends req (populating req.Response, which it
// also returns) and reports whether the Connection remains eligible for
// reuse afterward (§4.7 step 4). The boolean is meaningless when err is
// non-nil other than a *xerr.StatusError-eligible response: callers should
// treat any non-nil err as "do not reuse".
func (s *Stream) Do(ctx context.Context, req *message.Request, opts Options) (*message.Response, bool, error) {
	resp := req.Response

	if err := s.writeHead(req); err != nil {
		return nil, false, err
	}

	expectContinue := hasExpectContinue(req.Header)
	continueCh := make(chan bool, 1)
	writeErrCh := make(chan error, 1)

	go func() {
		writeErrCh <- s.writeBody(req, expectContinue, continueCh, opts)
	}()
	// Yield so the writer's headers (already flushed above, synchronously)
	// are unambiguously on the wire before the reader begins parsing.
	runtime.Gosched()

	readErr := s.readResponse(resp, expectContinue, continueCh, opts)

	var writeErr error
	select {
	case writeErr = <-writeErrCh:
	case <-ctx.Done():
		writeErr = xerr.NewIOError("stream.Do", ctx.Err())
	}

	if readErr != nil {
		return nil, false, readErr
	}
	if writeErr != nil {
		// Early abort (§4.7): the server answered before the writer
		// finished. If the response itself is a final, non-2xx answer the
		// writer's pipe-closed error is suppressed and the response wins.
		if resp.Status == 0 || resp.Status < 300 {
			return nil, false, writeErr
		}
	}

	return resp, resp.KeepAlive(), nil
}

func (s *Stream) writeHead(req *message.Request) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/%d.%d\r\n", req.Method, req.RequestTarget(), req.ProtoMajor, req.ProtoMinor)
	if err := req.Header.Write(&b); err != nil {
		return xerr.NewIOError("stream.writeHead", err)
	}
	b.WriteString("\r\n")
	if _, err := io.WriteString(s.t, b.String()); err != nil {
		return xerr.NewIOError("stream.writeHead", err)
	}
	return nil
}

func hasExpectContinue(h map[string][]string) bool {
	for _, v := range h["Expect"] {
		if strings.EqualFold(strings.TrimSpace(v), "100-continue") {
			return true
		}
	}
	return false
}

// writeBody implements the writer task of §4.7 step 2. When expectContinue
// is set it first waits (up to opts.ExpectTimeout) for the reader to signal
// whether a 100 arrived; a timeout is treated as permission to send the
// body anyway, and an explicit false (the server answered before the 100)
// skips the body entirely.
func (s *Stream) writeBody(req *message.Request, expectContinue bool, continueCh <-chan bool, opts Options) error {
	if expectContinue {
		select {
		case proceed := <-continueCh:
			if !proceed {
				return nil
			}
		case <-time.After(opts.expectTimeout()):
		}
	}

	chunked := isChunked(req.Header)
	var w io.Writer = s.t
	var closer io.Closer
	if chunked {
		cw := httputil.NewChunkedWriter(s.t)
		w = cw
		closer = cw
	}

	if req.Body.IsBytes() && len(req.Body.Bytes()) > 0 {
		if _, err := w.Write(req.Body.Bytes()); err != nil {
			return xerr.NewIOError("stream.writeBody", err)
		}
	} else if req.Body.IsStream() {
		if _, err := io.Copy(w, req.Body.Reader()); err != nil {
			return xerr.NewIOError("stream.writeBody", err)
		}
	}

	if closer != nil {
		if err := closer.Close(); err != nil {
			return xerr.NewIOError("stream.writeBody", err)
		}
	}
	if err := s.t.CloseWrite(); err != nil && err != pool.ErrHalfCloseUnsupported {
		return xerr.NewIOError("stream.writeBody", err)
	}
	return nil
}

func isChunked(h map[string][]string) bool {
	for _, v := range h["Transfer-Encoding"] {
		if strings.EqualFold(strings.TrimSpace(v), "chunked") {
			return true
		}
	}
	return false
}

// readResponse implements the reader task of §4.7 step 2: parse the
// status line, then headers, then the body, deciding framing from
// Content-Length / chunked / connection-close.
func (s *Stream) readResponse(resp *message.Response, expectContinue bool, continueCh chan<- bool, opts Options) error {
	sl, err := s.p.parseStatusLine()
	if err != nil {
		if expectContinue {
			continueCh <- false
		}
		return err
	}

	if expectContinue && sl.Status == 100 {
		if _, err := s.p.parseHeaderFields(); err != nil {
			continueCh <- false
			return err
		}
		continueCh <- true
		sl, err = s.p.parseStatusLine()
		if err != nil {
			return err
		}
	} else if expectContinue {
		// The server answered without a 100 Continue; the writer must not
		// send the body.
		continueCh <- false
	}

	header, err := s.p.parseHeaderFields()
	if err != nil {
		return err
	}

	resp.ProtoMajor, resp.ProtoMinor = sl.Major, sl.Minor
	resp.Status = sl.Status
	resp.Reason = sl.Reason
	resp.Header = header

	return s.readBody(resp, opts)
}

// readBody consumes the response body per its framing (chunked,
// Content-Length, or read-until-close) and either copies it into
// opts.ResponseSink or buffers it into resp.Body.
func (s *Stream) readBody(resp *message.Response, opts Options) error {
	if noBodyStatus(resp.Status) {
		resp.Body = message.BytesBody(nil)
		return nil
	}

	var src io.Reader
	switch {
	case isChunked(resp.Header):
		src = httputil.NewChunkedReader(s.p.reader())
	case resp.Header.Get("Content-Length") != "":
		n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
		if err != nil {
			return &xerr.ParsingError{Kind: "content-length", At: -1, Msg: err.Error()}
		}
		src = io.LimitReader(s.p.reader(), n)
	default:
		// No explicit framing: read until the connection closes.
		src = s.p.reader()
	}

	if opts.ResponseSink != nil {
		if _, err := io.Copy(opts.ResponseSink, src); err != nil && err != io.EOF {
			return xerr.NewIOError("stream.readBody", err)
		}
		resp.Body = message.Consumed()
		return nil
	}

	data, err := io.ReadAll(src)
	if err != nil && err != io.EOF {
		return xerr.NewIOError("stream.readBody", err)
	}
	resp.Body = message.BytesBody(data)
	return nil
}

func noBodyStatus(status int) bool {
	return status == 204 || status == 304 || (status >= 100 && status < 200)
}
