// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package stream implements the Stream layer (§4.7): the wire state machine
// that drives one request/response exchange over a pool.Transaction,
// overlapping the request body upload with the response download so an
// early error response is not blocked behind a large upload.
//
// The byte-level parsing §6 treats as an external collaborator is built on
// net/textproto (status line and header block) and net/http/httputil
// (chunked transfer-coding), the same stdlib seam k3nju-httpx's message
// reader and atercattus-h2client's stream reader both build on.
package stream

import (
	"bufio"
	"fmt"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/kesh-dev/transact/xerr"
)

// parser wraps a *textproto.Reader to parse a status line and a header
// block from the wire, reporting malformed input as a *xerr.ParsingError.
type parser struct {
	tp *textproto.Reader
	br *bufio.Reader
}

func newParser(r *bufio.Reader) *parser {
	return &parser{tp: textproto.NewReader(r), br: r}
}

type statusLine struct {
	Major, Minor int
	Status       int
	Reason       string
}

// parseStatusLine reads one CRLF-terminated status line and splits it into
// its three fields, per RFC 7230 §3.1.2.
func (p *parser) parseStatusLine() (statusLine, error) {
	line, err := p.tp.ReadLine()
	if err != nil {
		return statusLine{}, xerr.NewIOError("stream.parseStatusLine", err)
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return statusLine{}, &xerr.ParsingError{Kind: "status-line", At: 0, Msg: "malformed status line: " + line}
	}
	major, minor, ok := parseHTTPVersion(parts[0])
	if !ok {
		return statusLine{}, &xerr.ParsingError{Kind: "status-line", At: 0, Msg: "malformed HTTP version: " + parts[0]}
	}
	status, err := strconv.Atoi(parts[1])
	if err != nil || status < 100 || status > 599 {
		return statusLine{}, &xerr.ParsingError{Kind: "status-line", At: 1, Msg: "malformed status code: " + parts[1]}
	}
	reason := ""
	if len(parts) == 3 {
		reason = parts[2]
	}
	return statusLine{Major: major, Minor: minor, Status: status, Reason: reason}, nil
}

func parseHTTPVersion(s string) (major, minor int, ok bool) {
	var maj, min int
	n, err := fmt.Sscanf(s, "HTTP/%d.%d", &maj, &min)
	if err != nil || n != 2 {
		return 0, 0, false
	}
	return maj, min, true
}

// parseHeaderFields reads the CRLFCRLF-terminated header block following a
// status line or request line.
func (p *parser) parseHeaderFields() (http.Header, error) {
	mh, err := p.tp.ReadMIMEHeader()
	if err != nil {
		return nil, &xerr.ParsingError{Kind: "headers", At: -1, Msg: err.Error()}
	}
	return http.Header(mh), nil
}

// reader exposes the buffered reader underlying the parser so the body
// framing logic in stream.go can hand off to a chunked or fixed-length
// reader without losing already-buffered bytes.
func (p *parser) reader() *bufio.Reader {
	return p.br
}
