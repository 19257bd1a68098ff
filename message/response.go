// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"net/http"

	"golang.org/x/net/http/httpguts"
)

// A Response is populated by the Stream layer as it parses the status line,
// headers, and body from the wire. Its Request back-reference is set at
// construction time by NewRequest, so Request.Response and Response.Request
// are a linked pair for the whole lifetime of one attempt (§9's "cyclic
// references... implement as... a weak back-reference").
type Response struct {
	// Status is the numeric status code, 0 until the status line has
	// been parsed.
	Status int

	// Reason is the reason phrase following the status code on the
	// status line.
	Reason string

	ProtoMajor int
	ProtoMinor int

	// Header holds the ordered response header fields, in the order
	// they arrived on the wire within a given field name's values.
	Header http.Header

	// Body is the response payload: an owned byte buffer if no
	// response_stream sink was supplied, or the Consumed sentinel if
	// the bytes were copied directly into a caller sink.
	Body Body

	// Request is the Request that produced this Response.
	Request *Request
}

// Reset clears status, headers, and body back to the empty state. The Retry
// layer does not call it: each retry attempt gets a new, empty Response
// through Request.Retry instead.
func (resp *Response) Reset() {
	resp.Status = 0
	resp.Reason = ""
	resp.ProtoMajor = 0
	resp.ProtoMinor = 0
	resp.Header = make(http.Header)
	resp.Body = Body{}
}

// KeepAlive reports whether, given the response's declared protocol version
// and Connection header, the underlying connection may be reused. HTTP/1.1
// defaults to keep-alive unless "Connection: close" is present; HTTP/1.0
// defaults to close unless "Connection: keep-alive" is present.
func (resp *Response) KeepAlive() bool {
	conn := resp.Header["Connection"]
	switch {
	case httpguts.HeaderValuesContainsToken(conn, "close"):
		return false
	case httpguts.HeaderValuesContainsToken(conn, "keep-alive"):
		return true
	default:
		return resp.ProtoMajor == 1 && resp.ProtoMinor >= 1
	}
}
