// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"net/http"
	"net/url"
)

// A Request is the typed object the Message layer (§4.3) builds from the
// raw (method, URI, headers, body) tuple the outermost layers pass down.
// Every layer below Message shares this same Request, mutating its Header
// or replacing its Body as needed (the Retry layer builds a new Request with
// its own empty Response for each attempt; the Redirect layer constructs a
// brand new Request for each hop; both chain via Parent).
type Request struct {
	// Method is the HTTP method token (GET, POST, ...).
	Method string

	// Target is the request URL. Its Host/Port determine the connection
	// pool key (see Origin); its Path/RawQuery determine the request
	// line's request-target.
	Target *url.URL

	// ProtoMajor and ProtoMinor are the HTTP version to declare on the
	// request line. The engine only speaks HTTP/1.1 (ProtoMajor=1,
	// ProtoMinor=1); the fields exist for symmetry with Response and to
	// let a future HTTP/1.0 fallback be expressed without a new type.
	ProtoMajor int
	ProtoMinor int

	// Header holds the ordered request header fields. Multiple values
	// for one name are preserved in net/http.Header's usual slice-valued
	// form.
	Header http.Header

	// Body is the request payload; see the Body type's documentation for
	// its three-state model.
	Body Body

	// Close, if true, instructs the Stream layer to request the
	// connection be closed after this exchange (Connection: close),
	// overriding keep-alive negotiation.
	Close bool

	// Parent is the request that immediately preceded this one in the
	// same logical call, i.e. the request that received a redirect or
	// that failed and is being retried. Parent is nil for the first
	// attempt.
	Parent *Request

	// Response is populated once this Request has been sent and a
	// Response (possibly empty, possibly an error placeholder) exists
	// for it. It is set by the Message layer at construction time to an
	// empty Response linked back to this Request, and is populated in
	// place as the Stream layer reads the wire.
	Response *Response
}

// NewRequest constructs a Request with an empty, linked Response, as the
// Message layer does at the boundary between the (URI, Request, Body) shape
// used by upper layers and the (Stream, Request, Body) shape used below
// ConnectionPool.
func NewRequest(method string, target *url.URL, header http.Header, body Body) *Request {
	if header == nil {
		header = make(http.Header)
	}
	req := &Request{
		Method:     method,
		Target:     target,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     header,
		Body:       body,
	}
	req.Response = &Response{Request: req}
	return req
}

// Retry returns a fresh Request for a new attempt of the same logical call:
// same method, target, and header, Parent set to req, and Body reset to a
// fresh reader for a replayable body (the Retry layer never calls this for
// a non-replayable body). The new Request gets its own empty, linked
// Response, per §4.4 "the Response is reset".
func (req *Request) Retry() *Request {
	next := NewRequest(req.Method, req.Target, cloneHeader(req.Header), req.Body)
	next.Close = req.Close
	next.Parent = req
	return next
}

// Redirect returns a fresh Request for following a redirect to target,
// chained via Parent to req, per §4.2. Authorization and Cookie headers are
// the caller's responsibility to strip beforehand when the redirect crosses
// an origin boundary; method and body are supplied by the caller because
// they depend on the redirect status code (303 rewrites to GET with an
// empty body; 307/308 preserve both).
func (req *Request) Redirect(method string, target *url.URL, header http.Header, body Body) *Request {
	next := NewRequest(method, target, header, body)
	next.Parent = req
	return next
}

// RequestTarget returns the request-line target for req: the origin-form
// path+query for a plain request, per RequestTarget's documentation.
func (req *Request) RequestTarget() string {
	return RequestTarget(req.Target)
}

// History walks the Parent chain from the oldest request to req itself,
// returning the target URLs visited in chronological order. Used by the
// Redirect layer to populate TooManyRedirects.History.
func (req *Request) History() []string {
	var chain []*Request
	for r := req; r != nil; r = r.Parent {
		chain = append(chain, r)
	}
	urls := make([]string, len(chain))
	for i, r := range chain {
		urls[len(chain)-1-i] = r.Target.String()
	}
	return urls
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return make(http.Header)
	}
	return h.Clone()
}
