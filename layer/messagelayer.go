// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kesh-dev/transact/message"
)

const defaultUserAgent = "transact/1.0"

// messageMiddleware implements the Message layer (§4.3): it is the
// boundary where the raw (URI, Header, Body) tuple upper layers pass
// around becomes a typed message.Request, with Host, User-Agent, and Accept
// filled in where the caller left them unset, and Content-Length or
// Transfer-Encoding always set from the Body. The Request it builds is shared by every layer below;
// the Retry layer derives a new Request from it (Request.Retry) for each
// further attempt.
func messageMiddleware(cfg *Config) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, c *Ctx) (*message.Response, error) {
			header := c.Header
			if header == nil {
				header = make(http.Header)
			}
			if header.Get("Host") == "" {
				header.Set("Host", c.URI.Host)
			}
			if header.Get("User-Agent") == "" {
				ua := cfg.UserAgent
				if ua == "" {
					ua = defaultUserAgent
				}
				header.Set("User-Agent", ua)
			}
			if header.Get("Accept") == "" {
				header.Set("Accept", "*/*")
			}
			setBodyFraming(header, c.Body)

			parent := c.Req
			req := message.NewRequest(c.Method, c.URI, header, c.Body)
			req.Parent = parent
			c.Req = req
			c.Header = header

			return next(ctx, c)
		}
	}
}

func setBodyFraming(header http.Header, body message.Body) {
	switch {
	case body.IsBytes():
		header.Set("Content-Length", strconv.Itoa(len(body.Bytes())))
		header.Del("Transfer-Encoding")
	case body.IsStream():
		if n := body.Len(); n >= 0 {
			header.Set("Content-Length", strconv.FormatInt(n, 10))
			header.Del("Transfer-Encoding")
		} else {
			header.Set("Transfer-Encoding", "chunked")
			header.Del("Content-Length")
		}
	default:
		header.Del("Content-Length")
		header.Del("Transfer-Encoding")
	}
}
