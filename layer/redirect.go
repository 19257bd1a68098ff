// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"
	"net/http"

	"github.com/kesh-dev/transact/message"
	"github.com/kesh-dev/transact/xerr"
)

// redirectMiddleware implements the Redirect layer (§4.2). It is the
// outermost layer in the stack: on every 3xx it re-invokes the entire rest
// of the stack (next) against the resolved Location, so BasicAuth,
// ContentTypeDetection, Cookie, Canonicalize, Message, AWS4Auth, Exception,
// Retry, and ConnectionPool all run again for the new hop, exactly as
// §4.1's ordering rationale describes.
func redirectMiddleware(cfg *Config) Middleware {
	if !cfg.Redirect {
		return passthrough
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, c *Ctx) (*message.Response, error) {
			for {
				resp, err := next(ctx, c)
				if err != nil {
					return resp, err
				}
				if !isRedirectStatus(resp.Status) {
					return resp, nil
				}
				if c.Redirects >= cfg.RedirectLimit {
					return nil, &xerr.TooManyRedirects{
						Limit:   cfg.RedirectLimit,
						History: c.Req.History(),
					}
				}
				loc := resp.Header.Get("Location")
				if loc == "" {
					return resp, nil
				}
				newURI, err := message.ResolveLocation(c.URI, loc)
				if err != nil {
					return resp, nil
				}

				method := c.Req.Method
				header := c.Req.Header.Clone()
				body := c.Req.Body
				if resp.Status == http.StatusSeeOther {
					method = http.MethodGet
					body = message.BytesBody(nil)
					header.Del("Content-Length")
					header.Del("Content-Type")
					header.Del("Transfer-Encoding")
				}
				if !message.SameOrigin(c.URI, newURI) {
					header.Del("Authorization")
					header.Del("Cookie")
				}
				// messageMiddleware only fills in a blank Host; it never
				// overwrites one already set, so a cross-host hop must clear
				// the previous origin's Host itself.
				header.Del("Host")

				cfg.Logger.Debug().
					Str("from", c.URI.String()).
					Str("to", newURI.String()).
					Int("status", resp.Status).
					Msg("transact: following redirect")

				c.Req = c.Req.Redirect(method, newURI, header, body)
				c.URI = newURI
				c.Header = header
				c.Body = body
				c.Method = method
				c.Redirects++
			}
		}
	}
}

func isRedirectStatus(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}
