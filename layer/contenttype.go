// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"
	"net/http"

	"github.com/kesh-dev/transact/message"
)

// contentTypeMiddleware implements the ContentTypeDetection layer: it
// sniffs a buffered body and sets Content-Type when the caller did not
// supply one (the detect_content_type option, §6). A streaming body is
// left alone since sniffing it would consume bytes the Stream layer still
// needs to send.
func contentTypeMiddleware(cfg *Config) Middleware {
	if !cfg.DetectContentType {
		return passthrough
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, c *Ctx) (*message.Response, error) {
			if c.Header.Get("Content-Type") == "" && c.Body.IsBytes() && len(c.Body.Bytes()) > 0 {
				c.Header.Set("Content-Type", http.DetectContentType(c.Body.Bytes()))
			}
			return next(ctx, c)
		}
	}
}
