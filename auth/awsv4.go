// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package auth

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws/credentials"
	v4 "github.com/aws/aws-sdk-go/aws/signer/v4"

	"github.com/kesh-dev/transact/message"
)

// A Signer computes an AWS Signature Version 4 for the AWS4Auth layer
// (§4.10), wrapping aws-sdk-go's own v4.Signer so this engine never
// hand-rolls canonical-request construction or HMAC-SHA256 derivation.
type Signer struct {
	inner   *v4.Signer
	Service string
	Region  string
}

// NewSigner constructs a Signer for the given service and region, using
// creds to derive the signing key.
func NewSigner(creds *credentials.Credentials, service, region string) *Signer {
	return &Signer{inner: v4.NewSigner(creds), Service: service, Region: region}
}

// Sign computes the signature over req and writes Authorization,
// X-Amz-Date, and X-Amz-Content-Sha256 into req.Header in place, per
// §4.10. A buffered body is hashed directly. A streaming body of known
// length is read fully into memory first, since SigV4 needs a seekable
// payload to hash — this trades the stream's single-pass property for a
// real signature; a streaming body of unknown length instead gets the
// AWS "UNSIGNED-PAYLOAD" sentinel, the same fallback the AWS SDK itself
// uses for chunked uploads it cannot pre-hash.
func (s *Signer) Sign(req *message.Request) error {
	httpReq, err := http.NewRequest(req.Method, req.Target.String(), nil)
	if err != nil {
		return err
	}
	httpReq.Header = req.Header.Clone()

	var seekable io.ReadSeeker
	switch {
	case req.Body.IsBytes():
		sum := sha256.Sum256(req.Body.Bytes())
		httpReq.Header.Set("X-Amz-Content-Sha256", hex.EncodeToString(sum[:]))
		seekable = bytes.NewReader(req.Body.Bytes())
	case req.Body.IsStream() && req.Body.Len() >= 0:
		buf, err := io.ReadAll(req.Body.Reader())
		if err != nil {
			return err
		}
		req.Body = message.BytesBody(buf)
		sum := sha256.Sum256(buf)
		httpReq.Header.Set("X-Amz-Content-Sha256", hex.EncodeToString(sum[:]))
		seekable = bytes.NewReader(buf)
	case req.Body.IsStream():
		httpReq.Header.Set("X-Amz-Content-Sha256", "UNSIGNED-PAYLOAD")
	}

	if _, err := s.inner.Sign(httpReq, seekable, s.Service, s.Region, time.Now()); err != nil {
		return err
	}
	req.Header = httpReq.Header
	return nil
}
