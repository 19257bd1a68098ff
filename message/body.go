// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"bytes"
	"io"
)

// A Body is the payload of a Request or a Response. Per §3 of the engine
// specification, a Body is always in exactly one of three states: an owned
// byte buffer (replayable, known length), a streaming source (unknown or
// caller-declared length, consumed exactly once), or the sentinel state
// meaning the body has already been streamed away (to the wire, or into a
// caller-supplied sink) and cannot be read or replayed again.
//
// The zero Body is an empty owned buffer, equivalent to BytesBody(nil).
type Body struct {
	kind   kind
	bytes  []byte
	stream io.Reader
	size   int64 // -1 if unknown; meaningful for kind == kindStream
}

type kind int

const (
	kindBytes kind = iota
	kindStream
	kindConsumed
)

// BytesBody wraps a pre-buffered payload. Bodies constructed this way are
// replayable: the Retry layer may re-issue the request after one of these
// has been sent.
func BytesBody(b []byte) Body {
	return Body{kind: kindBytes, bytes: b}
}

// StreamBody wraps a streaming payload source of the given size. Pass -1 for
// size if it is not known in advance, which forces Transfer-Encoding:
// chunked framing in the Message layer. A StreamBody is never replayable, so
// the Retry layer refuses to retry a request that carries one.
func StreamBody(r io.Reader, size int64) Body {
	return Body{kind: kindStream, stream: r, size: size}
}

// Consumed returns the sentinel Body state meaning the original body has
// already been streamed away and cannot be read again. Response bodies
// handed off to a caller-supplied response_stream sink transition to this
// state after the Stream layer finishes copying into the sink.
func Consumed() Body {
	return Body{kind: kindConsumed}
}

// IsBytes reports whether the body is a fully-buffered owned byte slice.
func (b Body) IsBytes() bool { return b.kind == kindBytes }

// IsStream reports whether the body is backed by a streaming source that has
// not yet been consumed.
func (b Body) IsStream() bool { return b.kind == kindStream }

// IsConsumed reports whether the body has already been irrevocably streamed
// away and can no longer be read.
func (b Body) IsConsumed() bool { return b.kind == kindConsumed }

// Bytes returns the owned byte slice. It panics if the body is not a
// kindBytes body; callers must check IsBytes first.
func (b Body) Bytes() []byte {
	if b.kind != kindBytes {
		panic("message: Bytes called on non-buffered body")
	}
	return b.bytes
}

// Len returns the body's length if known: for a buffered body, its byte
// count; for a streaming body, the declared size (-1 if unknown); for a
// consumed body, 0.
func (b Body) Len() int64 {
	switch b.kind {
	case kindBytes:
		return int64(len(b.bytes))
	case kindStream:
		return b.size
	default:
		return 0
	}
}

// Replayable reports whether this body can be resent on a retry attempt.
// Only a fully-buffered body is replayable; a streaming body is consumed
// exactly once, and the sentinel "already streamed" state is never
// replayable by definition. This directly backs the retry recoverability
// guard in §4.4: "the request body has not yet been streamed away".
func (b Body) Replayable() bool { return b.kind == kindBytes }

// Reader returns a fresh io.Reader over the body's content. For a buffered
// body, each call returns an independent reader over the same bytes (so
// retries can call Reader again). For a streaming body, Reader returns the
// underlying source itself and may only be called once, since the source is
// consumed as it is read. Reader panics if the body is in the consumed
// sentinel state.
func (b Body) Reader() io.Reader {
	switch b.kind {
	case kindBytes:
		return bytes.NewReader(b.bytes)
	case kindStream:
		return b.stream
	default:
		panic("message: Reader called on a consumed body")
	}
}
