// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stream_test

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesh-dev/transact/message"
	"github.com/kesh-dev/transact/stream"
)

// duplex is a minimal in-memory Transport: writes go to an io.Pipe the test
// reads from to play a scripted server response; reads come from another
// io.Pipe the test writes into.
type duplex struct {
	toServer   *io.PipeReader
	toServerW  *io.PipeWriter
	fromServer *io.PipeReader
	fromServerW *io.PipeWriter
}

func newDuplex() *duplex {
	tr, tw := io.Pipe()
	fr, fw := io.Pipe()
	return &duplex{toServer: tr, toServerW: tw, fromServer: fr, fromServerW: fw}
}

func (d *duplex) Read(p []byte) (int, error)  { return d.fromServer.Read(p) }
func (d *duplex) Write(p []byte) (int, error) { return d.toServerW.Write(p) }
func (d *duplex) CloseWrite() error           { return d.toServerW.Close() }

func newRequest(t *testing.T, method, rawurl string, body message.Body) *message.Request {
	t.Helper()
	u, err := url.Parse(rawurl)
	require.NoError(t, err)
	h := make(http.Header)
	h.Set("Host", u.Host)
	req := message.NewRequest(method, u, h, body)
	return req
}

func TestStream_SimpleGet(t *testing.T) {
	d := newDuplex()
	s := stream.New(d)
	req := newRequest(t, "GET", "http://h/a", message.BytesBody(nil))
	req.Header.Set("Content-Length", "0")

	go func() {
		br := bufio.NewReader(d.toServer)
		br.ReadString('\n') // request line
		for {
			line, _ := br.ReadString('\n')
			if line == "\r\n" || line == "" {
				break
			}
		}
		io.WriteString(d.fromServerW, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello")
		d.fromServerW.Close()
	}()

	resp, keepAlive, err := s.Do(context.Background(), req, stream.Options{})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.True(t, resp.Body.IsBytes())
	assert.Equal(t, "hello", string(resp.Body.Bytes()))
	assert.True(t, keepAlive)
}

func TestStream_ChunkedResponse(t *testing.T) {
	d := newDuplex()
	s := stream.New(d)
	req := newRequest(t, "GET", "http://h/a", message.BytesBody(nil))
	req.Header.Set("Content-Length", "0")

	go func() {
		br := bufio.NewReader(d.toServer)
		br.ReadString('\n')
		for {
			line, _ := br.ReadString('\n')
			if line == "\r\n" || line == "" {
				break
			}
		}
		io.WriteString(d.fromServerW, "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n")
		io.WriteString(d.fromServerW, "5\r\nhello\r\n0\r\n\r\n")
		d.fromServerW.Close()
	}()

	resp, _, err := s.Do(context.Background(), req, stream.Options{})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "hello", string(resp.Body.Bytes()))
}

func TestStream_ResponseSinkReceivesBody(t *testing.T) {
	d := newDuplex()
	s := stream.New(d)
	req := newRequest(t, "GET", "http://h/a", message.BytesBody(nil))
	req.Header.Set("Content-Length", "0")

	go func() {
		br := bufio.NewReader(d.toServer)
		br.ReadString('\n')
		for {
			line, _ := br.ReadString('\n')
			if line == "\r\n" || line == "" {
				break
			}
		}
		io.WriteString(d.fromServerW, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello")
		d.fromServerW.Close()
	}()

	var sink bytesSink
	resp, _, err := s.Do(context.Background(), req, stream.Options{ResponseSink: &sink})
	require.NoError(t, err)
	assert.True(t, resp.Body.IsConsumed())
	assert.Equal(t, "hello", sink.String())
}

type bytesSink struct{ data []byte }

func (b *bytesSink) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}
func (b *bytesSink) String() string { return string(b.data) }

func TestStream_ExpectContinueProceedsOn100(t *testing.T) {
	d := newDuplex()
	s := stream.New(d)
	req := newRequest(t, "POST", "http://h/x", message.BytesBody([]byte("data")))
	req.Header.Set("Content-Length", "4")
	req.Header.Set("Expect", "100-continue")

	go func() {
		br := bufio.NewReader(d.toServer)
		br.ReadString('\n')
		for {
			line, _ := br.ReadString('\n')
			if line == "\r\n" || line == "" {
				break
			}
		}
		io.WriteString(d.fromServerW, "HTTP/1.1 100 Continue\r\n\r\n")

		body := make([]byte, 4)
		io.ReadFull(br, body)
		assert.Equal(t, "data", string(body))

		io.WriteString(d.fromServerW, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok")
		d.fromServerW.Close()
	}()

	resp, _, err := s.Do(context.Background(), req, stream.Options{ExpectTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "ok", string(resp.Body.Bytes()))
}
