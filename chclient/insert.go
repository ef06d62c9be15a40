// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package chclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sneller-chcore/chgo/cherr"
	"github.com/sneller-chcore/chgo/chframe"
)

const (
	targetChunkSize = 256 * 1024
	chunkSlack      = 2 * 1024
	minChunkSize    = targetChunkSize - chunkSlack
)

// InsertConfig carries the per-pipeline transport wiring: where to send
// the request, how (if at all) to compress outgoing chunks, and the two
// independently configurable timeouts.
type InsertConfig struct {
	Transport  Transport
	URL        *url.URL
	Header     http.Header
	Compressor chframe.Compressor     // nil: send chunks uncompressed
	Checker    chframe.Checksummer128 // required when Compressor is set

	// SendTimeout bounds how long Write may block offering a chunk to
	// the background sender before it fails with KindTimedOut. Zero
	// means no timeout.
	SendTimeout time.Duration
	// EndTimeout bounds how long End may block waiting for the
	// background task to finish. Zero means no timeout.
	EndTimeout time.Duration

	// ChanDepth sizes the bounded chunk channel; small values keep
	// back-pressure tight, larger ones smooth over bursty writers.
	// Defaults to 2.
	ChanDepth int
}

// InsertPipeline buffers application-encoded rows into ~256KiB chunks and
// streams them to the server as a single chunked HTTP request body,
// started lazily on the first Write so a pipeline that is opened and
// immediately ended issues a genuine zero-row insert rather than no
// request at all.
type InsertPipeline struct {
	cfg   InsertConfig
	table string

	buf []byte

	chunks chan []byte
	reader *chunkReader

	timer *time.Timer

	started bool
	result  chan insertResult

	mu sync.Mutex
}

type insertResult struct {
	summary Summary
	err     error
}

// NewInsertPipeline builds a pipeline targeting table. No request is
// issued until the first Write or until End is called.
func NewInsertPipeline(cfg InsertConfig, table string) *InsertPipeline {
	depth := cfg.ChanDepth
	if depth <= 0 {
		depth = 2
	}
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	return &InsertPipeline{
		cfg:    cfg,
		table:  table,
		chunks: make(chan []byte, depth),
		timer:  timer,
	}
}

// Write buffers one application-encoded row. The row's bytes are copied;
// the caller's slice may be reused immediately after this returns. Write
// may block (back-pressure) if the chunk channel is full and the
// background sender has not drained it; SendTimeout bounds that wait.
func (p *InsertPipeline) Write(ctx context.Context, row []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		if err := p.startLocked(ctx); err != nil {
			return err
		}
	}
	p.buf = append(p.buf, row...)
	if len(p.buf) < minChunkSize {
		return nil
	}
	return p.flushLocked(ctx)
}

// flushLocked sends the current buffer (if non-empty) down the chunk
// channel, starting the background request on the first call.
func (p *InsertPipeline) flushLocked(ctx context.Context) error {
	if !p.started {
		if err := p.startLocked(ctx); err != nil {
			return err
		}
	}
	if len(p.buf) == 0 {
		return nil
	}
	chunk := p.buf
	p.buf = nil
	return p.sendLocked(ctx, p.encode(chunk))
}

func (p *InsertPipeline) encode(plain []byte) []byte {
	if p.cfg.Compressor == nil {
		return plain
	}
	return chframe.EncodeFrame(nil, plain, p.cfg.Compressor, p.cfg.Checker)
}

// startLocked builds the HTTP request and launches the background task
// that feeds the request body from the chunk channel and reads the
// response once the caller closes the channel via End/Abort.
func (p *InsertPipeline) startLocked(ctx context.Context) error {
	p.reader = &chunkReader{chunks: p.chunks}
	req := &Request{
		Method: http.MethodPost,
		URL:    p.cfg.URL,
		Header: p.cfg.Header,
		Body:   p.reader,
	}
	p.result = make(chan insertResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.result <- insertResult{err: cherr.New(cherr.KindCustom, "insert background task panicked")}
			}
		}()
		resp, err := p.cfg.Transport.Do(ctx, req)
		if err != nil {
			p.result <- insertResult{err: cherr.Wrap(cherr.KindTransport, "insert into "+p.table, err)}
			return
		}
		defer resp.Body.Close()
		if err := CheckStatus(resp); err != nil {
			p.result <- insertResult{err: err}
			return
		}
		summary, _ := ParseSummary(resp.Header.Get("X-ClickHouse-Summary"))
		p.result <- insertResult{summary: summary}
	}()
	p.started = true
	return nil
}

// sendLocked offers chunk to the background sender, honoring
// cfg.SendTimeout with the pipeline's single reusable timer.
func (p *InsertPipeline) sendLocked(ctx context.Context, chunk []byte) error {
	if p.cfg.SendTimeout <= 0 {
		select {
		case p.chunks <- chunk:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if !p.timer.Stop() {
		select {
		case <-p.timer.C:
		default:
		}
	}
	p.timer.Reset(p.cfg.SendTimeout)
	select {
	case p.chunks <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.timer.C:
		p.reader.abort(cherr.New(cherr.KindTimedOut, "insert send timed out"))
		return cherr.New(cherr.KindTimedOut, "insert send timed out")
	}
}

// End flushes any residual buffer, starting the request if it was never
// started (a pipeline opened and ended with no writes is a zero-row
// insert), closes the sender, and awaits the background task.
func (p *InsertPipeline) End(ctx context.Context) (Summary, error) {
	p.mu.Lock()
	if err := p.flushLocked(ctx); err != nil {
		p.mu.Unlock()
		return Summary{}, err
	}
	close(p.chunks)
	result := p.result
	endTimeout := p.cfg.EndTimeout
	var timerC <-chan time.Time
	if endTimeout > 0 {
		if !p.timer.Stop() {
			select {
			case <-p.timer.C:
			default:
			}
		}
		p.timer.Reset(endTimeout)
		timerC = p.timer.C
	}
	p.mu.Unlock()

	if timerC == nil {
		r := <-result
		return r.summary, r.err
	}
	select {
	case r := <-result:
		return r.summary, r.err
	case <-timerC:
		return Summary{}, cherr.New(cherr.KindTimedOut, "insert end timed out")
	}
}

// Abort drops the pipeline without completing the insert: the sender is
// closed abnormally so the in-flight HTTP request fails server-side and
// no rows are committed. It does not wait for the background task.
func (p *InsertPipeline) Abort() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	if p.reader != nil {
		p.reader.abort(cherr.New(cherr.KindCustom, "insert pipeline aborted"))
	}
	close(p.chunks)
}

// chunkReader presents the bounded chunk channel as an io.Reader for the
// HTTP request body, so the background task can hand it straight to
// http.NewRequestWithContext without buffering the whole insert in
// memory.
type chunkReader struct {
	chunks   <-chan []byte
	pending  []byte
	mu       sync.Mutex
	abortErr error
}

func (r *chunkReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	err := r.abortErr
	r.mu.Unlock()
	if err != nil {
		return 0, err
	}
	if len(r.pending) == 0 {
		chunk, ok := <-r.chunks
		if !ok {
			return 0, io.EOF
		}
		r.pending = chunk
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *chunkReader) abort(err error) {
	r.mu.Lock()
	r.abortErr = err
	r.mu.Unlock()
}
