// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// uploadPath is the only route that streams large bodies.
const uploadPath = "/api/upload"

// Timeouts configures per-request deadlines. Upload applies to
// POST /api/upload, Default to everything else. A zero Upload falls back
// to Default.
type Timeouts struct {
	Default time.Duration
	Upload  time.Duration
}

func (t Timeouts) forRequest(r *http.Request) time.Duration {
	if r.Method == http.MethodPost && r.URL.Path == uploadPath && t.Upload > 0 {
		return t.Upload
	}
	return t.Default
}

// Timeout cancels the request context once its deadline passes and answers
// 503 if the handler has not started its response by then. API callers get
// the usual JSON error body.
func Timeout(t Timeouts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), t.forRequest(r))
			defer cancel()

			dw := newDeadlineWriter(w)
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if !dw.expire() {
					return
				}
				if strings.HasPrefix(r.URL.Path, "/api/") {
					WriteAPIError(w, http.StatusServiceUnavailable, "timeout", "Request timeout")
					return
				}
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("Request timeout"))
			}
		})
	}
}

// deadlineWriter forwards to the real writer until the deadline fires.
// After that every write from the handler is dropped. Handlers set headers
// on a private map that is copied to the real writer when the response
// starts, so the timeout response never shares a map with the handler.
type deadlineWriter struct {
	http.ResponseWriter
	h       http.Header
	mu      sync.Mutex
	started bool
	expired bool
}

func newDeadlineWriter(w http.ResponseWriter) *deadlineWriter {
	return &deadlineWriter{ResponseWriter: w, h: make(http.Header)}
}

// expire marks the writer expired and reports whether the timeout response
// may still be written.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.expired = true
	return !dw.started
}

func (dw *deadlineWriter) Header() http.Header {
	return dw.h
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.expired || dw.started {
		return
	}
	dw.start(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !dw.started {
		dw.start(http.StatusOK)
	}
	return dw.ResponseWriter.Write(b)
}

// start copies the handler's headers and sends the status. mu must be held.
func (dw *deadlineWriter) start(code int) {
	dw.started = true
	dst := dw.ResponseWriter.Header()
	for k, vv := range dw.h {
		dst[k] = vv
	}
	dw.ResponseWriter.WriteHeader(code)
}
