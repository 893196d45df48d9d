// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func blockUntilDone(w http.ResponseWriter, r *http.Request) {
	<-r.Context().Done()
}

func TestTimeoutFastHandler(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Album", "7")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	})

	rr := httptest.NewRecorder()
	Timeout(Timeouts{Default: time.Second})(handler).
		ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/gallery", nil))

	if rr.Code != http.StatusCreated {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusCreated)
	}
	if got := rr.Header().Get("X-Album"); got != "7" {
		t.Errorf("X-Album = %q, want 7", got)
	}
	if rr.Body.String() != "created" {
		t.Errorf("Body = %q, want created", rr.Body.String())
	}
}

func TestTimeoutAPIPathJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	Timeout(Timeouts{Default: 20 * time.Millisecond})(http.HandlerFunc(blockUntilDone)).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/news", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestTimeoutPagePlainText(t *testing.T) {
	rr := httptest.NewRecorder()
	Timeout(Timeouts{Default: 20 * time.Millisecond})(http.HandlerFunc(blockUntilDone)).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/about", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if rr.Body.String() != "Request timeout" {
		t.Errorf("Body = %q, want %q", rr.Body.String(), "Request timeout")
	}
}

func TestTimeoutHandlerHeadersAfterDeadline(t *testing.T) {
	finished := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(finished)
		<-r.Context().Done()
		for i := range 1000 {
			w.Header().Set("X-Late", strconv.Itoa(i))
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	Timeout(Timeouts{Default: 10 * time.Millisecond})(handler).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	<-finished

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if got := rr.Header().Get("X-Late"); got != "" {
		t.Errorf("X-Late = %q, want handler headers dropped after the deadline", got)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestTimeoutUploadGetsLongerDeadline(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(60 * time.Millisecond):
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
		}
	})
	mw := Timeout(Timeouts{Default: 20 * time.Millisecond, Upload: time.Second})

	rr := httptest.NewRecorder()
	mw(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/upload", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("upload Status = %d, want %d", rr.Code, http.StatusOK)
	}

	rr = httptest.NewRecorder()
	mw(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/contact", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("contact Status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestTimeoutsForRequest(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Timeouts
		method string
		path   string
		want   time.Duration
	}{
		{"upload post", Timeouts{Default: time.Second, Upload: time.Minute}, http.MethodPost, "/api/upload", time.Minute},
		{"upload get", Timeouts{Default: time.Second, Upload: time.Minute}, http.MethodGet, "/api/upload", time.Second},
		{"other route", Timeouts{Default: time.Second, Upload: time.Minute}, http.MethodPost, "/api/news", time.Second},
		{"no upload override", Timeouts{Default: time.Second}, http.MethodPost, "/api/upload", time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.forRequest(httptest.NewRequest(tt.method, tt.path, nil))
			if got != tt.want {
				t.Errorf("forRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeadlineWriter(t *testing.T) {
	t.Run("implicit 200", func(t *testing.T) {
		rr := httptest.NewRecorder()
		dw := newDeadlineWriter(rr)
		n, err := dw.Write([]byte("hello"))
		if err != nil || n != 5 {
			t.Fatalf("Write() = %d, %v", n, err)
		}
		if rr.Code != http.StatusOK {
			t.Errorf("Status = %d, want 200", rr.Code)
		}
	})

	t.Run("second WriteHeader ignored", func(t *testing.T) {
		rr := httptest.NewRecorder()
		dw := newDeadlineWriter(rr)
		dw.WriteHeader(http.StatusAccepted)
		dw.WriteHeader(http.StatusNotFound)
		if rr.Code != http.StatusAccepted {
			t.Errorf("Status = %d, want %d", rr.Code, http.StatusAccepted)
		}
	})

	t.Run("expire before response", func(t *testing.T) {
		rr := httptest.NewRecorder()
		dw := newDeadlineWriter(rr)
		if !dw.expire() {
			t.Error("expire() = false, want true when nothing was written")
		}
		if _, err := dw.Write([]byte("late")); err != http.ErrHandlerTimeout {
			t.Errorf("Write() error = %v, want ErrHandlerTimeout", err)
		}
		if rr.Body.Len() != 0 {
			t.Errorf("Body = %q, want empty", rr.Body.String())
		}
	})

	t.Run("headers held until response starts", func(t *testing.T) {
		rr := httptest.NewRecorder()
		dw := newDeadlineWriter(rr)
		dw.Header().Set("X-Report", "2025")
		if got := rr.Header().Get("X-Report"); got != "" {
			t.Errorf("X-Report before WriteHeader = %q, want empty", got)
		}
		dw.WriteHeader(http.StatusOK)
		if got := rr.Header().Get("X-Report"); got != "2025" {
			t.Errorf("X-Report = %q, want 2025", got)
		}
	})

	t.Run("expire after response started", func(t *testing.T) {
		dw := newDeadlineWriter(httptest.NewRecorder())
		dw.WriteHeader(http.StatusOK)
		if dw.expire() {
			t.Error("expire() = true, want false once headers are sent")
		}
	})
}
