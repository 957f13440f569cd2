package fetch

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetSendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	c := New(0, 1, "test-agent/1.0")
	data, err := c.Get(server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Expected body 'hello', got %q", data)
	}
	if gotUA != "test-agent/1.0" {
		t.Errorf("Expected custom user agent, got %q", gotUA)
	}
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("finally"))
	}))
	defer server.Close()

	c := New(0, 3, "test")
	data, err := c.Get(server.URL)
	if err != nil {
		t.Fatalf("Get failed after retries: %v", err)
	}
	if string(data) != "finally" {
		t.Errorf("Expected body 'finally', got %q", data)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
}

func TestGetReturnsLastError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(0, 2, "test")
	if _, err := c.Get(server.URL); err == nil {
		t.Fatal("Expected error for persistent 404")
	}
}

func TestPerHostDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	delay := 150 * time.Millisecond
	c := New(delay, 1, "test")

	start := time.Now()
	if _, err := c.Get(server.URL); err != nil {
		t.Fatalf("First get failed: %v", err)
	}
	if _, err := c.Get(server.URL); err != nil {
		t.Fatalf("Second get failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("Second request to the same host ran after %v, expected at least %v", elapsed, delay)
	}
}

func TestGetInvalidURL(t *testing.T) {
	c := New(0, 1, "test")
	if _, err := c.Get("http://%zz invalid"); err == nil {
		t.Fatal("Expected error for invalid URL")
	}
}
