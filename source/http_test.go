// Copyright 2024 Block, Inc.

package source_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-test/deep"

	"github.com/chartline/chartline"
	"github.com/chartline/chartline/source"
)

func TestParseJSON(t *testing.T) {
	raw := []byte(`{
		"pool": "www",
		"accepted conn": 129,
		"active processes": 2,
		"slow requests": 0.0
	}`)

	got, err := source.ParseJSON(raw)
	if err != nil {
		t.Fatal(err)
	}

	// Numeric fields only, spaces normalized to underscores
	expect := chartline.Dataset{
		"accepted_conn":    129,
		"active_processes": 2,
		"slow_requests":    0,
	}
	if diff := deep.Equal(got, expect); diff != nil {
		t.Error(diff)
	}
}

func TestParseJSONInvalid(t *testing.T) {
	if _, err := source.ParseJSON([]byte("<html>not json</html>")); err == nil {
		t.Error("ParseJSON on HTML: err is nil, expected error")
	}
}

func TestHTTPFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"m1": 42}`))
	}))
	defer ts.Close()

	src := source.NewHTTP(ts.URL, 1*time.Second, source.ParseJSON)
	got, err := src.Fetch()
	if err != nil {
		t.Fatal(err)
	}
	expect := chartline.Dataset{"m1": 42}
	if diff := deep.Equal(got, expect); diff != nil {
		t.Error(diff)
	}
}

func TestHTTPFetchBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	src := source.NewHTTP(ts.URL, 1*time.Second, source.ParseJSON)
	if _, err := src.Fetch(); err == nil {
		t.Error("Fetch on 503: err is nil, expected error")
	}
}
