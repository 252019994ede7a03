package transport

import (
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBytesPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	data, err := GetBytes(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestGetBytesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("compressed payload"))
		gz.Close()
	}))
	defer srv.Close()

	data, err := GetBytes(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "compressed payload", string(data))
}

func TestGetBytesBrotli(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		br := brotli.NewWriter(w)
		br.Write([]byte("brotli payload"))
		br.Close()
	}))
	defer srv.Close()

	data, err := GetBytes(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "brotli payload", string(data))
}

func TestGetBytesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := GetBytes(srv.URL)
	assert.Error(t, err)
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"arsenal"}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, GetJSON(srv.URL, &out))
	assert.Equal(t, "arsenal", out.Name)

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv2.Close()
	assert.Error(t, GetJSON(srv2.URL, &out))
}
