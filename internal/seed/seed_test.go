package seed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/dori/dsboard/internal/board"
)

func serve(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &query
}

func TestHTTPProviderFetch(t *testing.T) {
	srv, query := serve(t, http.StatusOK,
		`{"todos":[{"id":1,"todo":"Do something nice","completed":false,"userId":26},{"id":2,"todo":"Memorize a poem"}],"total":254,"skip":0,"limit":2}`)

	p := NewHTTPProvider(srv.URL+"/todos", 2, time.Second)
	got, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := []board.RawTask{{ID: 1, Todo: "Do something nice"}, {ID: 2, Todo: "Memorize a poem"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if *query != "limit=2" {
		t.Errorf("query = %q, want limit=2", *query)
	}
}

func TestHTTPProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `oops`, ErrStatus},
		{"not json", http.StatusOK, `<html>`, ErrPayload},
		{"missing todos", http.StatusOK, `{"items":[]}`, ErrPayload},
		{"wrong id type", http.StatusOK, `{"todos":[{"id":"one","todo":"x"}]}`, ErrPayload},
		{"missing text", http.StatusOK, `{"todos":[{"id":1}]}`, ErrPayload},
		{"empty text", http.StatusOK, `{"todos":[{"id":1,"todo":""}]}`, ErrPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := serve(t, tt.status, tt.body)
			_, err := NewHTTPProvider(srv.URL, 15, time.Second).Fetch(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHTTPProviderTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewHTTPProvider(srv.URL, 1, 50*time.Millisecond).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout not honored, took %v", time.Since(start))
	}
}

func TestDecodeEmptyList(t *testing.T) {
	got, err := Decode([]byte(`{"todos":[]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records", len(got))
	}
}

func TestStaticReturnsCopy(t *testing.T) {
	s := Static{{ID: 1, Todo: "a"}}
	got, _ := s.Fetch(context.Background())
	got[0].Todo = "changed"
	if s[0].Todo != "a" {
		t.Error("Static shares its records with callers")
	}
}
