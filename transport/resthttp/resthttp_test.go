package resthttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hero struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func heroID(h hero) string { return h.ID }

func newTestClient(t *testing.T, h http.HandlerFunc) *Client[hero] {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New[hero](Config[hero]{BaseURL: srv.URL, ID: heroID})
	require.NoError(t, err)
	return c
}

func TestNewValidation(t *testing.T) {
	_, err := New[hero](Config[hero]{ID: heroID})
	require.Error(t, err, "BaseURL is required")
	_, err = New[hero](Config[hero]{BaseURL: "http://x"})
	require.Error(t, err, "ID is required")
}

func TestList(t *testing.T) {
	want := []hero{{ID: "h1", Name: "A"}, {ID: "h2", Name: "B"}}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/heroes", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_ = json.NewEncoder(w).Encode(want)
	})

	got, err := c.List(context.Background(), "heroes")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCreate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/heroes", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var h hero
		require.NoError(t, json.NewDecoder(r.Body).Decode(&h))
		h.ID = "srv-1" // backend assigns the id
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(h)
	})

	got, err := c.Create(context.Background(), "heroes", hero{Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, hero{ID: "srv-1", Name: "A"}, got)
}

func TestUpdate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/heroes/h1", r.URL.Path)

		var h hero
		require.NoError(t, json.NewDecoder(r.Body).Decode(&h))
		_ = json.NewEncoder(w).Encode(h)
	})

	got, err := c.Update(context.Background(), "heroes", hero{ID: "h1", Name: "A2"})
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Name)
}

// A 204 acknowledgment without a body echoes the entity as sent.
func TestUpdateEmptyBodyAcknowledges(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	sent := hero{ID: "h1", Name: "A2"}
	got, err := c.Update(context.Background(), "heroes", sent)
	require.NoError(t, err)
	assert.Equal(t, sent, got)
}

func TestDelete(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(context.Background(), "heroes", "h1"))
	assert.Equal(t, "/heroes/h1", gotPath)
}

func TestDeleteEscapesID(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(context.Background(), "heroes", "a/b"))
	assert.Equal(t, "/heroes/a%2Fb", gotPath)
}

func TestErrorCarriesStatusAndMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such hero", http.StatusNotFound)
	})

	_, err := c.List(context.Background(), "heroes")
	require.Error(t, err)
	var he *Error
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.StatusCode)
	assert.Equal(t, "no such hero", he.Message)
	assert.Contains(t, he.Error(), "404")
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.List(ctx, "heroes")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
