package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"sketchive/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL + "/"})
}

func TestCreateWhiteboard(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/whiteboards", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, state.SessionID(), r.Header.Get("X-Client-Session"))
		w.Write([]byte(`{"id":4,"name":"Untitled","owner":1}`))
	})

	wb, err := client.CreateWhiteboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), wb.ID)
	assert.Equal(t, "Untitled", wb.Name)
}

func TestGetWhiteboard_NotFound(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "9", r.URL.Query().Get("id"))
			http.Error(w, "Failed to get whiteboard by its ID", status)
		})

		_, err := client.GetWhiteboard(context.Background(), 9)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound), "status %d", status)

		var reqErr *RequestError
		require.True(t, errors.As(err, &reqErr))
		assert.Equal(t, status, reqErr.Status)
		assert.Equal(t, "Failed to get whiteboard by its ID\n", reqErr.Body)
	}
}

func TestRequestError_OpaqueBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"not":"parsed"`))
	})

	_, err := client.ClearWhiteboard(context.Background(), 3)
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusInternalServerError, reqErr.Status)
	assert.Equal(t, `{"not":"parsed"`, reqErr.Body)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "clear whiteboard")
}

func TestCreateStroke_Body(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/strokes", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"whiteboardID":2,"ownerID":1,"path":[{"x":0,"y":0},{"x":10,"y":0}],"color":"#ff0000","width":3}`,
			string(raw))
		w.Write([]byte(`{"id":77,"whiteboardID":2,"ownerID":1,"path":[{"x":0,"y":0},{"x":10,"y":0}],"color":"#ff0000","width":3,"created_at":"2024-05-01T10:00:00Z"}`))
	})

	created, err := client.CreateStroke(context.Background(), state.Stroke{
		WhiteboardID: 2,
		OwnerID:      1,
		Path:         []state.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		Color:        "#ff0000",
		Width:        3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), created.ID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestGetStrokes_PreservesOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("id"))
		json.NewEncoder(w).Encode([]state.Stroke{{ID: 9}, {ID: 2}, {ID: 5}})
	})

	strokes, err := client.GetStrokes(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, strokes, 3)
	assert.Equal(t, int64(9), strokes[0].ID)
	assert.Equal(t, int64(2), strokes[1].ID)
	assert.Equal(t, int64(5), strokes[2].ID)
}

func TestGetStrokes_NullIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	})

	strokes, err := client.GetStrokes(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, strokes)
	assert.Empty(t, strokes)
}

func TestDeleteStrokesByBox_Body(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/strokes/delete", r.URL.Path)
		var body DeleteByBoxRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DeleteByBoxRequest{WhiteboardID: 8, MinX: 20, MaxX: 22, MinY: 20, MaxY: 21}, body)
		w.Write([]byte(`{"message":"Strokes marked as deleted successfully"}`))
	})

	res, err := client.DeleteStrokesByBox(context.Background(), 8, state.BoundingBox{MinX: 20, MaxX: 22, MinY: 20, MaxY: 21})
	require.NoError(t, err)
	assert.Equal(t, "Strokes marked as deleted successfully", res.Message)
}

func TestWhiteboardCRUDRoutes(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			var wb state.Whiteboard
			require.NoError(t, json.NewDecoder(r.Body).Decode(&wb))
			json.NewEncoder(w).Encode(wb)
		default:
			w.Write([]byte(`{"message":"ok"}`))
		}
	})

	ctx := context.Background()
	updated, err := client.UpdateWhiteboard(ctx, &state.Whiteboard{ID: 3, Name: "Plans"})
	require.NoError(t, err)
	assert.Equal(t, "Plans", updated.Name)

	_, err = client.DeleteWhiteboard(ctx, 3)
	require.NoError(t, err)
	_, err = client.ClearWhiteboard(ctx, 3)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"PUT /whiteboards?id=3",
		"DELETE /whiteboards?id=3",
		"DELETE /whiteboards/clear?id=3",
	}, calls)
}

func TestSingleAttempt(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetStrokes(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

type failingDoer struct{}

func (failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestTransportError(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://store.invalid"})
	client.SetHTTPClient(failingDoer{})

	_, err := client.CreateWhiteboard(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr))
}
