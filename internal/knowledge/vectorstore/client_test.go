package vectorstore_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swellbot/swellbot/internal/knowledge/vectorstore"
)

func newTestClient(t *testing.T, handler http.Handler) *vectorstore.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return vectorstore.NewClient(vectorstore.ClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Logger:  zerolog.Nop(),
	})
}

func TestClient_FindStore(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vector_stores", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data": [
			{"id": "vs_1", "name": "other"},
			{"id": "vs_2", "name": "surf-knowledge"}
		]}`))
	}))

	id, err := client.FindStore(context.Background(), "surf-knowledge")
	require.NoError(t, err)
	assert.Equal(t, "vs_2", id)
}

func TestClient_FindStore_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	}))

	_, err := client.FindStore(context.Background(), "surf-knowledge")
	assert.ErrorIs(t, err, vectorstore.ErrStoreNotFound)
}

func TestClient_CreateStore(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/vector_stores", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "surf-knowledge", body["name"])

		_, _ = w.Write([]byte(`{"id": "vs_new"}`))
	}))

	id, err := client.CreateStore(context.Background(), "surf-knowledge")
	require.NoError(t, err)
	assert.Equal(t, "vs_new", id)
}

func TestClient_UploadFile(t *testing.T) {
	mux := http.NewServeMux()
	var uploadedContent string
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "assistants", r.FormValue("purpose"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "bondi.md", header.Filename)
		data, _ := io.ReadAll(file)
		uploadedContent = string(data)

		_, _ = w.Write([]byte(`{"id": "file_1"}`))
	})
	var attached string
	mux.HandleFunc("/vector_stores/vs_1/files", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		attached, _ = body["file_id"].(string)
		_, _ = w.Write([]byte(`{}`))
	})

	client := newTestClient(t, mux)

	id, err := client.UploadFile(context.Background(), "vs_1", "bondi.md", strings.NewReader("Bondi notes"))
	require.NoError(t, err)

	assert.Equal(t, "file_1", id)
	assert.Equal(t, "Bondi notes", uploadedContent)
	assert.Equal(t, "file_1", attached)
}

func TestClient_ListFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/vector_stores/vs_1/files", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"id": "file_1"}, {"id": "file_2"}]}`))
	})
	mux.HandleFunc("/files/file_1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"filename": "bondi.md"}`))
	})
	mux.HandleFunc("/files/file_2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"filename": "rips.md"}`))
	})

	client := newTestClient(t, mux)

	files, err := client.ListFiles(context.Background(), "vs_1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, vectorstore.StoreFile{ID: "file_1", Filename: "bondi.md"}, files[0])
	assert.Equal(t, vectorstore.StoreFile{ID: "file_2", Filename: "rips.md"}, files[1])
}

func TestClient_DeleteFile(t *testing.T) {
	var detached, deleted bool
	mux := http.NewServeMux()
	mux.HandleFunc("/vector_stores/vs_1/files/file_1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		detached = true
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/files/file_1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = true
		_, _ = w.Write([]byte(`{}`))
	})

	client := newTestClient(t, mux)

	require.NoError(t, client.DeleteFile(context.Background(), "vs_1", "file_1"))
	assert.True(t, detached)
	assert.True(t, deleted)
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vector_stores/vs_1/search", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rip currents", body["query"])
		assert.EqualValues(t, 3, body["max_num_results"])

		_, _ = w.Write([]byte(`{"data": [{
			"file_id": "file_1",
			"filename": "rips.md",
			"score": 0.91,
			"content": [
				{"type": "text", "text": "Swim across the rip"},
				{"type": "image", "text": "ignored"},
				{"type": "text", "text": ", not against it."}
			]
		}]}`))
	}))

	results, err := client.Search(context.Background(), "vs_1", "rip currents", 3)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "file_1", results[0].FileID)
	assert.Equal(t, "rips.md", results[0].Filename)
	assert.InDelta(t, 0.91, results[0].Score, 0.001)
	assert.Equal(t, "Swim across the rip, not against it.", results[0].Text)
}

func TestClient_MissingAPIKey(t *testing.T) {
	client := vectorstore.NewClient(vectorstore.ClientConfig{Logger: zerolog.Nop()})

	_, err := client.FindStore(context.Background(), "surf-knowledge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key not configured")
}
