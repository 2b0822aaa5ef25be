package catsapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/catsfarm/internal/adapter/driven/catsapi"
	"github.com/ericfisherdev/catsfarm/internal/domain/model"
	"github.com/ericfisherdev/catsfarm/internal/domain/port/driven"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *catsapi.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := catsapi.NewClientWithHTTPClient(server.Client(), server.URL)
	require.NoError(t, err)

	return client
}

func TestFetchAccountInfo(t *testing.T) {
	var gotReq *http.Request
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":7,"firstName":"Alice","totalRewards":1234.5,"referrerCode":"REF42","extra":true}`)
	})

	client := newTestClient(t, handler)
	info, err := client.FetchAccountInfo(context.Background(), model.Credential("query_id=abc"))

	require.NoError(t, err)
	assert.Equal(t, model.AccountInfo{FirstName: "Alice", TotalRewards: 1234.5, ReferrerCode: "REF42"}, info)

	require.NotNil(t, gotReq)
	assert.Equal(t, http.MethodGet, gotReq.Method)
	assert.Equal(t, "/user", gotReq.URL.Path)
	assert.Equal(t, "tma query_id=abc", gotReq.Header.Get("Authorization"))
	assert.Equal(t, "https://cats-frontend.tgapps.store", gotReq.Header.Get("Origin"))
	assert.Equal(t, "https://cats-frontend.tgapps.store/", gotReq.Header.Get("Referer"))
	assert.Equal(t, `"Android"`, gotReq.Header.Get("Sec-Ch-Ua-Platform"))
	assert.Contains(t, gotReq.Header.Get("User-Agent"), "Chrome/127.0.0.0 Mobile")
}

func TestFetchTasks(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks/user", r.URL.Path)
		assert.Equal(t, "cats", r.URL.Query().Get("group"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tasks": []map[string]any{
				{"id": 1, "title": "Daily", "completed": false, "reward": 100},
				{"id": 2, "title": "Follow", "completed": true},
			},
		})
	})

	client := newTestClient(t, handler)
	tasks, err := client.FetchTasks(context.Background(), "tok", "cats")

	require.NoError(t, err)
	assert.Equal(t, []model.Task{
		{ID: 1, Title: "Daily", Completed: false},
		{ID: 2, Title: "Follow", Completed: true},
	}, tasks)
}

func TestFetchTasks_EmptyList(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"tasks":[]}`)
	})

	client := newTestClient(t, handler)
	tasks, err := client.FetchTasks(context.Background(), "tok", "cats")

	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)
}

func TestSubmitCompletion(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "success", body: `{"success":true}`, want: true},
		{name: "rejected", body: `{"success":false}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/tasks/42/complete", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				payload, _ := io.ReadAll(r.Body)
				assert.JSONEq(t, `{}`, string(payload))
				_, _ = io.WriteString(w, tt.body)
			})

			client := newTestClient(t, handler)
			ok, err := client.SubmitCompletion(context.Background(), "tok", 42)

			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestClient_NonSuccessStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"bad token"}`)
	})

	client := newTestClient(t, handler)
	_, err := client.FetchAccountInfo(context.Background(), "tok")

	require.Error(t, err)
	var svcErr *driven.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "fetch account info", svcErr.Op)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
	assert.Contains(t, err.Error(), "HTTP 401")
}

func TestClient_MalformedBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})

	client := newTestClient(t, handler)
	_, err := client.FetchTasks(context.Background(), "tok", "cats")

	var svcErr *driven.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "fetch tasks", svcErr.Op)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestClient_EmptyCredential(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	})

	client := newTestClient(t, handler)
	_, err := client.SubmitCompletion(context.Background(), "", 1)

	assert.ErrorIs(t, err, driven.ErrEmptyCredential)
	assert.False(t, called, "no request should be sent without a credential")
}

func TestClient_ContextCancellationAbortsRequest(t *testing.T) {
	release := make(chan struct{})
	handler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	client := newTestClient(t, handler)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.SubmitCompletion(ctx, "tok", 1)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := catsapi.NewClientWithHTTPClient(&http.Client{Timeout: time.Second}, url)
	require.NoError(t, err)

	_, err = client.FetchAccountInfo(context.Background(), "tok")

	var svcErr *driven.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Zero(t, svcErr.StatusCode)
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := catsapi.NewClient("api.catshouse.club", time.Second)
	assert.Error(t, err)
}
