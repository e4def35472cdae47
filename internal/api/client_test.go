package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ma-crm/crm-go/pkg/httpext"
)

// fakeSession is a SessionSource with a swappable token and scripted refresh
// behavior.
type fakeSession struct {
	token        atomic.Value
	refreshErr   error
	refreshCalls atomic.Int32
	nextToken    string
}

func newFakeSession(token string) *fakeSession {
	s := &fakeSession{}
	s.token.Store(token)
	return s
}

func (s *fakeSession) AccessToken() string {
	return s.token.Load().(string)
}

func (s *fakeSession) Refresh(ctx context.Context) error {
	s.refreshCalls.Add(1)
	if s.refreshErr != nil {
		return s.refreshErr
	}
	if s.nextToken != "" {
		s.token.Store(s.nextToken)
	}
	return nil
}

func TestClientHeaders(t *testing.T) {
	t.Run("held token becomes a bearer header", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
		}))
		defer server.Close()

		client := NewClient(server.URL, newFakeSession("T"), nil)
		require.NoError(t, client.Get(context.Background(), "/deals/", nil))
		assert.Equal(t, "Bearer T", gotAuth)
	})

	t.Run("no token means no Authorization header at all", func(t *testing.T) {
		var hasAuth bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasAuth = r.Header["Authorization"]
		}))
		defer server.Close()

		client := NewClient(server.URL, newFakeSession(""), nil)
		require.NoError(t, client.Get(context.Background(), "/deals/", nil))
		assert.False(t, hasAuth, "the header must be omitted, not sent empty")
	})

	t.Run("request id header is attached", func(t *testing.T) {
		var gotID string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = r.Header.Get("X-Request-ID")
		}))
		defer server.Close()

		client := NewClient(server.URL, newFakeSession(""), nil)
		require.NoError(t, client.Get(context.Background(), "/deals/", nil))
		assert.NotEmpty(t, gotID)
	})

	t.Run("extra headers are merged in", func(t *testing.T) {
		var gotAccept string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAccept = r.Header.Get("Accept-Language")
		}))
		defer server.Close()

		client := NewClient(server.URL, newFakeSession(""), nil)
		err := client.Do(context.Background(), http.MethodGet, "/deals/", NoBody, nil, WithHeader("Accept-Language", "fr"))
		require.NoError(t, err)
		assert.Equal(t, "fr", gotAccept)
	})
}

func TestClientBodies(t *testing.T) {
	t.Run("structured body is serialized as JSON", func(t *testing.T) {
		var gotCT string
		var gotBody []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCT = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
		}))
		defer server.Close()

		client := NewClient(server.URL, newFakeSession("T"), nil)
		input := map[string]any{"stage_id": 3, "update_probability": false}
		require.NoError(t, client.Post(context.Background(), "/deals/", input, nil))

		assert.Equal(t, "application/json", gotCT)
		assert.JSONEq(t, `{"stage_id":3,"update_probability":false}`, string(gotBody))
	})

	t.Run("raw body passes through without a forced JSON content type", func(t *testing.T) {
		var gotCT string
		var gotFile string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCT = r.Header.Get("Content-Type")
			require.NoError(t, r.ParseMultipartForm(1<<20))
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			data, _ := io.ReadAll(file)
			gotFile = header.Filename + ":" + string(data)
		}))
		defer server.Close()

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("file", "nda.pdf")
		require.NoError(t, err)
		_, _ = part.Write([]byte("pdf-bytes"))
		require.NoError(t, writer.Close())

		client := NewClient(server.URL, newFakeSession("T"), nil)
		require.NoError(t, client.Upload(context.Background(), "/documents/upload/", writer.FormDataContentType(), &buf, nil))

		assert.Contains(t, gotCT, "multipart/form-data; boundary=")
		assert.Equal(t, "nda.pdf:pdf-bytes", gotFile)
	})
}

func TestClientErrorClassification(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
	}{
		{
			name:        "detail field wins",
			status:      http.StatusUnauthorized,
			contentType: "application/json",
			body:        `{"detail":"Invalid credentials"}`,
			wantMessage: "Invalid credentials",
		},
		{
			name:        "message field is the fallback",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"message":"stage_id is required"}`,
			wantMessage: "stage_id is required",
		},
		{
			name:        "raw JSON when neither field is present",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"error":"Stage not found"}`,
			wantMessage: `{"error":"Stage not found"}`,
		},
		{
			name:        "non-JSON uses the HTTP status text",
			status:      http.StatusInternalServerError,
			contentType: "text/html",
			body:        "<html>nope</html>",
			wantMessage: "Internal Server Error",
		},
		{
			name:        "malformed JSON uses the HTTP status text",
			status:      http.StatusBadGateway,
			contentType: "application/json",
			body:        "{not json",
			wantMessage: "Bad Gateway",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.contentType)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, newFakeSession(""), nil)
			err := client.Get(context.Background(), "/deals/", nil)
			require.Error(t, err)

			var apiErr *httpext.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.wantMessage, apiErr.Error())
		})
	}
}

func TestClientAmbiguousSuccess(t *testing.T) {
	t.Run("204 without a body yields an empty result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := NewClient(server.URL, newFakeSession("T"), nil)
		var out map[string]any
		require.NoError(t, client.Get(context.Background(), "/deals/1/", &out))
		assert.Empty(t, out)
	})

	t.Run("success with a non-JSON content type yields an empty result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("OK"))
		}))
		defer server.Close()

		client := NewClient(server.URL, newFakeSession("T"), nil)
		var out map[string]any
		require.NoError(t, client.Get(context.Background(), "/deals/1/", &out))
		assert.Empty(t, out)
	})

	t.Run("success with unparseable JSON yields an empty result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{broken"))
		}))
		defer server.Close()

		client := NewClient(server.URL, newFakeSession("T"), nil)
		var out map[string]any
		require.NoError(t, client.Get(context.Background(), "/deals/1/", &out))
		assert.Empty(t, out)
	})
}

func TestClientRefreshRetry(t *testing.T) {
	t.Run("a 401 triggers one refresh and one replay", func(t *testing.T) {
		var tokens []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			tokens = append(tokens, token)
			if token != "Bearer fresh" {
				httpext.JsonError(w, "Given token not valid for any token type", http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":42}`))
		}))
		defer server.Close()

		session := newFakeSession("stale")
		session.nextToken = "fresh"

		client := NewClient(server.URL, session, nil)
		var out map[string]any
		require.NoError(t, client.Get(context.Background(), "/deals/42/", &out))

		assert.Equal(t, []string{"Bearer stale", "Bearer fresh"}, tokens)
		assert.Equal(t, int32(1), session.refreshCalls.Load())
		assert.Equal(t, float64(42), out["id"])
	})

	t.Run("a second 401 is returned, not retried again", func(t *testing.T) {
		var requests int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			httpext.JsonError(w, "Given token not valid for any token type", http.StatusUnauthorized)
		}))
		defer server.Close()

		session := newFakeSession("stale")
		session.nextToken = "still-rejected"

		client := NewClient(server.URL, session, nil)
		err := client.Get(context.Background(), "/deals/", nil)

		var apiErr *httpext.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, 2, requests)
		assert.Equal(t, int32(1), session.refreshCalls.Load())
	})

	t.Run("failed refresh surfaces the original 401", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpext.JsonError(w, "Given token not valid for any token type", http.StatusUnauthorized)
		}))
		defer server.Close()

		session := newFakeSession("stale")
		session.refreshErr = errors.New("Token is invalid or expired")

		client := NewClient(server.URL, session, nil)
		err := client.Get(context.Background(), "/deals/", nil)

		var apiErr *httpext.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Given token not valid for any token type", apiErr.Message)
	})

	t.Run("a 401 without a held token is not retried", func(t *testing.T) {
		var requests int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			httpext.JsonError(w, "Authentication credentials were not provided.", http.StatusUnauthorized)
		}))
		defer server.Close()

		session := newFakeSession("")
		client := NewClient(server.URL, session, nil)
		err := client.Get(context.Background(), "/deals/", nil)

		require.Error(t, err)
		assert.Equal(t, 1, requests)
		assert.Equal(t, int32(0), session.refreshCalls.Load())
	})

	t.Run("the replayed request re-sends the same body", func(t *testing.T) {
		var bodies []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			bodies = append(bodies, string(data))
			if r.Header.Get("Authorization") != "Bearer fresh" {
				httpext.JsonError(w, "expired", http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		session := newFakeSession("stale")
		session.nextToken = "fresh"

		client := NewClient(server.URL, session, nil)
		require.NoError(t, client.Post(context.Background(), "/deals/", map[string]int{"stage_id": 3}, nil))

		require.Len(t, bodies, 2)
		assert.Equal(t, bodies[0], bodies[1])
	})
}
