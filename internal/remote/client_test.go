package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-docsync/blocks"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

// newTestServer serves a token endpoint plus the supplied handlers keyed by
// "METHOD path".
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"access_token": "test-token", "expires_in": 7200},
		})
	})
	for pattern, handler := range handlers {
		mux.HandleFunc(pattern, handler)
	}
	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:   baseURL,
		AppID:     "app",
		AppSecret: "secret",
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientValidatesConfig(t *testing.T) {
	if _, err := NewClient(Config{AppID: "a", AppSecret: "b"}, nil); !errors.Is(err, ErrMissingBaseURL) {
		t.Fatalf("expected ErrMissingBaseURL, got %v", err)
	}
	if _, err := NewClient(Config{BaseURL: "http://x"}, nil); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestCreateDocument(t *testing.T) {
	var gotAuth string
	server := newTestServer(t, map[string]http.HandlerFunc{
		"POST /documents": func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			var req createDocumentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.Title != "Notes" || req.FolderToken != "fld_1" {
				t.Fatalf("unexpected request: %+v", req)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"code": 0,
				"data": map[string]any{"document_id": "doc_1", "revision_id": "rev_1"},
			})
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)
	handle, err := client.CreateDocument(context.Background(), "Notes", "fld_1")
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
	if handle.DocumentID != "doc_1" || handle.RevisionID != "rev_1" {
		t.Fatalf("unexpected handle: %+v", handle)
	}
	if handle.URL != server.URL+"/docs/doc_1" {
		t.Fatalf("unexpected document url: %q", handle.URL)
	}
}

func TestCreateDocumentMissingID(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"POST /documents": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"code": 0, "data": map[string]any{}})
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.CreateDocument(context.Background(), "Notes", ""); !errors.Is(err, ErrMissingDocumentID) {
		t.Fatalf("expected ErrMissingDocumentID, got %v", err)
	}
}

func TestCreateBlocksRoundTrip(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"POST /documents/doc_1/blocks/anchor_1/children": func(w http.ResponseWriter, r *http.Request) {
			var req createBlocksRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if len(req.Children) != 1 || req.Children[0].BlockID != "tmp_text_1" {
				t.Fatalf("unexpected children: %+v", req.Children)
			}
			if req.Children[0].Runs[0].Style == nil || !req.Children[0].Runs[0].Style.Bold {
				t.Fatalf("expected bold style on run: %+v", req.Children[0].Runs)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"code": 0,
				"data": map[string]any{
					"blocks":      []map[string]any{{"block_id": "srv_1", "kind": "text"}},
					"relations":   []map[string]any{{"temporary_id": "tmp_text_1", "block_id": "srv_1"}},
					"revision_id": "rev_2",
				},
			})
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.CreateBlocks(context.Background(), "doc_1", "anchor_1", []*blocks.ContentBlock{
		{
			ID:   "tmp_text_1",
			Kind: blocks.KindText,
			Runs: []blocks.TextRun{{Content: "hi", Style: blocks.TextStyle{Bold: true}}},
		},
	}, nil)
	if err != nil {
		t.Fatalf("create blocks: %v", err)
	}
	if result.RevisionID != "rev_2" {
		t.Fatalf("unexpected revision: %q", result.RevisionID)
	}
	if len(result.Relations) != 1 || result.Relations[0].TemporaryID != "tmp_text_1" || result.Relations[0].BlockID != "srv_1" {
		t.Fatalf("unexpected relations: %+v", result.Relations)
	}
}

func TestRateLimitedErrorCarriesHint(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"POST /documents": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{
				"code": 99, "error_code": CodeRateLimited, "msg": "slow down",
			})
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.CreateDocument(context.Background(), "Notes", "")
	if err == nil {
		t.Fatal("expected rate limit error")
	}

	hint, ok := RateLimitHint(err)
	if !ok {
		t.Fatalf("expected rate limit hint, got %v", err)
	}
	if hint != 7*time.Second {
		t.Fatalf("expected 7s hint, got %v", hint)
	}
	if !IsRetryable(err) {
		t.Fatal("rate limited errors must be retryable")
	}
}

func TestPermanentAPIErrorNotRetryable(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"POST /documents": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"code": 4, "error_code": CodeInvalidParameter, "msg": "bad title",
			})
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.CreateDocument(context.Background(), "Notes", "")
	if err == nil {
		t.Fatal("expected API error")
	}
	if IsRetryable(err) {
		t.Fatal("invalid parameter errors must not be retryable")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != CodeInvalidParameter || apiErr.Message != "bad title" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
	if apiErr.Method != http.MethodPost {
		t.Fatalf("expected method in diagnostics, got %q", apiErr.Method)
	}
}

func TestUploadMediaMultipart(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"POST /media/upload": func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("parse multipart: %v", err)
			}
			if got := r.FormValue("owner_block_id"); got != "srv_img_1" {
				t.Fatalf("unexpected owner block: %q", got)
			}
			file, header, err := r.FormFile("file")
			if err != nil {
				t.Fatalf("form file: %v", err)
			}
			defer file.Close()
			if header.Filename != "pic.png" {
				t.Fatalf("unexpected filename: %q", header.Filename)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"code": 0,
				"data": map[string]any{"media_token": "tok_1"},
			})
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)
	token, err := client.UploadMedia(context.Background(), "srv_img_1", "pic.png", []byte("data"))
	if err != nil {
		t.Fatalf("upload media: %v", err)
	}
	if token != "tok_1" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestUpdateBlocksSkipsEmptyBatch(t *testing.T) {
	client := newTestClient(t, "http://unreachable.invalid")
	if err := client.UpdateBlocks(context.Background(), "doc_1", nil); err != nil {
		t.Fatalf("empty batch must be a no-op, got %v", err)
	}
}

func TestListChildrenPaging(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"GET /documents/doc_1/blocks/root/children": func(w http.ResponseWriter, r *http.Request) {
			if token := r.URL.Query().Get("page_token"); token == "" {
				json.NewEncoder(w).Encode(map[string]any{
					"code": 0,
					"data": map[string]any{
						"items":           []map[string]any{{"block_id": "b1", "kind": "text"}},
						"next_page_token": "page2",
						"has_more":        true,
					},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"code": 0,
				"data": map[string]any{
					"items":    []map[string]any{{"block_id": "b2", "kind": "divider"}},
					"has_more": false,
				},
			})
		},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	first, err := client.ListChildren(context.Background(), "doc_1", "root", "")
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if !first.HasMore || first.NextPageToken != "page2" || len(first.Items) != 1 {
		t.Fatalf("unexpected first page: %+v", first)
	}

	second, err := client.ListChildren(context.Background(), "doc_1", "root", first.NextPageToken)
	if err != nil {
		t.Fatalf("list children page 2: %v", err)
	}
	if second.HasMore || len(second.Items) != 1 || second.Items[0].BlockID != "b2" {
		t.Fatalf("unexpected second page: %+v", second)
	}
}

func TestSessionCachesToken(t *testing.T) {
	var tokenCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"access_token": "tok", "expires_in": 7200},
		})
	})
	mux.HandleFunc("/documents/doc_1/blocks/b/children", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"code": 0, "data": map[string]any{}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	for i := 0; i < 3; i++ {
		if _, err := client.ListChildren(context.Background(), "doc_1", "b", ""); err != nil {
			t.Fatalf("list children: %v", err)
		}
	}
	if tokenCalls != 1 {
		t.Fatalf("expected one token fetch, got %d", tokenCalls)
	}
}

func TestSessionRefreshesExpiredToken(t *testing.T) {
	sess := newSession("http://unused.invalid", "a", "b", http.DefaultClient)
	sess.token = "stale"
	sess.expiresAt = time.Now().Add(10 * time.Second)
	now := time.Now()
	sess.now = func() time.Time { return now }

	// Within the expiry margin the cached token must not be reused; the
	// fetch fails because the URL is unreachable, which proves a refresh
	// was attempted.
	if _, err := sess.Token(context.Background()); err == nil {
		t.Fatal("expected refresh attempt for near-expiry token")
	}
}

var _ interfaces.DocumentAPI = (*Client)(nil)
