// Package remote implements the document service client: an HTTP
// implementation of the pkg/interfaces.DocumentAPI contract with an
// explicit, per-client token session.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-docsync/blocks"
	"github.com/goliatone/go-docsync/internal/logging"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

// DefaultTimeout bounds each API round trip.
const DefaultTimeout = 60 * time.Second

const (
	routeGroupDocs = "docs"
	routeDocument  = "document"
)

// Config configures the document service client.
type Config struct {
	// BaseURL is the API root, e.g. https://api.example.com/v1.
	BaseURL string
	// WebBaseURL is the root for human-facing document URLs. Falls back
	// to BaseURL when unset.
	WebBaseURL string
	AppID      string
	AppSecret  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the remote document service.
type Client struct {
	baseURL string
	http    *http.Client
	session *session
	routes  *urlkit.RouteManager
	logger  interfaces.Logger
}

var _ interfaces.DocumentAPI = (*Client)(nil)

// NewClient validates credentials and builds a client with its own token
// session.
func NewClient(cfg Config, logger interfaces.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, ErrMissingCredentials
	}
	if logger == nil {
		logger = logging.NoOp()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	webBase := strings.TrimRight(cfg.WebBaseURL, "/")
	if webBase == "" {
		webBase = base
	}

	routes := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    routeGroupDocs,
				BaseURL: webBase,
				Paths: map[string]string{
					routeDocument: "/docs/:document_id",
				},
			},
		},
	})

	return &Client{
		baseURL: base,
		http:    httpClient,
		session: newSession(base+"/auth/token", cfg.AppID, cfg.AppSecret, httpClient),
		routes:  routes,
		logger:  logger,
	}, nil
}

// CreateDocument creates an empty document, optionally inside a folder.
func (c *Client) CreateDocument(ctx context.Context, title, folderToken string) (interfaces.DocumentHandle, error) {
	var resp createDocumentResponse
	err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/documents", createDocumentRequest{
		Title:       title,
		FolderToken: folderToken,
	}, &resp)
	if err != nil {
		return interfaces.DocumentHandle{}, err
	}
	if resp.Data.DocumentID == "" {
		return interfaces.DocumentHandle{}, ErrMissingDocumentID
	}
	return interfaces.DocumentHandle{
		DocumentID: resp.Data.DocumentID,
		URL:        c.documentURL(resp.Data.DocumentID),
		RevisionID: resp.Data.RevisionID,
	}, nil
}

// CreateBlocks attaches children (with their descendants) under anchorID.
func (c *Client) CreateBlocks(ctx context.Context, documentID, anchorID string, children, descendants []*blocks.ContentBlock) (interfaces.CreateBlocksResult, error) {
	endpoint := fmt.Sprintf("%s/documents/%s/blocks/%s/children",
		c.baseURL, url.PathEscape(documentID), url.PathEscape(anchorID))

	var resp createBlocksResponse
	err := c.doJSON(ctx, http.MethodPost, endpoint, createBlocksRequest{
		Children:    encodeBlocks(children),
		Descendants: encodeBlocks(descendants),
	}, &resp)
	if err != nil {
		return interfaces.CreateBlocksResult{}, err
	}
	return decodeCreateBlocks(resp), nil
}

// UpdateBlocks applies a batch of media-token updates.
func (c *Client) UpdateBlocks(ctx context.Context, documentID string, updates []interfaces.BlockUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	var req updateBlocksRequest
	for _, update := range updates {
		req.Updates = append(req.Updates, struct {
			BlockID    string `json:"block_id"`
			MediaToken string `json:"media_token"`
		}{BlockID: update.BlockID, MediaToken: update.MediaToken})
	}

	endpoint := fmt.Sprintf("%s/documents/%s/blocks/batch_update", c.baseURL, url.PathEscape(documentID))
	var resp struct{ envelope }
	return c.doJSON(ctx, http.MethodPatch, endpoint, req, &resp)
}

// UploadMedia uploads raw bytes scoped to the owning server block.
func (c *Client) UploadMedia(ctx context.Context, ownerBlockID, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("owner_block_id", ownerBlockID); err != nil {
		return "", fmt.Errorf("remote: write multipart field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("remote: create multipart file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("remote: write multipart payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("remote: finish multipart body: %w", err)
	}

	endpoint := c.baseURL + "/media/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("remote: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp uploadMediaResponse
	if err := c.send(req, &resp, &resp.envelope); err != nil {
		return "", err
	}
	return resp.Data.MediaToken, nil
}

// DeleteBlock removes one block and its subtree.
func (c *Client) DeleteBlock(ctx context.Context, documentID, blockID string) error {
	endpoint := fmt.Sprintf("%s/documents/%s/blocks/%s",
		c.baseURL, url.PathEscape(documentID), url.PathEscape(blockID))
	var resp struct{ envelope }
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, &resp)
}

// ListChildren pages through a block's direct children.
func (c *Client) ListChildren(ctx context.Context, documentID, blockID, pageToken string) (interfaces.ChildPage, error) {
	endpoint := fmt.Sprintf("%s/documents/%s/blocks/%s/children",
		c.baseURL, url.PathEscape(documentID), url.PathEscape(blockID))
	if pageToken != "" {
		endpoint += "?page_token=" + url.QueryEscape(pageToken)
	}

	var resp listChildrenResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return interfaces.ChildPage{}, err
	}

	page := interfaces.ChildPage{
		NextPageToken: resp.Data.NextPageToken,
		HasMore:       resp.Data.HasMore,
	}
	for _, item := range resp.Data.Items {
		page.Items = append(page.Items, interfaces.CreatedBlock{
			BlockID: item.BlockID,
			Kind:    blocks.Kind(item.Kind),
		})
	}
	return page, nil
}

// TransferOwnership hands the document to another user.
func (c *Client) TransferOwnership(ctx context.Context, documentID, targetUser string) error {
	endpoint := fmt.Sprintf("%s/documents/%s/transfer", c.baseURL, url.PathEscape(documentID))
	var resp struct{ envelope }
	return c.doJSON(ctx, http.MethodPost, endpoint, transferRequest{TargetUser: targetUser}, &resp)
}

func (c *Client) documentURL(documentID string) string {
	built, err := c.routes.Group(routeGroupDocs).
		Builder(routeDocument).
		WithParam("document_id", documentID).
		Build()
	if err != nil {
		c.logger.Warn("failed to build document url", "document_id", documentID, "error", err)
		return ""
	}
	return built
}

// doJSON runs one authenticated JSON round trip. out must embed envelope as
// its first field so error codes decode alongside the payload.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("remote: encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	env := envelopeOf(out)
	return c.send(req, out, env)
}

// send attaches the access token, executes the request, and decodes the
// response into out, translating envelope failures into APIError.
func (c *Client) send(req *http.Request, out any, env *envelope) error {
	token, err := c.session.Token(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("remote: decode %s %s response: %w", req.Method, req.URL, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && env.Code == 0 {
		return nil
	}

	apiErr := &APIError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Code:       env.ErrCode,
		Message:    env.Message,
		RetryAfter: retryAfterHint(resp),
	}
	c.logger.Debug("document service rejected request",
		"method", apiErr.Method,
		"url", apiErr.URL,
		"status", apiErr.StatusCode,
		"code", apiErr.Code,
	)
	return wrapAPIError(apiErr)
}

// retryAfterHint reads the server's rate-limit reset hint, in seconds.
func retryAfterHint(resp *http.Response) time.Duration {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// envelopeOf extracts the embedded envelope pointer from a response value.
func envelopeOf(out any) *envelope {
	switch v := out.(type) {
	case *createDocumentResponse:
		return &v.envelope
	case *createBlocksResponse:
		return &v.envelope
	case *listChildrenResponse:
		return &v.envelope
	case *uploadMediaResponse:
		return &v.envelope
	case *struct{ envelope }:
		return &v.envelope
	default:
		panic(fmt.Sprintf("remote: unsupported response type %T", out))
	}
}
