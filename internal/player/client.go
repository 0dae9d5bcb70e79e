package player

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// Client makes requests against the video player device API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new device client.
// baseURL defaults to the local device port; client defaults to [http.DefaultClient].
func NewClient(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// BaseURL returns the device endpoint this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// List retrieves the device playlist in playback order.
func (c *Client) List(ctx context.Context) ([]Video, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/videos", nil, "", transportReason)
	if err != nil {
		return nil, err
	}

	var videos []Video
	if err := json.Unmarshal(body, &videos); err != nil {
		return nil, fmt.Errorf("failed to decode playlist: %w", err)
	}

	return videos, nil
}

// Upload sends a media file to the device as the multipart field "video".
// The filename is what the device will store and report back.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("video", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to buffer upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/api/videos/upload", &buf, mw.FormDataContentType(), func(reason string) error {
		return &UploadError{Reason: reason}
	})
	if err != nil {
		return nil, err
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	return &result, nil
}

// UploadFile uploads the file at path, using its base name as the device filename.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return c.Upload(ctx, filepath.Base(path), f)
}

// Delete removes a video from the device by filename.
func (c *Client) Delete(ctx context.Context, filename string) error {
	endpoint := "/api/videos/" + url.PathEscape(filename)
	_, err := c.do(ctx, http.MethodDelete, endpoint, nil, "", func(reason string) error {
		return &DeleteError{Reason: reason}
	})
	return err
}

// Reorder replaces the device playlist order with the given filename sequence.
func (c *Client) Reorder(ctx context.Context, filenames []string) error {
	payload, err := json.Marshal(map[string][]string{"playlist": filenames})
	if err != nil {
		return fmt.Errorf("failed to marshal reorder request: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, "/api/playlist/reorder", bytes.NewReader(payload), "application/json", func(reason string) error {
		return &ReorderError{Reason: reason}
	})
	return err
}

// Command issues a playback transport command.
// filename is only meaningful for [CmdPlay]; empty means "next/first" as
// decided by the device.
func (c *Client) Command(ctx context.Context, cmd Command, filename string) error {
	var body io.Reader
	contentType := ""
	if filename != "" {
		payload, err := json.Marshal(map[string]string{"filename": filename})
		if err != nil {
			return fmt.Errorf("failed to marshal command request: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	_, err := c.do(ctx, http.MethodPost, "/api/playback/"+string(cmd), body, contentType, func(reason string) error {
		return &CommandError{Command: cmd, Reason: reason}
	})
	return err
}

// Status fetches the device-reported playback state.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/playback/status", nil, "", transportReason)
	if err != nil {
		return nil, err
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}

	return &status, nil
}

// transportReason maps a non-2xx response to a [TransportError] for
// operations whose failures carry no operation-specific reason type.
func transportReason(string) error { return nil }

// do performs one round trip and returns the response body on 2xx.
//
// On non-2xx it decodes the {"error": reason} body and builds the
// operation error via mkErr; when the body carries no reason, or mkErr
// declines, it falls back to a [TransportError] with the status code.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, mkErr func(reason string) error) ([]byte, error) {
	fullURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errBody); err == nil && errBody.Error != "" {
			if opErr := mkErr(errBody.Error); opErr != nil {
				return nil, opErr
			}
		}
		return nil, &TransportError{Status: resp.StatusCode}
	}

	return respBody, nil
}
