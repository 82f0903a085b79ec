package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

const UploadPath = "/api/upload/image"

var ErrEmptyUploadURL = errors.New("upload returned no url")

// Upload sends one file as multipart field "file" and returns the URL the
// API stored it under.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	req, cancel, err := c.newRequest(ctx, http.MethodPost, UploadPath, nil, &buf)
	if err != nil {
		return "", err
	}
	defer cancel()
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.send(req, UploadPath)
	if err != nil {
		return "", err
	}
	return parseUploadURL(body)
}

// parseUploadURL accepts a bare URL, a JSON string or {"url": ...}.
func parseUploadURL(body []byte) (string, error) {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", ErrEmptyUploadURL
	}

	switch text[0] {
	case '"':
		var s string
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return "", fmt.Errorf("decode upload url: %w", err)
		}
		text = s
	case '{':
		var payload struct {
			URL  string `json:"url"`
			Data string `json:"data"`
		}
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			return "", fmt.Errorf("decode upload url: %w", err)
		}
		text = payload.URL
		if text == "" {
			text = payload.Data
		}
	}

	if text == "" {
		return "", ErrEmptyUploadURL
	}
	return text, nil
}
