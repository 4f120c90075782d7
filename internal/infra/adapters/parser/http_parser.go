package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"hirehub-ranking/internal/domain/ports/adapter"
)

var _ adapter.ResumeParser = (*HTTPParser)(nil)

// HTTPParser sends the uploaded file to the document parsing service and
// returns its markdown rendition.
type HTTPParser struct {
	endpoint string
	client   *http.Client
}

func NewHTTPParser(endpoint string, timeout time.Duration) (*HTTPParser, error) {
	if endpoint == "" {
		return nil, errors.New("parser endpoint empty")
	}
	return &HTTPParser{endpoint: endpoint, client: &http.Client{Timeout: timeout}}, nil
}

type parseResponse struct {
	Markdown string `json:"markdown"`
	Text     string `json:"text"`
}

func (p *HTTPParser) Parse(ctx context.Context, fileName string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", fileName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("parser http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out parseResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode parser response: %w", err)
	}
	text := out.Markdown
	if text == "" {
		text = out.Text
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("parser returned no text for %s", fileName)
	}
	return text, nil
}
