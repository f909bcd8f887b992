package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aryan0dhankhar/threadline/internal/handler"
)

type clientOptions struct {
	apiURL    string
	tokenFile string
}

// apiClient talks JSON to the threadline API and keeps the token on disk
type apiClient struct {
	baseURL   string
	tokenFile string
	http      *http.Client
}

func (o *clientOptions) client() *apiClient {
	return &apiClient{
		baseURL:   strings.TrimRight(o.apiURL, "/"),
		tokenFile: o.tokenFile,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// apiError is a non-2xx response decoded from the server's error body
type apiError struct {
	Status int
	Body   handler.ErrorResponse
}

func (e *apiError) Error() string {
	if e.Body.Field != "" {
		return fmt.Sprintf("%s (%d, %s: %s)", e.Body.Error, e.Status, e.Body.Field, e.Body.Reason)
	}
	if e.Body.Error != "" {
		return fmt.Sprintf("%s (%d)", e.Body.Error, e.Status)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (c *apiClient) do(ctx context.Context, method, path string, authed bool, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if authed {
		token, err := c.loadToken()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Body)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.tokenFile), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	return os.WriteFile(c.tokenFile, []byte(token), 0o600)
}

func (c *apiClient) loadToken() (string, error) {
	data, err := os.ReadFile(c.tokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", errors.New("not logged in, run `threadline auth login` first")
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *apiClient) forgetToken() error {
	if err := os.Remove(c.tokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
