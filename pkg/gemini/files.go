package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"google.golang.org/genai"
)

// UploadFile registers data with the file API. The SDK runs the resumable
// protocol: a start request declaring MIME type and length, then the bytes
// with a final "upload, finalize" command. The returned file may still be
// processing; see WaitForActive.
func (c *Client) UploadFile(ctx context.Context, displayName, mimeType string, data []byte) (*File, error) {
	sdk, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("X-Goog-Upload-Header-Content-Length", strconv.Itoa(len(data)))

	uploaded, err := sdk.Files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
		HTTPOptions: &genai.HTTPOptions{Headers: headers},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", displayName, classify(ErrUpload, err))
	}

	file := fileFromSDK(uploaded)
	if file.URI == "" {
		return nil, fmt.Errorf("%w: %s: response missing file uri", ErrUpload, displayName)
	}

	c.logger.InfoContext(ctx, "file uploaded",
		"display_name", displayName,
		"name", file.Name,
		"state", file.State,
		"size", len(data),
	)
	return file, nil
}

// GetFile fetches the current metadata for a file by its resource name (files/...).
func (c *Client) GetFile(ctx context.Context, name string) (*File, error) {
	sdk, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	f, err := sdk.Files.Get(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return fileFromSDK(f), nil
}

// WaitForActive polls file until it reports ACTIVE. It issues at most
// MaxPollAttempts status requests, each preceded by PollInterval.
//
// It returns the latest known file together with ErrNotReady when the
// ceiling is reached or a status request fails, and ErrUpload when the file
// reports FAILED. Callers decide whether a not-ready file is usable.
func (c *Client) WaitForActive(ctx context.Context, file *File) (*File, error) {
	current := file

	for attempt := 0; !current.Active() && attempt < c.cfg.MaxPollAttempts; attempt++ {
		if err := c.sleep(ctx, c.cfg.PollIntervalDuration()); err != nil {
			return current, err
		}

		next, err := c.GetFile(ctx, current.Name)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				return current, err
			}
			return current, fmt.Errorf("%w: status check for %s: %w", ErrNotReady, current.Name, err)
		}
		current = next

		if current.State == StateFailed {
			return current, fmt.Errorf("%w: %s reported %s", ErrUpload, current.Name, StateFailed)
		}
	}

	if !current.Active() {
		return current, fmt.Errorf(
			"%w: %s still %s after %d attempts",
			ErrNotReady, current.Name, current.State, c.cfg.MaxPollAttempts,
		)
	}

	return current, nil
}
