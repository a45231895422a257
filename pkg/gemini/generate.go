package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// Generate calls generateContent, retrying only 503 responses. At most
// MaxAttempts calls are made; the wait before attempt n+1 is
// InitialBackoff * 2^(n-1). Exhausted retries yield ErrOverloaded and an
// empty response yields ErrNoText, both wrapped in ErrGeneration.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	return c.generate(ctx, req, c.cfg.MaxAttempts)
}

// GenerateOnce calls generateContent a single time without retry.
func (c *Client) GenerateOnce(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	return c.generate(ctx, req, 1)
}

func (c *Client) generate(ctx context.Context, req *GenerateRequest, attempts int) (*GenerateResponse, error) {
	sdk, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	contents, config := req.sdk()
	backoff := c.cfg.InitialBackoffDuration()

	for attempt := 1; ; attempt++ {
		resp, err := sdk.Models.GenerateContent(ctx, c.cfg.Model, contents, config)
		if err == nil {
			return decodeGenerate(resp)
		}

		if !overloaded(err) {
			return nil, classify(ErrGeneration, err)
		}

		if attempt >= attempts {
			return nil, fmt.Errorf("%w: %w after %d attempts", ErrGeneration, ErrOverloaded, attempt)
		}

		delay := backoff << (attempt - 1)
		c.logger.WarnContext(ctx, "model overloaded, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay,
		)

		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
		}
	}
}

// decodeGenerate keeps the response JSON for auditing and reads it back
// into the package's response shape.
func decodeGenerate(resp *genai.GenerateContentResponse) (*GenerateResponse, error) {
	resp.SDKHTTPResponse = nil

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: encode response: %w", ErrGeneration, err)
	}

	var out GenerateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrGeneration, err)
	}
	out.Raw = raw

	if out.Text() == "" {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, ErrNoText)
	}

	return &out, nil
}
