package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/tablelift/tablelift/constants"
	"github.com/tablelift/tablelift/internal/common"
	"github.com/tablelift/tablelift/internal/llm"
)

// Transform implements llm.TableExtractor against chat/completions. One
// request per document: the prompt both classifies the document genre and
// extracts rows, so there is no caller-side branching on document type.
func (c *Client) Transform(ctx context.Context, content string) ([]llm.ProvisionalRecord, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	if !c.Configured() {
		c.log.Error("llm.extract.no_credential", "req_id", rid)
		return nil, nil, fmt.Errorf("%w: set OPENAI_API_KEY to enable document transformation", common.ErrCredentialMissing)
	}

	sys := llm.BuildExtractionSystemPrompt()
	user := llm.BuildExtractionUserPrompt(content)

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"content_len", len(content),
		"prompt_len", len(user),
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": sys},
			{"role": "user", "content": user},
		},
	}

	raw, err := c.postWithRetry(ctx, body)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, err
	}

	msg, err := firstChoiceContent(raw)
	if err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, err
	}

	cleaned := []byte(llm.CleanModelJSON(msg))
	records, err := llm.DecodeTableData(cleaned)
	if err != nil {
		c.log.Error("llm.extract.malformed_output",
			"req_id", rid, "error", err, "content", truncateForLog(msg),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, cleaned, err
	}
	if len(records) == 0 {
		// valid response, zero rows — an anomaly worth surfacing, not an error
		c.log.Warn("llm.extract.empty_table", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds())
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return records, cleaned, nil
}

// CategorizeRows implements llm.RowCategorizer: one batch request embedding
// the closed vocabulary, answered positionally. Length and parse problems
// are reported as errors here; the categorize package owns the
// degrade-to-safe-default policy.
func (c *Client) CategorizeRows(ctx context.Context, rows []llm.CategorizeRow) ([]string, error) {
	rid := uuid.New().String()
	start := time.Now()

	if !c.Configured() {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY to enable categorization", common.ErrCredentialMissing)
	}

	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal rows: %w", err)
	}

	c.log.Info("llm.categorize.start", "req_id", rid, "rows", len(rows))

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildCategorizeSystemPrompt()},
			{"role": "user", "content": llm.BuildCategorizeUserPrompt(constants.CategoryVocabulary(), string(rowsJSON))},
		},
	}

	raw, err := c.postWithRetry(ctx, body)
	if err != nil {
		c.log.Error("llm.categorize.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	msg, err := firstChoiceContent(raw)
	if err != nil {
		return nil, err
	}

	labels, err := decodeCategoryArray(llm.CleanModelJSON(msg))
	if err != nil {
		c.log.Warn("llm.categorize.malformed_output",
			"req_id", rid, "error", err, "content", truncateForLog(msg),
		)
		return nil, err
	}

	c.log.Info("llm.categorize.ok",
		"req_id", rid, "labels", len(labels),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return labels, nil
}

// decodeCategoryArray pulls the label array out of the response object. It
// prefers a "categories" key and otherwise takes the first array-valued key,
// since the model occasionally renames the wrapper.
func decodeCategoryArray(cleaned string) ([]string, error) {
	var envelope map[string]any
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil, common.WrapMalformedOutput("categorize response is not valid JSON", err)
	}

	arr, ok := envelope["categories"].([]any)
	if !ok {
		for _, v := range envelope {
			if a, isArr := v.([]any); isArr {
				arr = a
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, common.WrapMalformedOutput("no category array in response", nil)
	}

	labels := make([]string, 0, len(arr))
	for _, v := range arr {
		s, isStr := v.(string)
		if !isStr {
			return nil, common.WrapMalformedOutput("category array holds a non-string element", nil)
		}
		labels = append(labels, s)
	}
	return labels, nil
}

// postWithRetry wraps post in a bounded exponential backoff that fires for
// rate-limit responses ONLY. Malformed output and auth failures are
// permanent: retrying them burns quota for nothing.
func (c *Client) postWithRetry(ctx context.Context, body map[string]any) ([]byte, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries), ctx)
	return backoff.RetryWithData(func() ([]byte, error) {
		raw, err := c.post(ctx, endpoint, body)
		if err != nil && !errors.Is(err, common.ErrRateLimited) {
			return nil, backoff.Permanent(err)
		}
		return raw, err
	}, policy)
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrModelService, err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("llm.http.response_body_close_error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status 429 — slow down or raise your quota: %s",
			common.ErrRateLimited, truncateForLog(string(raw)))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d — check OPENAI_API_KEY: %s",
			common.ErrAuth, resp.StatusCode, truncateForLog(string(raw)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d: %s",
			common.ErrModelService, resp.StatusCode, truncateForLog(string(raw)))
	}
	return raw, nil
}

func firstChoiceContent(raw []byte) (string, error) {
	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", common.WrapMalformedOutput("no choices in completion response", nil)
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

func truncateForLog(s string) string {
	const max = 2 << 10
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
