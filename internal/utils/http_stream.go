package utils

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// HeaderOption is a single HTTP header to apply to an outbound request.
// Options are applied after the defaults, so a provider can override the
// Authorization header or add vendor-specific headers like x-api-key.
type HeaderOption struct {
	Key   string
	Value string
}

// maxErrorBodySize caps how much of a non-2xx response body is read into the
// returned error. Enforced via io.LimitReader so a rogue response cannot
// allocate unbounded memory.
const maxErrorBodySize int64 = 1 * 1024 * 1024

// DoPostStream performs an HTTP POST with a JSON body and returns the raw
// response with its body left open for SSE reading. The caller owns the body
// and must close it when done; on error paths the body is drained and closed
// before returning.
//
// apiKey, when non-empty, is sent as a bearer Authorization header. Providers
// that authenticate differently pass an empty apiKey and supply their own
// headers via HeaderOption values.
func DoPostStream(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	response, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending stream request: %w", err)
	}

	// For non-2xx responses, capture the body into the error and close it.
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(response.Body)
		errorBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxErrorBodySize))
		if readErr != nil {
			return response, fmt.Errorf("non-2xx status %d (failed to read body: %v)", response.StatusCode, readErr)
		}
		return response, fmt.Errorf("non-2xx status %d: %s", response.StatusCode, TruncateStringDefault(string(errorBody)))
	}

	return response, nil
}

// CloseWithLog closes closer, logging a warning instead of returning the close
// error so it never overrides the primary error on the calling path.
func CloseWithLog(closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

// maxSSELineSize is the maximum size of a single SSE line (1 MB).
// The default bufio.Scanner limit is 64 KiB, which is too small for large
// events such as long completions. A line exceeding this limit surfaces as a
// wrapped bufio.ErrTooLong through the Next() error path.
const maxSSELineSize = 1 * 1024 * 1024

// SSEScanner splits an incremental byte stream into Server-Sent Events data
// records. It is chunk-boundary independent: bytes may arrive in arbitrarily
// sized reads, and a trailing partial record stays buffered until the record's
// terminating blank line (or the end of the stream) arrives. Multi-line data
// fields are joined with newlines, comments and non-data fields are skipped,
// and the [DONE] sentinel used by OpenAI-compatible APIs ends the stream.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner creates an SSEScanner reading SSE records from reader.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next complete SSE data payload.
//
// It returns io.EOF when the byte stream is cleanly exhausted or the [DONE]
// sentinel is encountered, and a non-EOF error when the underlying transport
// fails mid-stream. A partial record pending at clean end-of-stream is
// returned as a final payload; decoding it is the consumer's concern.
func (sseScanner *SSEScanner) Next() (string, error) {
	var dataLines []string

	for sseScanner.scanner.Scan() {
		line := sseScanner.scanner.Text()

		// Blank line terminates a record; flush accumulated data lines.
		if line == "" {
			if len(dataLines) > 0 {
				return strings.Join(dataLines, "\n"), nil
			}
			continue
		}

		// SSE comments (": keepalive") are skipped.
		if strings.HasPrefix(line, ":") {
			continue
		}

		if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

			if data == "[DONE]" {
				return "", io.EOF
			}

			dataLines = append(dataLines, data)
			continue
		}

		// Other SSE fields (event:, id:, retry:) carry no payload here.
	}

	if err := sseScanner.scanner.Err(); err != nil {
		return "", fmt.Errorf("SSE scanner error: %w", err)
	}

	if len(dataLines) > 0 {
		return strings.Join(dataLines, "\n"), nil
	}

	return "", io.EOF
}
