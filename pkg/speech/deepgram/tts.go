package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"radiomirchi/pkg/serrors"
	"radiomirchi/pkg/speech"
	"strconv"
	"strings"
)

const (
	chunkSize    = 8 * 1024
	maxErrorBody = 4 * 1024
)

// Speak implements speech.Synthesizer. Audio is linear16 at the configured
// TTS sample rate, delivered as it arrives from Deepgram.
func (c *Client) Speak(ctx context.Context, voice, text string, fn speech.AudioFunc) (int64, error) {
	// https://developers.deepgram.com/reference/text-to-speech-api/speak
	if strings.TrimSpace(text) == "" {
		return 0, serrors.With(serrors.ErrBadRequest, "text is empty")
	}

	bodyBytes, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return 0, fmt.Errorf("could not marshal request: %w", err)
	}

	q := url.Values{}
	q.Set("model", voice)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(c.opts.TTSSampleRate))
	endpoint := strings.TrimRight(c.opts.BaseURL, "/") + "/v1/speak?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return 0, fmt.Errorf("could not create request: %w", err)
	}
	req.Header = c.authHeader()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}

		return 0, serrors.Wrap(serrors.ErrUnavailable, err, "could not send request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return 0, statusError(resp.StatusCode, b)
	}

	var (
		total int64
		buf   = make([]byte, chunkSize)
	)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			// fn may retain the chunk, so it gets its own copy
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if err := fn(chunk); err != nil {
				return total, err
			}
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("could not read audio stream: %w", err)
		}
	}
}
