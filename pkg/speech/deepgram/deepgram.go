// Package deepgram implements speech.Synthesizer and speech.Transcriber on
// top of the Deepgram REST and streaming APIs.
package deepgram

import (
	"fmt"
	"net/http"
	"radiomirchi/pkg/serrors"
	"radiomirchi/pkg/speech"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the Deepgram REST endpoint.
	DefaultBaseURL = "https://api.deepgram.com"
	// DefaultListenURL is the Deepgram live transcription endpoint.
	DefaultListenURL = "wss://api.deepgram.com/v1/listen"
)

// Options configures the client.
type Options struct {
	APIKey    string
	BaseURL   string
	ListenURL string
	// TTSSampleRate is the sample rate of synthesized linear16 audio.
	TTSSampleRate int
	// STTSampleRate is the sample rate of the linear16 audio clients send.
	STTSampleRate int
	// STTModel is the live transcription model.
	STTModel string
	// Language of the infiltrator's speech.
	Language string
}

// Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	dialer     *websocket.Dialer
	opts       Options
}

// Ensure Client conforms to the speech interfaces at compile time.
var (
	_ speech.Synthesizer = (*Client)(nil)
	_ speech.Transcriber = (*Client)(nil)
)

// New constructs a Client. Zero options fall back to Deepgram defaults.
func New(httpClient *http.Client, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.ListenURL == "" {
		opts.ListenURL = DefaultListenURL
	}
	if opts.TTSSampleRate == 0 {
		opts.TTSSampleRate = 24000
	}
	if opts.STTSampleRate == 0 {
		opts.STTSampleRate = 16000
	}
	if opts.STTModel == "" {
		opts.STTModel = "nova-2"
	}
	if opts.Language == "" {
		opts.Language = "en-US"
	}

	return &Client{
		httpClient: httpClient,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		opts: opts,
	}
}

func (c *Client) authHeader() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Token "+c.opts.APIKey)

	return h
}

// statusError converts a non-2xx Deepgram response into an error of the
// matching kind.
func statusError(status int, body []byte) error {
	msg := gjson.GetBytes(body, "err_msg").String()
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	switch {
	case status == http.StatusTooManyRequests:
		return serrors.With(serrors.ErrRateLimited, "rate limited: %s", msg)
	case status >= 500:
		return serrors.With(serrors.ErrUnavailable, "deepgram unavailable (%d): %s", status, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return serrors.With(serrors.ErrUnauthorized, "deepgram rejected credentials: %s", msg)
	default:
		return fmt.Errorf("deepgram request failed (%d): %s", status, msg)
	}
}
