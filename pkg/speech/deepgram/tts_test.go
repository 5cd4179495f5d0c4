package deepgram_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"radiomirchi/pkg/serrors"
	"radiomirchi/pkg/speech/deepgram"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(fn rtFunc) *deepgram.Client {
	return deepgram.New(&http.Client{Transport: fn}, deepgram.Options{APIKey: "test-key"})
}

func TestClient_Speak_streamsAudio(t *testing.T) {
	audio := bytes.Repeat([]byte{1, 2, 3, 4, 5}, 4000)
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "api.deepgram.com", r.URL.Host)
		require.Equal(t, "/v1/speak", r.URL.Path)
		require.Equal(t, "aura-2-zeus-en", r.URL.Query().Get("model"))
		require.Equal(t, "linear16", r.URL.Query().Get("encoding"))
		require.Equal(t, "24000", r.URL.Query().Get("sample_rate"))
		require.Equal(t, "Token test-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"text":"Stay indoors."}`, string(body))

		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(audio))}, nil
	})

	var (
		got    []byte
		chunks int
	)
	n, err := c.Speak(context.Background(), "aura-2-zeus-en", "Stay indoors.", func(chunk []byte) error {
		chunks++
		got = append(got, chunk...)

		return nil
	})
	require.NoError(t, err)
	require.EqualValues(t, len(audio), n)
	require.Equal(t, audio, got)
	require.Greater(t, chunks, 1)
}

func TestClient_Speak_callbackErrorStops(t *testing.T) {
	c := newTestClient(func(_ *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(make([]byte, 32*1024))),
		}, nil
	})

	stop := errors.New("client gone")
	calls := 0
	n, err := c.Speak(context.Background(), "aura-2-luna-en", "hello", func(_ []byte) error {
		calls++

		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, calls)
	require.Zero(t, n)
}

func TestClient_Speak_errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   error
	}{
		{"rate limited", http.StatusTooManyRequests, serrors.ErrRateLimited},
		{"unavailable", http.StatusBadGateway, serrors.ErrUnavailable},
		{"unauthorized", http.StatusUnauthorized, serrors.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: tt.status,
					Body:       io.NopCloser(strings.NewReader(`{"err_code":"X","err_msg":"try later"}`)),
				}, nil
			})
			_, err := c.Speak(context.Background(), "aura-2-luna-en", "hello", func([]byte) error { return nil })
			require.ErrorIs(t, err, tt.kind)
			require.ErrorContains(t, err, "try later")
		})
	}

	c := newTestClient(func(_ *http.Request) (*http.Response, error) {
		t.Fatal("no request expected for empty text")

		return nil, nil
	})
	_, err := c.Speak(context.Background(), "aura-2-luna-en", "  ", func([]byte) error { return nil })
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}
