package deepgram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"radiomirchi/pkg/speech"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

// Transcribe implements speech.Transcriber. The returned stream expects
// mono linear16 audio at the configured STT sample rate.
func (c *Client) Transcribe(ctx context.Context) (speech.Transcription, error) {
	// https://developers.deepgram.com/reference/speech-to-text-api/listen-streaming
	q := url.Values{}
	q.Set("model", c.opts.STTModel)
	q.Set("language", c.opts.Language)
	q.Set("smart_format", "true")
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(c.opts.STTSampleRate))
	q.Set("channels", "1")

	conn, resp, err := c.dialer.DialContext(ctx, c.opts.ListenURL+"?"+q.Encode(), c.authHeader())
	if err != nil {
		if resp != nil {
			defer func() {
				_ = resp.Body.Close()
			}()
			b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

			return nil, statusError(resp.StatusCode, b)
		}

		return nil, fmt.Errorf("could not dial deepgram: %w", err)
	}

	t := &transcription{conn: conn, done: make(chan struct{})}
	go t.read()

	return t, nil
}

type transcription struct {
	conn *websocket.Conn

	writeMu  sync.Mutex
	finished bool

	mu         sync.Mutex
	transcript strings.Builder
	err        error

	done      chan struct{}
	closeOnce sync.Once
}

// read accumulates final transcripts until the provider closes the stream.
func (t *transcription) read() {
	defer close(t.done)

	for {
		typ, msg, err := t.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !errors.Is(err, net.ErrClosed) {
				t.mu.Lock()
				t.err = err
				t.mu.Unlock()
			}

			return
		}
		if typ != websocket.TextMessage {
			continue
		}

		res := gjson.ParseBytes(msg)
		switch res.Get("type").String() {
		case "Results":
			if final := res.Get("is_final"); final.Exists() && !final.Bool() {
				continue
			}
			text := strings.TrimSpace(res.Get("channel.alternatives.0.transcript").String())
			if text == "" {
				continue
			}
			t.mu.Lock()
			t.transcript.WriteString(text)
			t.transcript.WriteByte(' ')
			t.mu.Unlock()
		case "Error":
			t.mu.Lock()
			t.err = fmt.Errorf("deepgram error: %s", res.Get("description").String())
			t.mu.Unlock()
		}
	}
}

func (t *transcription) Send(_ context.Context, audio []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.finished {
		return errors.New("transcription already finished")
	}
	if err := t.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("could not send audio: %w", err)
	}

	return nil
}

func (t *transcription) Finish(ctx context.Context) (string, error) {
	t.writeMu.Lock()
	if !t.finished {
		t.finished = true
		if err := t.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
			t.writeMu.Unlock()
			_ = t.Close()

			return "", fmt.Errorf("could not close stream: %w", err)
		}
	}
	t.writeMu.Unlock()

	select {
	case <-t.done:
	case <-ctx.Done():
	}
	_ = t.Close()
	<-t.done

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil && t.transcript.Len() == 0 {
		return "", t.err
	}

	return strings.TrimSpace(t.transcript.String()), nil
}

func (t *transcription) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.conn.Close()
	})

	return err
}
