package game

import (
	"context"
	"errors"
	"fmt"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/llm"
	"radiomirchi/pkg/logger"
	"radiomirchi/pkg/metrics"
	"radiomirchi/pkg/serrors"
	"radiomirchi/pkg/speech"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// errClientLeft ends a session whose client closed the socket normally.
	errClientLeft = errors.New("client left")

	errDialogue = errors.New("could not generate dialogue")
	errSpeech   = errors.New("could not synthesize speech")
)

const errTooManyStatements = "too many statements, wait for the hosts to answer"

// connError marks failures to write to the client. They end the session
// instead of being retried.
type connError struct{ err error }

func (e connError) Error() string { return "could not write to client: " + e.err.Error() }
func (e connError) Unwrap() error { return e.err }

type session struct {
	deps        Deps
	options     Options
	instruments *instruments

	conn    Conn
	writeMu sync.Mutex

	mission  *domain.Mission
	speakers []domain.Speaker
	cast     *speech.Cast

	// statements carries what the player said from the reader to the dialogue loop.
	statements chan string

	// owned by the dialogue loop
	history  []string
	queue    []domain.DialogueLine
	pending  []string
	awakened int

	// owned by the reader
	transcription speech.Transcription
}

func newSession(m *manager, conn Conn, mission *domain.Mission) *session {
	var speakers []domain.Speaker
	if mission.Propaganda != nil {
		speakers = mission.Propaganda.Speakers
	}

	return &session{
		deps:        m.deps,
		options:     m.options,
		instruments: m.instruments,
		conn:        conn,
		mission:     mission,
		speakers:    speakers,
		cast:        speech.NewCast(nil),
		statements:  make(chan string, m.options.StatementBuffer),
		awakened:    mission.AwakenedListeners,
	}
}

func (s *session) run(ctx context.Context) error {
	ctx = logger.WithFields(ctx, zap.Stringer("missionID", s.mission.ID))
	logger.Info(ctx, "game session started")
	defer logger.Info(ctx, "game session stopped")

	if err := s.write(websocket.TextMessage, missionFrame(s.awakened, s.mission.InitialListeners())); err != nil {
		_ = s.conn.Close()

		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return s.readLoop(gctx) })
	group.Go(func() error { return s.dialogueLoop(gctx) })
	group.Go(func() error {
		<-gctx.Done()
		s.close()

		return nil
	})

	err := group.Wait()
	var ce connError
	if errors.Is(err, errClientLeft) || errors.As(err, &ce) {
		logger.Debug(ctx, "client disconnected", zap.Error(err))

		return nil
	}

	return err
}

// close says goodbye and closes the socket, which also unblocks the reader.
func (s *session) close() {
	s.writeMu.Lock()
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended"))
	s.writeMu.Unlock()
	_ = s.conn.Close()
}

func (s *session) write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.WriteMessage(messageType, data); err != nil {
		return connError{err: err}
	}

	return nil
}

func (s *session) sendError(ctx context.Context, msg string) {
	if err := s.write(websocket.TextMessage, errorFrame(msg)); err != nil {
		logger.Debug(ctx, "could not send error frame", zap.Error(err))
	}
}

func (s *session) readLoop(ctx context.Context) error {
	defer s.abortTranscription()

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure) {
				return errClientLeft
			}

			return fmt.Errorf("could not read from client: %w", err)
		}

		switch messageType {
		case websocket.TextMessage:
			s.handleText(ctx, data)
		case websocket.BinaryMessage:
			s.handleAudio(ctx, data)
		}
	}
}

func (s *session) handleText(ctx context.Context, data []byte) {
	msg, err := decodeClientMessage(data)
	if err != nil {
		logger.Debug(ctx, "invalid client message", zap.Error(err))
		s.sendError(ctx, "invalid message")

		return
	}

	if text := strings.TrimSpace(msg.UserDialogue); text != "" {
		s.say(ctx, text)
	}
	if msg.SpeechEnd {
		s.finishSpeech(ctx)
	}
}

func (s *session) handleAudio(ctx context.Context, audio []byte) {
	if len(audio) == 0 {
		return
	}

	if s.transcription == nil {
		t, err := s.deps.Transcriber.Transcribe(ctx)
		if err != nil {
			logger.Error(ctx, "could not start transcription", zap.Error(err))
			s.sendError(ctx, "could not transcribe speech")

			return
		}
		s.transcription = t
	}

	if err := s.transcription.Send(ctx, audio); err != nil {
		logger.Error(ctx, "could not forward audio", zap.Error(err))
		s.abortTranscription()
		s.sendError(ctx, "could not transcribe speech")
	}
}

func (s *session) finishSpeech(ctx context.Context) {
	if s.transcription == nil {
		return
	}
	t := s.transcription
	s.transcription = nil
	defer t.Close()

	finishCtx, cancel := context.WithTimeout(ctx, s.options.FinishTimeout)
	defer cancel()

	text, err := t.Finish(finishCtx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error(ctx, "could not finish transcription", zap.Error(err))
			s.sendError(ctx, "could not transcribe speech")
		}

		return
	}
	if text != "" {
		s.say(ctx, text)
	}
}

func (s *session) abortTranscription() {
	if s.transcription != nil {
		_ = s.transcription.Close()
		s.transcription = nil
	}
}

// say hands a statement to the dialogue loop. It never blocks so the reader
// keeps serving close and audio frames while a round is in flight.
func (s *session) say(ctx context.Context, text string) {
	select {
	case s.statements <- text:
		s.instruments.statements.Add(ctx, 1)
	default:
		logger.Warn(ctx, "statement buffer full, dropping statement")
		s.sendError(ctx, errTooManyStatements)
	}
}

func (s *session) dialogueLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		err := s.step(ctx)
		if err == nil {
			continue
		}

		var ce connError
		if errors.As(err, &ce) {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		logger.Error(ctx, "dialogue round failed", zap.Error(err))
		s.sendError(ctx, userMessage(err))

		select {
		case <-ctx.Done():
		case <-time.After(s.options.RetryDelay):
		}
	}

	return nil
}

func userMessage(err error) string {
	msg := errDialogue.Error()
	if errors.Is(err, errSpeech) {
		msg = errSpeech.Error()
	}
	if k := serrors.KindOf(err); k != nil {
		msg += ": " + k.Error()
	}

	return msg
}

// step speaks one line, generating more dialogue first when the queue runs
// low or the player said something.
func (s *session) step(ctx context.Context) error {
	s.collectStatements()

	if len(s.pending) > 0 || len(s.queue) < s.options.MinQueuedLines {
		if err := s.refill(ctx); err != nil {
			return err
		}
	}
	if len(s.queue) == 0 {
		return errors.New("no dialogue to speak")
	}

	line := s.queue[0]
	s.queue = s.queue[1:]

	return s.speak(ctx, line)
}

func (s *session) collectStatements() {
	for {
		select {
		case text := <-s.statements:
			s.pending = append(s.pending, text)
			s.remember(domain.InfiltratorName, text)
		default:
			return
		}
	}
}

func (s *session) remember(speaker, line string) {
	s.history = append(s.history, speaker+": "+line)
	if over := len(s.history) - s.options.MaxHistoryLines; over > 0 {
		s.history = append(s.history[:0], s.history[over:]...)
	}
}

func (s *session) historyText() string {
	var b strings.Builder
	for _, h := range s.history {
		b.WriteString("\n")
		b.WriteString(h)
	}

	return b.String()
}

func (s *session) refill(ctx context.Context) error {
	statement := strings.Join(s.pending, "\n")

	batch, err := s.deps.LLM.GenerateDialogue(ctx, llm.DialogueRequest{
		Context:       s.mission.DialoguePrompt,
		History:       s.historyText(),
		UserStatement: statement,
		Speakers:      s.speakers,
	})
	if err != nil {
		metrics.DialogueRounds.WithLabelValues("error").Inc()

		return fmt.Errorf("%w: %w", errDialogue, err)
	}
	metrics.DialogueRounds.WithLabelValues("ok").Inc()

	if statement != "" {
		s.pending = nil
		// the hosts react to the infiltrator right away
		s.queue = s.queue[:0]

		if err := s.awaken(ctx, batch.AwakenedListenersChange); err != nil {
			return err
		}
	}
	s.queue = append(s.queue, batch.Lines...)

	return nil
}

func (s *session) awaken(ctx context.Context, change float64) error {
	if change != 0 {
		awakened, err := s.deps.Missions.AdjustAwakened(ctx, s.mission.ID, change)
		if err != nil {
			// the broadcast goes on, the score is only behind
			logger.Error(ctx, "could not update awakened listeners", zap.Float64("change", change), zap.Error(err))
		} else {
			s.awakened = awakened
		}
	}

	return s.write(websocket.TextMessage, awakenedFrame(s.awakened))
}

func (s *session) speak(ctx context.Context, line domain.DialogueLine) error {
	if err := s.write(websocket.TextMessage, dialogueFrame(line.SpeakerName, line.Line)); err != nil {
		return err
	}
	s.remember(line.SpeakerName, line.Line)
	s.instruments.lines.Add(ctx, 1)

	voice := s.cast.Voice(line.SpeakerName, s.mission.Propaganda.SpeakerGender(line.SpeakerName))
	n, err := s.deps.Synthesizer.Speak(ctx, voice, line.Line, func(chunk []byte) error {
		return s.write(websocket.BinaryMessage, chunk)
	})
	s.instruments.audioBytes.Add(ctx, n)
	if err != nil {
		var ce connError
		if errors.As(err, &ce) {
			return err
		}
		if endErr := s.write(websocket.TextMessage, dialogueEndFrame()); endErr != nil {
			return endErr
		}

		return fmt.Errorf("%w: %w", errSpeech, err)
	}

	return s.write(websocket.TextMessage, dialogueEndFrame())
}
