package game_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/mock/gomock"

	"radiomirchi/internal/game"
	mockmissions "radiomirchi/internal/missions/mock"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/llm"
	mockllm "radiomirchi/pkg/llm/mock"
	"radiomirchi/pkg/logger"
	"radiomirchi/pkg/serrors"
	"radiomirchi/pkg/speech"
	mockspeech "radiomirchi/pkg/speech/mock"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

type fixture struct {
	missions    *mockmissions.MockService
	llm         *mockllm.MockClient
	synthesizer *mockspeech.MockSynthesizer
	transcriber *mockspeech.MockTranscriber
	manager     game.Manager
	mission     *domain.Mission
}

func newFixture(t *testing.T, opts ...func(*game.Options)) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		missions:    mockmissions.NewMockService(ctrl),
		llm:         mockllm.NewMockClient(ctrl),
		synthesizer: mockspeech.NewMockSynthesizer(ctrl),
		transcriber: mockspeech.NewMockTranscriber(ctrl),
		mission: &domain.Mission{
			ID:     domain.NewMissionID(),
			UserID: "u1",
			Topic:  "rationing is freedom",
			Status: domain.MissionStatusStage2,
			Propaganda: &domain.Propaganda{
				Summary:          "Rations keep us strong.",
				ProofSentences:   []string{"Obesity is down."},
				Speakers:         []domain.Speaker{{Name: "Vera", Gender: domain.GenderFemale}, {Name: "Boris", Gender: domain.GenderMale}},
				InitialListeners: 1000,
			},
			DialoguePrompt:    "briefing",
			AwakenedListeners: 100,
		},
	}

	options := game.Options{MinQueuedLines: 1, RetryDelay: 10 * time.Millisecond, MaxHistoryLines: 10}
	for _, o := range opts {
		o(&options)
	}

	mgr, err := game.New(game.Deps{
		Missions:    f.missions,
		LLM:         f.llm,
		Synthesizer: f.synthesizer,
		Transcriber: f.transcriber,
	}, options)
	require.NoError(t, err)
	f.manager = mgr

	// every TTS call yields a single chunk
	f.synthesizer.EXPECT().Speak(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, fn speech.AudioFunc) (int64, error) {
			return 3, fn([]byte("pcm"))
		}).AnyTimes()

	return f
}

// connect opens a session and returns the client side plus the result of Play.
func (f *fixture) connect(t *testing.T) (*websocket.Conn, <-chan error) {
	t.Helper()

	played := make(chan error, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := f.manager.Reserve(f.mission.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)

			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			res.Release()

			return
		}
		played <- res.Play(context.Background(), conn, f.mission)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn, played
}

type frame struct {
	binary bool
	data   []byte
}

func (fr frame) typ() string { return gjson.GetBytes(fr.data, "type").String() }

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	messageType, data, err := conn.ReadMessage()
	require.NoError(t, err)

	return frame{binary: messageType == websocket.BinaryMessage, data: data}
}

// readUntil reads frames until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) frame {
	t.Helper()

	for range 200 {
		fr := readFrame(t, conn)
		if !fr.binary && fr.typ() == typ {
			return fr
		}
	}
	t.Fatalf("no %q frame received", typ)

	return frame{}
}

func waitPlayed(t *testing.T, played <-chan error) error {
	t.Helper()

	select {
	case err := <-played:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")

		return nil
	}
}

// filler answers rounds without a statement after a short pause.
func filler(ctx context.Context) (*domain.DialogueBatch, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Millisecond):
	}

	return &domain.DialogueBatch{Lines: []domain.DialogueLine{{SpeakerName: "Vera", Line: "All is well."}}}, nil
}

// blockUntilDone stands in for a language model that never answers.
func blockUntilDone(ctx context.Context, _ llm.DialogueRequest) (*domain.DialogueBatch, error) {
	<-ctx.Done()

	return nil, ctx.Err()
}

func TestSession_Broadcast(t *testing.T) {
	f := newFixture(t)

	gomock.InOrder(
		f.llm.EXPECT().GenerateDialogue(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req llm.DialogueRequest) (*domain.DialogueBatch, error) {
				require.Equal(t, "briefing", req.Context)
				require.Empty(t, req.History)
				require.Empty(t, req.UserStatement)
				require.Equal(t, f.mission.Propaganda.Speakers, req.Speakers)

				return &domain.DialogueBatch{Lines: []domain.DialogueLine{
					{SpeakerName: "Vera", Line: "Good evening."},
					{SpeakerName: "Boris", Line: "Rations are up."},
				}}, nil
			}),
		f.llm.EXPECT().GenerateDialogue(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req llm.DialogueRequest) (*domain.DialogueBatch, error) {
				require.Equal(t, "\nVera: Good evening.\nBoris: Rations are up.", req.History)

				return blockUntilDone(ctx, req)
			}),
	)

	conn, played := f.connect(t)

	fr := readFrame(t, conn)
	require.Equal(t, game.FrameMission, fr.typ())
	require.EqualValues(t, 100, gjson.GetBytes(fr.data, "awakened_listeners").Int())
	require.EqualValues(t, 1000, gjson.GetBytes(fr.data, "initial_listeners").Int())

	for _, want := range []string{"Vera", "Boris"} {
		fr = readFrame(t, conn)
		require.Equal(t, game.FrameDialogue, fr.typ())
		require.Equal(t, want, gjson.GetBytes(fr.data, "speaker").String())

		fr = readFrame(t, conn)
		require.True(t, fr.binary)
		require.Equal(t, []byte("pcm"), fr.data)

		fr = readFrame(t, conn)
		require.Equal(t, game.FrameDialogueEnd, fr.typ())
	}

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	require.NoError(t, waitPlayed(t, played))
	require.Zero(t, f.manager.Active())
}

func TestSession_HistoryKeepsLastLines(t *testing.T) {
	f := newFixture(t, func(o *game.Options) { o.MaxHistoryLines = 2 })

	histories := make(chan string, 1)
	gomock.InOrder(
		f.llm.EXPECT().GenerateDialogue(gomock.Any(), gomock.Any()).
			Return(&domain.DialogueBatch{Lines: []domain.DialogueLine{
				{SpeakerName: "Vera", Line: "One."},
				{SpeakerName: "Boris", Line: "Two."},
				{SpeakerName: "Vera", Line: "Three."},
				{SpeakerName: "Boris", Line: "Four."},
			}}, nil),
		f.llm.EXPECT().GenerateDialogue(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req llm.DialogueRequest) (*domain.DialogueBatch, error) {
				histories <- req.History

				return blockUntilDone(ctx, req)
			}),
	)

	conn, played := f.connect(t)
	require.Equal(t, game.FrameMission, readFrame(t, conn).typ())

	select {
	case history := <-histories:
		require.Equal(t, "\nVera: Three.\nBoris: Four.", history)
	case <-time.After(5 * time.Second):
		t.Fatal("no second dialogue round")
	}

	require.NoError(t, conn.Close())
	require.NoError(t, waitPlayed(t, played))
}

func TestSession_StatementsBeyondBufferAreRejected(t *testing.T) {
	f := newFixture(t, func(o *game.Options) { o.StatementBuffer = 1 })
	// the first round never ends, so no statement is taken off the buffer
	f.llm.EXPECT().GenerateDialogue(gomock.Any(), gomock.Any()).DoAndReturn(blockUntilDone)

	conn, played := f.connect(t)
	require.Equal(t, game.FrameMission, readFrame(t, conn).typ())

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"user_dialogue":"`+text+`"}`)))
	}

	fr := readUntil(t, conn, game.FrameError)
	require.Equal(t, "too many statements, wait for the hosts to answer", gjson.GetBytes(fr.data, "message").String())

	// the reader is still serving the socket
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	require.NoError(t, waitPlayed(t, played))
}

func TestSession_UserDialogueAwakensListeners(t *testing.T) {
	f := newFixture(t)

	var mu sync.Mutex
	var answered *llm.DialogueRequest
	f.llm.EXPECT().GenerateDialogue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req llm.DialogueRequest) (*domain.DialogueBatch, error) {
			if req.UserStatement == "" {
				return filler(ctx)
			}

			mu.Lock()
			answered = &req
			mu.Unlock()

			return &domain.DialogueBatch{
				Lines:                   []domain.DialogueLine{{SpeakerName: "Boris", Line: "Who said that?"}},
				AwakenedListenersChange: 10,
			}, nil
		}).AnyTimes()
	f.missions.EXPECT().AdjustAwakened(gomock.Any(), f.mission.ID, 10.0).Return(200, nil)

	conn, played := f.connect(t)
	require.Equal(t, game.FrameMission, readFrame(t, conn).typ())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"user_dialogue":"  the rations are shrinking  "}`)))

	fr := readUntil(t, conn, game.FrameAwakenedListeners)
	require.EqualValues(t, 200, gjson.GetBytes(fr.data, "awakened_listeners").Int())

	fr = readUntil(t, conn, game.FrameDialogue)
	require.Equal(t, "Who said that?", gjson.GetBytes(fr.data, "line").String())

	mu.Lock()
	require.NotNil(t, answered)
	require.Equal(t, "the rations are shrinking", answered.UserStatement)
	require.Contains(t, answered.History, "\nInfiltrator: the rations are shrinking")
	mu.Unlock()

	require.NoError(t, conn.Close())
	require.NoError(t, waitPlayed(t, played))
}

func TestSession_SpeechIsTranscribed(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	transcription := mockspeech.NewMockTranscription(ctrl)

	f.llm.EXPECT().GenerateDialogue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req llm.DialogueRequest) (*domain.DialogueBatch, error) {
			if req.UserStatement == "" {
				return filler(ctx)
			}

			return &domain.DialogueBatch{
				Lines:                   []domain.DialogueLine{{SpeakerName: "Vera", Line: "Static on the line."}},
				AwakenedListenersChange: -5,
			}, nil
		}).AnyTimes()

	f.transcriber.EXPECT().Transcribe(gomock.Any()).Return(transcription, nil)
	gomock.InOrder(
		transcription.EXPECT().Send(gomock.Any(), []byte{1, 2}).Return(nil),
		transcription.EXPECT().Send(gomock.Any(), []byte{3, 4}).Return(nil),
		transcription.EXPECT().Finish(gomock.Any()).Return("down with the ministry", nil),
	)
	transcription.EXPECT().Close().Return(nil)
	f.missions.EXPECT().AdjustAwakened(gomock.Any(), f.mission.ID, -5.0).Return(50, nil)

	conn, played := f.connect(t)
	require.Equal(t, game.FrameMission, readFrame(t, conn).typ())

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2}))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{3, 4}))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"speech_end":true}`)))

	fr := readUntil(t, conn, game.FrameAwakenedListeners)
	require.EqualValues(t, 50, gjson.GetBytes(fr.data, "awakened_listeners").Int())

	require.NoError(t, conn.Close())
	require.NoError(t, waitPlayed(t, played))
}

func TestSession_GenerationErrorIsReportedAndRetried(t *testing.T) {
	f := newFixture(t)

	gomock.InOrder(
		f.llm.EXPECT().GenerateDialogue(gomock.Any(), gomock.Any()).
			Return(nil, serrors.With(serrors.ErrRateLimited, "quota")),
		f.llm.EXPECT().GenerateDialogue(gomock.Any(), gomock.Any()).
			Return(&domain.DialogueBatch{Lines: []domain.DialogueLine{{SpeakerName: "Vera", Line: "We are back."}}}, nil),
		f.llm.EXPECT().GenerateDialogue(gomock.Any(), gomock.Any()).DoAndReturn(blockUntilDone),
	)

	conn, played := f.connect(t)
	require.Equal(t, game.FrameMission, readFrame(t, conn).typ())

	fr := readFrame(t, conn)
	require.Equal(t, game.FrameError, fr.typ())
	require.Equal(t, "could not generate dialogue: RATE_LIMITED", gjson.GetBytes(fr.data, "message").String())

	fr = readFrame(t, conn)
	require.Equal(t, game.FrameDialogue, fr.typ())
	require.Equal(t, "We are back.", gjson.GetBytes(fr.data, "line").String())

	require.NoError(t, conn.Close())
	require.NoError(t, waitPlayed(t, played))
}

func TestSession_InvalidMessage(t *testing.T) {
	f := newFixture(t)
	f.llm.EXPECT().GenerateDialogue(gomock.Any(), gomock.Any()).DoAndReturn(blockUntilDone)

	conn, played := f.connect(t)
	require.Equal(t, game.FrameMission, readFrame(t, conn).typ())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	fr := readFrame(t, conn)
	require.Equal(t, game.FrameError, fr.typ())
	require.Equal(t, "invalid message", gjson.GetBytes(fr.data, "message").String())

	require.NoError(t, conn.Close())
	require.NoError(t, waitPlayed(t, played))
}

func TestSession_ShutdownClosesSessions(t *testing.T) {
	f := newFixture(t)
	f.llm.EXPECT().GenerateDialogue(gomock.Any(), gomock.Any()).DoAndReturn(blockUntilDone)

	conn, played := f.connect(t)
	require.Equal(t, game.FrameMission, readFrame(t, conn).typ())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.manager.Shutdown(ctx))
	require.NoError(t, waitPlayed(t, played))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
