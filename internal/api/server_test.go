package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gopkg.in/yaml.v3"

	"radiomirchi/internal/api"
	"radiomirchi/internal/api/handler/v1handler"
	"radiomirchi/internal/game"
	mockgame "radiomirchi/internal/game/mock"
	mockmissions "radiomirchi/internal/missions/mock"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

type fixture struct {
	missions *mockmissions.MockService
	sessions *mockgame.MockManager
	srv      *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		missions: mockmissions.NewMockService(ctrl),
		sessions: mockgame.NewMockManager(ctrl),
	}
	handler, err := api.NewHandler(api.Deps{Deps: v1handler.Deps{
		Missions: f.missions,
		Sessions: f.sessions,
	}}, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{},
		HandlerOptions:    v1handler.Options{AllowedOrigins: []string{"*"}},
		RequestTimeout:    50 * time.Millisecond,
		MetricsPath:       "/metrics",
		AllowedOrigins:    []string{"*"},
		CreateRPS:         1,
		CreateBurst:       1,
	})
	require.NoError(t, err)

	f.srv = httptest.NewServer(handler)
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()

	res, err := http.Get(f.srv.URL + path) //nolint: noctx
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res, string(body)
}

func TestServer_Specs(t *testing.T) {
	f := newFixture(t)

	res, body := f.get(t, "/specs/v1.yaml")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "application/yaml", res.Header.Get("Content-Type"))

	var doc struct {
		OpenAPI string                 `yaml:"openapi"`
		Paths   map[string]interface{} `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(body), &doc))
	require.Equal(t, "3.0.3", doc.OpenAPI)
	for _, p := range []string{"/", "/healthz", "/api/v1/create_mission", "/api/v1/mission_status/{id}",
		"/api/v1/missions", "/api/v1/missions/{id}", "/api/v1/ws/{id}"} {
		require.Contains(t, doc.Paths, p)
	}

	res, _ = f.get(t, "/v1/docs/")
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t)

	f.get(t, "/")
	res, body := f.get(t, "/metrics")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, body, "radiomirchi_http_request_duration_seconds")
}

func TestServer_Root(t *testing.T) {
	f := newFixture(t)

	res, body := f.get(t, "/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.JSONEq(t, `{"message":"Welcome to the Radio Mirchi API"}`, body)
	require.NotEmpty(t, res.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_RequestTimeout(t *testing.T) {
	f := newFixture(t)
	id := domain.NewMissionID()

	f.missions.EXPECT().Status(gomock.Any(), id).
		DoAndReturn(func(ctx context.Context, _ domain.MissionID) (domain.MissionStatus, error) {
			<-ctx.Done()

			return "", ctx.Err()
		})

	res, body := f.get(t, "/api/v1/mission_status/"+id.String())
	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	require.JSONEq(t, `{"code":"TIMEOUT","message":"request timed out"}`, body)
}

func TestServer_GameRouteOutlivesRequestTimeout(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	res := mockgame.NewMockReservation(ctrl)
	m := &domain.Mission{ID: domain.NewMissionID(), Status: domain.MissionStatusStage2}

	f.missions.EXPECT().Playable(gomock.Any(), m.ID).Return(m, nil)
	f.sessions.EXPECT().Reserve(m.ID).Return(res, nil)
	res.EXPECT().Play(gomock.Any(), gomock.Any(), m).
		DoAndReturn(func(_ context.Context, conn game.Conn, _ *domain.Mission) error {
			defer conn.Close()
			// longer than the request timeout
			time.Sleep(100 * time.Millisecond)

			return conn.WriteMessage(websocket.TextMessage, []byte("still here"))
		})

	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/v1/ws/" + m.ID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "still here", string(data))
}
