package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"note-bookmark-server/internal/domain"
	"note-bookmark-server/internal/middleware"
	"note-bookmark-server/internal/repository/repositorytest"
	"note-bookmark-server/internal/service"
	"note-bookmark-server/internal/websocket"

	ws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsTestServer struct {
	srv   *httptest.Server
	hub   *websocket.Hub
	auth  *service.AuthService
	notes *service.NoteService
}

func newWSTestServer(t *testing.T, origins []string) *wsTestServer {
	t.Helper()
	log, _ := test.NewNullLogger()

	hub := websocket.NewHub(websocket.Options{
		MaxConnPerUser: 8,
		MaxMessageSize: 4096,
		WriteWait:      time.Second,
		PongWait:       time.Minute,
		PingPeriod:     30 * time.Second,
	}, log)

	users := repositorytest.NewUsers()
	authService := service.NewAuthService(users, "test-secret", time.Hour)
	noteService := service.NewNoteService(repositorytest.NewMemory[domain.Note](), hub)
	bookmarkService := service.NewBookmarkService(repositorytest.NewMemory[domain.Bookmark](), nil, hub, log)

	router := NewRouter(Handlers{
		Auth:      NewAuthHandler(authService, false, log),
		Notes:     NewNoteHandler(noteService, log),
		Bookmarks: NewBookmarkHandler(bookmarkService, log),
		WebSocket: NewWebSocketHandler(hub, origins, 1024, 1024, log),
	}, middleware.AuthMiddleware(authService, log), nil)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &wsTestServer{srv: srv, hub: hub, auth: authService, notes: noteService}
}

func (s *wsTestServer) session(t *testing.T, email string) (string, string) {
	t.Helper()
	user, err := s.auth.Register(t.Context(), &domain.RegisterRequest{
		Name: "Ada", Email: email, Password: "password123",
	})
	require.NoError(t, err)
	token, err := s.auth.IssueToken(user.ID)
	require.NoError(t, err)
	return user.ID, token
}

func (s *wsTestServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/api/ws"
}

func TestWebSocket_OriginList(t *testing.T) {
	s := newWSTestServer(t, []string{"http://localhost:5173", "https://app.example.com"})
	_, token := s.session(t, "ada@example.com")

	tests := []struct {
		name   string
		origin string
		wantOK bool
	}{
		{"first configured origin", "http://localhost:5173", true},
		{"second configured origin", "https://app.example.com", true},
		{"no origin header", "", true},
		{"unlisted origin", "https://evil.example", false},
		{"raw comma separated value", "http://localhost:5173,https://app.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			header.Set("Cookie", middleware.SessionCookie+"="+token)
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}

			conn, resp, err := ws.DefaultDialer.Dial(s.url(), header)
			if tt.wantOK {
				require.NoError(t, err)
				conn.Close()
				return
			}

			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestWebSocket_ReceivesOwnEvents(t *testing.T) {
	s := newWSTestServer(t, []string{"http://localhost:5173"})
	hub, noteService := s.hub, s.notes
	userID, token := s.session(t, "ada@example.com")
	wsURL := s.url()

	_, resp, err := ws.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{}
	header.Set("Cookie", middleware.SessionCookie+"="+token)
	conn, _, err := ws.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.UserConnections(userID) == 1
	}, time.Second, 10*time.Millisecond)

	_, err = noteService.Create(t.Context(), &domain.NoteRequest{Title: "live", Content: "update"}, userID)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg websocket.Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, websocket.MessageType(domain.EventNoteCreated), msg.Type)

	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(`{"type":"ping"}`)))
	_, raw, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, websocket.TypePong, msg.Type)
}
