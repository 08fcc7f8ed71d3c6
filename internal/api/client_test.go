package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campushustle/hustle-tui/internal/logging"
	"github.com/campushustle/hustle-tui/internal/session"
)

func testSession() session.Session {
	return session.Session{AccessToken: "token-abc", UserID: 1, Username: "self"}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL:           srv.URL,
		RequestsPerSecond: 1000,
		Session:           testSession(),
	})
	require.NoError(t, err)
	return client, srv
}

func TestListConversationsBareArray(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/conversations/", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[{"id": 1, "subject": "Logo design"}, {"id": 2, "subject": "Essay"}]`))
	}))

	convs, err := client.ListConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, convs, 2)
	require.Equal(t, "Logo design", convs[0].Subject)
	require.Equal(t, "Bearer token-abc", gotAuth)
}

func TestListConversationsResultsEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [{"id": 7, "subject": "Tutoring"}]}`))
	}))

	convs, err := client.ListConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, convs, 1)
	require.Equal(t, int64(7), convs[0].ID)
}

func TestListConversationsRejectsUnknownShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object without results", `{"conversations": []}`},
		{"scalar", `42`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			_, err := client.ListConversations(context.Background())
			require.True(t, IsValidation(err), "got %v", err)
		})
	}
}

func TestListMessagesPath(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/conversations/42/messages/", r.URL.Path)
		w.Write([]byte(`[{"id": 1, "conversation": 42, "content": "hi"}]`))
	}))

	msgs, err := client.ListMessages(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "hi", msgs[0].Content)
}

func TestSendMessageTrimsAndRejectsBlankLocally(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	_, err := client.SendMessage(context.Background(), SendMessageRequest{ConversationID: 1, Content: "   \n "})
	require.True(t, IsValidation(err))
	require.Equal(t, 0, requests)
}

func TestSendMessageDefaultsTypeAndCarriesClientRef(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages/", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Client-Ref"))
		w.Write([]byte(`{"id": 9, "conversation": 1, "content": "hello", "message_type": "text"}`))
	}))

	msg, err := client.SendMessage(context.Background(), SendMessageRequest{ConversationID: 1, Content: "  hello  "})
	require.NoError(t, err)
	require.Equal(t, int64(9), msg.ID)
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"401 auth", http.StatusUnauthorized, `{"detail": "token expired"}`, IsAuth},
		{"404 not found", http.StatusNotFound, `{"detail": "no such conversation"}`, IsNotFound},
		{"400 validation", http.StatusBadRequest, `{"content": ["This field is required."]}`, IsValidation},
		{"500 network", http.StatusInternalServerError, ``, IsNetwork},
		{"503 network", http.StatusServiceUnavailable, `oops`, IsNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			_, err := client.ListConversations(context.Background())
			require.Error(t, err)
			require.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestValidationErrorCarriesFieldMap(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"participant_ids": ["This list may not be empty."]}`))
	}))

	_, err := client.CreateConversation(context.Background(), CreateConversationRequest{ParticipantIDs: []int64{2}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"This list may not be empty."}, verr.Fields["participant_ids"])
}

func TestUnauthenticatedClientFailsFast(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, RequestsPerSecond: 1000})
	require.NoError(t, err)

	_, err = client.ListConversations(context.Background())
	require.True(t, IsAuth(err))
	require.Equal(t, 0, requests)
}

func TestSearchUsersEmptyQuerySkipsNetwork(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	results, err := client.SearchUsers(context.Background(), "   ", 10)
	require.NoError(t, err)
	require.Nil(t, results)
	require.Equal(t, 0, requests)
}

func TestSearchUsersFiltersSelfAndPassesParams(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/search/", r.URL.Path)
		require.Equal(t, "ali", r.URL.Query().Get("q"))
		require.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"results": [{"id": 1, "username": "self"}, {"id": 2, "username": "alice"}]}`))
	}))

	results, err := client.SearchUsers(context.Background(), "ali", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "alice", results[0].Username)
}

func TestLoginParsesTokensAndUser(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/login/", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"access": "acc", "refresh": "ref", "user": {"id": 3, "username": "carol"}}`))
	}))

	result, err := client.Login(context.Background(), "carol", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "acc", result.Access)
	require.Equal(t, int64(3), result.User.ID)
}

func TestUnreadCount(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/unread-count/", r.URL.Path)
		w.Write([]byte(`{"unread_count": 4}`))
	}))

	count, err := client.UnreadCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, count)
}

func TestRequestFailureLogsAreRedacted(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	// A token-shaped path segment stands in for anything the transport error
	// might echo back, such as a signed URL.
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.c2ln"
	client, err := NewClient(Config{
		BaseURL:           "http://127.0.0.1:1/" + jwt,
		RequestsPerSecond: 1000,
		Session:           testSession(),
	})
	require.NoError(t, err)

	_, err = client.ListConversations(context.Background())
	require.True(t, IsNetwork(err))

	logged := buf.String()
	require.Contains(t, logged, "request failed")
	require.NotContains(t, logged, jwt)
	require.Contains(t, logged, logging.RedactedValue)
}

func TestUnreadCountRejectsMissingField(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	_, err := client.UnreadCount(context.Background())
	require.True(t, IsValidation(err))
}
