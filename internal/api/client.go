// Package api is the typed REST client for the marketplace backend. It
// translates intents into HTTP calls and surfaces failures as the typed
// errors in errors.go; retry policy belongs to callers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/campushustle/hustle-tui/internal/logging"
	"github.com/campushustle/hustle-tui/internal/session"
)

const (
	defaultTimeout           = 15 * time.Second
	defaultRequestsPerSecond = 10
	defaultSearchLimit       = 10

	// maxResponseSize bounds response bodies so a misbehaving server cannot
	// exhaust memory.
	maxResponseSize = 4 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Session           session.Session

	// HTTPClient overrides the default client; used by tests.
	HTTPClient *http.Client
}

// Client is a typed HTTP client for the backend REST API. All authenticated
// calls carry the session's bearer token; the session is passed in explicitly
// rather than read from ambient state.
type Client struct {
	baseURL string
	http    *http.Client
	sess    session.Session
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base URL required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		sess:    cfg.Session,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		log:     logging.Component("api"),
	}, nil
}

// WithSession returns a copy of the client bound to sess. Used after login.
func (c *Client) WithSession(sess session.Session) *Client {
	clone := *c
	clone.sess = sess
	return &clone
}

// Session returns the session the client is bound to.
func (c *Client) Session() session.Session {
	return c.sess
}

// Login authenticates against POST /users/login/ and returns the issued
// tokens plus the user record. The client itself is not mutated; callers
// persist the session and rebind with WithSession.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, &ValidationError{Detail: "username and password required"}
	}

	body, err := c.do(ctx, http.MethodPost, "/users/login/", map[string]string{
		"username": username,
		"password": password,
	}, false)
	if err != nil {
		return LoginResult{}, err
	}

	var result LoginResult
	if err := json.Unmarshal(body, &result); err != nil {
		return LoginResult{}, &ValidationError{Detail: "unexpected login response shape"}
	}
	if result.Access == "" || result.User.ID == 0 {
		return LoginResult{}, &ValidationError{Detail: "login response missing token or user"}
	}
	return result, nil
}

// ListConversations fetches the current user's conversations, most recently
// active first (server ordering).
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	body, err := c.do(ctx, http.MethodGet, "/conversations/", nil, true)
	if err != nil {
		return nil, err
	}
	return decodeList[Conversation](body)
}

// ListMessages fetches the messages of one conversation in server order.
func (c *Client) ListMessages(ctx context.Context, conversationID int64) ([]Message, error) {
	if conversationID <= 0 {
		return nil, &ValidationError{Detail: "conversation id required"}
	}
	path := fmt.Sprintf("/conversations/%d/messages/", conversationID)
	body, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	return decodeList[Message](body)
}

// SendMessage posts a new message. Content that is empty after trimming is
// rejected locally; no request is issued.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (Message, error) {
	if req.ConversationID <= 0 {
		return Message{}, &ValidationError{Detail: "conversation id required"}
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return Message{}, &ValidationError{Detail: "message content required"}
	}
	if req.MessageType == "" {
		req.MessageType = MessageTypeText
	}

	clientRef := uuid.New().String()
	c.log.Debug().
		Int64("conversation_id", req.ConversationID).
		Str("client_ref", clientRef).
		Msg("sending message")

	body, err := c.doWithHeaders(ctx, http.MethodPost, "/messages/", req, true, map[string]string{
		"X-Client-Ref": clientRef,
	})
	if err != nil {
		return Message{}, err
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{}, &ValidationError{Detail: "unexpected message response shape"}
	}
	return msg, nil
}

// CreateConversation creates a conversation with the given participants. The
// server adds the current user to the participant set.
func (c *Client) CreateConversation(ctx context.Context, req CreateConversationRequest) (Conversation, error) {
	if len(req.ParticipantIDs) == 0 {
		return Conversation{}, &ValidationError{Detail: "at least one participant required"}
	}

	body, err := c.do(ctx, http.MethodPost, "/conversations/", req, true)
	if err != nil {
		return Conversation{}, err
	}

	var conv Conversation
	if err := json.Unmarshal(body, &conv); err != nil {
		return Conversation{}, &ValidationError{Detail: "unexpected conversation response shape"}
	}
	return conv, nil
}

// SearchUsers queries /users/search/. An empty query short-circuits to an
// empty result without touching the network.
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) ([]UserSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.do(ctx, http.MethodGet, "/users/search/?"+params.Encode(), nil, true)
	if err != nil {
		return nil, err
	}

	results, err := decodeList[UserSearchResult](body)
	if err != nil {
		return nil, err
	}

	// The backend excludes the requesting user, but older deployments did
	// not; filter defensively so self never shows up in the picker.
	out := results[:0]
	for _, r := range results {
		if r.ID == c.sess.UserID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// MarkMessageRead marks one incoming message as read.
func (c *Client) MarkMessageRead(ctx context.Context, messageID int64) error {
	if messageID <= 0 {
		return &ValidationError{Detail: "message id required"}
	}
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/messages/%d/read/", messageID), nil, true)
	return err
}

// UnreadCount returns the total count of unread incoming messages.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	body, err := c.do(ctx, http.MethodGet, "/unread-count/", nil, true)
	if err != nil {
		return 0, err
	}

	var payload struct {
		UnreadCount *int `json:"unread_count"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.UnreadCount == nil {
		return 0, &ValidationError{Detail: "unexpected unread-count response shape"}
	}
	return *payload.UnreadCount, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, authed bool) ([]byte, error) {
	return c.doWithHeaders(ctx, method, path, payload, authed, nil)
}

func (c *Client) doWithHeaders(ctx context.Context, method, path string, payload any, authed bool, headers map[string]string) ([]byte, error) {
	op := method + " " + path

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &ValidationError{Detail: fmt.Sprintf("encode request: %v", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if !c.sess.Valid() {
			return nil, &AuthError{Detail: "no session, run `hustle-tui login`"}
		}
		req.Header.Set("Authorization", "Bearer "+c.sess.AccessToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// Transport errors can echo the full URL; scrub anything token-shaped
		// before it reaches the log.
		c.log.Debug().Str("op", op).Str("error", logging.Redact(err.Error())).Msg("request failed")
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	c.log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, errorFromResponse(op, resp.StatusCode, body)
}

// errorFromResponse maps a non-2xx response onto the client error taxonomy.
func errorFromResponse(op string, status int, body []byte) error {
	detail, fields := parseErrorBody(body)

	switch {
	case status == http.StatusUnauthorized:
		return &AuthError{Detail: detail}
	case status == http.StatusNotFound:
		if detail == "" {
			detail = op
		}
		return &NotFoundError{Resource: detail}
	case status >= 400 && status < 500:
		return &ValidationError{Status: status, Detail: detail, Fields: fields}
	default:
		// 5xx is indistinguishable from a flaky transport for our purposes.
		return &NetworkError{Op: op, Err: fmt.Errorf("server error (HTTP %d)", status)}
	}
}

// parseErrorBody extracts DRF-style error detail: either {"detail": "..."},
// {"error": "..."}, or a field-error map {"field": ["msg", ...]}.
func parseErrorBody(body []byte) (string, map[string][]string) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return "", nil
	}

	for _, key := range []string{"detail", "error", "message"} {
		if raw, ok := envelope[key]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				return s, nil
			}
		}
	}

	fields := make(map[string][]string, len(envelope))
	for key, raw := range envelope {
		var msgs []string
		if err := json.Unmarshal(raw, &msgs); err == nil {
			fields[key] = msgs
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			fields[key] = []string{s}
		}
	}
	if len(fields) == 0 {
		return "", nil
	}
	return "", fields
}

// decodeList decodes a list endpoint response. The backend returns either a
// bare JSON array or a {"results": [...]} envelope; anything else is a
// ValidationError, never a silent coercion to empty.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &ValidationError{Detail: "empty response body"}
	}

	switch trimmed[0] {
	case '[':
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, &ValidationError{Detail: fmt.Sprintf("decode list: %v", err)}
		}
		return out, nil
	case '{':
		var envelope struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil || envelope.Results == nil {
			return nil, &ValidationError{Detail: "unexpected response shape"}
		}
		var out []T
		if err := json.Unmarshal(envelope.Results, &out); err != nil {
			return nil, &ValidationError{Detail: fmt.Sprintf("decode results: %v", err)}
		}
		return out, nil
	default:
		return nil, &ValidationError{Detail: "unexpected response shape"}
	}
}
