package msgtui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campushustle/hustle-tui/internal/api"
	"github.com/campushustle/hustle-tui/internal/msgtui/styles"
)

func newTestList(client Client) convListModel {
	m := newConvListModel(client, 1, styles.DefaultTheme)
	m.SetSize(40, 24)
	return m
}

func loadList(t *testing.T, m *convListModel) {
	t.Helper()
	for _, msg := range execCmd(m.Reload()) {
		m.Update(msg)
	}
}

func testConversations() []api.Conversation {
	return []api.Conversation{
		{
			ID:      1,
			Subject: "Logo design",
			Participants: []api.UserSummary{
				{ID: 1, Username: "self"},
				{ID: 2, Username: "alice"},
			},
		},
		{
			ID:      2,
			Subject: "Essay review",
			Participants: []api.UserSummary{
				{ID: 1, Username: "self"},
				{ID: 3, Username: "bob"},
			},
		},
		{
			ID:      3,
			Subject: "",
			Participants: []api.UserSummary{
				{ID: 1, Username: "self"},
				{ID: 4, Username: "ALICE2"},
			},
		},
	}
}

func TestListEmptyFilterReturnsFullListUntouched(t *testing.T) {
	client := &fakeClient{conversations: testConversations()}
	m := newTestList(client)
	loadList(t, &m)

	visible := m.Visible()
	require.Len(t, visible, 3)
	// Identity, not a filtered copy.
	require.Equal(t, &m.conversations[0], &visible[0])
}

func TestListFilterMatchesSubjectAndParticipants(t *testing.T) {
	client := &fakeClient{conversations: testConversations()}
	m := newTestList(client)
	loadList(t, &m)

	tests := []struct {
		query   string
		wantIDs []int64
	}{
		{"logo", []int64{1}},
		{"LOGO", []int64{1}},
		{"alice", []int64{1, 3}},
		{"bob", []int64{2}},
		{"nobody", nil},
	}
	for _, tt := range tests {
		m.filterInput.SetValue(tt.query)
		var ids []int64
		for _, c := range m.Visible() {
			ids = append(ids, c.ID)
		}
		require.Equal(t, tt.wantIDs, ids, "query %q", tt.query)
	}
}

func TestListUnshiftPrependsAndSelectsWithoutRefetch(t *testing.T) {
	client := &fakeClient{conversations: testConversations()}
	m := newTestList(client)
	loadList(t, &m)
	calls := client.listConvCalls

	fresh := api.Conversation{ID: 99, Subject: "Fresh"}
	m.Unshift(fresh)

	require.Equal(t, calls, client.listConvCalls)
	require.Equal(t, int64(99), m.conversations[0].ID)
	selected, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, int64(99), selected.ID)
}

func TestListLoadFailureKeepsLastListAndDismisses(t *testing.T) {
	client := &fakeClient{conversations: testConversations()}
	m := newTestList(client)
	loadList(t, &m)
	require.Len(t, m.conversations, 3)

	client.listConvErr = errors.New("backend down")
	loadList(t, &m)

	require.Equal(t, listFailed, m.state)
	require.Error(t, m.loadErr)
	require.Len(t, m.conversations, 3)

	m.DismissError()
	require.Equal(t, listReady, m.state)
	require.NoError(t, m.loadErr)
}

func TestListStaleLoadResultDiscarded(t *testing.T) {
	client := &fakeClient{conversations: testConversations()}
	m := newTestList(client)

	first := m.Reload()
	oldSeq := m.seq
	_ = first
	second := m.Reload()

	// The first reload's result lands after the second superseded it.
	stale := conversationsLoadedMsg{seq: oldSeq, conversations: []api.Conversation{{ID: 42}}}
	require.Nil(t, m.Update(stale))
	require.Equal(t, listLoading, m.state)

	for _, msg := range execCmd(second) {
		m.Update(msg)
	}
	require.Equal(t, listReady, m.state)
	require.Len(t, m.conversations, 3)
}

func TestListCursorClampsWhenFilterShrinksList(t *testing.T) {
	client := &fakeClient{conversations: testConversations()}
	m := newTestList(client)
	loadList(t, &m)

	m.cursor = 2
	m.filterInput.SetValue("logo")
	m.clampCursor()
	require.Equal(t, 0, m.cursor)

	selected, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, int64(1), selected.ID)
}

func TestListRelativeTimeInRows(t *testing.T) {
	now := time.Date(2026, 3, 7, 15, 0, 0, 0, time.Local)
	earlier := now.Add(-2 * time.Hour)
	convs := []api.Conversation{{
		ID:            1,
		Subject:       "Logo design",
		LastMessageAt: &earlier,
		LastMessage:   &api.Message{Content: "ping"},
	}}
	client := &fakeClient{conversations: convs}
	m := newTestList(client)
	loadList(t, &m)

	row := m.renderRow(convs[0], false, false, now)
	require.Contains(t, row, earlier.Local().Format("15:04"))
	require.Contains(t, row, "ping")
}
