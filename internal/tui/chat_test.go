package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyPress(s string) tea.KeyPressMsg {
	if s == "enter" {
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	}
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

type fakeSender struct {
	reply string
	err   error
	texts []string
}

func (s *fakeSender) HandleMessage(ctx context.Context, sessionID, tenantID, userRef, text string) (string, error) {
	s.texts = append(s.texts, text)
	return s.reply, s.err
}

func TestChatRoundTrip(t *testing.T) {
	sender := &fakeSender{reply: "Sarah's email is sarah@example.com."}
	m := newChatModel(sender, "s1", "t1", "Dana")
	m.input.SetValue("What's Sarah's email?")

	updated, cmd := m.Update(keyPress("enter"))
	m = updated.(chatModel)
	require.NotNil(t, cmd)
	assert.True(t, m.waiting)
	assert.Equal(t, "", m.input.Value())

	updated, _ = m.Update(replyMsg{text: sender.reply})
	m = updated.(chatModel)
	assert.False(t, m.waiting)

	content := m.renderContent()
	assert.Contains(t, content, "Dana:")
	assert.Contains(t, content, "What's Sarah's email?")
	assert.Contains(t, content, "sarah@example.com")
}

func TestEmptyInputIsIgnored(t *testing.T) {
	m := newChatModel(&fakeSender{}, "s1", "t1", "Dana")
	m.input.SetValue("   ")

	updated, cmd := m.Update(keyPress("enter"))
	m = updated.(chatModel)
	assert.Nil(t, cmd)
	assert.False(t, m.waiting)
	assert.Empty(t, m.turns)
}

func TestSecondMessageBlockedWhileWaiting(t *testing.T) {
	m := newChatModel(&fakeSender{}, "s1", "t1", "Dana")
	m.waiting = true
	m.input.SetValue("another question")

	updated, cmd := m.Update(keyPress("enter"))
	m = updated.(chatModel)
	assert.Nil(t, cmd)
	assert.Empty(t, m.turns)
}

func TestErrorReplyRendered(t *testing.T) {
	m := newChatModel(&fakeSender{}, "s1", "t1", "Dana")
	updated, _ := m.Update(replyMsg{err: errors.New("store unreachable")})
	m = updated.(chatModel)

	require.Len(t, m.turns, 1)
	assert.True(t, m.turns[0].err)
	assert.Contains(t, m.renderContent(), "store unreachable")
}

func TestWrapFoldsAtWordBoundaries(t *testing.T) {
	text := strings.Repeat("word ", 30)
	wrapped := wrap(strings.TrimSpace(text), 60)
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len(line), 50)
	}
}
