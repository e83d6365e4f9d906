package dialog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avandyck/shepherd/internal/config"
	"github.com/avandyck/shepherd/internal/models"
)

// Wednesday morning.
var now = time.Date(2026, 9, 2, 10, 30, 0, 0, time.UTC)

func newMachine() *Machine {
	return NewMachine(3, config.DefaultHolidays())
}

func sessionWith(p *models.PendingOp) *models.ConversationContext {
	return &models.ConversationContext{SessionID: "s1", TenantID: "t1", Pending: p}
}

func TestHandleNoPending(t *testing.T) {
	res := newMachine().Handle(sessionWith(nil), "hello", now)
	assert.Equal(t, StatusNoPending, res.Status)
}

func TestAmbiguousFragmentResolvedAsSong(t *testing.T) {
	cctx := sessionWith(&models.PendingOp{
		Kind:         models.PendingEntityClarification,
		OriginalText: "When did we last play Gratitude?",
		Interpretations: []models.Interpretation{
			{Kind: "song", Value: "Gratitude"},
			{Kind: "person", Value: "Gratitude"},
		},
	})

	res := newMachine().Handle(cctx, "the song", now)
	require.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, "song", res.Resolution.Interpretation)
	assert.Equal(t, "When did we last play Gratitude?", res.Resolution.OriginalText)
	assert.Nil(t, cctx.Pending)
}

func TestAmbiguousFragmentResolvedAsPerson(t *testing.T) {
	cctx := sessionWith(&models.PendingOp{
		Kind:            models.PendingEntityClarification,
		Interpretations: []models.Interpretation{{Kind: "song", Value: "Gratitude"}, {Kind: "person", Value: "Gratitude"}},
	})

	res := newMachine().Handle(cctx, "I meant the person", now)
	require.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, "person", res.Resolution.Interpretation)
}

func candidatePending() *models.PendingOp {
	return &models.PendingOp{
		Kind: models.PendingEntityClarification,
		Candidates: []models.Candidate{
			{EntityID: "e1", DisplayName: "Sarah Johnson"},
			{EntityID: "e2", DisplayName: "Sarah Miller"},
		},
	}
}

func TestCandidatePickedByNumber(t *testing.T) {
	cctx := sessionWith(candidatePending())
	res := newMachine().Handle(cctx, "2", now)
	require.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, "e2", res.Resolution.Entity.EntityID)
	assert.Nil(t, cctx.Pending)
}

func TestCandidatePickedByFullName(t *testing.T) {
	res := newMachine().Handle(sessionWith(candidatePending()), "Sarah Miller", now)
	require.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, "e2", res.Resolution.Entity.EntityID)
}

func TestCandidatePickedByUniqueFragment(t *testing.T) {
	res := newMachine().Handle(sessionWith(candidatePending()), "miller", now)
	require.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, "e2", res.Resolution.Entity.EntityID)
}

func TestAmbiguousFragmentReasks(t *testing.T) {
	cctx := sessionWith(candidatePending())
	res := newMachine().Handle(cctx, "sarah", now)
	require.Equal(t, StatusReask, res.Status)
	assert.Equal(t, 1, cctx.Pending.Asks)
	assert.Contains(t, res.Reply, "didn't catch that")
}

func TestTurnLimitForcesAbandon(t *testing.T) {
	cctx := sessionWith(candidatePending())
	m := newMachine()

	res := m.Handle(cctx, "hmm", now)
	assert.Equal(t, StatusReask, res.Status)
	res = m.Handle(cctx, "uh", now)
	assert.Equal(t, StatusReask, res.Status)
	res = m.Handle(cctx, "ok then", now)
	require.Equal(t, StatusAbandonedLimit, res.Status)
	assert.Contains(t, res.Reply, "sorry")
	assert.Nil(t, cctx.Pending)

	// A further message hits an idle machine.
	res = m.Handle(cctx, "hello?", now)
	assert.Equal(t, StatusNoPending, res.Status)
}

func TestTopicChangeAbandonsPending(t *testing.T) {
	cctx := sessionWith(candidatePending())
	res := newMachine().Handle(cctx, "what's mike's email?", now)
	require.Equal(t, StatusAbandonedTopic, res.Status)
	assert.Nil(t, cctx.Pending)
}

func TestDateConfirmationYes(t *testing.T) {
	cctx := sessionWith(&models.PendingOp{
		Kind:    models.PendingDateConfirmation,
		DateRef: "this sunday",
	})
	res := newMachine().Handle(cctx, "yes", now)
	require.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, "this sunday", res.Resolution.DateRef)
}

func TestDateConfirmationCorrection(t *testing.T) {
	cctx := sessionWith(&models.PendingOp{
		Kind:    models.PendingDateConfirmation,
		DateRef: "this sunday",
	})
	res := newMachine().Handle(cctx, "no, I meant next sunday", now)
	require.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, "next sunday", res.Resolution.DateRef)
}

func TestDateConfirmationBareNoReasks(t *testing.T) {
	cctx := sessionWith(&models.PendingOp{
		Kind:    models.PendingDateConfirmation,
		DateRef: "this sunday",
	})
	res := newMachine().Handle(cctx, "no", now)
	require.Equal(t, StatusReask, res.Status)
	assert.Contains(t, res.Reply, "this sunday")
}

func TestFollowUpSlotFilling(t *testing.T) {
	cctx := sessionWith(&models.PendingOp{
		Kind:         models.PendingFollowUpDetails,
		OriginalText: "Create a follow-up for John",
		FollowUp:     &models.FollowUpDraft{EntityID: "e1", EntityName: "John Smith"},
	})
	m := newMachine()

	res := m.Handle(cctx, "his job situation", now)
	require.Equal(t, StatusContinue, res.Status)
	assert.Contains(t, res.Reply, "When should I remind you")
	assert.Equal(t, "his job situation", cctx.Pending.FollowUp.Topic)
	assert.Equal(t, 0, cctx.Pending.Asks)

	res = m.Handle(cctx, "next week", now)
	require.Equal(t, StatusResolved, res.Status)
	require.NotNil(t, res.Resolution.FollowUp)
	assert.Equal(t, "his job situation", res.Resolution.FollowUp.Topic)
	require.NotNil(t, res.Resolution.FollowUp.DueDate)
	// "next week" on a reminder means a week from today.
	assert.Equal(t, time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC), *res.Resolution.FollowUp.DueDate)
	assert.Nil(t, cctx.Pending)
}

func TestFollowUpDateSlotReasksOnNonsense(t *testing.T) {
	cctx := sessionWith(&models.PendingOp{
		Kind:     models.PendingFollowUpDetails,
		FollowUp: &models.FollowUpDraft{EntityID: "e1", EntityName: "John Smith", Topic: "job"},
	})
	res := newMachine().Handle(cctx, "whenever really", now)
	require.Equal(t, StatusReask, res.Status)
	assert.Contains(t, res.Reply, "When should I remind you")
}

func TestFollowUpTopicSlotAbandonsOnNewRequest(t *testing.T) {
	cctx := sessionWith(&models.PendingOp{
		Kind:     models.PendingFollowUpDetails,
		FollowUp: &models.FollowUpDraft{EntityID: "e1", EntityName: "John Smith"},
	})
	res := newMachine().Handle(cctx, "who is serving this sunday?", now)
	require.Equal(t, StatusAbandonedTopic, res.Status)
	assert.Nil(t, cctx.Pending)
}

func TestSongSelection(t *testing.T) {
	pending := func() *models.PendingOp {
		return &models.PendingOp{
			Kind:        models.PendingSongSelection,
			SongOptions: []string{"Way Maker", "Oceans (Where Feet May Fail)"},
		}
	}

	res := newMachine().Handle(sessionWith(pending()), "2", now)
	require.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, "Oceans (Where Feet May Fail)", res.Resolution.Song)

	res = newMachine().Handle(sessionWith(pending()), "oceans", now)
	require.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, "Oceans (Where Feet May Fail)", res.Resolution.Song)

	res = newMachine().Handle(sessionWith(pending()), "way maker", now)
	require.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, "Way Maker", res.Resolution.Song)

	res = newMachine().Handle(sessionWith(pending()), "5", now)
	assert.Equal(t, StatusReask, res.Status)
}

func TestPromptRendering(t *testing.T) {
	clarify := Prompt(candidatePending(), "Sarah")
	assert.Contains(t, clarify, "more than one person named Sarah")
	assert.Contains(t, clarify, "1. Sarah Johnson")

	ambiguous := Prompt(&models.PendingOp{
		Kind:            models.PendingEntityClarification,
		Interpretations: []models.Interpretation{{Kind: "song", Value: "Gratitude"}},
	}, "")
	assert.Contains(t, ambiguous, `the song "Gratitude"`)

	date := Prompt(&models.PendingOp{Kind: models.PendingDateConfirmation, DateRef: "this sunday"}, "")
	assert.Equal(t, "Did you mean this sunday?", date)

	topic := Prompt(&models.PendingOp{
		Kind:     models.PendingFollowUpDetails,
		FollowUp: &models.FollowUpDraft{EntityName: "John Smith"},
	}, "")
	assert.Contains(t, topic, "follow-up with John Smith")

	songs := Prompt(&models.PendingOp{
		Kind:        models.PendingSongSelection,
		SongOptions: []string{"Way Maker"},
	}, "")
	assert.Contains(t, songs, "1. Way Maker")
}
