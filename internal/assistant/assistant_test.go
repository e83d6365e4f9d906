package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avandyck/shepherd/internal/config"
	"github.com/avandyck/shepherd/internal/dates"
	"github.com/avandyck/shepherd/internal/directory"
	"github.com/avandyck/shepherd/internal/models"
	"github.com/avandyck/shepherd/internal/resolve"
	"github.com/avandyck/shepherd/internal/retrieval"
	"github.com/avandyck/shepherd/internal/session"
	"github.com/avandyck/shepherd/internal/store"
)

// A Wednesday.
var testNow = time.Date(2026, 9, 2, 10, 30, 0, 0, time.UTC)

type fakeModel struct {
	reply   string
	err     error
	systems []string
	users   []string
}

func (m *fakeModel) GenerateWithSystem(ctx context.Context, system, user string) (string, error) {
	m.systems = append(m.systems, system)
	m.users = append(m.users, user)
	if m.err != nil {
		return "", m.err
	}
	if m.reply == "" {
		return "Here's what I found.", nil
	}
	return m.reply, nil
}

func (m *fakeModel) Summarize(ctx context.Context, transcript string) (string, error) {
	return "summary of earlier turns", nil
}

type fakeRetriever struct {
	bundle retrieval.Bundle
	err    error
	shown  []map[string]bool
}

func (r *fakeRetriever) Retrieve(ctx context.Context, tenantID, query string, entityIDs []string, shown map[string]bool) (retrieval.Bundle, error) {
	copied := make(map[string]bool, len(shown))
	for k, v := range shown {
		copied[k] = v
	}
	r.shown = append(r.shown, copied)
	return r.bundle, r.err
}

type fakeResolver struct {
	results map[string]resolve.Result
}

func (r *fakeResolver) Resolve(ctx context.Context, tenantID, name string) (resolve.Result, error) {
	if res, ok := r.results[strings.ToLower(name)]; ok {
		return res, nil
	}
	return resolve.Result{Outcome: resolve.None}, nil
}

type fakeExtractor struct {
	record models.EvidenceRecord
	err    error
	texts  []string
}

func (e *fakeExtractor) ProcessNote(ctx context.Context, tenantID, authorRef, text string) (models.EvidenceRecord, error) {
	e.texts = append(e.texts, text)
	return e.record, e.err
}

type fakeDirectory struct {
	plan    *directory.Plan
	details directory.PersonDetails
	people  []directory.Person
	songs   []directory.Song
	usage   directory.SongUsage
	avail   directory.TeamAvailability
	err     error
}

func (d *fakeDirectory) Configured() bool { return true }

func (d *fakeDirectory) FindPerson(ctx context.Context, name string) ([]directory.Person, error) {
	return d.people, d.err
}

func (d *fakeDirectory) PersonDetails(ctx context.Context, personID string) (directory.PersonDetails, error) {
	return d.details, d.err
}

func (d *fakeDirectory) FindPlan(ctx context.Context, want dates.Range, serviceType string) (*directory.Plan, error) {
	return d.plan, d.err
}

func (d *fakeDirectory) Setlist(ctx context.Context, want dates.Range, serviceType string) (*directory.Plan, error) {
	return d.plan, d.err
}

func (d *fakeDirectory) PersonBlockouts(ctx context.Context, person directory.Person, window dates.Range) (directory.PersonBlockouts, error) {
	return directory.PersonBlockouts{PersonName: person.Name}, d.err
}

func (d *fakeDirectory) DateBlockouts(ctx context.Context, want dates.Range) (directory.DateBlockouts, error) {
	return directory.DateBlockouts{Range: want}, d.err
}

func (d *fakeDirectory) CheckAvailability(ctx context.Context, person directory.Person, want dates.Range) (directory.AvailabilityCheck, error) {
	return directory.AvailabilityCheck{PersonName: person.Name, Range: want, Available: true}, d.err
}

func (d *fakeDirectory) TeamAvailability(ctx context.Context, want dates.Range) (directory.TeamAvailability, error) {
	return d.avail, d.err
}

func (d *fakeDirectory) FindSong(ctx context.Context, title string) ([]directory.Song, error) {
	if d.err != nil {
		return nil, d.err
	}
	var hits []directory.Song
	for _, s := range d.songs {
		if strings.Contains(strings.ToLower(s.Title), strings.ToLower(title)) {
			hits = append(hits, s)
		}
	}
	return hits, nil
}

func (d *fakeDirectory) SongUsage(ctx context.Context, song directory.Song) (directory.SongUsage, error) {
	return d.usage, d.err
}

type harness struct {
	assistant *Assistant
	store     *store.Memory
	model     *fakeModel
	retriever *fakeRetriever
	resolver  *fakeResolver
	extractor *fakeExtractor
	dir       *fakeDirectory
}

func newHarness() *harness {
	mem := store.NewMemory()
	h := &harness{
		store:     mem,
		model:     &fakeModel{},
		retriever: &fakeRetriever{},
		resolver:  &fakeResolver{results: map[string]resolve.Result{}},
		extractor: &fakeExtractor{},
		dir:       &fakeDirectory{},
	}
	h.assistant = New(Deps{
		Config:    config.Config{ClarifyTurnLimit: 3, HistoryTurns: 10, SummaryThreshold: 20, PromptCeiling: 24000, Holidays: config.DefaultHolidays(), ServiceTypes: config.DefaultServiceTypes()},
		Sessions:  session.NewManager(mem),
		Store:     mem,
		Resolver:  h.resolver,
		Retriever: h.retriever,
		Extractor: h.extractor,
		Model:     h.model,
		Directory: h.dir,
		Logger:    slog.New(slog.DiscardHandler),
		Now:       func() time.Time { return testNow },
	})
	return h
}

func oneMatch(id, name string) resolve.Result {
	return resolve.Result{Outcome: resolve.One, Matches: []resolve.Match{{Entity: models.Entity{ID: id, DisplayName: name}}}}
}

func TestLogCommandConfirmsAndTracksEntities(t *testing.T) {
	h := newHarness()
	h.extractor.record = models.EvidenceRecord{
		ID:              "ev1",
		Summary:         "Coffee with Sarah, she is starting a new job.",
		LinkedEntityIDs: []string{"e1"},
	}

	reply, err := h.assistant.HandleMessage(context.Background(), "s1", "t1", "Pastor Dana", "Talked with Sarah about her new job")
	require.NoError(t, err)
	assert.Contains(t, reply, "logged that interaction")
	assert.Contains(t, reply, "Coffee with Sarah")

	cc, err := h.store.GetContext(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, cc.DiscussedEntityIDs)
}

func TestLogCommandSurfacesUnlinkedMentions(t *testing.T) {
	h := newHarness()
	h.extractor.record = models.EvidenceRecord{
		ID:                 "ev1",
		Summary:            "Talked with Sarah.",
		PendingEntityNames: []string{"Sarah"},
	}

	reply, err := h.assistant.HandleMessage(context.Background(), "s1", "t1", "leader", "Talked with Sarah about the retreat")
	require.NoError(t, err)
	assert.Contains(t, reply, "more than one person matches")
}

func TestFollowUpFlowCommitsReminder(t *testing.T) {
	h := newHarness()
	h.resolver.results["john"] = oneMatch("e-john", "John Carver")
	ctx := context.Background()

	reply, err := h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "Create a follow-up for John")
	require.NoError(t, err)
	assert.Contains(t, reply, "What should the follow-up with John Carver be about?")

	reply, err = h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "his job situation")
	require.NoError(t, err)
	assert.Contains(t, reply, "When should I remind you")

	reply, err = h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "next week")
	require.NoError(t, err)
	assert.Contains(t, reply, "John Carver")
	assert.Contains(t, reply, "his job situation")

	pending, err := h.store.ListFollowUps(ctx, "t1", models.FollowUpPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "e-john", pending[0].EntityID)
	assert.Equal(t, "his job situation", pending[0].Topic)
	assert.Equal(t, time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC), pending[0].DueDate)
}

func TestFollowUpUnknownPersonExplains(t *testing.T) {
	h := newHarness()
	reply, err := h.assistant.HandleMessage(context.Background(), "s1", "t1", "leader", "Create a follow-up for Zed")
	require.NoError(t, err)
	assert.Contains(t, reply, "don't have anyone named zed")
}

func TestAmbiguousFragmentClarifiesThenAnswersAsSong(t *testing.T) {
	h := newHarness()
	h.dir.songs = []directory.Song{{ID: "song1", Title: "Gratitude", Author: "Brandon Lake", Key: "B"}}
	h.dir.usage = directory.SongUsage{
		Song: h.dir.songs[0],
		Uses: []directory.SongUse{{Date: time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC), ServiceTypeName: "Sunday Service"}},
	}
	ctx := context.Background()

	reply, err := h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "When did we last play Gratitude?")
	require.NoError(t, err)
	assert.Contains(t, reply, "did you mean the song")

	reply, err = h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "the song")
	require.NoError(t, err)
	assert.Equal(t, "Here's what I found.", reply)

	require.Len(t, h.model.systems, 1)
	assert.Contains(t, h.model.systems[0], "SONG DETAILS")
	assert.Contains(t, h.model.systems[0], "SONG USAGE HISTORY")
	assert.Contains(t, h.model.systems[0], "Gratitude")
}

func TestPersonDataClarifiesBetweenTwoMatches(t *testing.T) {
	h := newHarness()
	h.resolver.results["sarah"] = resolve.Result{Outcome: resolve.Many, Matches: []resolve.Match{
		{Entity: models.Entity{ID: "e1", DisplayName: "Sarah Miller"}},
		{Entity: models.Entity{ID: "e2", DisplayName: "Sarah Chen"}},
	}}
	h.resolver.results["sarah miller"] = oneMatch("e1", "Sarah Miller")
	h.dir.people = []directory.Person{{ID: "p1", Name: "Sarah Miller"}}
	h.dir.details = directory.PersonDetails{
		Person: directory.Person{ID: "p1", Name: "Sarah Miller"},
		Emails: []directory.Email{{Address: "sarah@example.com", Primary: true}},
	}
	ctx := context.Background()

	reply, err := h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "What's Sarah's email?")
	require.NoError(t, err)
	assert.Contains(t, reply, "more than one person named sarah")
	assert.Contains(t, reply, "Sarah Miller")
	assert.Contains(t, reply, "Sarah Chen")

	reply, err = h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "1")
	require.NoError(t, err)
	assert.Equal(t, "Here's what I found.", reply)
	require.Len(t, h.model.systems, 1)
	assert.Contains(t, h.model.systems[0], "sarah@example.com")
}

func TestTeamContactBuildsScheduleAndContacts(t *testing.T) {
	h := newHarness()
	h.dir.plan = &directory.Plan{
		ID:   "p1",
		Date: time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC),
		TeamMembers: []directory.TeamMember{
			{Name: "John Smith", TeamName: "Vocals", Position: "Worship Leader", Status: "C"},
		},
	}
	h.dir.people = []directory.Person{{ID: "p1", Name: "John Smith"}}
	h.dir.details = directory.PersonDetails{
		Person: directory.Person{ID: "p1", Name: "John Smith"},
		Emails: []directory.Email{{Address: "john@example.com", Primary: true}},
	}

	reply, err := h.assistant.HandleMessage(context.Background(), "s1", "t1", "leader",
		"Get me the email addresses of everyone serving this Sunday")
	require.NoError(t, err)
	assert.Equal(t, "Here's what I found.", reply)
	require.Len(t, h.model.systems, 1)
	assert.Contains(t, h.model.systems[0], "SERVICE TEAM SCHEDULE")
	assert.Contains(t, h.model.systems[0], "John Smith (Worship Leader)")
	assert.Contains(t, h.model.systems[0], "PLANNING CENTER DATA for John Smith")
	assert.Contains(t, h.model.systems[0], "john@example.com")
}

func TestDirectoryFailureDegradesInsteadOfErroring(t *testing.T) {
	h := newHarness()
	h.dir.err = errors.New("directory down")

	reply, err := h.assistant.HandleMessage(context.Background(), "s1", "t1", "leader",
		"What's the team availability for this Sunday?")
	require.NoError(t, err)
	assert.Equal(t, "Here's what I found.", reply)
	require.Len(t, h.model.systems, 1)
	assert.Contains(t, h.model.systems[0], "DATA GAPS")
	assert.Contains(t, h.model.systems[0], "team availability")
}

func TestShownNotesCarryAcrossTurns(t *testing.T) {
	h := newHarness()
	h.retriever.bundle = retrieval.Bundle{Items: []retrieval.Item{
		{Kind: "note", ID: "n1", Source: "Logged 2026-08-20", Text: "Sarah mentioned the retreat."},
	}}
	ctx := context.Background()

	_, err := h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "What should I prepare for the retreat?")
	require.NoError(t, err)
	_, err = h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "Anything else about the retreat?")
	require.NoError(t, err)

	require.Len(t, h.retriever.shown, 2)
	assert.Empty(t, h.retriever.shown[0])
	assert.True(t, h.retriever.shown[1]["n1"])
}

func TestLogCommandStartsFreshConversation(t *testing.T) {
	h := newHarness()
	h.extractor.record = models.EvidenceRecord{ID: "ev1", Summary: "Noted."}
	h.retriever.bundle = retrieval.Bundle{Items: []retrieval.Item{
		{Kind: "note", ID: "n1", Source: "Logged 2026-08-20", Text: "Sarah mentioned the retreat."},
	}}
	ctx := context.Background()

	// Seed session state that a new conversation must not carry.
	_, err := h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "What should I prepare for the retreat?")
	require.NoError(t, err)

	_, err = h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "Log: quick chat with Dave after rehearsal")
	require.NoError(t, err)

	cc, err := h.store.GetContext(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, cc.TurnCount)
	assert.Empty(t, cc.ShownEvidenceIDs)
}

func TestModelFailureReturnsCannedReply(t *testing.T) {
	h := newHarness()
	h.model.err = errors.New("completion failed")

	reply, err := h.assistant.HandleMessage(context.Background(), "s1", "t1", "leader", "What should I prepare for the retreat?")
	require.NoError(t, err)
	assert.Equal(t, troubleReply, reply)
}

func TestSongSelectionBetweenCatalogMatches(t *testing.T) {
	h := newHarness()
	h.dir.songs = []directory.Song{
		{ID: "s1", Title: "Way Maker", Author: "Sinach"},
		{ID: "s2", Title: "Way Maker (Live)", Author: "Leeland"},
	}
	ctx := context.Background()

	reply, err := h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "What key is Way Maker in?")
	require.NoError(t, err)
	assert.Contains(t, reply, "more than one song")
	assert.Contains(t, reply, "1. Way Maker")

	reply, err = h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "2")
	require.NoError(t, err)
	assert.Equal(t, "Here's what I found.", reply)
	require.Len(t, h.model.systems, 1)
	assert.Contains(t, h.model.systems[0], "Way Maker (Live)")
}

func TestSetlistQueryListsSongSet(t *testing.T) {
	h := newHarness()
	h.dir.plan = &directory.Plan{
		ID:              "p1",
		ServiceTypeName: "Morning Main",
		Date:            time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		TeamMembers:     []directory.TeamMember{{Name: "John Smith", TeamName: "Band", Position: "Drums", Status: "C"}},
		Songs: []directory.PlanSong{
			{Title: "Way Maker", Key: "E"},
			{Title: "Gratitude", Key: "B"},
		},
	}

	reply, err := h.assistant.HandleMessage(context.Background(), "s1", "t1", "leader", "What songs did we play last Sunday?")
	require.NoError(t, err)
	assert.Equal(t, "Here's what I found.", reply)
	require.Len(t, h.model.systems, 1)
	assert.Contains(t, h.model.systems[0], "[SETLIST]")
	assert.Contains(t, h.model.systems[0], "Way Maker (Key: E)")
	assert.Contains(t, h.model.systems[0], "Gratitude")
	assert.NotContains(t, h.model.systems[0], "John Smith")
}

func TestSongMisspellingOffersSuggestions(t *testing.T) {
	h := newHarness()
	h.dir.songs = []directory.Song{{ID: "s1", Title: "Way Maker", Author: "Sinach"}}

	reply, err := h.assistant.HandleMessage(context.Background(), "s1", "t1", "leader", "What key is Way Makr in?")
	require.NoError(t, err)
	assert.Equal(t, "Here's what I found.", reply)
	require.Len(t, h.model.systems, 1)
	assert.Contains(t, h.model.systems[0], "[SONG SUGGESTIONS]")
	assert.Contains(t, h.model.systems[0], "Way Maker by Sinach")
}

func TestSingleWordMissStaysCanned(t *testing.T) {
	h := newHarness()
	h.dir.songs = []directory.Song{{ID: "s1", Title: "Way Maker", Author: "Sinach"}}

	reply, err := h.assistant.HandleMessage(context.Background(), "s1", "t1", "leader", "What key is Oceans in?")
	require.NoError(t, err)
	assert.Contains(t, reply, `couldn't find "oceans"`)
	assert.Empty(t, h.model.systems)
}

func TestAggregateTabulatesLoggedFacts(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.store.PutEntity(ctx, models.Entity{ID: "e1", TenantID: "t1", DisplayName: "Sarah Miller", Active: true}))
	require.NoError(t, h.store.PutEvidence(ctx, models.EvidenceRecord{
		ID:              "ev1",
		TenantID:        "t1",
		RawText:         "note",
		Facts:           models.Facts{Hobbies: []string{"hiking", "painting"}},
		LinkedEntityIDs: []string{"e1"},
	}))

	reply, err := h.assistant.HandleMessage(ctx, "s1", "t1", "leader", "What are everyone's hobbies?")
	require.NoError(t, err)
	assert.Equal(t, "Here's what I found.", reply)
	require.Len(t, h.model.systems, 1)
	assert.Contains(t, h.model.systems[0], "TEAM HOBBIES")
	assert.Contains(t, h.model.systems[0], "Sarah Miller: hiking, painting")
}

func TestTenantsDoNotShareAggregates(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.store.PutEntity(ctx, models.Entity{ID: "e1", TenantID: "t1", DisplayName: "Sarah Miller", Active: true}))
	require.NoError(t, h.store.PutEvidence(ctx, models.EvidenceRecord{
		ID: "ev1", TenantID: "t1", RawText: "note",
		Facts:           models.Facts{Hobbies: []string{"hiking"}},
		LinkedEntityIDs: []string{"e1"},
	}))

	_, err := h.assistant.HandleMessage(ctx, "s2", "t2", "leader", "What are everyone's hobbies?")
	require.NoError(t, err)
	require.Len(t, h.model.systems, 1)
	assert.NotContains(t, h.model.systems[0], "hiking")
	assert.Contains(t, h.model.systems[0], "No hobbies recorded")
}

func TestFactCorrectionRequiresText(t *testing.T) {
	h := newHarness()
	assert.Error(t, h.assistant.LogFactCorrection(context.Background(), "t1", "ev1", "   "))
}
