package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/avandyck/shepherd/internal/compose"
	"github.com/avandyck/shepherd/internal/dates"
	"github.com/avandyck/shepherd/internal/dialog"
	"github.com/avandyck/shepherd/internal/directory"
	"github.com/avandyck/shepherd/internal/intent"
	"github.com/avandyck/shepherd/internal/metrics"
	"github.com/avandyck/shepherd/internal/models"
	"github.com/avandyck/shepherd/internal/resolve"
	"github.com/avandyck/shepherd/internal/retrieval"
)

// pinnedEntity carries an already-resolved person through a re-run of
// a clarified request.
type pinnedEntity struct {
	ID   string
	Name string
}

func (a *Assistant) handleIntent(ctx context.Context, cctx *models.ConversationContext, tenantID, userRef, text string, c intent.Result, pinned *pinnedEntity) (string, error) {
	switch c.Intent {
	case intent.IntentLog:
		return a.handleLog(ctx, cctx, tenantID, userRef, text)
	case intent.IntentFollowUp:
		return a.handleFollowUpCommand(ctx, cctx, tenantID, text, c, pinned)
	case intent.IntentAmbiguous:
		return a.askAmbiguous(cctx, text, c)
	case intent.IntentTeamContact:
		return a.handleTeamContact(ctx, cctx, tenantID, userRef, text, c)
	case intent.IntentBlockout:
		return a.handleBlockout(ctx, cctx, tenantID, userRef, text, c)
	case intent.IntentPersonData:
		return a.handlePersonData(ctx, cctx, tenantID, userRef, text, c, pinned)
	case intent.IntentSong:
		return a.handleSong(ctx, cctx, tenantID, userRef, text, c, "")
	case intent.IntentAnalytics, intent.IntentAggregate:
		return a.handleAggregate(ctx, cctx, tenantID, userRef, text, c)
	default:
		return a.handleGeneral(ctx, cctx, tenantID, userRef, text, c)
	}
}

// handleLog runs the extraction pipeline on a logged note.
func (a *Assistant) handleLog(ctx context.Context, cctx *models.ConversationContext, tenantID, userRef, text string) (string, error) {
	rec, err := a.extractor.ProcessNote(ctx, tenantID, userRef, text)
	if err != nil {
		return "", fmt.Errorf("log interaction: %w", err)
	}

	for _, id := range rec.LinkedEntityIDs {
		cctx.TouchEntity(id)
	}

	var b strings.Builder
	b.WriteString("Got it, I logged that interaction.")
	if rec.Summary != "" {
		b.WriteString(" " + rec.Summary)
	}
	if len(rec.PendingEntityNames) > 0 {
		fmt.Fprintf(&b, "\nI wasn't sure who you meant by %s, more than one person matches. You can tell me the full name and I'll link it.",
			strings.Join(rec.PendingEntityNames, ", "))
	}

	// A follow-up-worthy note offers the reminder flow.
	if rec.Facts.FollowUpNeeded && len(rec.LinkedEntityIDs) == 1 {
		entity, err := a.store.GetEntity(ctx, tenantID, rec.LinkedEntityIDs[0])
		if err == nil {
			cctx.Pending = &models.PendingOp{
				Kind:         models.PendingFollowUpDetails,
				OriginalText: text,
				FollowUp:     &models.FollowUpDraft{EntityID: entity.ID, EntityName: entity.DisplayName},
			}
			fmt.Fprintf(&b, "\nThis sounds worth following up on. %s", dialog.Prompt(cctx.Pending, ""))
		}
	}
	return b.String(), nil
}

// handleFollowUpCommand starts the slot-filling flow for an explicit
// follow-up request.
func (a *Assistant) handleFollowUpCommand(ctx context.Context, cctx *models.ConversationContext, tenantID, text string, c intent.Result, pinned *pinnedEntity) (string, error) {
	if pinned != nil {
		cctx.Pending = &models.PendingOp{
			Kind:         models.PendingFollowUpDetails,
			OriginalText: text,
			FollowUp:     &models.FollowUpDraft{EntityID: pinned.ID, EntityName: pinned.Name},
		}
		return dialog.Prompt(cctx.Pending, ""), nil
	}

	if c.Person == "" {
		return "Who is the follow-up for? Tell me like \"create a follow-up for Sarah\".", nil
	}

	result, err := a.resolver.Resolve(ctx, tenantID, c.Person)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", c.Person, err)
	}
	switch result.Outcome {
	case resolve.One:
		entity := result.Matches[0].Entity
		cctx.TouchEntity(entity.ID)
		cctx.Pending = &models.PendingOp{
			Kind:         models.PendingFollowUpDetails,
			OriginalText: text,
			FollowUp:     &models.FollowUpDraft{EntityID: entity.ID, EntityName: entity.DisplayName},
		}
		return dialog.Prompt(cctx.Pending, ""), nil
	case resolve.Many:
		return a.askWhichPerson(cctx, text, c.Person, result.Matches), nil
	default:
		return fmt.Sprintf("I don't have anyone named %s in my records yet. Log an interaction with them first and I can set up follow-ups.", c.Person), nil
	}
}

// askAmbiguous parks the song-or-person question.
func (a *Assistant) askAmbiguous(cctx *models.ConversationContext, text string, c intent.Result) (string, error) {
	interps := make([]models.Interpretation, 0, len(c.Interpretations))
	for _, in := range c.Interpretations {
		interps = append(interps, models.Interpretation{Kind: in.Kind, Value: in.Value})
	}
	cctx.Pending = &models.PendingOp{
		Kind:            models.PendingEntityClarification,
		OriginalText:    text,
		Interpretations: interps,
	}
	return dialog.Prompt(cctx.Pending, ""), nil
}

// askWhichPerson parks an entity clarification with the candidates.
func (a *Assistant) askWhichPerson(cctx *models.ConversationContext, text, name string, matches []resolve.Match) string {
	candidates := make([]models.Candidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, models.Candidate{EntityID: m.Entity.ID, DisplayName: m.Entity.DisplayName})
	}
	cctx.Pending = &models.PendingOp{
		Kind:         models.PendingEntityClarification,
		OriginalText: text,
		Candidates:   candidates,
	}
	return dialog.Prompt(cctx.Pending, name)
}

// resolveDateRef turns the extracted phrase into a range, defaulting
// when the question names no date.
func (a *Assistant) resolveDateRef(ref, fallback string) dates.Range {
	if ref == "" {
		ref = fallback
	}
	if r, ok := dates.Resolve(ref, a.now(), a.cfg.Holidays); ok {
		return r
	}
	r, _ := dates.Resolve(fallback, a.now(), a.cfg.Holidays)
	return r
}

// handleTeamContact answers "contact info for everyone serving on X".
func (a *Assistant) handleTeamContact(ctx context.Context, cctx *models.ConversationContext, tenantID, userRef, text string, c intent.Result) (string, error) {
	want := a.resolveDateRef(c.DateRef, "this weekend")
	serviceType := intent.DetectServiceType(text, a.cfg.ServiceTypes)

	var sections []compose.Section
	var degraded []string

	plan, err := a.findPlan(ctx, want, serviceType)
	if err != nil {
		a.logger.Warn("plan lookup failed", "error", err)
		degraded = append(degraded, "service schedule")
	} else if plan == nil {
		degraded = append(degraded, "service schedule (no plan near "+rangeText(want)+")")
	} else {
		sections = append(sections, compose.Section{Title: "SERVICE TEAM SCHEDULE", Body: stripBrackets(compose.TeamSchedule(plan))})
		sections = append(sections, a.teamContactSections(ctx, plan, c.Subtype)...)
	}

	if len(degraded) > 0 {
		sections = append(sections, degradedSection(degraded))
	}
	return a.callModel(ctx, cctx, userRef, text, sections)
}

// teamContactSections pulls contact records for the scheduled team.
// Lookups run under the directory throttle; any single failure skips
// that person.
func (a *Assistant) teamContactSections(ctx context.Context, plan *directory.Plan, contactKind string) []compose.Section {
	var sections []compose.Section
	for _, member := range plan.TeamMembers {
		details, err := a.findPersonDetails(ctx, member.Name)
		if err != nil {
			a.logger.Warn("contact lookup failed", "person", member.Name, "error", err)
			continue
		}
		sections = append(sections, compose.Section{
			Title: "PLANNING CENTER DATA for " + details.Name,
			Body:  stripBrackets(compose.PersonContact(details, contactKind)),
		})
	}
	return sections
}

func (a *Assistant) handleBlockout(ctx context.Context, cctx *models.ConversationContext, tenantID, userRef, text string, c intent.Result) (string, error) {
	var sections []compose.Section
	var degraded []string

	switch c.Subtype {
	case "person_blockouts":
		person, err := a.findDirectoryPerson(ctx, c.Person)
		if err != nil {
			degraded = append(degraded, "blockout data for "+c.Person)
			break
		}
		window := a.blockoutWindow(c.DateRef)
		pb, err := a.lookupWith(func() (string, error) {
			pb, err := a.dir.PersonBlockouts(ctx, person, window)
			if err != nil {
				return "", err
			}
			return compose.PersonBlockoutsBlock(pb), nil
		})
		if err != nil {
			degraded = append(degraded, "blockout data for "+c.Person)
			break
		}
		sections = append(sections, compose.Section{Title: "BLOCKOUT DATA", Body: stripBrackets(pb)})

	case "date_blockouts":
		want := a.resolveDateRef(c.DateRef, "this weekend")
		block, err := a.lookupWith(func() (string, error) {
			db, err := a.dir.DateBlockouts(ctx, want)
			if err != nil {
				return "", err
			}
			return compose.DateBlockoutsBlock(db), nil
		})
		if err != nil {
			degraded = append(degraded, "blockout data")
			break
		}
		sections = append(sections, compose.Section{Title: "BLOCKOUT DATA", Body: stripBrackets(block)})

	case "availability_check":
		person, err := a.findDirectoryPerson(ctx, c.Person)
		if err != nil {
			degraded = append(degraded, "availability for "+c.Person)
			break
		}
		want := a.resolveDateRef(c.DateRef, "this weekend")
		block, err := a.lookupWith(func() (string, error) {
			check, err := a.dir.CheckAvailability(ctx, person, want)
			if err != nil {
				return "", err
			}
			return compose.AvailabilityBlock(check), nil
		})
		if err != nil {
			degraded = append(degraded, "availability for "+c.Person)
			break
		}
		sections = append(sections, compose.Section{Title: "AVAILABILITY", Body: stripBrackets(block)})

	case "team_availability":
		want := a.resolveDateRef(c.DateRef, "this weekend")
		block, err := a.lookupWith(func() (string, error) {
			ta, err := a.dir.TeamAvailability(ctx, want)
			if err != nil {
				return "", err
			}
			return compose.TeamAvailabilityBlock(ta), nil
		})
		if err != nil {
			degraded = append(degraded, "team availability")
			break
		}
		sections = append(sections, compose.Section{Title: "TEAM AVAILABILITY", Body: stripBrackets(block)})
	}

	if len(degraded) > 0 {
		sections = append(sections, degradedSection(degraded))
	}
	return a.callModel(ctx, cctx, userRef, text, sections)
}

func (a *Assistant) handlePersonData(ctx context.Context, cctx *models.ConversationContext, tenantID, userRef, text string, c intent.Result, pinned *pinnedEntity) (string, error) {
	name := c.Person
	if pinned != nil {
		name = pinned.Name
	}
	if name == "" {
		if resolved := a.lastDiscussedName(ctx, cctx, tenantID); resolved != "" {
			name = resolved
		} else {
			return "Who are you asking about? Give me a name and I'll look them up.", nil
		}
	}

	// Roster check first: a first-name collision needs clarifying
	// before any lookup.
	if pinned == nil {
		result, err := a.resolver.Resolve(ctx, tenantID, name)
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", name, err)
		}
		if result.Outcome == resolve.Many {
			return a.askWhichPerson(cctx, text, name, result.Matches), nil
		}
		if result.Outcome == resolve.One {
			cctx.TouchEntity(result.Matches[0].Entity.ID)
			name = result.Matches[0].Entity.DisplayName
		}
	}

	var sections []compose.Section
	var degraded []string

	details, err := a.findPersonDetails(ctx, name)
	if err != nil {
		a.logger.Warn("directory person lookup failed", "person", name, "error", err)
		degraded = append(degraded, "directory record for "+name)
	} else {
		sections = append(sections, compose.Section{
			Title: "PLANNING CENTER DATA for " + details.Name,
			Body:  stripBrackets(compose.PersonContact(details, c.Subtype)),
		})
	}

	// Logged notes round out the directory record.
	if noteSections, ids := a.retrieveSections(ctx, cctx, tenantID, text, a.entityScope(ctx, tenantID, name)); len(noteSections) > 0 {
		sections = append(sections, noteSections...)
		cctx.MarkShown(ids...)
	}

	if len(degraded) > 0 {
		sections = append(sections, degradedSection(degraded))
	}
	return a.callModel(ctx, cctx, userRef, text, sections)
}

// handleSong answers catalog and schedule questions. forcedTitle
// carries a selection made in a clarification turn.
func (a *Assistant) handleSong(ctx context.Context, cctx *models.ConversationContext, tenantID, userRef, text string, c intent.Result, forcedTitle string) (string, error) {
	if c.Subtype == "setlist" {
		want := a.resolveDateRef(c.DateRef, "this sunday")
		serviceType := intent.DetectServiceType(text, a.cfg.ServiceTypes)
		plan, err := a.setlist(ctx, want, serviceType)
		var sections []compose.Section
		if err != nil || plan == nil {
			if err != nil {
				a.logger.Warn("setlist lookup failed", "error", err)
			}
			sections = append(sections, degradedSection([]string{"setlist for " + rangeText(want)}))
		} else {
			sections = append(sections, compose.Section{Title: "SETLIST", Body: stripBrackets(compose.SetlistBlock(plan))})
		}
		return a.callModel(ctx, cctx, userRef, text, sections)
	}

	if c.Subtype == "team_schedule" {
		want := a.resolveDateRef(c.DateRef, "this sunday")
		serviceType := intent.DetectServiceType(text, a.cfg.ServiceTypes)
		plan, err := a.findPlan(ctx, want, serviceType)
		var sections []compose.Section
		if err != nil || plan == nil {
			if err != nil {
				a.logger.Warn("plan lookup failed", "error", err)
			}
			sections = append(sections, degradedSection([]string{"service schedule for " + rangeText(want)}))
		} else {
			sections = append(sections, compose.Section{Title: "SERVICE TEAM SCHEDULE", Body: stripBrackets(compose.TeamSchedule(plan))})
		}
		return a.callModel(ctx, cctx, userRef, text, sections)
	}

	title := forcedTitle
	if title == "" {
		title = c.Title
	}
	if title == "" {
		return "Which song do you mean? Give me the title and I'll look it up.", nil
	}

	var songs []directory.Song
	err := a.metrics.Timed(metrics.OpDirectoryLookup, func() error {
		var err error
		songs, err = a.dir.FindSong(ctx, title)
		return err
	})
	if err != nil {
		a.logger.Warn("song lookup failed", "title", title, "error", err)
		return a.callModel(ctx, cctx, userRef, text, []compose.Section{degradedSection([]string{"song catalog"})})
	}

	switch {
	case len(songs) == 0:
		if near := a.songSuggestions(ctx, title); len(near) > 0 {
			sections := []compose.Section{{Title: "SONG SUGGESTIONS", Body: stripBrackets(compose.SuggestionsBlock(near))}}
			return a.callModel(ctx, cctx, userRef, text, sections)
		}
		return fmt.Sprintf("I couldn't find %q in the song catalog. Double-check the title?", title), nil
	case len(songs) > 1 && forcedTitle == "":
		titles := make([]string, 0, len(songs))
		for _, s := range songs {
			titles = append(titles, s.Title)
		}
		cctx.Pending = &models.PendingOp{
			Kind:         models.PendingSongSelection,
			OriginalText: text,
			SongOptions:  titles,
		}
		return dialog.Prompt(cctx.Pending, ""), nil
	}

	song := songs[0]
	if forcedTitle != "" {
		for _, s := range songs {
			if strings.EqualFold(s.Title, forcedTitle) {
				song = s
				break
			}
		}
	}

	sections := []compose.Section{{Title: "SONG DETAILS", Body: stripBrackets(compose.SongDetailsBlock(song))}}
	if c.Subtype == "song_history" {
		usage, err := a.dir.SongUsage(ctx, song)
		if err != nil {
			a.logger.Warn("song usage lookup failed", "title", song.Title, "error", err)
			sections = append(sections, degradedSection([]string{"song usage history"}))
		} else {
			sections = append(sections, compose.Section{Title: "SONG USAGE HISTORY", Body: stripBrackets(compose.UsageHistoryBlock(usage))})
		}
	}
	return a.callModel(ctx, cctx, userRef, text, sections)
}

// handleAggregate tabulates a fact category across logged evidence.
func (a *Assistant) handleAggregate(ctx context.Context, cctx *models.ConversationContext, tenantID, userRef, text string, c intent.Result) (string, error) {
	records, err := a.store.ListEvidence(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("list evidence: %w", err)
	}
	entities, err := a.store.ListEntities(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("list entities: %w", err)
	}
	names := make(map[string]string, len(entities))
	for _, e := range entities {
		names[e.ID] = e.DisplayName
	}

	category := c.Subtype
	if c.Intent == intent.IntentAnalytics {
		category = analyticsCategory(c.Subtype)
	}
	rows := aggregateRows(records, names, category)
	sections := []compose.Section{{
		Title: "TEAM " + strings.ToUpper(category),
		Body:  stripBrackets(compose.AggregateBlock(category, rows)),
	}}
	return a.callModel(ctx, cctx, userRef, text, sections)
}

// handleGeneral is the default retrieval pass: notes plus documents.
func (a *Assistant) handleGeneral(ctx context.Context, cctx *models.ConversationContext, tenantID, userRef, text string, c intent.Result) (string, error) {
	sections, ids := a.retrieveSections(ctx, cctx, tenantID, text, nil)
	cctx.MarkShown(ids...)
	return a.callModel(ctx, cctx, userRef, text, sections)
}

// retrieveSections runs the retrieval engine and renders its bundle.
// It returns the note ids surfaced so the caller can mark them shown.
func (a *Assistant) retrieveSections(ctx context.Context, cctx *models.ConversationContext, tenantID, query string, entityIDs []string) ([]compose.Section, []string) {
	var bundle retrieval.Bundle
	err := a.metrics.Timed(metrics.OpRetrieval, func() error {
		var err error
		bundle, err = a.retriever.Retrieve(ctx, tenantID, query, entityIDs, shownSet(cctx))
		return err
	})
	if err != nil {
		a.logger.Warn("retrieval failed", "error", err)
		return []compose.Section{degradedSection([]string{"logged notes"})}, nil
	}

	var notes []compose.NoteItem
	var docSections []compose.Section
	var noteIDs []string
	for _, item := range bundle.Items {
		if item.Kind == "note" {
			notes = append(notes, compose.NoteItem{Source: item.Source, Text: item.Text})
			noteIDs = append(noteIDs, item.ID)
			continue
		}
		docSections = append(docSections, compose.Section{Title: "DOCUMENT: " + strings.ToUpper(item.Source), Body: item.Text})
	}

	var sections []compose.Section
	if block := compose.NotesBlock(notes); block != "" {
		sections = append(sections, compose.Section{Title: "LOGGED NOTES", Body: stripBrackets(block)})
	}
	sections = append(sections, docSections...)
	if len(bundle.Degraded) > 0 {
		sections = append(sections, degradedSection(bundle.Degraded))
	}
	return sections, noteIDs
}

// entityScope returns the entity ids retrieval should stay inside for
// a person-focused question.
func (a *Assistant) entityScope(ctx context.Context, tenantID, name string) []string {
	result, err := a.resolver.Resolve(ctx, tenantID, name)
	if err != nil || result.Outcome != resolve.One {
		return nil
	}
	return []string{result.Matches[0].Entity.ID}
}

// lastDiscussedName backs pronoun-ish questions with the most recently
// discussed entity.
func (a *Assistant) lastDiscussedName(ctx context.Context, cctx *models.ConversationContext, tenantID string) string {
	if len(cctx.DiscussedEntityIDs) == 0 {
		return ""
	}
	entity, err := a.store.GetEntity(ctx, tenantID, cctx.DiscussedEntityIDs[0])
	if err != nil {
		return ""
	}
	return entity.DisplayName
}

// findDirectoryPerson resolves one name in the external directory,
// preferring an exact match over the first result.
func (a *Assistant) findDirectoryPerson(ctx context.Context, name string) (directory.Person, error) {
	var people []directory.Person
	err := a.metrics.Timed(metrics.OpDirectoryLookup, func() error {
		var err error
		people, err = a.dir.FindPerson(ctx, name)
		return err
	})
	if err != nil {
		return directory.Person{}, err
	}
	if len(people) == 0 {
		return directory.Person{}, fmt.Errorf("person %q: not in directory", name)
	}
	for _, p := range people {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return people[0], nil
}

func (a *Assistant) findPersonDetails(ctx context.Context, name string) (directory.PersonDetails, error) {
	person, err := a.findDirectoryPerson(ctx, name)
	if err != nil {
		return directory.PersonDetails{}, err
	}
	var details directory.PersonDetails
	err = a.metrics.Timed(metrics.OpDirectoryLookup, func() error {
		var err error
		details, err = a.dir.PersonDetails(ctx, person.ID)
		return err
	})
	return details, err
}

func (a *Assistant) findPlan(ctx context.Context, want dates.Range, serviceType string) (*directory.Plan, error) {
	var plan *directory.Plan
	err := a.metrics.Timed(metrics.OpDirectoryLookup, func() error {
		var err error
		plan, err = a.dir.FindPlan(ctx, want, serviceType)
		return err
	})
	return plan, err
}

func (a *Assistant) setlist(ctx context.Context, want dates.Range, serviceType string) (*directory.Plan, error) {
	var plan *directory.Plan
	err := a.metrics.Timed(metrics.OpDirectoryLookup, func() error {
		var err error
		plan, err = a.dir.Setlist(ctx, want, serviceType)
		return err
	})
	return plan, err
}

// songSuggestions retries a failed title search with just the first
// word so the reply can offer close catalog matches.
func (a *Assistant) songSuggestions(ctx context.Context, title string) []directory.Song {
	words := strings.Fields(title)
	if len(words) < 2 {
		return nil
	}
	var songs []directory.Song
	err := a.metrics.Timed(metrics.OpDirectoryLookup, func() error {
		var err error
		songs, err = a.dir.FindSong(ctx, words[0])
		return err
	})
	if err != nil {
		a.logger.Warn("song suggestion lookup failed", "title", title, "error", err)
		return nil
	}
	return songs
}

// lookupWith wraps a directory block build in the lookup metric.
func (a *Assistant) lookupWith(fn func() (string, error)) (string, error) {
	var block string
	err := a.metrics.Timed(metrics.OpDirectoryLookup, func() error {
		var err error
		block, err = fn()
		return err
	})
	return block, err
}

// commitFollowUp persists a completed slot-filling flow.
func (a *Assistant) commitFollowUp(ctx context.Context, tenantID string, draft *models.FollowUpDraft) (string, error) {
	f := models.FollowUp{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		EntityID:  draft.EntityID,
		Topic:     draft.Topic,
		DueDate:   *draft.DueDate,
		Status:    models.FollowUpPending,
		CreatedAt: a.now().UTC(),
	}
	if err := a.store.PutFollowUp(ctx, f); err != nil {
		return "", fmt.Errorf("save follow-up: %w", err)
	}
	return fmt.Sprintf("Done. I'll remind you to follow up with %s about %s on %s.",
		draft.EntityName, draft.Topic, dates.FormatDay(f.DueDate)), nil
}

func aggregateRows(records []models.EvidenceRecord, names map[string]string, category string) []compose.AggregateRow {
	var rows []compose.AggregateRow
	add := func(rec models.EvidenceRecord, value string) {
		if value == "" {
			return
		}
		name := "Unlinked note"
		if len(rec.LinkedEntityIDs) > 0 {
			if n, ok := names[rec.LinkedEntityIDs[0]]; ok {
				name = n
			}
		}
		rows = append(rows, compose.AggregateRow{Name: name, Value: value})
	}

	for _, rec := range records {
		switch category {
		case "food":
			add(rec, rec.Facts.Favorites["food"])
		case "hobbies":
			add(rec, strings.Join(rec.Facts.Hobbies, ", "))
		case "family":
			var parts []string
			for relation, who := range rec.Facts.Family {
				parts = append(parts, relation+": "+who)
			}
			add(rec, strings.Join(parts, "; "))
		case "birthday":
			add(rec, rec.Facts.Birthday)
		case "prayer":
			add(rec, strings.Join(rec.Facts.PrayerRequests, "; "))
		case "availability":
			add(rec, rec.Facts.Availability)
		case "feedback":
			add(rec, strings.Join(rec.Facts.Feedback, "; "))
		}
	}
	return rows
}

// analyticsCategory maps report subtypes onto the fact field that
// feeds them.
func analyticsCategory(subtype string) string {
	switch subtype {
	case "prayer", "care":
		return "prayer"
	case "engagement", "trends", "proactive":
		return "feedback"
	default:
		return "availability"
	}
}

func rangeText(r dates.Range) string {
	if r.Label != "" {
		return r.Label
	}
	return dates.FormatDay(r.Start)
}

// blockoutWindow defaults person blockout lookups to the next two
// months when no date was named.
func (a *Assistant) blockoutWindow(ref string) dates.Range {
	if ref != "" {
		if r, ok := dates.Resolve(ref, a.now(), a.cfg.Holidays); ok {
			return r
		}
	}
	today := a.now()
	return dates.Range{Start: today, End: today.AddDate(0, 0, 60), Label: "the next two months"}
}

// stripBrackets removes the block's own bracket markers; the composer
// re-wraps sections with its titles.
func stripBrackets(block string) string {
	lines := strings.Split(block, "\n")
	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
