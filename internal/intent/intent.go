// Package intent classifies free-text messages into domain intents.
//
// Classification is pure and deterministic: an ordered table of
// category checks is evaluated top to bottom and the first hit wins.
// Explicit commands outrank the ambiguous title-or-person check, which
// outranks the structured-data categories, which outrank the catch-all
// analytics/aggregate categories. A message that matches nothing is
// returned as IntentGeneral, never as an error.
package intent

import "strings"

// Intent is the classified purpose of a user message.
type Intent string

const (
	// IntentLog logs a new interaction note.
	IntentLog Intent = "log"
	// IntentFollowUp starts the follow-up reminder flow.
	IntentFollowUp Intent = "follow_up"
	// IntentAmbiguous carries two plausible interpretations; the
	// dialogue layer decides or asks.
	IntentAmbiguous Intent = "ambiguous"
	// IntentTeamContact asks for contact info of everyone serving on
	// a date.
	IntentTeamContact Intent = "team_contact"
	// IntentBlockout asks about blockout dates or availability.
	IntentBlockout Intent = "blockout"
	// IntentPersonData asks for a person's directory data or serving
	// history.
	IntentPersonData Intent = "person_data"
	// IntentSong asks about songs, setlists or the team schedule.
	IntentSong Intent = "song"
	// IntentDocument asks about uploaded documents / procedures.
	IntentDocument Intent = "document"
	// IntentAnalytics asks for a team report.
	IntentAnalytics Intent = "analytics"
	// IntentAggregate asks for a fact tabulated across the team.
	IntentAggregate Intent = "aggregate"
	// IntentGeneral is the default retrieval pass.
	IntentGeneral Intent = "general"
)

// Interpretation is one reading of an ambiguous fragment.
type Interpretation struct {
	Kind  string // "song" or "person"
	Value string
}

// Result is the classifier output. Rank is the priority-table position
// that matched (lower is stronger); IntentGeneral carries the highest
// rank.
type Result struct {
	Intent  Intent
	Subtype string
	Rank    int

	// Extracted fragments, populated per category.
	Person          string
	Title           string
	DateRef         string
	Interpretations []Interpretation
}

// Classify evaluates the priority table against a raw message.
func Classify(text string) Result {
	msg := normalize(text)

	if isLogCommand(msg) {
		return Result{Intent: IntentLog, Rank: 0}
	}
	if ok, person := followUpCommand(msg); ok {
		return Result{Intent: IntentFollowUp, Rank: 1, Person: person}
	}
	if ok, fragment := ambiguousTitleOrPerson(msg); ok {
		return Result{
			Intent: IntentAmbiguous,
			Rank:   2,
			Title:  fragment,
			Person: fragment,
			Interpretations: []Interpretation{
				{Kind: "song", Value: fragment},
				{Kind: "person", Value: fragment},
			},
		}
	}
	if ok, contactType, dateRef := compoundTeamContact(msg); ok {
		return Result{Intent: IntentTeamContact, Rank: 3, Subtype: contactType, DateRef: dateRef}
	}
	if ok, subtype, person, dateRef := blockoutQuery(msg); ok {
		return Result{Intent: IntentBlockout, Rank: 4, Subtype: subtype, Person: person, DateRef: dateRef}
	}
	if ok, subtype, person := personDataQuery(msg); ok {
		return Result{Intent: IntentPersonData, Rank: 5, Subtype: subtype, Person: person}
	}
	if ok, subtype, extracted := songQuery(msg); ok {
		r := Result{Intent: IntentSong, Rank: 6, Subtype: subtype, Title: extracted}
		r.DateRef = ExtractDateRef(msg)
		return r
	}
	if isDocumentQuery(msg) {
		return Result{Intent: IntentDocument, Rank: 7}
	}
	if ok, reportType := analyticsQuery(msg); ok {
		return Result{Intent: IntentAnalytics, Rank: 8, Subtype: reportType}
	}
	if ok, category := aggregateQuestion(msg); ok {
		return Result{Intent: IntentAggregate, Rank: 9, Subtype: category}
	}

	return Result{Intent: IntentGeneral, Rank: 10}
}

// normalize lowercases and collapses whitespace; punctuation is kept
// because several patterns anchor on it.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
