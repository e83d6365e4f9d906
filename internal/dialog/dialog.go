// Package dialog drives pending clarification flows: entity
// disambiguation, date confirmation, follow-up slot filling, and song
// selection. The machine interprets a reply against the session's
// pending operation and either resolves it, asks again, or abandons.
package dialog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avandyck/shepherd/internal/compose"
	"github.com/avandyck/shepherd/internal/config"
	"github.com/avandyck/shepherd/internal/dates"
	"github.com/avandyck/shepherd/internal/intent"
	"github.com/avandyck/shepherd/internal/models"
)

type Status int

const (
	// StatusNoPending means nothing was awaiting a reply.
	StatusNoPending Status = iota
	// StatusResolved carries a Resolution; the pending op is cleared.
	StatusResolved
	// StatusContinue means a slot was filled and the next question is
	// in Reply; the pending op stays.
	StatusContinue
	// StatusReask means the reply was not understood; Reply repeats
	// the question.
	StatusReask
	// StatusAbandonedTopic means the user moved on; the pending op is
	// cleared and the message should be handled fresh.
	StatusAbandonedTopic
	// StatusAbandonedLimit means too many failed clarifications; the
	// pending op is cleared and Reply apologizes.
	StatusAbandonedLimit
)

// Resolution is the answer a completed clarification produced.
type Resolution struct {
	Kind         models.PendingKind
	OriginalText string

	Interpretation string            // "song" or "person" for ambiguous fragments
	Entity         *models.Candidate // chosen candidate
	DateRef        string            // confirmed or corrected date phrase
	FollowUp       *models.FollowUpDraft
	Song           string
}

type Result struct {
	Status     Status
	Reply      string
	Resolution *Resolution
}

// Machine interprets replies against pending operations. It mutates
// the conversation context (Asks counter, slot fills, clearing) but
// never persists it.
type Machine struct {
	turnLimit int
	holidays  map[string]config.Holiday
}

func NewMachine(turnLimit int, holidays map[string]config.Holiday) *Machine {
	if turnLimit <= 0 {
		turnLimit = 3
	}
	return &Machine{turnLimit: turnLimit, holidays: holidays}
}

const apology = "I'm sorry, I'm still not sure what you meant. Let's start fresh. What can I help you with?"

// Handle processes one reply. When the result is StatusAbandonedTopic
// the caller should classify and answer the message as a new request.
func (m *Machine) Handle(cctx *models.ConversationContext, text string, now time.Time) Result {
	p := cctx.Pending
	if p == nil || p.Kind == models.PendingNone {
		return Result{Status: StatusNoPending}
	}

	if res, ok := m.interpret(p, text, now); ok {
		if res.Status == StatusResolved || res.Status == StatusAbandonedTopic {
			cctx.Pending = nil
		}
		return res
	}

	// Not a recognizable reply. A message that classifies as a real
	// request means the user moved on.
	if c := intent.Classify(text); c.Intent != intent.IntentGeneral {
		cctx.Pending = nil
		return Result{Status: StatusAbandonedTopic}
	}

	p.Asks++
	if p.Asks >= m.turnLimit {
		cctx.Pending = nil
		return Result{Status: StatusAbandonedLimit, Reply: apology}
	}
	return Result{Status: StatusReask, Reply: reask(p)}
}

func (m *Machine) interpret(p *models.PendingOp, text string, now time.Time) (Result, bool) {
	switch p.Kind {
	case models.PendingEntityClarification:
		return m.interpretClarification(p, text)
	case models.PendingDateConfirmation:
		return m.interpretDateConfirmation(p, text, now)
	case models.PendingFollowUpDetails:
		return m.interpretFollowUp(p, text, now)
	case models.PendingSongSelection:
		return m.interpretSongSelection(p, text)
	}
	return Result{}, false
}

func (m *Machine) interpretClarification(p *models.PendingOp, text string) (Result, bool) {
	if len(p.Interpretations) > 0 {
		if kind, ok := intent.ParseClarificationReply(text); ok {
			return resolved(&Resolution{
				Kind:           p.Kind,
				OriginalText:   p.OriginalText,
				Interpretation: kind,
			}), true
		}
	}
	if len(p.Candidates) > 0 {
		if chosen := pickCandidate(p.Candidates, text); chosen != nil {
			return resolved(&Resolution{
				Kind:         p.Kind,
				OriginalText: p.OriginalText,
				Entity:       chosen,
			}), true
		}
	}
	return Result{}, false
}

// pickCandidate accepts a 1-based number, a full name, or a unique
// name fragment.
func pickCandidate(candidates []models.Candidate, text string) *models.Candidate {
	reply := strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(text), ".!")))
	reply = strings.TrimPrefix(reply, "number ")

	if n, err := strconv.Atoi(reply); err == nil {
		if n >= 1 && n <= len(candidates) {
			return &candidates[n-1]
		}
		return nil
	}

	var match *models.Candidate
	for i := range candidates {
		name := strings.ToLower(candidates[i].DisplayName)
		if name == reply {
			return &candidates[i]
		}
		if strings.Contains(name, reply) && reply != "" {
			if match != nil {
				return nil // fragment matches more than one
			}
			match = &candidates[i]
		}
	}
	return match
}

var yesWords = []string{"yes", "yeah", "yep", "correct", "right", "sure", "that's right", "exactly"}

func (m *Machine) interpretDateConfirmation(p *models.PendingOp, text string, now time.Time) (Result, bool) {
	reply := strings.ToLower(strings.TrimSpace(text))
	for _, yes := range yesWords {
		if reply == yes || strings.HasPrefix(reply, yes+" ") || strings.HasPrefix(reply, yes+",") {
			return resolved(&Resolution{
				Kind:         p.Kind,
				OriginalText: p.OriginalText,
				DateRef:      p.DateRef,
			}), true
		}
	}
	// A correction like "no, I meant next Sunday" or a bare date
	// phrase replaces the guess.
	if ref := intent.ExtractDateRef(text); ref != "" {
		if _, ok := dates.Resolve(ref, now, m.holidays); ok {
			return resolved(&Resolution{
				Kind:         p.Kind,
				OriginalText: p.OriginalText,
				DateRef:      ref,
			}), true
		}
	}
	return Result{}, false
}

func (m *Machine) interpretFollowUp(p *models.PendingOp, text string, now time.Time) (Result, bool) {
	draft := p.FollowUp
	if draft == nil {
		return Result{}, false
	}

	if draft.Topic == "" {
		// Anything that is not a brand-new request fills the topic
		// slot.
		if c := intent.Classify(text); c.Intent != intent.IntentGeneral {
			return Result{Status: StatusAbandonedTopic}, true
		}
		topic := strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "."))
		if topic == "" {
			return Result{}, false
		}
		draft.Topic = topic
		return Result{
			Status: StatusContinue,
			Reply:  fmt.Sprintf("Got it. When should I remind you to follow up with %s about %s?", draft.EntityName, draft.Topic),
		}, true
	}

	if draft.DueDate == nil {
		ref := intent.ExtractDateRef(text)
		if ref == "" {
			ref = strings.TrimSpace(text)
		}
		var due time.Time
		if strings.ToLower(strings.TrimSpace(ref)) == "next week" {
			// A reminder "next week" means a week from today, not the
			// start of the next calendar week.
			due = day(now).AddDate(0, 0, 7)
		} else {
			r, ok := dates.Resolve(ref, now, m.holidays)
			if !ok {
				return Result{}, false
			}
			due = r.Start
		}
		draft.DueDate = &due
		return resolved(&Resolution{
			Kind:         p.Kind,
			OriginalText: p.OriginalText,
			FollowUp:     draft,
		}), true
	}

	return Result{}, false
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (m *Machine) interpretSongSelection(p *models.PendingOp, text string) (Result, bool) {
	reply := strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(text), ".!?")))
	reply = strings.TrimPrefix(reply, "number ")

	if n, err := strconv.Atoi(reply); err == nil {
		if n >= 1 && n <= len(p.SongOptions) {
			return resolved(&Resolution{
				Kind:         p.Kind,
				OriginalText: p.OriginalText,
				Song:         p.SongOptions[n-1],
			}), true
		}
		return Result{}, false
	}

	var match string
	for _, title := range p.SongOptions {
		lower := strings.ToLower(title)
		if lower == reply {
			return resolved(&Resolution{Kind: p.Kind, OriginalText: p.OriginalText, Song: title}), true
		}
		if reply != "" && strings.Contains(lower, reply) {
			if match != "" {
				return Result{}, false
			}
			match = title
		}
	}
	if match != "" {
		return resolved(&Resolution{Kind: p.Kind, OriginalText: p.OriginalText, Song: match}), true
	}
	return Result{}, false
}

func resolved(res *Resolution) Result {
	return Result{Status: StatusResolved, Resolution: res}
}

// Prompt renders the opening question for a pending operation.
func Prompt(p *models.PendingOp, entityName string) string {
	switch p.Kind {
	case models.PendingEntityClarification:
		if len(p.Interpretations) > 0 {
			return fmt.Sprintf("Just to check, did you mean the song %q or a person named %s?",
				p.Interpretations[0].Value, p.Interpretations[0].Value)
		}
		return compose.ClarifyPrompt(entityName, p.Candidates)
	case models.PendingDateConfirmation:
		return fmt.Sprintf("Did you mean %s?", p.DateRef)
	case models.PendingFollowUpDetails:
		if p.FollowUp != nil && p.FollowUp.Topic == "" {
			return fmt.Sprintf("What should the follow-up with %s be about?", p.FollowUp.EntityName)
		}
		return "When should I remind you?"
	case models.PendingSongSelection:
		var b strings.Builder
		b.WriteString("I found more than one song. Which one did you mean?\n")
		for i, title := range p.SongOptions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		}
		b.WriteString("Reply with a number or the title.")
		return b.String()
	}
	return ""
}

func reask(p *models.PendingOp) string {
	switch p.Kind {
	case models.PendingEntityClarification:
		if len(p.Interpretations) > 0 {
			return fmt.Sprintf("Sorry, I didn't catch that. Did you mean the song %q or a person? You can say \"the song\" or \"the person\".",
				p.Interpretations[0].Value)
		}
		return "Sorry, I didn't catch that. " + compose.ClarifyPrompt("that", p.Candidates)
	case models.PendingDateConfirmation:
		return fmt.Sprintf("Sorry, I didn't catch that. Did you mean %s? A yes, or the exact date, works.", p.DateRef)
	case models.PendingFollowUpDetails:
		if p.FollowUp != nil && p.FollowUp.Topic == "" {
			return "Sorry, I didn't catch that. What should the follow-up be about?"
		}
		return "Sorry, I didn't catch that. When should I remind you? Something like \"next week\" or \"December 14th\" works."
	case models.PendingSongSelection:
		return "Sorry, I didn't catch that. Reply with the number or the song title."
	}
	return apology
}
