// Package compose assembles the completion prompt: system
// instructions, bracketed evidence blocks, conversation history and
// the user message, kept under a size ceiling.
package compose

import (
	"fmt"
	"strings"
	"time"

	"github.com/avandyck/shepherd/internal/models"
)

const systemPrompt = `You are Shepherd, a team-care assistant for ministry team leaders. You help team members:
1. Log interactions with volunteers
2. Answer questions about volunteers based on logged interactions
3. Provide aggregate insights about the volunteer team

## Guidelines:
- Be warm, helpful, and pastoral in tone
- Protect volunteer privacy, only share information with authenticated team members
- When uncertain, say so rather than guessing
- Format responses clearly with relevant details
- If asked about a volunteer with no logged interactions, say so clearly
- Base answers on the records below; never invent names, dates, or contact details

## Context:
You have access to the following records for context:
%s

Current date: %s
Team member asking: %s`

// Section is one ranked evidence block. Sections arrive highest rank
// first; trimming removes from the tail.
type Section struct {
	Title string
	Body  string
}

// Render wraps the body in the bracket markers the model is prompted
// to cite.
func (s Section) Render() string {
	return fmt.Sprintf("[%s]\n%s\n[END %s]", s.Title, strings.TrimSpace(s.Body), s.Title)
}

type Options struct {
	HistoryTurns     int // last-N turns carried verbatim
	SummaryThreshold int // turn count at which the rolling summary replaces old history
	PromptCeiling    int // max characters across system + user prompt
}

type Composer struct {
	opts Options
}

func New(opts Options) *Composer {
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = 10
	}
	return &Composer{opts: opts}
}

// Request carries everything one completion needs.
type Request struct {
	UserName       string
	Now            time.Time
	Message        string
	Sections       []Section
	History        []models.Turn
	RollingSummary string
	TurnCount      int
}

// Build renders the system and user prompts. When the result exceeds
// the ceiling it drops oldest history turns first, then lowest-ranked
// sections; the current message is never trimmed.
func (c *Composer) Build(req Request) (system, user string) {
	history := c.recentHistory(req)
	sections := req.Sections

	for {
		system = c.renderSystem(req, sections)
		user = renderUser(req, history)
		if c.opts.PromptCeiling <= 0 || len(system)+len(user) <= c.opts.PromptCeiling {
			return system, user
		}
		if len(history) > 0 {
			history = history[1:]
			continue
		}
		if len(sections) > 0 {
			sections = sections[:len(sections)-1]
			continue
		}
		return system, user
	}
}

func (c *Composer) renderSystem(req Request, sections []Section) string {
	var context string
	if len(sections) == 0 {
		context = "No relevant records found."
	} else {
		rendered := make([]string, len(sections))
		for i, s := range sections {
			rendered[i] = s.Render()
		}
		context = strings.Join(rendered, "\n\n")
	}
	return fmt.Sprintf(systemPrompt, context, req.Now.Format("2006-01-02"), req.UserName)
}

// recentHistory returns the turns carried into the prompt. Past the
// summary threshold the rolling summary stands in for everything but
// the last two turns.
func (c *Composer) recentHistory(req Request) []models.Turn {
	history := req.History
	if req.RollingSummary != "" && req.TurnCount >= c.opts.SummaryThreshold && c.opts.SummaryThreshold > 0 {
		keep := 2
		if len(history) > keep {
			history = history[len(history)-keep:]
		}
		summarized := make([]models.Turn, 0, len(history)+1)
		summarized = append(summarized, models.Turn{Role: "assistant", Content: "Conversation so far: " + req.RollingSummary})
		return append(summarized, history...)
	}
	if len(history) > c.opts.HistoryTurns {
		history = history[len(history)-c.opts.HistoryTurns:]
	}
	return history
}

func renderUser(req Request, history []models.Turn) string {
	var b strings.Builder
	for _, turn := range history {
		switch turn.Role {
		case "assistant":
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(req.Message)
	return b.String()
}
