// Package assistant wires the pipeline together: pending-state check,
// classification, entity resolution, retrieval, external lookups, and
// response composition, all under the per-session writer.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avandyck/shepherd/internal/compose"
	"github.com/avandyck/shepherd/internal/config"
	"github.com/avandyck/shepherd/internal/dates"
	"github.com/avandyck/shepherd/internal/dialog"
	"github.com/avandyck/shepherd/internal/directory"
	"github.com/avandyck/shepherd/internal/intent"
	"github.com/avandyck/shepherd/internal/llm"
	"github.com/avandyck/shepherd/internal/metrics"
	"github.com/avandyck/shepherd/internal/models"
	"github.com/avandyck/shepherd/internal/resolve"
	"github.com/avandyck/shepherd/internal/retrieval"
	"github.com/avandyck/shepherd/internal/session"
	"github.com/avandyck/shepherd/internal/store"
)

// Generator is the completion surface the assistant needs.
type Generator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Retriever runs the semantic search pass.
type Retriever interface {
	Retrieve(ctx context.Context, tenantID, query string, entityIDs []string, shown map[string]bool) (retrieval.Bundle, error)
}

// Resolver matches names against the roster.
type Resolver interface {
	Resolve(ctx context.Context, tenantID, name string) (resolve.Result, error)
}

// Extractor processes logged notes.
type Extractor interface {
	ProcessNote(ctx context.Context, tenantID, authorRef, text string) (models.EvidenceRecord, error)
}

// Directory is the external schedule/roster source. All lookups
// degrade when it fails.
type Directory interface {
	Configured() bool
	FindPerson(ctx context.Context, name string) ([]directory.Person, error)
	PersonDetails(ctx context.Context, personID string) (directory.PersonDetails, error)
	FindPlan(ctx context.Context, want dates.Range, serviceType string) (*directory.Plan, error)
	Setlist(ctx context.Context, want dates.Range, serviceType string) (*directory.Plan, error)
	PersonBlockouts(ctx context.Context, person directory.Person, window dates.Range) (directory.PersonBlockouts, error)
	DateBlockouts(ctx context.Context, want dates.Range) (directory.DateBlockouts, error)
	CheckAvailability(ctx context.Context, person directory.Person, want dates.Range) (directory.AvailabilityCheck, error)
	TeamAvailability(ctx context.Context, want dates.Range) (directory.TeamAvailability, error)
	FindSong(ctx context.Context, title string) ([]directory.Song, error)
	SongUsage(ctx context.Context, song directory.Song) (directory.SongUsage, error)
}

// Deps bundles the collaborators an Assistant needs.
type Deps struct {
	Config    config.Config
	Sessions  *session.Manager
	Store     store.Store
	Resolver  Resolver
	Retriever Retriever
	Extractor Extractor
	Model     Generator
	Directory Directory
	Metrics   *metrics.Collector
	Logger    *slog.Logger

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

type Assistant struct {
	cfg       config.Config
	sessions  *session.Manager
	store     store.Store
	resolver  Resolver
	retriever Retriever
	extractor Extractor
	model     Generator
	dir       Directory
	dialog    *dialog.Machine
	composer  *compose.Composer
	metrics   *metrics.Collector
	logger    *slog.Logger
	now       func() time.Time
}

func New(deps Deps) *Assistant {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewCollector()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Assistant{
		cfg:       deps.Config,
		sessions:  deps.Sessions,
		store:     deps.Store,
		resolver:  deps.Resolver,
		retriever: deps.Retriever,
		extractor: deps.Extractor,
		model:     deps.Model,
		dir:       deps.Directory,
		dialog:    dialog.NewMachine(deps.Config.ClarifyTurnLimit, deps.Config.Holidays),
		composer: compose.New(compose.Options{
			HistoryTurns:     deps.Config.HistoryTurns,
			SummaryThreshold: deps.Config.SummaryThreshold,
			PromptCeiling:    deps.Config.PromptCeiling,
		}),
		metrics: deps.Metrics,
		logger:  deps.Logger,
		now:     deps.Now,
	}
}

const troubleReply = "I ran into a problem answering that. Please try again in a moment."

// HandleMessage processes one user message and returns the reply.
// Messages for the same session are serialized; a logging command
// starts a fresh conversation first.
func (a *Assistant) HandleMessage(ctx context.Context, sessionID, tenantID, userRef, text string) (string, error) {
	if intent.ShouldStartNewConversation(text) {
		if err := a.sessions.Reset(ctx, sessionID, tenantID); err != nil {
			return "", fmt.Errorf("reset session: %w", err)
		}
	}

	var reply string
	err := a.sessions.With(ctx, sessionID, tenantID, func(cctx *models.ConversationContext) error {
		r, err := a.respond(ctx, cctx, tenantID, userRef, text)
		if err != nil {
			return err
		}
		reply = r
		a.recordTurn(ctx, cctx, text, reply)
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// LogFactCorrection attaches a correction to an evidence record. The
// original text and extracted facts stay untouched.
func (a *Assistant) LogFactCorrection(ctx context.Context, tenantID, evidenceID, correction string) error {
	if strings.TrimSpace(correction) == "" {
		return fmt.Errorf("correction is empty")
	}
	return a.store.AttachCorrection(ctx, tenantID, evidenceID, correction)
}

func (a *Assistant) respond(ctx context.Context, cctx *models.ConversationContext, tenantID, userRef, text string) (string, error) {
	dres := a.dialog.Handle(cctx, text, a.now())
	switch dres.Status {
	case dialog.StatusContinue, dialog.StatusReask, dialog.StatusAbandonedLimit:
		return dres.Reply, nil
	case dialog.StatusResolved:
		return a.applyResolution(ctx, cctx, tenantID, userRef, *dres.Resolution)
	}
	// StatusNoPending and StatusAbandonedTopic fall through to a fresh
	// classification of the message.

	c := intent.Classify(text)
	return a.handleIntent(ctx, cctx, tenantID, userRef, text, c, nil)
}

// callModel runs the composed prompt. Model failures degrade to a
// canned reply; only persistence errors are hard failures upstream.
func (a *Assistant) callModel(ctx context.Context, cctx *models.ConversationContext, userRef, message string, sections []compose.Section) (string, error) {
	system, user := a.composer.Build(compose.Request{
		UserName:       userRef,
		Now:            a.now(),
		Message:        message,
		Sections:       sections,
		History:        cctx.History,
		RollingSummary: cctx.RollingSummary,
		TurnCount:      cctx.TurnCount,
	})

	var reply string
	err := a.metrics.Timed(metrics.OpCompletion, func() error {
		var err error
		reply, err = a.model.GenerateWithSystem(ctx, system, user)
		return err
	})
	if err != nil {
		if errors.Is(err, llm.ErrFatalAPI) {
			a.logger.Error("model call failed fatally", "error", err)
		} else {
			a.logger.Warn("model call failed", "error", err)
		}
		return troubleReply, nil
	}
	return compose.CleanReply(reply), nil
}

// recordTurn appends the exchange to history and refreshes the rolling
// summary when the conversation gets long.
func (a *Assistant) recordTurn(ctx context.Context, cctx *models.ConversationContext, text, reply string) {
	cctx.History = append(cctx.History,
		models.Turn{Role: "user", Content: text},
		models.Turn{Role: "assistant", Content: reply},
	)
	cctx.TurnCount++

	if keep := a.cfg.HistoryTurns * 2; keep > 0 && len(cctx.History) > keep {
		cctx.History = cctx.History[len(cctx.History)-keep:]
	}

	if a.cfg.SummaryThreshold > 0 && cctx.TurnCount >= a.cfg.SummaryThreshold &&
		cctx.TurnCount%a.cfg.SummaryThreshold == 0 {
		var transcript strings.Builder
		if cctx.RollingSummary != "" {
			transcript.WriteString("Earlier: " + cctx.RollingSummary + "\n")
		}
		for _, turn := range cctx.History {
			fmt.Fprintf(&transcript, "%s: %s\n", turn.Role, turn.Content)
		}
		summary, err := a.model.Summarize(ctx, transcript.String())
		if err != nil {
			a.logger.Warn("rolling summary refresh failed", "error", err)
			return
		}
		cctx.RollingSummary = strings.TrimSpace(summary)
	}
}

// shownSet converts the session's shown ids for the retrieval dedup.
func shownSet(cctx *models.ConversationContext) map[string]bool {
	shown := make(map[string]bool, len(cctx.ShownEvidenceIDs))
	for _, id := range cctx.ShownEvidenceIDs {
		shown[id] = true
	}
	return shown
}

// degradedSection tells the model which sources were unreachable so
// the reply can be honest about gaps.
func degradedSection(sources []string) compose.Section {
	return compose.Section{
		Title: "DATA GAPS",
		Body:  "These sources could not be reached, answer from what is present and say what is missing: " + strings.Join(sources, ", "),
	}
}
