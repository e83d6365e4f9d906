package assistant

import (
	"context"

	"github.com/avandyck/shepherd/internal/dialog"
	"github.com/avandyck/shepherd/internal/intent"
	"github.com/avandyck/shepherd/internal/models"
)

// applyResolution re-runs the parked request with the clarified slot
// filled in.
func (a *Assistant) applyResolution(ctx context.Context, cctx *models.ConversationContext, tenantID, userRef string, res dialog.Resolution) (string, error) {
	switch res.Kind {
	case models.PendingEntityClarification:
		if res.Interpretation != "" {
			return a.applyInterpretation(ctx, cctx, tenantID, userRef, res)
		}
		if res.Entity != nil {
			cctx.TouchEntity(res.Entity.EntityID)
			c := intent.Classify(res.OriginalText)
			pinned := &pinnedEntity{ID: res.Entity.EntityID, Name: res.Entity.DisplayName}
			return a.handleIntent(ctx, cctx, tenantID, userRef, res.OriginalText, c, pinned)
		}

	case models.PendingDateConfirmation:
		c := intent.Classify(res.OriginalText)
		c.DateRef = res.DateRef
		return a.handleIntent(ctx, cctx, tenantID, userRef, res.OriginalText, c, nil)

	case models.PendingFollowUpDetails:
		return a.commitFollowUp(ctx, tenantID, res.FollowUp)

	case models.PendingSongSelection:
		c := intent.Classify(res.OriginalText)
		if c.Intent != intent.IntentSong {
			c = intent.Result{Intent: intent.IntentSong, Subtype: "song_history", DateRef: c.DateRef}
		}
		return a.handleSong(ctx, cctx, tenantID, userRef, res.OriginalText, c, res.Song)
	}

	// A resolution shape the machine should not produce. Start over
	// rather than guessing.
	c := intent.Classify(res.OriginalText)
	return a.handleIntent(ctx, cctx, tenantID, userRef, res.OriginalText, c, nil)
}

// applyInterpretation routes the song-or-person answer back through
// the matching handler.
func (a *Assistant) applyInterpretation(ctx context.Context, cctx *models.ConversationContext, tenantID, userRef string, res dialog.Resolution) (string, error) {
	c := intent.Classify(res.OriginalText)
	value := ""
	if len(c.Interpretations) > 0 {
		value = c.Interpretations[0].Value
	}

	if res.Interpretation == "song" {
		sc := intent.Result{Intent: intent.IntentSong, Subtype: "song_history", Title: value, DateRef: c.DateRef}
		return a.handleSong(ctx, cctx, tenantID, userRef, res.OriginalText, sc, "")
	}

	pc := intent.Result{Intent: intent.IntentPersonData, Subtype: "service_history", Person: value}
	return a.handlePersonData(ctx, cctx, tenantID, userRef, res.OriginalText, pc, nil)
}
