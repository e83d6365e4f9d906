package compose

import (
	"fmt"
	"strings"

	"github.com/avandyck/shepherd/internal/dates"
	"github.com/avandyck/shepherd/internal/directory"
	"github.com/avandyck/shepherd/internal/models"
)

// Block builders turning structured lookups into the bracketed
// sections the prompt cites. Empty input renders nothing so callers
// can append unconditionally.

func rangeLabel(r dates.Range) string {
	if r.Label != "" {
		return r.Label
	}
	if r.Single() {
		return dates.FormatDay(r.Start)
	}
	return dates.FormatDay(r.Start) + " through " + dates.FormatDay(r.End)
}

// TeamSchedule renders a service plan grouped by team, with status and
// song set.
func TeamSchedule(plan *directory.Plan) string {
	if plan == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Service: %s, %s\n", plan.ServiceTypeName, dates.FormatDay(plan.Date))
	if plan.Title != "" {
		fmt.Fprintf(&b, "Plan: %s\n", plan.Title)
	}
	if plan.SeriesTitle != "" {
		fmt.Fprintf(&b, "Series: %s\n", plan.SeriesTitle)
	}

	if len(plan.TeamMembers) == 0 {
		b.WriteString("No team members assigned.\n")
	} else {
		// Preserve the plan's team order while grouping.
		var teams []string
		grouped := map[string][]directory.TeamMember{}
		for _, m := range plan.TeamMembers {
			if _, seen := grouped[m.TeamName]; !seen {
				teams = append(teams, m.TeamName)
			}
			grouped[m.TeamName] = append(grouped[m.TeamName], m)
		}
		for _, team := range teams {
			fmt.Fprintf(&b, "\n%s:\n", team)
			for _, m := range grouped[team] {
				fmt.Fprintf(&b, "  - %s (%s) [%s]\n", m.Name, m.Position, m.Status)
			}
		}
	}

	if len(plan.Songs) > 0 {
		b.WriteString("\nSong Set:\n")
		for _, s := range plan.Songs {
			line := "  - " + s.Title
			if s.Key != "" {
				line += " (Key: " + s.Key + ")"
			}
			fmt.Fprintf(&b, "%s\n", line)
		}
	}
	return Section{Title: "SERVICE TEAM SCHEDULE", Body: b.String()}.Render()
}

// PersonContact renders a directory contact record. queryType narrows
// the block to what was asked ("email", "phone", "address"); anything
// else includes everything.
func PersonContact(details directory.PersonDetails, queryType string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", details.Name)

	if queryType == "" || queryType == "email" || queryType == "contact" {
		for _, e := range details.Emails {
			label := e.Location
			if e.Primary {
				label += ", primary"
			}
			fmt.Fprintf(&b, "Email: %s (%s)\n", e.Address, strings.TrimPrefix(label, ", "))
		}
	}
	if queryType == "" || queryType == "phone" || queryType == "contact" {
		for _, p := range details.Phones {
			label := p.Kind
			if p.Primary {
				label += ", primary"
			}
			fmt.Fprintf(&b, "Phone: %s (%s)\n", p.Number, strings.TrimPrefix(label, ", "))
		}
	}
	if queryType == "" || queryType == "address" {
		for _, a := range details.Addresses {
			fmt.Fprintf(&b, "Address: %s, %s, %s %s\n", a.Street, a.City, a.State, a.Zip)
		}
	}
	if queryType == "" && len(details.Positions) > 0 {
		fmt.Fprintf(&b, "Team positions: %s\n", strings.Join(details.Positions, ", "))
	}

	title := "PLANNING CENTER DATA for " + details.Name
	return fmt.Sprintf("[%s]\n%s\n[END PLANNING CENTER DATA]", title, strings.TrimSpace(b.String()))
}

// PersonBlockoutsBlock lists one person's blockout windows.
func PersonBlockoutsBlock(pb directory.PersonBlockouts) string {
	var b strings.Builder
	if len(pb.Blockouts) == 0 {
		fmt.Fprintf(&b, "%s has no blockout dates in this window.\n", pb.PersonName)
	} else {
		fmt.Fprintf(&b, "Blockouts for %s (%d):\n", pb.PersonName, len(pb.Blockouts))
		for _, blk := range pb.Blockouts {
			fmt.Fprintf(&b, "  - %s: %s\n", rangeLabel(blk.Range), orUnspecified(blk.Reason))
		}
	}
	return Section{Title: "BLOCKOUT DATA", Body: b.String()}.Render()
}

// DateBlockoutsBlock lists who is unavailable over a date range.
func DateBlockoutsBlock(db directory.DateBlockouts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", rangeLabel(db.Range))
	if len(db.Blocked) == 0 {
		b.WriteString("No one is blocked out.\n")
	} else {
		fmt.Fprintf(&b, "Blocked out (%d):\n", len(db.Blocked))
		for _, p := range db.Blocked {
			fmt.Fprintf(&b, "  - %s: %s\n", p.Name, orUnspecified(p.Reason))
		}
	}
	return Section{Title: "BLOCKOUT DATA", Body: b.String()}.Render()
}

// AvailabilityBlock answers an individual availability check.
func AvailabilityBlock(check directory.AvailabilityCheck) string {
	var b strings.Builder
	if check.Available {
		fmt.Fprintf(&b, "%s is available on %s.\n", check.PersonName, rangeLabel(check.Range))
	} else {
		fmt.Fprintf(&b, "%s is blocked out on %s (%s).\n", check.PersonName, rangeLabel(check.Range), orUnspecified(check.Reason))
	}
	return Section{Title: "AVAILABILITY", Body: b.String()}.Render()
}

// TeamAvailabilityBlock splits the roster for a date range.
func TeamAvailabilityBlock(ta directory.TeamAvailability) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", rangeLabel(ta.Range))
	fmt.Fprintf(&b, "Available (%d): %s\n", len(ta.Available), strings.Join(ta.Available, ", "))
	if len(ta.Blocked) > 0 {
		fmt.Fprintf(&b, "Blocked out (%d):\n", len(ta.Blocked))
		for _, p := range ta.Blocked {
			fmt.Fprintf(&b, "  - %s: %s\n", p.Name, orUnspecified(p.Reason))
		}
	}
	return Section{Title: "TEAM AVAILABILITY", Body: b.String()}.Render()
}

// SongDetailsBlock renders catalog data for one song.
func SongDetailsBlock(song directory.Song) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", song.Title)
	if song.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", song.Author)
	}
	if song.Key != "" {
		fmt.Fprintf(&b, "Key: %s\n", song.Key)
	}
	if song.BPM > 0 {
		fmt.Fprintf(&b, "BPM: %.0f\n", song.BPM)
	}
	if song.CCLI != "" {
		fmt.Fprintf(&b, "CCLI: %s\n", song.CCLI)
	}
	return Section{Title: "SONG DETAILS", Body: b.String()}.Render()
}

// UsageHistoryBlock lists when a song was scheduled.
func UsageHistoryBlock(usage directory.SongUsage) string {
	var b strings.Builder
	if len(usage.Uses) == 0 {
		fmt.Fprintf(&b, "%q has not been scheduled recently.\n", usage.Song.Title)
	} else {
		fmt.Fprintf(&b, "Usage history for %q (%d):\n", usage.Song.Title, len(usage.Uses))
		for _, use := range usage.Uses {
			fmt.Fprintf(&b, "  - %s (%s)\n", dates.FormatDay(use.Date), use.ServiceTypeName)
		}
	}
	return Section{Title: "SONG USAGE HISTORY", Body: b.String()}.Render()
}

// SetlistBlock renders just the song set of a plan.
func SetlistBlock(plan *directory.Plan) string {
	if plan == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Service: %s, %s\n", plan.ServiceTypeName, dates.FormatDay(plan.Date))
	if len(plan.Songs) == 0 {
		b.WriteString("No songs on the plan.\n")
	} else {
		for _, s := range plan.Songs {
			line := "  - " + s.Title
			if s.Key != "" {
				line += " (Key: " + s.Key + ")"
			}
			fmt.Fprintf(&b, "%s\n", line)
		}
	}
	return Section{Title: "SETLIST", Body: b.String()}.Render()
}

// ClarifyPrompt is the user-facing question for an ambiguous name. It
// bypasses the model so the numbering stays stable for reply parsing.
func ClarifyPrompt(name string, candidates []models.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found more than one person named %s. Who did you mean?\n", name)
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.DisplayName)
	}
	b.WriteString("Reply with a number or a full name.")
	return b.String()
}

// NotesBlock renders retrieved interaction notes for citation.
func NotesBlock(items []NoteItem) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- %s ---\n%s\n", item.Source, strings.TrimSpace(item.Text))
	}
	return Section{Title: "LOGGED NOTES", Body: b.String()}.Render()
}

// NoteItem is the slice of a retrieval hit the prompt needs.
type NoteItem struct {
	Source string
	Text   string
}

// SuggestionsBlock lists close catalog matches when a song title did
// not match exactly.
func SuggestionsBlock(songs []directory.Song) string {
	if len(songs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("No exact match. Closest songs in the catalog:\n")
	for _, s := range songs {
		line := "  - " + s.Title
		if s.Author != "" {
			line += " by " + s.Author
		}
		fmt.Fprintf(&b, "%s\n", line)
	}
	return Section{Title: "SONG SUGGESTIONS", Body: b.String()}.Render()
}

// AggregateRow is one line of a tabulated fact summary.
type AggregateRow struct {
	Name  string
	Value string
}

// AggregateBlock renders a fact category tabulated across the team.
func AggregateBlock(category string, rows []AggregateRow) string {
	var b strings.Builder
	if len(rows) == 0 {
		fmt.Fprintf(&b, "No %s recorded in any logged interaction.\n", category)
	} else {
		for _, row := range rows {
			fmt.Fprintf(&b, "  - %s: %s\n", row.Name, row.Value)
		}
	}
	return Section{Title: "TEAM " + strings.ToUpper(category), Body: b.String()}.Render()
}

func orUnspecified(s string) string {
	if s == "" {
		return "no reason given"
	}
	return s
}
