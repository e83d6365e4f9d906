package intent

import (
	"regexp"
	"strings"
)

// namePat captures one or two lowercase name words.
const namePat = `([a-z][a-z']*(?: [a-z][a-z']*)?)`

var logPrefixes = []string{
	"log interaction",
	"log:",
	"interaction:",
	"talked with",
	"talked to",
	"spoke with",
	"spoke to",
	"met with",
	"met ",
	"had coffee with",
	"chatted with",
	"conversation with",
	"had a conversation",
	"had a chat",
	"had a talk",
}

func isLogCommand(msg string) bool {
	for _, p := range logPrefixes {
		if strings.HasPrefix(msg, p) {
			return true
		}
	}
	return false
}

var followUpRes = []*regexp.Regexp{
	regexp.MustCompile(`^i need to follow up with (.+?)[.?!]*$`),
	regexp.MustCompile(`^follow up with (.+?)[.?!]*$`),
	regexp.MustCompile(`^remind me to (?:follow up with|check on|check in with) (.+?)[.?!]*$`),
	regexp.MustCompile(`^(?:create|add|set up) a follow[ -]?up(?: (?:for|with) (.+?))?[.?!]*$`),
}

func followUpCommand(msg string) (bool, string) {
	for _, re := range followUpRes {
		if m := re.FindStringSubmatch(msg); m != nil {
			return true, cleanName(m[1])
		}
	}
	return false, ""
}

// Ambiguous title-or-person check. Fires on phrasings where the
// extracted fragment could equally be a song title or a person, e.g.
// "when did we last play Gratitude?". Messages carrying a clear song
// or person marker are excluded up front.
var (
	ambiguousRes = []*regexp.Regexp{
		regexp.MustCompile(`^when did we (?:last )?(?:play|do|sing|see|have) (.+?)\??$`),
		regexp.MustCompile(`^have we (?:played|done|sung) (.+?)(?: recently| lately)?\??$`),
		regexp.MustCompile(`^when was (.+?) last (?:on the schedule|played|scheduled)\??$`),
	}

	clearSongMarkers = []string{
		"chord", "lyrics", "setlist", "set list", "song", "bpm", "tempo", "what key",
	}
	clearPersonMarkers = []string{
		"email", "phone", "address", "blockout", "blocked out", "contact",
	}

	stopFragments = map[string]bool{
		"it": true, "that": true, "them": true, "this": true,
		"anything": true, "something": true,
	}
)

func ambiguousTitleOrPerson(msg string) (bool, string) {
	for _, marker := range clearSongMarkers {
		if strings.Contains(msg, marker) {
			return false, ""
		}
	}
	for _, marker := range clearPersonMarkers {
		if strings.Contains(msg, marker) {
			return false, ""
		}
	}
	for _, re := range ambiguousRes {
		m := re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		fragment := strings.Trim(m[1], ` .!?'"`)
		if fragment == "" || stopFragments[fragment] || len(strings.Fields(fragment)) > 4 {
			continue
		}
		return true, fragment
	}
	return false, ""
}

// Compound team-contact queries ask for contact info of a whole group
// ("phone numbers of the people serving this weekend") rather than a
// named person.
var groupTerms = []string{
	"the people", "people serving", "people playing", "people on",
	"everyone", "folks", "volunteers",
	"the team", "team members", "team this", "team for",
	"the band", "band team", "band for", "band this",
	"the vocals", "vocals team", "the tech", "tech team",
}

func compoundTeamContact(msg string) (bool, string, string) {
	ct := contactKind(msg)
	if ct == "" {
		return false, "", ""
	}
	if !containsAny(msg, groupTerms) {
		return false, "", ""
	}
	return true, ct, ExtractDateRef(msg)
}

func contactKind(msg string) string {
	switch {
	case strings.Contains(msg, "email"):
		return "email"
	case containsAny(msg, []string{"phone", "cell", "mobile"}):
		return "phone"
	case containsAny(msg, []string{"contact info", "contact information", "get in touch", "reach "}):
		return "contact"
	}
	return ""
}

// Blockout and availability queries.
var (
	blockoutWords = []string{"blockout", "blocked out", "block out"}
	cantMakeWords = []string{"can't make it", "cannot make it", "cant make it"}

	availabilityRe = regexp.MustCompile(`^(?:is|can|will) ` + namePat + ` (?:available|free|serve|make it)\b`)

	personBlockoutRes = []*regexp.Regexp{
		regexp.MustCompile(`^when is ` + namePat + ` blocked out`),
		regexp.MustCompile(namePat + `'s blockouts?`),
		regexp.MustCompile(`blockouts? (?:dates? )?for ` + namePat),
	}
)

func blockoutQuery(msg string) (bool, string, string, string) {
	// "usually available" and "availability patterns" are aggregate
	// questions, not a schedule lookup.
	if strings.Contains(msg, "usually") || strings.Contains(msg, "patterns") {
		return false, "", "", ""
	}
	dateRef := ExtractDateRef(msg)

	whoStart := strings.HasPrefix(msg, "who")
	if whoStart && (containsAny(msg, blockoutWords) || containsAny(msg, cantMakeWords)) {
		return true, "date_blockouts", "", dateRef
	}
	if strings.Contains(msg, "team availability") ||
		strings.HasPrefix(msg, "who's available") || strings.HasPrefix(msg, "who is available") {
		return true, "team_availability", "", dateRef
	}
	if m := availabilityRe.FindStringSubmatch(msg); m != nil {
		return true, "availability_check", cleanName(m[1]), dateRef
	}
	if containsAny(msg, blockoutWords) {
		name := ""
		for _, re := range personBlockoutRes {
			if m := re.FindStringSubmatch(msg); m != nil {
				name = cleanName(m[1])
				break
			}
		}
		return true, "person_blockouts", name, dateRef
	}
	return false, "", "", ""
}

// Person directory queries: contact details and serving history.
var (
	serviceHistoryRes = []*regexp.Regexp{
		regexp.MustCompile(`^when did ` + namePat + ` last (?:serve|play|sing)`),
		regexp.MustCompile(`^when did ` + namePat + ` (?:serve|play|sing) most recently`),
		regexp.MustCompile(`^when was ` + namePat + `'s last time (?:serving|playing|singing)`),
		regexp.MustCompile(`^when does ` + namePat + ` (?:serve|play|sing)(?: next)?`),
		regexp.MustCompile(`^when is ` + namePat + ` (?:serving|playing|scheduled)(?: next)?`),
		regexp.MustCompile(`^when will ` + namePat + ` be (?:serving|playing|singing)`),
		regexp.MustCompile(`^is ` + namePat + ` scheduled`),
	}

	emailNameRes = []*regexp.Regexp{
		regexp.MustCompile(namePat + `'s email`),
		regexp.MustCompile(`email (?:address )?for ` + namePat),
	}
	phoneNameRes = []*regexp.Regexp{
		regexp.MustCompile(namePat + `'s (?:phone|cell|mobile)`),
		regexp.MustCompile(`(?:phone|cell|mobile) (?:number )?for ` + namePat),
		regexp.MustCompile(`\bcall ` + namePat),
	}
	addressNameRes = []*regexp.Regexp{
		regexp.MustCompile(namePat + `'s (?:mailing )?address`),
		regexp.MustCompile(`^where does ` + namePat + ` live`),
	}
	contactNameRes = []*regexp.Regexp{
		regexp.MustCompile(`contact info(?:rmation)? for ` + namePat),
		regexp.MustCompile(`\breach ` + namePat),
		regexp.MustCompile(`in touch with ` + namePat),
		regexp.MustCompile(`\bcontact ` + namePat),
	}
)

func personDataQuery(msg string) (bool, string, string) {
	for _, re := range serviceHistoryRes {
		if m := re.FindStringSubmatch(msg); m != nil {
			return true, "service_history", cleanName(m[1])
		}
	}
	if strings.Contains(msg, "email") {
		return true, "email", firstName(emailNameRes, msg)
	}
	if containsAny(msg, []string{"phone", "cell", "mobile", "call "}) {
		return true, "phone", firstName(phoneNameRes, msg)
	}
	if strings.Contains(msg, "address") || strings.Contains(msg, " live?") ||
		regexp.MustCompile(`^where does .+ live`).MatchString(msg) {
		return true, "address", firstName(addressNameRes, msg)
	}
	if containsAny(msg, []string{"contact info", "contact information", "get in touch", "reach ", "best way to contact"}) {
		return true, "contact", firstName(contactNameRes, msg)
	}
	return false, "", ""
}

func firstName(res []*regexp.Regexp, msg string) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(msg); m != nil {
			if name := cleanName(m[1]); name != "" {
				return name
			}
		}
	}
	return ""
}

// Song, setlist and team-schedule queries. Subtype checks are ordered:
// team schedule wins over setlist, chord charts and lyrics win over
// general song history.
var (
	teamScheduleStartRe = regexp.MustCompile(`^(?:who|what's the team|what is the team)`)
	teamScheduleWords   = []string{"team", "serv", "play", "sched", "sing", "do we have"}

	titleAfterRes = map[string]*regexp.Regexp{
		"chord_chart":  regexp.MustCompile(`(?:chord charts?|chords|charts|lead sheet) (?:for|to|of) (?:the song )?(.+?)\??$`),
		"lyrics":       regexp.MustCompile(`(?:lyrics|words) (?:to|for|of) (?:the )?(.+?)\??$`),
		"lyrics_part":  regexp.MustCompile(`(?:chorus|bridge|verse) of (.+?)\??$`),
		"song_info":    regexp.MustCompile(`(?:what key is|how fast is|what tempo is|bpm for|tempo for|tempo is) (.+?)(?: in)?\??$`),
		"song_history": regexp.MustCompile(`(?:ever played|often do we play|usage history for|history for|last play) (.+?)\??$`),
	}
)

func songQuery(msg string) (bool, string, string) {
	if teamScheduleStartRe.MatchString(msg) && containsAny(msg, teamScheduleWords) {
		return true, "team_schedule", ""
	}
	if containsAny(msg, []string{"chord", "lead sheet", "charts"}) {
		return true, "chord_chart", songTitle("chord_chart", msg)
	}
	if containsAny(msg, []string{"lyrics", "words to", "chorus", "bridge of", "verse of"}) {
		title := songTitle("lyrics", msg)
		if t := songTitle("lyrics_part", msg); t != "" {
			title = t
		}
		return true, "lyrics", title
	}
	if containsAny(msg, []string{"what key", "bpm", "tempo", "how fast"}) {
		return true, "song_info", songTitle("song_info", msg)
	}
	if containsAny(msg, []string{"setlist", "set list", "what songs", "what did we sing", "songs from", "songs were on", "songs did we"}) {
		return true, "setlist", ""
	}
	if containsAny(msg, []string{"have we ever played", "how often do we play", "song usage", "usage history"}) {
		return true, "song_history", songTitle("song_history", msg)
	}
	return false, "", ""
}

func songTitle(kind, msg string) string {
	re := titleAfterRes[kind]
	if re == nil {
		return ""
	}
	m := re.FindStringSubmatch(msg)
	if m == nil {
		return ""
	}
	title := strings.Trim(m[1], ` .!?'"`)
	for _, prefix := range []string{"the bridge of ", "the chorus of ", "the verse of ", "bridge of ", "chorus of ", "verse of ", "the song "} {
		title = strings.TrimPrefix(title, prefix)
	}
	return title
}

func isDocumentQuery(msg string) bool {
	return containsAny(msg, []string{
		"how do i", "how to", "policy", "procedure", "handbook",
		"guide", "document", "manual", "onboarding", "training",
	})
}

// Analytics report queries. Checked before aggregate questions because
// report phrasings ("which volunteers need attention") overlap the
// aggregate vocabulary.
func analyticsQuery(msg string) (bool, string) {
	switch {
	case containsAny(msg, []string{"proactive", "care alerts", "alerts", "focus on today", "what should i focus on"}):
		return true, "proactive"
	case containsAny(msg, []string{"need attention", "needs attention", "check-in", "reach out", "overdue follow"}):
		return true, "care"
	case containsAny(msg, []string{"engaged", "engagement"}):
		return true, "engagement"
	case containsAny(msg, []string{"trend", "how have interactions"}):
		return true, "trends"
	case strings.Contains(msg, "praying about"),
		strings.Contains(msg, "prayer") && containsAny(msg, []string{"summary", "report"}):
		return true, "prayer"
	case containsAny(msg, []string{"ai performance", "assistant performance", "how is shepherd"}):
		return true, "ai"
	case containsAny(msg, []string{"overview", "team stats", "team summary", "how are we doing", "stats"}):
		return true, "overview"
	}
	return false, ""
}

// Aggregate questions tabulate one extracted fact across the roster.
func aggregateQuestion(msg string) (bool, string) {
	switch {
	case containsAny(msg, []string{"favorite food", "foods", "dietary"}):
		return true, "food"
	case containsAny(msg, []string{"hobbies", "hobby", "who likes"}):
		return true, "hobbies"
	case containsAny(msg, []string{"have kids", "married", "children", "family"}):
		return true, "family"
	case strings.Contains(msg, "birthday"):
		return true, "birthday"
	case strings.Contains(msg, "prayer"):
		return true, "prayer"
	case containsAny(msg, []string{"available", "availability"}):
		return true, "availability"
	}
	return false, ""
}

// Date reference extraction. Returns the raw phrase; resolution to a
// concrete date happens in the dates package.
var dateRefRes = []*regexp.Regexp{
	regexp.MustCompile(`(?:last|this|next) (?:sunday|monday|tuesday|wednesday|thursday|friday|saturday|weekend|week|month)`),
	regexp.MustCompile(`(?:january|february|march|april|may|june|july|august|september|october|november|december) \d{1,2}(?:st|nd|rd|th)?(?:,? \d{4})?`),
	regexp.MustCompile(`\d{1,2}/\d{1,2}(?:/\d{2,4})?`),
	regexp.MustCompile(`christmas eve|christmas|new year'?s?|thanksgiving|easter`),
	regexp.MustCompile(`\b(?:sunday|weekend|today|tomorrow|yesterday)\b`),
}

// ExtractDateRef finds the first date-like phrase in a message.
func ExtractDateRef(msg string) string {
	msg = strings.ToLower(msg)
	for _, re := range dateRefRes {
		if m := re.FindString(msg); m != "" {
			return m
		}
	}
	return ""
}

// Name hygiene: trims leading filler and rejects group words so
// "phone numbers of the people serving" never yields a person called
// "the people".
var (
	nameStopPrefix = map[string]bool{
		"the": true, "a": true, "is": true, "are": true, "me": true,
		"my": true, "for": true, "of": true, "to": true, "with": true,
		"what": true, "what's": true, "whats": true, "when": true,
		"when's": true, "who": true, "who's": true, "where": true,
		"where's": true, "how": true, "show": true, "get": true,
		"i": true, "can": true, "please": true,
	}
	genericNameTerms = map[string]bool{
		"people": true, "the people": true, "team": true, "the team": true,
		"volunteers": true, "everyone": true, "folks": true, "members": true,
		"team members": true, "anyone": true, "somebody": true, "someone": true,
		"band": true, "vocals": true, "tech": true,
	}
)

func cleanName(raw string) string {
	fields := strings.Fields(strings.Trim(raw, ` .!?'"`))
	for len(fields) > 0 && nameStopPrefix[fields[0]] {
		fields = fields[1:]
	}
	name := strings.Join(fields, " ")
	if genericNameTerms[name] {
		return ""
	}
	return name
}

func containsAny(msg string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(msg, t) {
			return true
		}
	}
	return false
}
