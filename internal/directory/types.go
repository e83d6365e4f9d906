package directory

import (
	"time"

	"github.com/avandyck/shepherd/internal/dates"
)

// Person is a roster entry from the directory.
type Person struct {
	ID        string
	Name      string
	FirstName string
	LastName  string
}

type Email struct {
	Address  string
	Location string
	Primary  bool
}

type Phone struct {
	Number  string
	Kind    string
	Primary bool
}

type Address struct {
	Street  string
	City    string
	State   string
	Zip     string
	Primary bool
}

// PersonDetails is the full contact record for one person.
type PersonDetails struct {
	Person
	Emails    []Email
	Phones    []Phone
	Addresses []Address
	Positions []string
}

// PrimaryEmail returns the primary address, or the first one.
func (d PersonDetails) PrimaryEmail() string {
	for _, e := range d.Emails {
		if e.Primary {
			return e.Address
		}
	}
	if len(d.Emails) > 0 {
		return d.Emails[0].Address
	}
	return ""
}

func (d PersonDetails) PrimaryPhone() string {
	for _, p := range d.Phones {
		if p.Primary {
			return p.Number
		}
	}
	if len(d.Phones) > 0 {
		return d.Phones[0].Number
	}
	return ""
}

// TeamMember is one scheduled position on a service plan.
type TeamMember struct {
	Name     string
	TeamName string
	Position string
	Status   string // Confirmed, Unconfirmed, Declined
}

type PlanSong struct {
	Title  string
	Key    string
	Author string
}

// Plan is one service plan with its scheduled team and song set.
type Plan struct {
	ID              string
	ServiceTypeName string
	Date            time.Time
	Title           string
	SeriesTitle     string
	TeamMembers     []TeamMember
	Songs           []PlanSong
}

// Blockout is one unavailability window for a person.
type Blockout struct {
	Range  dates.Range
	Reason string
}

type PersonBlockouts struct {
	PersonName string
	Blockouts  []Blockout
}

type BlockedPerson struct {
	Name   string
	Reason string
}

// DateBlockouts lists who is blocked out over a date range.
type DateBlockouts struct {
	Range   dates.Range
	Blocked []BlockedPerson
}

// AvailabilityCheck answers "is X free on Y".
type AvailabilityCheck struct {
	PersonName string
	Range      dates.Range
	Available  bool
	Reason     string
}

// TeamAvailability splits the roster into available and blocked for a
// date range.
type TeamAvailability struct {
	Range     dates.Range
	Available []string
	Blocked   []BlockedPerson
}

// Song is a library entry from the directory's song catalog.
type Song struct {
	ID     string
	Title  string
	Author string
	Key    string
	BPM    float64
	CCLI   string
}

// SongUse is one scheduled occurrence of a song.
type SongUse struct {
	Date            time.Time
	ServiceTypeName string
	PlanTitle       string
}

type SongUsage struct {
	Song Song
	Uses []SongUse
}
