package directory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avandyck/shepherd/internal/dates"
)

type blockoutAttrs struct {
	Reason   string `json:"reason"`
	StartsAt string `json:"starts_at"`
	EndsAt   string `json:"ends_at"`
}

func (c *Client) personBlockoutList(ctx context.Context, personID string) ([]Blockout, error) {
	data, _, err := c.getAll(ctx, "/services/v2/people/"+personID+"/blockouts", nil)
	if err != nil {
		return nil, err
	}
	blockouts := make([]Blockout, 0, len(data))
	for _, res := range data {
		var attrs blockoutAttrs
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return nil, fmt.Errorf("decode blockout: %w", err)
		}
		start, err := parseDay(attrs.StartsAt)
		if err != nil {
			c.logger.Warn("blockout has unparseable start, skipping", "person", personID, "start", attrs.StartsAt)
			continue
		}
		end, err := parseDay(attrs.EndsAt)
		if err != nil {
			end = start
		}
		blockouts = append(blockouts, Blockout{
			Range:  dates.Range{Start: start, End: end},
			Reason: attrs.Reason,
		})
	}
	return blockouts, nil
}

// PersonBlockouts returns a person's blockouts that touch the window.
func (c *Client) PersonBlockouts(ctx context.Context, person Person, window dates.Range) (PersonBlockouts, error) {
	all, err := c.personBlockoutList(ctx, person.ID)
	if err != nil {
		return PersonBlockouts{}, err
	}
	result := PersonBlockouts{PersonName: person.Name}
	for _, b := range all {
		if b.Range.Overlaps(window.Start, window.End) {
			result.Blockouts = append(result.Blockouts, b)
		}
	}
	return result, nil
}

// CheckAvailability reports whether one person is free over the range.
func (c *Client) CheckAvailability(ctx context.Context, person Person, want dates.Range) (AvailabilityCheck, error) {
	blocked, err := c.PersonBlockouts(ctx, person, want)
	if err != nil {
		return AvailabilityCheck{}, err
	}
	check := AvailabilityCheck{PersonName: person.Name, Range: want, Available: len(blocked.Blockouts) == 0}
	if !check.Available {
		check.Reason = blocked.Blockouts[0].Reason
	}
	return check, nil
}

// DateBlockouts scans the roster for everyone blocked out over the
// range. One blockout request per person; the client throttle keeps
// the scan polite.
func (c *Client) DateBlockouts(ctx context.Context, want dates.Range) (DateBlockouts, error) {
	people, err := c.rosterPeople(ctx)
	if err != nil {
		return DateBlockouts{}, err
	}
	result := DateBlockouts{Range: want}
	for _, person := range people {
		blocked, err := c.PersonBlockouts(ctx, person, want)
		if err != nil {
			return DateBlockouts{}, err
		}
		if len(blocked.Blockouts) > 0 {
			result.Blocked = append(result.Blocked, BlockedPerson{
				Name:   person.Name,
				Reason: blocked.Blockouts[0].Reason,
			})
		}
	}
	return result, nil
}

// TeamAvailability splits the roster into available and blocked.
func (c *Client) TeamAvailability(ctx context.Context, want dates.Range) (TeamAvailability, error) {
	people, err := c.rosterPeople(ctx)
	if err != nil {
		return TeamAvailability{}, err
	}
	result := TeamAvailability{Range: want}
	for _, person := range people {
		blocked, err := c.PersonBlockouts(ctx, person, want)
		if err != nil {
			return TeamAvailability{}, err
		}
		if len(blocked.Blockouts) > 0 {
			result.Blocked = append(result.Blocked, BlockedPerson{
				Name:   person.Name,
				Reason: blocked.Blockouts[0].Reason,
			})
		} else {
			result.Available = append(result.Available, person.Name)
		}
	}
	return result, nil
}
