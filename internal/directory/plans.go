package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/avandyck/shepherd/internal/dates"
)

type planAttrs struct {
	Dates       string `json:"dates"`
	SortDate    string `json:"sort_date"`
	Title       string `json:"title"`
	SeriesTitle string `json:"series_title"`
}

// parseDay accepts the two date encodings the directory emits.
func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// serviceTypeID resolves a service type by name, or picks the first
// one when name is empty. The list is cached for the client lifetime.
func (c *Client) serviceTypeID(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	cached := c.serviceTypes
	c.mu.Unlock()

	if cached == nil {
		data, _, err := c.getAll(ctx, "/services/v2/service_types", nil)
		if err != nil {
			return "", err
		}
		cached = make(map[string]string, len(data))
		for _, res := range data {
			var attrs struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
				return "", fmt.Errorf("decode service type: %w", err)
			}
			cached[attrs.Name] = res.ID
		}
		c.mu.Lock()
		c.serviceTypes = cached
		c.mu.Unlock()
	}

	if name == "" {
		for _, id := range cached {
			return id, nil
		}
		return "", fmt.Errorf("no service types in directory")
	}
	for typeName, id := range cached {
		if strings.Contains(strings.ToLower(typeName), strings.ToLower(name)) {
			return id, nil
		}
	}
	return "", fmt.Errorf("service type %q: not found", name)
}

// FindPlan locates the service plan for a date range. An exact miss
// widens the window symmetrically and picks the plan closest to the
// requested start.
func (c *Client) FindPlan(ctx context.Context, want dates.Range, serviceType string) (*Plan, error) {
	stID, err := c.serviceTypeID(ctx, serviceType)
	if err != nil {
		return nil, err
	}

	plans, err := c.listPlans(ctx, stID)
	if err != nil {
		return nil, err
	}

	pick := closestPlanIn(plans, want)
	if pick == nil {
		pick = closestPlanIn(plans, want.Widen(c.lookupWindow))
	}
	if pick == nil {
		return nil, nil
	}

	if err := c.loadPlanDetails(ctx, stID, pick); err != nil {
		return nil, err
	}
	return pick, nil
}

func (c *Client) listPlans(ctx context.Context, serviceTypeID string) ([]Plan, error) {
	params := url.Values{}
	params.Set("order", "sort_date")
	data, _, err := c.getAll(ctx, "/services/v2/service_types/"+serviceTypeID+"/plans", params)
	if err != nil {
		return nil, err
	}

	plans := make([]Plan, 0, len(data))
	for _, res := range data {
		var attrs planAttrs
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return nil, fmt.Errorf("decode plan %s: %w", res.ID, err)
		}
		date, err := parseDay(attrs.SortDate)
		if err != nil {
			c.logger.Warn("plan has unparseable date, skipping", "plan", res.ID, "date", attrs.SortDate)
			continue
		}
		plans = append(plans, Plan{
			ID:          res.ID,
			Date:        date,
			Title:       attrs.Title,
			SeriesTitle: attrs.SeriesTitle,
		})
	}
	return plans, nil
}

// closestPlanIn returns the in-range plan nearest to the range start,
// or nil when none falls inside.
func closestPlanIn(plans []Plan, want dates.Range) *Plan {
	var best *Plan
	var bestDist time.Duration
	for i := range plans {
		if !want.Contains(plans[i].Date) {
			continue
		}
		dist := plans[i].Date.Sub(want.Start)
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist {
			best = &plans[i]
			bestDist = dist
		}
	}
	return best
}

func (c *Client) loadPlanDetails(ctx context.Context, serviceTypeID string, plan *Plan) error {
	base := "/services/v2/service_types/" + serviceTypeID + "/plans/" + plan.ID

	members, _, err := c.getAll(ctx, base+"/team_members", nil)
	if err != nil {
		return err
	}
	for _, res := range members {
		var attrs struct {
			Name     string `json:"name"`
			TeamName string `json:"team_name"`
			Position string `json:"team_position_name"`
			Status   string `json:"status"`
		}
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return fmt.Errorf("decode team member: %w", err)
		}
		plan.TeamMembers = append(plan.TeamMembers, TeamMember{
			Name:     attrs.Name,
			TeamName: attrs.TeamName,
			Position: attrs.Position,
			Status:   attrs.Status,
		})
	}

	songs, _, err := c.getAll(ctx, base+"/songs", nil)
	if err != nil {
		return err
	}
	for _, res := range songs {
		var attrs struct {
			Title  string `json:"title"`
			Key    string `json:"key"`
			Author string `json:"author"`
		}
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return fmt.Errorf("decode plan song: %w", err)
		}
		plan.Songs = append(plan.Songs, PlanSong(attrs))
	}
	return nil
}

// Setlist returns just the song set for the plan matching a date range.
func (c *Client) Setlist(ctx context.Context, want dates.Range, serviceType string) (*Plan, error) {
	return c.FindPlan(ctx, want, serviceType)
}
