package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

type songAttrs struct {
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Key    string  `json:"default_key"`
	BPM    float64 `json:"bpm"`
	CCLI   string  `json:"ccli_number"`
}

// FindSong searches the song catalog by title.
func (c *Client) FindSong(ctx context.Context, title string) ([]Song, error) {
	params := url.Values{}
	params.Set("where[title]", title)
	data, _, err := c.getAll(ctx, "/services/v2/songs", params)
	if err != nil {
		return nil, err
	}
	songs := make([]Song, 0, len(data))
	for _, res := range data {
		var attrs songAttrs
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return nil, fmt.Errorf("decode song %s: %w", res.ID, err)
		}
		songs = append(songs, Song{
			ID:     res.ID,
			Title:  attrs.Title,
			Author: attrs.Author,
			Key:    attrs.Key,
			BPM:    attrs.BPM,
			CCLI:   attrs.CCLI,
		})
	}
	return songs, nil
}

// SongUsage lists when a song was last scheduled, newest first as the
// directory orders them.
func (c *Client) SongUsage(ctx context.Context, song Song) (SongUsage, error) {
	data, _, err := c.getAll(ctx, "/services/v2/songs/"+song.ID+"/song_schedules", nil)
	if err != nil {
		return SongUsage{}, err
	}
	usage := SongUsage{Song: song}
	for _, res := range data {
		var attrs struct {
			PlanDate        string `json:"plan_sort_date"`
			ServiceTypeName string `json:"service_type_name"`
			PlanTitle       string `json:"plan_title"`
		}
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return SongUsage{}, fmt.Errorf("decode song schedule: %w", err)
		}
		date, err := parseDay(attrs.PlanDate)
		if err != nil {
			c.logger.Warn("song schedule has unparseable date, skipping", "song", song.ID, "date", attrs.PlanDate)
			continue
		}
		usage.Uses = append(usage.Uses, SongUse{
			Date:            date,
			ServiceTypeName: attrs.ServiceTypeName,
			PlanTitle:       attrs.PlanTitle,
		})
	}
	return usage, nil
}
