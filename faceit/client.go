// Package faceit is a thin client for the FACEIT Data API v4.
package faceit

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const (
	baseURL = "https://open.faceit.com/data/v4"

	// The bot tracks a single game title.
	GameID = "cs2"
)

// ErrNotFound covers every unsuccessful lookup: unknown nickname, unknown
// player id and transient provider failures all surface the same way.
var ErrNotFound = errors.New("faceit: not found")

// Profile is the subset of a player document the bot cares about. Elo and
// SkillLevel are nil when the player has no record for the tracked game.
type Profile struct {
	PlayerID   string
	Nickname   string
	Avatar     string
	Elo        *int
	SkillLevel *int
}

// LifetimeStats holds display-ready lifetime figures. Empty string means the
// provider did not report the value.
type LifetimeStats struct {
	Matches    string
	WinRatePct string
	AvgKD      string
}

type Client struct {
	resty *resty.Client
}

func NewClient(apiKey string) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey)
	return &Client{resty: r}
}

type playerResp struct {
	PlayerID string `json:"player_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Games    map[string]struct {
		FaceitElo  *int `json:"faceit_elo"`
		SkillLevel *int `json:"skill_level"`
	} `json:"games"`
}

type statsResp struct {
	Lifetime map[string]any `json:"lifetime"`
}

// FetchProfile looks a player up by nickname.
func (c *Client) FetchProfile(ctx context.Context, nickname string) (Profile, error) {
	var raw playerResp
	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParam("nickname", nickname).
		SetResult(&raw).
		Get("/players")
	if err != nil {
		return Profile{}, fmt.Errorf("fetch profile %q: %w", nickname, ErrNotFound)
	}
	if resp.IsError() {
		return Profile{}, fmt.Errorf("fetch profile %q: %s: %w", nickname, resp.Status(), ErrNotFound)
	}
	return extractProfile(raw), nil
}

// FetchLifetimeStats fetches lifetime figures for the tracked game, keyed by
// the provider's player id.
func (c *Client) FetchLifetimeStats(ctx context.Context, playerID string) (LifetimeStats, error) {
	var raw statsResp
	resp, err := c.resty.R().
		SetContext(ctx).
		SetResult(&raw).
		Get(fmt.Sprintf("/players/%s/stats/%s", playerID, GameID))
	if err != nil {
		return LifetimeStats{}, fmt.Errorf("fetch stats %q: %w", playerID, ErrNotFound)
	}
	if resp.IsError() {
		return LifetimeStats{}, fmt.Errorf("fetch stats %q: %s: %w", playerID, resp.Status(), ErrNotFound)
	}
	return extractLifetimeStats(raw), nil
}

// extractProfile never fails; missing game records become nil fields.
func extractProfile(raw playerResp) Profile {
	p := Profile{
		PlayerID: raw.PlayerID,
		Nickname: raw.Nickname,
		Avatar:   raw.Avatar,
	}
	if game, ok := raw.Games[GameID]; ok {
		p.Elo = game.FaceitElo
		p.SkillLevel = game.SkillLevel
	}
	return p
}

func extractLifetimeStats(raw statsResp) LifetimeStats {
	return LifetimeStats{
		Matches:    lifetimeValue(raw.Lifetime, "Matches"),
		WinRatePct: lifetimeValue(raw.Lifetime, "Win Rate %"),
		AvgKD:      lifetimeValue(raw.Lifetime, "Average K/D Ratio"),
	}
}

// lifetimeValue tolerates the provider reporting figures as strings or
// numbers; anything else counts as absent.
func lifetimeValue(lifetime map[string]any, key string) string {
	switch v := lifetime[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return ""
	}
}
