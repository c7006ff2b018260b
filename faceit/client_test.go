package faceit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{resty: resty.New().SetBaseURL(srv.URL).SetAuthToken("test-key")}
}

func intPtr(v int) *int { return &v }

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("nickname"); got != "playerA" {
			t.Errorf("unexpected nickname %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"player_id": "abc-123",
			"nickname": "playerA",
			"avatar": "https://example.com/a.png",
			"games": {"cs2": {"faceit_elo": 2001, "skill_level": 10}}
		}`))
	}))
	defer srv.Close()

	p, err := testClient(srv).FetchProfile(context.Background(), "playerA")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if p.PlayerID != "abc-123" || p.Nickname != "playerA" || p.Avatar != "https://example.com/a.png" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Elo == nil || *p.Elo != 2001 {
		t.Fatalf("unexpected elo: %v", p.Elo)
	}
	if p.SkillLevel == nil || *p.SkillLevel != 10 {
		t.Fatalf("unexpected skill level: %v", p.SkillLevel)
	}
}

func TestFetchProfileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"not found"}]}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv).FetchProfile(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchProfileServerError(t *testing.T) {
	// Rate limiting and outages collapse into the same not-found outcome.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv).FetchProfile(context.Background(), "playerA")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchLifetimeStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players/abc-123/stats/cs2" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lifetime": {"Matches": "1510", "Win Rate %": "52", "Average K/D Ratio": "1.13"}}`))
	}))
	defer srv.Close()

	stats, err := testClient(srv).FetchLifetimeStats(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("FetchLifetimeStats: %v", err)
	}
	want := LifetimeStats{Matches: "1510", WinRatePct: "52", AvgKD: "1.13"}
	if stats != want {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestFetchLifetimeStatsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no stats", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv).FetchLifetimeStats(context.Background(), "abc-123")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExtractProfileMissingGame(t *testing.T) {
	p := extractProfile(playerResp{PlayerID: "abc", Nickname: "playerA"})
	if p.Elo != nil || p.SkillLevel != nil {
		t.Fatalf("expected nil elo and level, got %+v", p)
	}
}

func TestExtractProfileOtherGameOnly(t *testing.T) {
	var raw playerResp
	raw.PlayerID = "abc"
	raw.Games = map[string]struct {
		FaceitElo  *int `json:"faceit_elo"`
		SkillLevel *int `json:"skill_level"`
	}{
		"csgo": {FaceitElo: intPtr(1500), SkillLevel: intPtr(6)},
	}

	p := extractProfile(raw)
	if p.Elo != nil || p.SkillLevel != nil {
		t.Fatalf("record for another game leaked through: %+v", p)
	}
}

func TestExtractLifetimeStats(t *testing.T) {
	tests := []struct {
		name     string
		lifetime map[string]any
		want     LifetimeStats
	}{
		{
			name:     "all present",
			lifetime: map[string]any{"Matches": "100", "Win Rate %": "48", "Average K/D Ratio": "0.97"},
			want:     LifetimeStats{Matches: "100", WinRatePct: "48", AvgKD: "0.97"},
		},
		{
			name:     "partial",
			lifetime: map[string]any{"Matches": "100"},
			want:     LifetimeStats{Matches: "100"},
		},
		{
			name:     "numeric values",
			lifetime: map[string]any{"Matches": float64(100), "Average K/D Ratio": 1.5},
			want:     LifetimeStats{Matches: "100", AvgKD: "1.5"},
		},
		{
			name: "empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractLifetimeStats(statsResp{Lifetime: tt.lifetime})
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
