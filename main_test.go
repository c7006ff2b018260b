package main

import (
	"strings"
	"testing"

	"faceitbot/faceit"
)

func intPtr(v int) *int { return &v }

func TestConstructStatsEmbedFull(t *testing.T) {
	profile := faceit.Profile{
		PlayerID:   "abc",
		Avatar:     "https://example.com/a.png",
		Elo:        intPtr(2001),
		SkillLevel: intPtr(10),
	}
	stats := faceit.LifetimeStats{Matches: "1510", WinRatePct: "52", AvgKD: "1.13"}

	embed := constructStatsEmbed("playerA", profile, stats)

	if embed.Title != "FACEIT Stats for playerA" {
		t.Fatalf("unexpected title %q", embed.Title)
	}
	if embed.Thumbnail == nil || embed.Thumbnail.URL != profile.Avatar {
		t.Fatalf("unexpected thumbnail: %+v", embed.Thumbnail)
	}
	if embed.Image == nil || embed.Image.URL != "https://cdn.faceit.com/images/levels/csgo/level_10_svg.svg" {
		t.Fatalf("unexpected image: %+v", embed.Image)
	}

	want := map[string]string{
		"ELO":        "2001",
		"Matches":    "1510",
		"Win Rate %": "52",
		"K/D Ratio":  "1.13",
	}
	if len(embed.Fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(embed.Fields))
	}
	for _, f := range embed.Fields {
		if want[f.Name] != f.Value {
			t.Errorf("field %q = %q, want %q", f.Name, f.Value, want[f.Name])
		}
	}
}

func TestConstructStatsEmbedUnknownFields(t *testing.T) {
	embed := constructStatsEmbed("playerA", faceit.Profile{}, faceit.LifetimeStats{})

	if embed.Thumbnail != nil {
		t.Fatal("thumbnail set without an avatar")
	}
	if embed.Image != nil {
		t.Fatal("level badge set without a level")
	}
	for _, f := range embed.Fields {
		if f.Value != "N/A" {
			t.Errorf("field %q = %q, want N/A", f.Name, f.Value)
		}
	}
}

func TestHelpTextListsAllCommands(t *testing.T) {
	for _, name := range commandNames {
		if !strings.Contains(helpText, "/"+name+" ") {
			t.Errorf("help text is missing /%s", name)
		}
	}
}
