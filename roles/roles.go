// Package roles keeps a member's level role in sync with their FACEIT skill
// level. A guild carries at most one "FACEIT Level <n>" role per member after
// a successful reconciliation.
package roles

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	// Prefix identifies the roles this package owns.
	Prefix = "FACEIT Level "

	roleColor = 0x2ECC71
)

// Name returns the canonical role name for a skill level.
func Name(level int) string {
	return fmt.Sprintf("%s%d", Prefix, level)
}

// IsLevelRole reports whether a role name follows the level naming convention.
func IsLevelRole(name string) bool {
	return strings.HasPrefix(name, Prefix)
}

// Session is the slice of *discordgo.Session the reconciler needs.
type Session interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// Reconcile ensures the member holds exactly the level role for level,
// creating it in the guild if it does not exist yet. Superseded level roles
// are removed best-effort: a failed removal is logged and does not stop the
// rest. Callers must resolve the skill level before calling; Reconcile does
// not handle "level unknown".
func Reconcile(s Session, guildID string, member *discordgo.Member, level int) (string, error) {
	target := Name(level)

	guildRoles, err := s.GuildRoles(guildID)
	if err != nil {
		return "", fmt.Errorf("list guild roles: %w", err)
	}

	byID := make(map[string]*discordgo.Role, len(guildRoles))
	var targetRole *discordgo.Role
	for _, r := range guildRoles {
		byID[r.ID] = r
		if r.Name == target {
			targetRole = r
		}
	}

	if targetRole == nil {
		color := roleColor
		targetRole, err = s.GuildRoleCreate(guildID, &discordgo.RoleParams{Name: target, Color: &color})
		if err != nil {
			return "", fmt.Errorf("create role %q: %w", target, err)
		}
	}

	hasTarget := false
	for _, id := range member.Roles {
		if id == targetRole.ID {
			hasTarget = true
			continue
		}
		r, ok := byID[id]
		if !ok || !IsLevelRole(r.Name) {
			continue
		}
		if err := s.GuildMemberRoleRemove(guildID, member.User.ID, r.ID); err != nil {
			slog.Warn("failed to remove superseded level role",
				slog.String("guild", guildID),
				slog.String("user", member.User.ID),
				slog.String("role", r.Name),
				"error", err)
		}
	}

	if !hasTarget {
		if err := s.GuildMemberRoleAdd(guildID, member.User.ID, targetRole.ID); err != nil {
			return "", fmt.Errorf("assign role %q: %w", target, err)
		}
	}

	return target, nil
}
