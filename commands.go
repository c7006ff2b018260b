package main

import "github.com/bwmarrin/discordgo"

var (
	manageGuildPerms int64 = discordgo.PermissionManageServer
	commands               = []*discordgo.ApplicationCommand{
		{
			Name:        "faceitsearch",
			Description: "Search FACEIT stats for a given username",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "username",
					Description: "FACEIT username to search for",
					Required:    true,
				},
			},
		},
		{
			Name:        "linkfaceit",
			Description: "Link your Discord account to your FACEIT username",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "username",
					Description: "FACEIT username to link",
					Required:    true,
				},
			},
		},
		{
			Name:        "faceitupdate",
			Description: "Update your Discord role based on your FACEIT level",
			Contexts:    &[]discordgo.InteractionContextType{discordgo.InteractionContextGuild},
		},
		{
			Name:                     "faceitupdateall",
			Description:              "(Admin) Update FACEIT roles for all linked users in the server",
			DefaultMemberPermissions: &manageGuildPerms,
			Contexts:                 &[]discordgo.InteractionContextType{discordgo.InteractionContextGuild},
		},
		{
			Name:        "help",
			Description: "Show all available commands and their descriptions",
		},
	}
)

var commandNames = func() []string {
	names := make([]string, len(commands))
	for i, cmd := range commands {
		names[i] = cmd.Name
	}
	return names
}()
