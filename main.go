package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"faceitbot/faceit"
	"faceitbot/roles"
	"faceitbot/storage"
	"faceitbot/syncer"

	"github.com/bwmarrin/discordgo"
	"github.com/jellydator/ttlcache/v3"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

type Config struct {
	DiscordBotToken string `envconfig:"DISCORD_BOT_TOKEN" required:"true"`
	FaceitAPIKey    string `envconfig:"FACEIT_API_KEY" required:"true"`
	LinksFile       string `envconfig:"LINKS_FILE" default:"faceit_links.json"`
	// When set, links live in a bbolt db at this path instead of the JSON file.
	StoreDB string `envconfig:"STORE_DB"`
	// Zero disables the periodic background role sweep.
	SyncInterval time.Duration `envconfig:"SYNC_INTERVAL"`
}

func main() {
	_ = godotenv.Load()
	var config Config
	envconfig.MustProcess("", &config)

	zlogger, _ := zap.NewDevelopment()
	defer zlogger.Sync()
	slogger := slog.New(zapslog.NewHandler(zlogger.Core()))
	slog.SetDefault(slogger)

	var store storage.Links
	if config.StoreDB != "" {
		db, err := bolt.Open(config.StoreDB, 0o600, &bolt.Options{Timeout: 5 * time.Second})
		if err != nil {
			panic(err)
		}
		defer db.Close()
		storage.MustInitDB(db)
		store = storage.NewBoltStore(db)
	} else {
		store = storage.NewFileStore(config.LinksFile)
	}

	fc := faceit.NewClient(config.FaceitAPIKey)

	token := "Bot " + config.DiscordBotToken
	dg, err := discordgo.New(token)
	if err != nil {
		panic(err)
	}

	// Remembers the level last applied per guild member so background sweeps
	// skip members whose level has not moved. Command-initiated updates never
	// consult it.
	levelCache := ttlcache.New[string, int](
		ttlcache.WithTTL[string, int](24 * time.Hour),
	)
	go levelCache.Start()

	sy := syncer.New(config.SyncInterval)
	sy.OnSweep(func(guildID string) {
		updated := updateLinkedMembers(dg, store, fc, guildID, levelCache)
		slog.Info("background sweep finished", slog.String("server", guildID), slog.Int("updated", updated))
	})

	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("bot is online")
	})

	dg.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		slog.Info("bot is connected to server", slog.String("server", g.Guild.ID), slog.String("server_name", g.Guild.Name))
		registerCommands(s, g.Guild)
		if config.SyncInterval > 0 {
			slog.Info("starting role sync", slog.String("server", g.Guild.ID), slog.Duration("interval", config.SyncInterval))
			sy.Start(g.Guild.ID)
		}
	})

	dg.AddHandler(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		slog.Info("bot is disconnected from server", slog.String("server", g.Guild.ID))
		sy.Stop(g.Guild.ID)
	})

	dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		data := i.ApplicationCommandData()

		switch data.Name {
		case "faceitsearch":
			handleSearch(s, i, fc, data.Options[0].StringValue())
		case "linkfaceit":
			handleLink(s, i, store, data.Options[0].StringValue())
		case "faceitupdate":
			handleUpdate(s, i, store, fc)
		case "faceitupdateall":
			handleUpdateAll(s, i, store, fc)
		case "help":
			respond(s, i, helpText)
		default:
			slog.Warn("unknown command, should remove it", slog.String("server", i.GuildID), slog.String("command", data.Name))
			respond(s, i, "⚠️ Unknown command")
			removeCommand(s, i.GuildID, data)
		}
	})

	err = dg.Open()
	if err != nil {
		panic(err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	dg.Close()
}

func handleSearch(s *discordgo.Session, i *discordgo.InteractionCreate, fc *faceit.Client, username string) {
	ctx := context.Background()

	profile, err := fc.FetchProfile(ctx, username)
	if err != nil {
		slog.Warn("profile lookup failed", slog.String("username", username), "error", err)
		respond(s, i, "❌ Could not find FACEIT user: "+username)
		return
	}
	stats, err := fc.FetchLifetimeStats(ctx, profile.PlayerID)
	if err != nil {
		slog.Warn("stats lookup failed", slog.String("username", username), "error", err)
		respond(s, i, "❌ Could not fetch stats for: "+username)
		return
	}

	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{constructStatsEmbed(username, profile, stats)},
		},
	})
}

func handleLink(s *discordgo.Session, i *discordgo.InteractionCreate, store storage.Links, username string) {
	if err := store.Link(callerID(i), username); err != nil {
		slog.Error("error saving link", slog.String("user", callerID(i)), "error", err)
		respond(s, i, "❌ Error, try again")
		return
	}
	respond(s, i, "✅ Linked your Discord account to FACEIT username: "+username)
}

func handleUpdate(s *discordgo.Session, i *discordgo.InteractionCreate, store storage.Links, fc *faceit.Client) {
	if i.Member == nil {
		respond(s, i, "⚠️ This command only works in a server")
		return
	}

	username, ok, err := store.Lookup(i.Member.User.ID)
	if err != nil {
		slog.Error("error reading link", slog.String("user", i.Member.User.ID), "error", err)
		respond(s, i, "❌ Error, try again")
		return
	}
	if !ok {
		respond(s, i, "⚠️ You need to link your FACEIT account first using /linkfaceit <username>.")
		return
	}

	profile, err := fc.FetchProfile(context.Background(), username)
	if err != nil {
		slog.Warn("profile lookup failed", slog.String("username", username), "error", err)
		respond(s, i, "❌ Could not find FACEIT user: "+username)
		return
	}
	if profile.SkillLevel == nil {
		respond(s, i, "⚠️ Could not determine your FACEIT level.")
		return
	}

	roleName, err := roles.Reconcile(s, i.GuildID, i.Member, *profile.SkillLevel)
	if err != nil {
		slog.Error("error updating member roles", slog.String("server", i.GuildID), slog.String("user", i.Member.User.ID), "error", err)
		respond(s, i, "❌ Error, try again")
		return
	}
	respond(s, i, "✅ Your role has been updated to "+roleName+"!")
}

func handleUpdateAll(s *discordgo.Session, i *discordgo.InteractionCreate, store storage.Links, fc *faceit.Client) {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionManageServer == 0 {
		respond(s, i, "⚠️ You do not have permission to use this command.")
		return
	}

	// A full sweep will not fit the 3 second acknowledgment window.
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: 1 << 6},
	})

	updated := updateLinkedMembers(s, store, fc, i.GuildID, nil)

	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: fmt.Sprintf("✅ Updated FACEIT roles for %d members.", updated),
		Flags:   1 << 6,
	})
	if err != nil {
		slog.Error("error sending follow-up", slog.String("server", i.GuildID), "error", err)
	}
}

// updateLinkedMembers reconciles the level role of every linked member still
// present in the guild, one at a time. Per-member failures are skipped, never
// aborting the batch. With a levelCache, members whose fresh level matches
// the cached one are left alone.
func updateLinkedMembers(s *discordgo.Session, store storage.Links, fc *faceit.Client, guildID string, levelCache *ttlcache.Cache[string, int]) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	links, err := store.All()
	if err != nil {
		slog.Error("error loading links", slog.String("server", guildID), "error", err)
		return 0
	}

	updated := 0
	for userID, username := range links {
		member, err := s.GuildMember(guildID, userID)
		if err != nil {
			// Linked user is no longer in this guild.
			continue
		}
		profile, err := fc.FetchProfile(ctx, username)
		if err != nil {
			slog.Warn("profile lookup failed", slog.String("username", username), "error", err)
			continue
		}
		if profile.SkillLevel == nil {
			continue
		}
		level := *profile.SkillLevel

		cacheKey := guildID + userID
		if levelCache != nil {
			if item := levelCache.Get(cacheKey); item != nil && item.Value() == level {
				continue
			}
		}

		if _, err := roles.Reconcile(s, guildID, member, level); err != nil {
			slog.Warn("error updating member roles", slog.String("server", guildID), slog.String("user", userID), "error", err)
			continue
		}
		if levelCache != nil {
			levelCache.Set(cacheKey, level, ttlcache.DefaultTTL)
		}
		updated++
	}
	return updated
}

func callerID(i *discordgo.InteractionCreate) string {
	if i.Member != nil {
		return i.Member.User.ID
	}
	return i.User.ID
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   1 << 6, // ephemeral
		},
	})
}

func registerCommands(s *discordgo.Session, guild *discordgo.Guild) {
	_, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guild.ID, commands)
	if err != nil {
		slog.Error("error registering commands", slog.String("server", guild.ID), "commands", commandNames, "error", err)
		return
	}
	slog.Info("commands registered", slog.String("server", guild.ID), "commands", commandNames)
}

func removeCommand(s *discordgo.Session, guildId string, command discordgo.ApplicationCommandInteractionData) {
	err := s.ApplicationCommandDelete(s.State.User.ID, guildId, command.ID)
	if err != nil {
		slog.Error("error removing command", slog.String("server", guildId), slog.String("command", command.Name), "error", err)
		return
	}
	slog.Info("command removed", slog.String("server", guildId), slog.String("command", command.Name))
}

func constructStatsEmbed(username string, profile faceit.Profile, stats faceit.LifetimeStats) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("FACEIT Stats for %v", username),
		Color: 0x00FF00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ELO", Value: orUnknown(eloValue(profile)), Inline: true},
			{Name: "Matches", Value: orUnknown(stats.Matches), Inline: true},
			{Name: "Win Rate %", Value: orUnknown(stats.WinRatePct), Inline: true},
			{Name: "K/D Ratio", Value: orUnknown(stats.AvgKD), Inline: true},
		},
	}
	if profile.Avatar != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: profile.Avatar}
	}
	if profile.SkillLevel != nil {
		embed.Image = &discordgo.MessageEmbedImage{URL: levelBadgeURL(*profile.SkillLevel)}
	}
	return embed
}

func levelBadgeURL(level int) string {
	return fmt.Sprintf("https://cdn.faceit.com/images/levels/csgo/level_%d_svg.svg", level)
}

func eloValue(profile faceit.Profile) string {
	if profile.Elo == nil {
		return ""
	}
	return strconv.Itoa(*profile.Elo)
}

func orUnknown(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

var helpText = func() string {
	var sb strings.Builder
	sb.WriteString("**Available Commands:**\n")
	for _, cmd := range commands {
		fmt.Fprintf(&sb, "/%s - %s.\n", cmd.Name, cmd.Description)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}()
