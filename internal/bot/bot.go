package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/yorune/t10-bot/internal/bestdori"
	"github.com/yorune/t10-bot/internal/config"
	"github.com/yorune/t10-bot/internal/pipeline"
	"github.com/yorune/t10-bot/internal/schedule"
	"github.com/yorune/t10-bot/internal/storage"
)

// Bot represents the Discord bot instance
type Bot struct {
	config   *config.Config
	session  *discordgo.Session
	repo     *storage.Repository
	runner   *pipeline.Runner
	tracker  *schedule.Tracker
	commands []*discordgo.ApplicationCommand

	// ctx is the root context tracking loops are derived from
	ctx context.Context
}

// New creates a new Bot instance
func New(cfg *config.Config) (*Bot, error) {
	// Create Discord session
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Set intents
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	// Initialize storage
	repo, err := storage.NewRepository(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client := bestdori.NewClient(cfg.APIBaseURL, cfg.FetchAttempts, cfg.FetchRetryDelay)

	b := &Bot{
		config:  cfg,
		session: session,
		repo:    repo,
		runner:  pipeline.New(client, repo),
		tracker: schedule.NewTracker(),
	}

	// Register command handlers
	b.registerHandlers()

	return b, nil
}

// Start opens the Discord connection and registers slash commands
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx

	// Open Discord connection
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	slog.Info("Connected to Discord", "user", b.session.State.User.Username)

	// Register slash commands
	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() error {
	// Stop all tracking loops
	if b.tracker != nil {
		b.tracker.StopAll()
	}

	// Close storage
	if b.repo != nil {
		b.repo.Close()
	}

	// Close Discord session
	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// registerHandlers sets up Discord event handlers
func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Bot is ready", "guilds", len(r.Guilds))
	})
}

// handleInteraction processes slash command interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	slog.Debug("Received command", "command", data.Name, "guild", i.GuildID)

	switch data.Name {
	case "setrunner":
		b.handleSetRunner(s, i)
	case "getrunner":
		b.handleGetRunner(s, i)
	case "delrunner":
		b.handleDelRunner(s, i)
	case "t10-1h":
		b.handleStart(s, i, schedule.WindowHourly)
	case "t10-2min":
		b.handleStart(s, i, schedule.WindowTwoMin)
	case "stopt10-1h":
		b.handleStop(s, i, schedule.WindowHourly)
	case "stopt10-2min":
		b.handleStop(s, i, schedule.WindowTwoMin)
	case "t10now":
		b.handleRunNow(s, i)
	case "support":
		b.handleSupport(s, i)
	default:
		slog.Warn("Unknown command", "command", data.Name)
	}
}
