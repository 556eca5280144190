package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/yorune/t10-bot/internal/schedule"
)

// Slash command definitions
func (b *Bot) getCommandDefinitions() []*discordgo.ApplicationCommand {
	serverOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "server",
		Description: "Game server index (0 = JP, 1 = EN, ...)",
		Required:    true,
	}
	eventOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "event_id",
		Description: "Event id (omit to track the currently running event)",
		Required:    false,
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "setrunner",
			Description: "メインランナーを設定（IDと名前）",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "player_id",
					Description: "Player id",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "runner_name",
					Description: "Display name",
					Required:    true,
				},
			},
		},
		{
			Name:        "getrunner",
			Description: "現在のメインランナーを表示",
		},
		{
			Name:        "delrunner",
			Description: "メインランナー設定を削除",
		},
		{
			Name:        "t10-1h",
			Description: "時速の計算を開始",
			Options:     []*discordgo.ApplicationCommandOption{serverOption, eventOption},
		},
		{
			Name:        "t10-2min",
			Description: "2分速の計算を開始",
			Options:     []*discordgo.ApplicationCommandOption{serverOption, eventOption},
		},
		{
			Name:        "stopt10-1h",
			Description: "時速の計算を停止",
		},
		{
			Name:        "stopt10-2min",
			Description: "2分速の計算を停止",
		},
		{
			Name:        "t10now",
			Description: "今すぐ集計して画像を投稿",
			Options:     []*discordgo.ApplicationCommandOption{serverOption, eventOption},
		},
		{
			Name:        "support",
			Description: "コマンド一覧表示",
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	slog.Info("Registering slash commands")

	commandDefinitions := b.getCommandDefinitions()
	registeredCommands := make([]*discordgo.ApplicationCommand, 0, len(commandDefinitions))

	for _, cmd := range commandDefinitions {
		registered, err := b.session.ApplicationCommandCreate(
			b.session.State.User.ID,
			"", // Empty string = global command
			cmd,
		)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		registeredCommands = append(registeredCommands, registered)
		slog.Debug("Registered command", "name", cmd.Name)
	}

	b.commands = registeredCommands
	slog.Info("Slash commands registered", "count", len(registeredCommands))
	return nil
}

// handleSetRunner handles the /setrunner command
func (b *Bot) handleSetRunner(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	playerID := options[0].IntValue()
	runnerName := options[1].StringValue()

	if err := b.repo.SetRunner(i.GuildID, playerID, runnerName); err != nil {
		slog.Error("Failed to set runner", "guild", i.GuildID, "error", err)
		respondWithMessage(s, i, "ランナーの設定に失敗しました。")
		return
	}

	respondWithMessage(s, i, fmt.Sprintf("メインランナーを %s (ID: %d) に設定しました。", runnerName, playerID))
}

// handleGetRunner handles the /getrunner command
func (b *Bot) handleGetRunner(s *discordgo.Session, i *discordgo.InteractionCreate) {
	runner, err := b.repo.GetRunner(i.GuildID)
	if err != nil {
		slog.Error("Failed to get runner", "guild", i.GuildID, "error", err)
		respondWithMessage(s, i, "ランナーの取得に失敗しました。")
		return
	}

	if runner == nil {
		respondWithMessage(s, i, "メインランナーは未設定です。")
		return
	}
	respondWithMessage(s, i, fmt.Sprintf("現在のメインランナーは %s (ID: %d) です。", runner.PlayerName, runner.UserID))
}

// handleDelRunner handles the /delrunner command
func (b *Bot) handleDelRunner(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := b.repo.DeleteRunner(i.GuildID); err != nil {
		slog.Error("Failed to delete runner", "guild", i.GuildID, "error", err)
		respondWithMessage(s, i, "ランナーの削除に失敗しました。")
		return
	}
	respondWithMessage(s, i, "メインランナー設定を削除しました。")
}

// handleStart starts a periodic tracking loop for one window
func (b *Bot) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate, w schedule.Window) {
	options := i.ApplicationCommandData().Options
	server := int(options[0].IntValue())
	eventID := 0
	if len(options) > 1 {
		eventID = int(options[1].IntValue())
	}

	guildID := i.GuildID
	channelID := i.ChannelID

	err := b.tracker.Start(b.ctx, guildID, w, func(ctx context.Context) {
		b.runAndPost(ctx, guildID, channelID, w, server, eventID)
	})
	if errors.Is(err, schedule.ErrAlreadyRunning) {
		respondWithMessage(s, i, "⚠️ タスクはすでに実行中です。")
		return
	}
	if err != nil {
		slog.Error("Failed to start tracking loop", "guild", guildID, "window", w, "error", err)
		respondWithMessage(s, i, "タスクの開始に失敗しました。")
		return
	}

	switch w {
	case schedule.WindowTwoMin:
		respondWithMessage(s, i, "✅ 2分速の計算を開始します")
	default:
		respondWithMessage(s, i, "✅ 時速の計算を開始します")
	}
}

// handleStop stops a periodic tracking loop for one window
func (b *Bot) handleStop(s *discordgo.Session, i *discordgo.InteractionCreate, w schedule.Window) {
	if !b.tracker.Stop(i.GuildID, w) {
		respondWithMessage(s, i, "タスクは実行中ではありません")
		return
	}

	switch w {
	case schedule.WindowTwoMin:
		respondWithMessage(s, i, "2分速の計算を停止しました。")
	default:
		respondWithMessage(s, i, "時速の計算を停止しました")
	}
}

// handleRunNow handles the /t10now one-shot command
func (b *Bot) handleRunNow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	server := int(options[0].IntValue())
	eventID := 0
	if len(options) > 1 {
		eventID = int(options[1].IntValue())
	}

	// Respond immediately to avoid timeout
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})

	guildID := i.GuildID
	channelID := i.ChannelID

	go func() {
		ctx, cancel := context.WithTimeout(b.ctx, 60*time.Second)
		defer cancel()

		if b.runAndPost(ctx, guildID, channelID, schedule.WindowHourly, server, eventID) {
			b.editResponse(s, i, "✅ 集計が完了しました")
		} else {
			b.editResponse(s, i, "❌ データ取得失敗のため画像生成をスキップしました")
		}
	}()
}

// handleSupport handles the /support command
func (b *Bot) handleSupport(s *discordgo.Session, i *discordgo.InteractionCreate) {
	msg := `**コマンド一覧**
/setrunner <ID> <名前> : ランナー設定
/getrunner : 現在のランナー確認
/delrunner : ランナー設定を削除
/t10-1h <server> [event_id] : 時速の計算を開始
/t10-2min <server> [event_id] : 2分速の計算を開始
/stopt10-1h : 時速の計算を停止
/stopt10-2min : 2分速の計算を停止
/t10now <server> [event_id] : 今すぐ集計して投稿
`
	respondWithMessage(s, i, msg)
}

// runAndPost runs one cycle and posts the rendered image to the channel.
// A cycle that cannot produce entries is skipped: logged, nothing posted.
func (b *Bot) runAndPost(ctx context.Context, guildID, channelID string, w schedule.Window, server, eventID int) bool {
	result, err := b.runner.RunCycle(ctx, guildID, w, server, eventID)
	if err != nil {
		slog.Error("Cycle skipped", "guild", guildID, "window", w, "error", err)
		return false
	}

	path := filepath.Join(b.config.OutputDir, fmt.Sprintf("t10_%s_%s.png", w, guildID))
	if err := os.MkdirAll(b.config.OutputDir, 0755); err != nil {
		slog.Error("Failed to create output directory", "error", err)
		return false
	}
	if err := os.WriteFile(path, result.Image, 0644); err != nil {
		slog.Error("Failed to write image", "path", path, "error", err)
		return false
	}
	// The file only exists for the duration of the upload
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		slog.Error("Failed to open image", "path", path, "error", err)
		return false
	}
	defer f.Close()

	if _, err := b.session.ChannelFileSend(channelID, filepath.Base(path), f); err != nil {
		slog.Error("Failed to post image", "guild", guildID, "channel", channelID, "error", err)
		return false
	}

	slog.Info("Posted leaderboard image", "guild", guildID, "window", w, "event", result.EventID)
	return true
}

// Helper functions

func respondWithMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

func (b *Bot) editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
}
