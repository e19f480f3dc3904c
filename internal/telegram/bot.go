package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"autism-diet-planner/internal/app"
	"autism-diet-planner/internal/config"
	"autism-diet-planner/internal/diet"
	"autism-diet-planner/internal/metrics"
	"autism-diet-planner/internal/planner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// maxMessageLen is Telegram's limit for one text message.
const maxMessageLen = 4096

// Bot wraps the Telegram API and the diet planner.
type Bot struct {
	api     *tgbotapi.BotAPI
	app     *app.App
	cfg     *config.Config
	allowed map[int64]bool
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, application *app.App) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Info().Str("account", api.Self.UserName).Msg("telegram bot authorized")

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		log.Info().Str("description", resp.Description).Msg("telegram webhook set")
	}

	if len(cfg.TelegramAllowedUserIDs) == 0 {
		log.Warn().Msg("TELEGRAM_ALLOWED_USER_IDS is empty, the bot will ignore every message")
	}

	return &Bot{
		api:     api,
		app:     application,
		cfg:     cfg,
		allowed: allowSet(cfg.TelegramAllowedUserIDs),
	}, nil
}

func allowSet(ids []int64) map[int64]bool {
	m := make(map[int64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// Handler returns the webhook endpoint.
func (b *Bot) Handler() http.Handler {
	return http.HandlerFunc(b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Warn().Err(err).Msg("error parsing telegram update")
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.allowed[update.Message.From.ID] {
		log.Warn().Int64("user_id", update.Message.From.ID).Str("username", update.Message.From.UserName).Msg("unauthorized telegram access attempt")
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	switch command(msg.Text) {
	case "/start", "/help":
		b.reply(msg.Chat.ID, usageText)
	case "/reset":
		b.app.ResetSession(chatSessionID(msg.Chat.ID))
		b.reply(msg.Chat.ID, "Conversation history cleared. Send your details for a new plan.")
	case "/usage":
		b.handleUsageCommand(msg.Chat.ID)
	default:
		b.handlePlanRequest(msg)
	}
}

// command returns the leading "/command" of a message, without any @botname.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

func chatSessionID(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

func (b *Bot) handlePlanRequest(msg *tgbotapi.Message) {
	profile, err := ParseProfile(msg.Text)
	if err == nil {
		err = profile.Validate()
	}
	if err != nil {
		b.reply(msg.Chat.ID, formatInputError(err))
		return
	}

	status := tgbotapi.NewMessage(msg.Chat.ID, "🧑‍🍳 Thinking... (preparing your diet plan)")
	sent, err := b.api.Send(status)
	if err != nil {
		log.Error().Err(err).Msg("failed to send initial reply")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.LLMTimeout+30*time.Second)
	defer cancel()

	res, err := b.app.Generate(ctx, chatSessionID(msg.Chat.ID), profile)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("error generating plan")
		b.edit(msg.Chat.ID, sent.MessageID, "❌ Could not prepare a plan: "+err.Error())
		return
	}

	var parts []string
	var doc app.Artifact
	if res.Kind == app.KindGenerated {
		parts = splitMessage(res.Text, maxMessageLen)
		doc = app.ArtifactText
	} else {
		parts = []string{formatFallback(res)}
		doc = app.ArtifactCSV
	}

	b.editMarkdown(msg.Chat.ID, sent.MessageID, parts[0], res.Kind == app.KindFallback)
	for _, p := range parts[1:] {
		b.reply(msg.Chat.ID, p)
	}

	dl, err := res.Render(doc)
	if err != nil {
		log.Error().Err(err).Msg("failed to render download")
		return
	}
	file := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{Name: dl.Filename, Bytes: dl.Data})
	if _, err := b.api.Send(file); err != nil {
		log.Error().Err(err).Str("file", dl.Filename).Msg("failed to send document")
	}
}

// formatInputError explains what to fix, one field per line.
func formatInputError(err error) string {
	var verr *diet.ValidationError
	if !errors.As(err, &verr) {
		return "⚠️ " + err.Error() + "\n\nSend /help for the expected format."
	}

	var sb strings.Builder
	sb.WriteString("⚠️ Please correct the following:\n")
	for _, line := range strings.Split(strings.TrimPrefix(verr.Error(), "invalid profile: "), "; ") {
		sb.WriteString("• " + line + "\n")
	}
	sb.WriteString("\nSend /help for the expected format.")
	return sb.String()
}

// formatFallback renders the notice and the sample plan as a code block.
// Every day carries the same dishes, so one line per slot is enough.
func formatFallback(res *app.Result) string {
	var buf bytes.Buffer
	buf.WriteString("⚠️ " + res.Notice + "\n\n")
	buf.WriteString("*Sample Diet Plan* (every day of the week)\n")
	buf.WriteString("```\n")
	_ = planner.DaySummary(&buf, res.Plan)
	buf.WriteString("```")
	return buf.String()
}

// splitMessage cuts text into pieces of at most limit bytes, preferring line
// breaks and never splitting a UTF-8 sequence.
func splitMessage(text string, limit int) []string {
	if strings.TrimSpace(text) == "" {
		return []string{"(empty answer)"}
	}
	var parts []string
	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], '\n')
		if cut <= 0 {
			cut = limit
			for cut > 0 && !isRuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		parts = append(parts, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send telegram message")
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	b.editMarkdown(chatID, messageID, text, false)
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string, markdown bool) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if markdown {
		edit.ParseMode = "Markdown"
	}
	if _, err := b.api.Send(edit); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to edit telegram message")
	}
}

func (b *Bot) handleUsageCommand(chatID int64) {
	usage, err := b.app.DailyUsage(context.Background(), 7)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch daily usage")
		b.reply(chatID, "❌ Error fetching metrics.")
		return
	}

	dataDir := ""
	if b.cfg.DatabasePath != "" {
		dataDir = filepath.Dir(b.cfg.DatabasePath)
	}
	health := metrics.GetSysHealth(dataDir, b.app.ActiveSessions())

	msg := tgbotapi.NewMessage(chatID, formatUsageReport(usage, health))
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Msg("failed to send usage report")
	}
}

func formatUsageReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d plans, %d fallbacks)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Fallbacks))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Active sessions: %d\n", health.ActiveSessions))
	if health.DataDiskSize != "" {
		sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	}
	return sb.String()
}
