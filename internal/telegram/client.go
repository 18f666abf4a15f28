// Package telegram sends risk alerts via the Telegram Bot API.
// It formats detected risk changes and world-war assessments into MarkdownV2 messages
// and handles delivery with retry logic.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/georisk/internal/models"
)

// sender is the subset of *tgbotapi.BotAPI the client uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications
type Client struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return newClient(bot, chatID, maxRetries, retryDelayBase)
}

func newClient(bot sender, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendChanges sends one message listing the given risk changes.
func (c *Client) SendChanges(changes []*models.RiskChange) error {
	if len(changes) == 0 {
		return nil
	}
	return c.send(formatChanges(changes))
}

// SendWorldWar sends a world-war assessment summary.
func (c *Client) SendWorldWar(w *models.WorldWarAssessment) error {
	return c.send(formatWorldWar(w))
}

func (c *Client) send(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatChanges formats risk changes into a Telegram message
func formatChanges(changes []*models.RiskChange) string {
	var b strings.Builder
	b.WriteString("🚨 *Geopolitical Risk Changes Detected*\n\n")
	b.WriteString(fmt.Sprintf("📅 Detected: %s\n\n", escapeMarkdownV2(changes[0].DetectedAt.Format("2006-01-02 15:04:05"))))

	for i, change := range changes {
		trendEmoji := "➡️"
		switch change.Trend {
		case models.TrendIncreasing:
			trendEmoji = "📈"
		case models.TrendDecreasing:
			trendEmoji = "📉"
		}

		b.WriteString(fmt.Sprintf("%d\\. *%s*\n", i+1, escapeMarkdownV2(change.CountryKey)))
		b.WriteString(fmt.Sprintf("   %s Score: *%s* \\(%s → %s\\)\n",
			trendEmoji,
			escapeMarkdownV2(fmt.Sprintf("%+.1f", change.Change)),
			escapeMarkdownV2(fmt.Sprintf("%.1f", change.PreviousScore)),
			escapeMarkdownV2(fmt.Sprintf("%.1f", change.CurrentScore))))
		if change.LevelChanged() {
			b.WriteString(fmt.Sprintf("   🎯 Level: %s → *%s*\n",
				escapeMarkdownV2(string(change.PreviousLevel)), escapeMarkdownV2(string(change.CurrentLevel))))
		}
		for _, alert := range change.Alerts {
			b.WriteString(fmt.Sprintf("   ⚠️ %s\n", escapeMarkdownV2(alert)))
		}
		for _, factor := range change.NewRiskFactors {
			b.WriteString(fmt.Sprintf("   🆕 %s\n", escapeMarkdownV2(factor)))
		}
		if change.Interval > 0 {
			b.WriteString(fmt.Sprintf("   ⏱ Since last: %s\n", escapeMarkdownV2(formatDuration(change.Interval))))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// formatWorldWar formats a world-war assessment into a Telegram message
func formatWorldWar(w *models.WorldWarAssessment) string {
	var b strings.Builder
	b.WriteString("☢️ *World War Escalation Assessment*\n\n")
	b.WriteString(fmt.Sprintf("🌍 Countries: %s\n", escapeMarkdownV2(strings.Join(w.Countries, ", "))))
	b.WriteString(fmt.Sprintf("📊 Score: *%s*/100\n", escapeMarkdownV2(fmt.Sprintf("%.1f", w.WorldWarRiskScore))))
	b.WriteString(fmt.Sprintf("🎲 Probability: %s\n", escapeMarkdownV2(w.WorldWarProbability)))
	b.WriteString(fmt.Sprintf("⏱ Timeline: %s\n", escapeMarkdownV2(w.TimelineToGlobalWar)))

	if len(w.EscalationFactors) > 0 {
		b.WriteString("\n*Escalation factors*\n")
		for _, f := range w.EscalationFactors {
			b.WriteString(fmt.Sprintf("• %s\n", escapeMarkdownV2(f)))
		}
	}
	if len(w.EscalationPathways) > 0 {
		b.WriteString("\n*Pathways*\n")
		for _, p := range w.EscalationPathways {
			b.WriteString(fmt.Sprintf("🔥 %s: %s\n", escapeMarkdownV2(p.Pathway), escapeMarkdownV2(p.Probability)))
		}
	}
	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if days := int(d.Hours()) / 24; days >= 1 {
		return fmt.Sprintf("%dd", days)
	}
	if hours := int(d.Hours()); hours >= 1 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}
