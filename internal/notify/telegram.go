// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/olegiv/ostaff-go/internal/model"
	"github.com/olegiv/ostaff-go/internal/util"
)

// Telegram posts a short HTML summary to one chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram connects to the Bot API. It fails when the token is rejected.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, chatID, tgbotapi.APIEndpoint, &http.Client{})
}

// NewTelegramWithEndpoint is NewTelegram against a custom API endpoint of
// the form "https://host/bot%s/%s".
func NewTelegramWithEndpoint(token string, chatID int64, endpoint string, client *http.Client) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) MessageReceived(_ context.Context, m model.Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "📨 <b>New %s message</b>\n", html.EscapeString(m.FromType.Label()))
	fmt.Fprintf(&b, "👤 %s", html.EscapeString(m.FullName))
	if c := util.StringValue(m.CompanyName); c != "" {
		fmt.Fprintf(&b, " (%s)", html.EscapeString(c))
	}
	fmt.Fprintf(&b, "\n✉️ %s\n", html.EscapeString(m.Email))
	fmt.Fprintf(&b, "📝 %s", html.EscapeString(m.Subject))
	return t.send(b.String())
}

func (t *Telegram) ApplicationReceived(_ context.Context, a model.Application) error {
	var b strings.Builder
	b.WriteString("🧾 <b>New application</b>\n")
	fmt.Fprintf(&b, "👤 %s\n✉️ %s\n", html.EscapeString(a.FullName), html.EscapeString(a.Email))
	if role := util.StringValue(a.RoleApplied); role != "" {
		fmt.Fprintf(&b, "💼 %s\n", html.EscapeString(role))
	}
	if city := util.StringValue(a.City); city != "" {
		fmt.Fprintf(&b, "📍 %s\n", html.EscapeString(city))
	}
	return t.send(strings.TrimRight(b.String(), "\n"))
}

func (t *Telegram) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}
