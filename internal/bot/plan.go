package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"backlog-planner/internal/model"
	"backlog-planner/internal/service"
)

// handlePlan generates right away when the energy level is given as an
// argument, otherwise it asks for one.
func (b *Bot) handlePlan(ctx context.Context, msg *tgbotapi.Message) error {
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		return b.generatePlan(ctx, msg.Chat.ID, arg)
	}
	return b.sendWithReplyMarkup(msg.Chat.ID, "⚡ How is your energy right now?", energyInlineKeyboard())
}

func (b *Bot) generatePlan(ctx context.Context, chatID int64, raw string) error {
	energy, ok := model.ParseEnergy(raw)
	if !ok {
		return b.sendWithReplyMarkup(chatID, "Pick Low, Med or High.", energyInlineKeyboard())
	}

	plan, err := b.svc.Plan.Generate(ctx, energy)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not build a plan: %s", escape(err.Error())))
	}

	text := formatPlan(plan)
	if plan.Empty() {
		return b.sendText(chatID, text)
	}
	return b.sendWithReplyMarkup(chatID, text, planKeyboard())
}

func (b *Bot) acceptPlan(ctx context.Context, chatID int64) error {
	task, err := b.svc.Plan.AcceptMain(ctx)
	switch {
	case errors.Is(err, service.ErrNoPlan) && task.Completed:
		return b.sendText(chatID, fmt.Sprintf("«%s» was already completed. Send /plan for a fresh plan.", escape(normalizeTitle(task.Title))))
	case errors.Is(err, service.ErrNoPlan):
		return b.sendText(chatID, "There is no plan to accept. Send /plan first.")
	case err != nil && task.ID == "":
		return b.taskLookupFailed(chatID, err)
	case err != nil:
		return b.sendText(chatID, fmt.Sprintf("✅ «%s» done, but the history entry failed: %s", escape(normalizeTitle(task.Title)), escape(err.Error())))
	}
	return b.sendText(chatID, fmt.Sprintf("🎉 «%s» done. Nice work!", escape(normalizeTitle(task.Title))))
}
