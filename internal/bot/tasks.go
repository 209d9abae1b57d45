package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"backlog-planner/internal/model"
	"backlog-planner/internal/repository"
	"backlog-planner/internal/service"
)

func (b *Bot) startNewTaskConversation(msg *tgbotapi.Message) error {
	log.Printf("[info] start new task conversation user=%d", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what is it called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The title cannot be empty.", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stagePriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "<b>Step 2:</b> priority? P0 is the most important.", priorityKeyboard())
	case stagePriority:
		if !isSkipInput(text) {
			p, ok := model.ParsePriority(text)
			if !ok {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Pick P0, P1, P2 or P3.", priorityKeyboard())
			}
			state.input.Priority = p
		}
		state.stage = stageEnergy
		return b.sendWithReplyMarkup(msg.Chat.ID, "<b>Step 3:</b> how much energy does it need?", energyKeyboard())
	case stageEnergy:
		if !isSkipInput(text) {
			e, ok := model.ParseEnergy(text)
			if !ok {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Pick Low, Med or High.", energyKeyboard())
			}
			state.input.EnergyNeed = e
		}
		state.stage = stageEstimate
		return b.sendWithReplyMarkup(msg.Chat.ID, "<b>Step 4:</b> estimate in minutes (e.g. <code>45</code>).", skipKeyboard())
	case stageEstimate:
		if !isSkipInput(text) {
			minutes, err := strconv.Atoi(strings.TrimSuffix(text, "m"))
			if err != nil || minutes <= 0 {
				return b.sendWithReplyMarkup(msg.Chat.ID, "The estimate must be a positive number of minutes.", skipKeyboard())
			}
			state.input.EstimateMin = minutes
		}
		state.stage = stageDueDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "<b>Step 5:</b> due date as <code>2026-11-30</code>, «today» or «tomorrow».", skipKeyboard())
	case stageDueDate:
		if !isSkipInput(text) {
			due, err := parseDueDate(text, b.now())
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "I cannot read that date. Use <code>2026-11-30</code> or skip.", skipKeyboard())
			}
			state.input.DueDate = &due
		}
		err := b.finishTaskCreation(ctx, state.input, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	case stageImport:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Send the backup <b>.json</b> file as a document.", cancelKeyboard())
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Dialog reset. Try /newtask again.")
	}
}

func (b *Bot) handleQuickAdd(ctx context.Context, msg *tgbotapi.Message) error {
	title := strings.TrimSpace(msg.CommandArguments())
	if title == "" {
		return b.sendText(msg.Chat.ID, "Usage: /add buy light bulbs")
	}
	return b.finishTaskCreation(ctx, service.QuickInput(title), msg.Chat.ID)
}

func (b *Bot) finishTaskCreation(ctx context.Context, input service.TaskInput, chatID int64) error {
	task, err := b.svc.Tasks.CreateTask(ctx, input)
	if err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
	}
	b.svc.Plan.Invalidate()

	log.Printf("[info] task created id=%s priority=%s energy=%s", task.ID, task.Priority, task.EnergyNeed)

	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Title:</b> %s\n", escape(normalizeTitle(task.Title))))
	summary.WriteString(fmt.Sprintf("• <b>Priority:</b> %s · <b>Energy:</b> %s · <b>Estimate:</b> %d min\n", task.Priority, task.EnergyNeed, task.EstimateMin))
	if task.DueDate != nil {
		summary.WriteString(fmt.Sprintf("• <b>Due:</b> %s\n", task.DueDate.Format("2006-01-02")))
	}
	return b.sendTextWithRemove(chatID, strings.TrimSpace(summary.String()))
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64) error {
	tasks, err := b.svc.Tasks.ListPending(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "The backlog is empty. Capture something with /add.")
	}

	sortForDisplay(tasks)

	now := b.now()
	var builder strings.Builder
	builder.WriteString("📋 <b>Backlog</b>\n")
	builder.WriteString("Tap a button to complete or delete a task.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		builder.WriteString(service.FormatTaskHTML(task, now))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ "+shortTitle(task.Title, 24), cbCompletePrefix+task.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+task.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) askCompleteConfirmation(ctx context.Context, chatID, userID int64, taskID string) error {
	task, err := b.svc.Tasks.GetTask(ctx, taskID)
	if err != nil {
		return b.taskLookupFailed(chatID, err)
	}
	if task.Completed {
		return b.sendText(chatID, "The task is already done.")
	}

	text := fmt.Sprintf("Mark «%s» as done?", escape(normalizeTitle(task.Title)))
	b.setConfirmation(userID, confirmationRequest{taskID: task.ID, action: actionComplete})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID, userID int64, taskID string) error {
	task, err := b.svc.Tasks.GetTask(ctx, taskID)
	if err != nil {
		return b.taskLookupFailed(chatID, err)
	}

	text := fmt.Sprintf("Delete «%s»?", escape(normalizeTitle(task.Title)))
	b.setConfirmation(userID, confirmationRequest{taskID: task.ID, action: actionDelete})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) completeTaskAndRefresh(ctx context.Context, chatID int64, taskID string) error {
	task, err := b.svc.Tasks.CompleteTask(ctx, taskID)
	if err != nil {
		return b.taskLookupFailed(chatID, err)
	}
	b.svc.Plan.Invalidate()

	log.Printf("[info] task completed id=%s", task.ID)
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("✅ «%s» done.", escape(normalizeTitle(task.Title)))); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID)
}

func (b *Bot) deleteTaskAndRefresh(ctx context.Context, chatID int64, taskID string) error {
	task, err := b.svc.Tasks.GetTask(ctx, taskID)
	if err != nil {
		return b.taskLookupFailed(chatID, err)
	}
	if _, err := b.svc.Tasks.DeleteTask(ctx, taskID); err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	b.svc.Plan.Invalidate()

	log.Printf("[info] task deleted id=%s", task.ID)
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 «%s» deleted.", escape(normalizeTitle(task.Title)))); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID)
}

func (b *Bot) taskLookupFailed(chatID int64, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return b.sendTextWithRemove(chatID, "Task not found or already deleted.")
	case errors.Is(err, repository.ErrStorageUnavailable):
		return b.sendTextWithRemove(chatID, "⚠️ Storage is unavailable, changes cannot be saved right now.")
	default:
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
}
