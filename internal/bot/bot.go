package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"backlog-planner/internal/backup"
	"backlog-planner/internal/config"
	"backlog-planner/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stagePriority
	stageEnergy
	stageEstimate
	stageDueDate
	stageImport
)

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

type confirmationAction int

const (
	actionComplete confirmationAction = iota
	actionDelete
	actionImport
)

type confirmationRequest struct {
	action confirmationAction
	taskID string
	bundle backup.Bundle
}

// Services groups everything the bot talks to.
type Services struct {
	Tasks     *service.TaskService
	Plan      *service.PlanSession
	Journal   *service.JournalService
	Reminders *service.ReminderService
	Backups   *backup.Manager
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	svc           Services
	config        *config.Config
	http          *http.Client
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	chats         map[int64]struct{}
	mu            sync.Mutex
}

func New(token string, svc Services, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:           api,
		svc:           svc,
		config:        cfg,
		http:          &http.Client{Timeout: 30 * time.Second},
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
		chats:         make(map[int64]struct{}),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if cb := update.CallbackQuery; cb.Message != nil && !b.allowed(cb.Message.Chat.ID) {
				continue
			}
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("[warn] handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if !b.allowed(update.Message.Chat.ID) {
				log.Printf("[warn] ignored message from chat %d", update.Message.Chat.ID)
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("[warn] handle message: %v", err)
			}
		}
	}

	return nil
}

// allowed restricts the bot to the owner's chat when one is configured.
func (b *Bot) allowed(chatID int64) bool {
	return b.config == nil || b.config.OwnerChatID == 0 || b.config.OwnerChatID == chatID
}

func (b *Bot) now() time.Time {
	if b.config != nil && b.config.Timezone != nil {
		return time.Now().In(b.config.Timezone)
	}
	return time.Now()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	b.rememberChat(msg.Chat.ID)

	if msg.Document != nil {
		return b.handleDocument(ctx, msg)
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		log.Printf("[info] conversation step %d from %d", b.getConversation(msg.From.ID).stage, msg.From.ID)
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Send /add &lt;title&gt; to capture a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "newtask":
		return b.startNewTaskConversation(msg)
	case "add":
		return b.handleQuickAdd(ctx, msg)
	case "tasks":
		return b.sendTaskList(ctx, msg.Chat.ID)
	case "plan":
		return b.handlePlan(ctx, msg)
	case "reset":
		b.svc.Plan.Reset()
		return b.sendText(msg.Chat.ID, "🔄 Plan cleared. Send /plan when you are ready.")
	case "report":
		return b.handleReport(ctx, msg)
	case "history":
		return b.handleHistory(ctx, msg)
	case "term":
		return b.handleAddTerm(ctx, msg)
	case "terms":
		return b.handleTerms(ctx, msg)
	case "mood":
		return b.handleMood(ctx, msg)
	case "case":
		return b.handleAddCase(ctx, msg)
	case "cases":
		return b.handleCases(ctx, msg)
	case "export":
		return b.handleExport(ctx, msg)
	case "import":
		return b.startImport(msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>Dump every task here, then ask me for today's plan.</b>\n\n"+
			"• /add &lt;title&gt; — capture a task in one line\n"+
			"• /newtask — add a task step by step\n"+
			"• /plan — pick one main task for your energy level\n"+
			"• /help — everything else",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /add &lt;title&gt; — quick capture (P2, low energy, 15 min)\n" +
		"• /newtask — title, priority, energy, estimate, due date\n" +
		"• /tasks — backlog with complete/delete buttons\n" +
		"• /plan — today's plan for your energy level\n" +
		"• /reset — drop the current plan\n" +
		"• /report — deadline digest\n" +
		"• /history — finished main tasks\n" +
		"• /term &lt;name&gt; - &lt;definition&gt; — save a glossary term\n" +
		"• /terms [query] — search the glossary\n" +
		"• /mood &lt;0-10&gt; [tags] [- event] — log how you feel\n" +
		"• /case name | room | styles | mood | sentence — log a design case\n" +
		"• /cases [style] — design cases, newest first\n" +
		"• /export — download a backup file\n" +
		"• /import — restore from a backup file\n" +
		"• /cancel — cancel the current input"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := b.svc.Reminders.DailySummary(ctx, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the digest: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

// SendDailyReports sends the digest to the owner, or to every chat seen since
// start when no owner is configured.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	text, err := b.svc.Reminders.DailySummary(ctx, b.now())
	if err != nil {
		return err
	}
	for _, chatID := range b.reportChats() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendText(chatID, text); err != nil {
			log.Printf("[warn] send summary to %d: %v", chatID, err)
		}
	}
	return nil
}

func (b *Bot) reportChats() []int64 {
	if b.config != nil && b.config.OwnerChatID != 0 {
		return []int64{b.config.OwnerChatID}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	chats := make([]int64, 0, len(b.chats))
	for id := range b.chats {
		chats = append(chats, id)
	}
	return chats
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		switch req.action {
		case actionDelete:
			return b.deleteTaskAndRefresh(ctx, msg.Chat.ID, req.taskID)
		case actionImport:
			return b.applyImport(ctx, msg.Chat.ID, req.bundle)
		default:
			return b.completeTaskAndRefresh(ctx, msg.Chat.ID, req.taskID)
		}
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendMenuPlaceholder(msg.Chat.ID)
	default:
		var prompt string
		switch req.action {
		case actionDelete:
			prompt = "Confirm or cancel the deletion."
		case actionImport:
			prompt = "Confirm or cancel the restore."
		default:
			prompt = "Confirm or cancel completing the task."
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, confirmKeyboard())
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.sendTaskList(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelPlan):
		return true, b.handlePlan(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("[warn] callback ack: %v", err)
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID
	log.Printf("[info] callback user=%d data=%s", cb.From.ID, data)

	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		return b.askCompleteConfirmation(ctx, chatID, cb.From.ID, strings.TrimPrefix(data, cbCompletePrefix))
	case strings.HasPrefix(data, cbDeletePrefix):
		return b.askDeleteConfirmation(ctx, chatID, cb.From.ID, strings.TrimPrefix(data, cbDeletePrefix))
	case strings.HasPrefix(data, cbEnergyPrefix):
		return b.generatePlan(ctx, chatID, strings.TrimPrefix(data, cbEnergyPrefix))
	case data == cbPlanAccept:
		return b.acceptPlan(ctx, chatID)
	case data == cbPlanReset:
		b.svc.Plan.Reset()
		return b.sendText(chatID, "🔄 Plan cleared.")
	default:
		return nil
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendMenuPlaceholder(chatID)
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "🔹 Main menu")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) rememberChat(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chats[chatID] = struct{}{}
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
