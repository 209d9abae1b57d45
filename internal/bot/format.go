package bot

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"backlog-planner/internal/backup"
	"backlog-planner/internal/model"
	"backlog-planner/internal/planner"
)

const (
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
	cbEnergyPrefix   = "energy:"
	cbPlanAccept     = "plan:accept"
	cbPlanReset      = "plan:reset"
)

const (
	btnSkip          = "⏭️ Skip"
	btnConfirm       = "✅ Confirm"
	btnCancel        = "↩️ Cancel"
	btnCancelDialog  = "⏪ Stop input"
	menuLabelNewTask = "➕ New task"
	menuLabelTasks   = "📋 Backlog"
	menuLabelPlan    = "⚡ Plan"
	menuLabelHelp    = "ℹ️ Help"
)

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelPlan),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(string(model.PriorityP0)),
			tgbotapi.NewKeyboardButton(string(model.PriorityP1)),
			tgbotapi.NewKeyboardButton(string(model.PriorityP2)),
			tgbotapi.NewKeyboardButton(string(model.PriorityP3)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func energyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(string(model.EnergyLow)),
			tgbotapi.NewKeyboardButton(string(model.EnergyMed)),
			tgbotapi.NewKeyboardButton(string(model.EnergyHigh)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func energyInlineKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🪫 Low", cbEnergyPrefix+string(model.EnergyLow)),
			tgbotapi.NewInlineKeyboardButtonData("🔋 Med", cbEnergyPrefix+string(model.EnergyMed)),
			tgbotapi.NewInlineKeyboardButtonData("⚡ High", cbEnergyPrefix+string(model.EnergyHigh)),
		),
	)
}

func planKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done with main task", cbPlanAccept),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Reset", cbPlanReset),
		),
	)
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirm" || value == "yes"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "cancel" || value == "no"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "stop"
}

var errBadMood = errors.New("bad mood input")

// parseDueDate reads YYYY-MM-DD, "today" or "tomorrow" as the end of that day in now's location.
func parseDueDate(text string, now time.Time) (time.Time, error) {
	loc := now.Location()
	var day time.Time
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "today":
		day = now
	case "tomorrow":
		day = now.AddDate(0, 0, 1)
	default:
		parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(text), loc)
		if err != nil {
			return time.Time{}, err
		}
		day = parsed
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, 23, 59, 0, 0, loc), nil
}

// parseTermArgs splits "name - definition". The definition may be empty.
func parseTermArgs(args string) (string, string, bool) {
	name, definition, _ := strings.Cut(args, " - ")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(definition), true
}

// parseCaseArgs reads "name | room | styles | mood | sentence". Only the name
// is required; styles are comma separated.
func parseCaseArgs(args string) (model.DesignCase, bool) {
	parts := strings.Split(args, "|")
	field := func(i int) string {
		if i >= len(parts) {
			return ""
		}
		return strings.TrimSpace(parts[i])
	}

	c := model.DesignCase{
		Name:           field(0),
		RoomType:       field(1),
		PrimaryMood:    field(3),
		GoldenSentence: field(4),
	}
	if c.Name == "" {
		return model.DesignCase{}, false
	}
	var styles []string
	for _, style := range strings.Split(field(2), ",") {
		style = strings.ToLower(strings.TrimSpace(style))
		if style != "" {
			styles = append(styles, style)
		}
	}
	c.Styles = styles
	return c, true
}

// parseMoodArgs reads "<0-10> [tags...] [- event]".
func parseMoodArgs(args string) (int, []string, string, error) {
	head, event, _ := strings.Cut(args, " - ")
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return 0, nil, "", errBadMood
	}
	temperature, err := strconv.Atoi(fields[0])
	if err != nil || temperature < 0 || temperature > 10 {
		return 0, nil, "", errBadMood
	}
	var tags []string
	for _, tag := range fields[1:] {
		tag = strings.ToLower(strings.TrimPrefix(tag, "#"))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return temperature, tags, strings.TrimSpace(event), nil
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " #" + strings.Join(tags, " #")
}

// formatCase renders one design case as a single list line.
func formatCase(c model.DesignCase) string {
	line := "• <b>" + escape(c.Name) + "</b>"
	var details []string
	if c.RoomType != "" {
		details = append(details, escape(c.RoomType))
	}
	if c.PrimaryMood != "" {
		details = append(details, escape(c.PrimaryMood))
	}
	if len(details) > 0 {
		line += " (" + strings.Join(details, ", ") + ")"
	}
	line += escape(formatTags(c.Styles))
	if c.GoldenSentence != "" {
		line += "\n  <i>" + escape(c.GoldenSentence) + "</i>"
	}
	return line
}

func ratingStars(rating int) string {
	rating = max(0, min(rating, 5))
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// formatPlan renders the plan with each task's score components.
func formatPlan(plan planner.Plan) string {
	if plan.Empty() {
		return "🌤 Nothing open in the backlog. Enjoy the free time or /add something."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 <b>Plan for %s energy</b>\n\n", plan.Energy))
	for i, e := range plan.Entries {
		switch {
		case e.Slot == planner.SlotMain:
			sb.WriteString("🎯 <b>Main task</b>\n")
		case i == 1:
			sb.WriteString("\n🧩 <b>Fillers</b>\n")
		}
		sb.WriteString(fmt.Sprintf("%s <i>(%s · %s · %dm)</i> — %d pts\n",
			escape(normalizeTitle(e.Task.Title)), e.Task.Priority, e.Task.EnergyNeed, e.Task.EstimateMin, e.Score.Total()))
		if reasons := scoreReasons(e.Score); reasons != "" {
			sb.WriteString("   " + reasons + "\n")
		}
	}
	return strings.TrimSpace(sb.String())
}

func scoreReasons(s planner.Breakdown) string {
	var parts []string
	if s.Due > 80 {
		parts = append(parts, "overdue")
	} else if s.Due > 0 {
		parts = append(parts, "due soon")
	}
	if s.Match > 0 {
		parts = append(parts, "good energy match")
	}
	if s.Mismatch < 0 {
		parts = append(parts, "too demanding today")
	}
	if s.LongTask < 0 {
		parts = append(parts, "long for low energy")
	}
	return strings.Join(parts, ", ")
}

func formatImportReport(report backup.Report) string {
	var sb strings.Builder
	if report.OK() {
		sb.WriteString("✅ <b>Backup restored</b>\n")
	} else {
		sb.WriteString("⚠️ <b>Backup partly restored</b>\n")
	}
	for _, r := range report.Results {
		if r.Err != nil {
			sb.WriteString(fmt.Sprintf("• %s: failed, %s\n", r.Collection, escape(r.Err.Error())))
			continue
		}
		sb.WriteString(fmt.Sprintf("• %s: %d records\n", r.Collection, r.Restored))
	}
	if len(report.Skipped) > 0 {
		sb.WriteString(fmt.Sprintf("Skipped unknown: %s\n", escape(strings.Join(report.Skipped, ", "))))
	}
	return strings.TrimSpace(sb.String())
}

// summarizeBundle counts records per collection, e.g. "tasks 3, history 1".
func summarizeBundle(b backup.Bundle) string {
	names := b.Names()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		var entries []json.RawMessage
		if err := json.Unmarshal(b.Collections[name], &entries); err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d", name, len(entries)))
	}
	if len(parts) == 0 {
		return "empty backup"
	}
	return strings.Join(parts, ", ")
}

// sortForDisplay puts dated tasks first by deadline, then the rest by priority.
func sortForDisplay(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.DueDate != nil && b.DueDate != nil {
			if !a.DueDate.Equal(*b.DueDate) {
				return a.DueDate.Before(*b.DueDate)
			}
		} else if a.DueDate != nil {
			return true
		} else if b.DueDate != nil {
			return false
		}
		return a.Priority < b.Priority
	})
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
