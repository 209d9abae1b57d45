package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const listLimit = 20

func (b *Bot) handleHistory(ctx context.Context, msg *tgbotapi.Message) error {
	entries, err := b.svc.Journal.History(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load history: %s", escape(err.Error())))
	}
	if len(entries) == 0 {
		return b.sendText(msg.Chat.ID, "Nothing finished yet. Accept a plan with /plan.")
	}

	var builder strings.Builder
	builder.WriteString("🏁 <b>Finished</b>\n")
	for i, e := range entries {
		if i == listLimit {
			builder.WriteString(fmt.Sprintf("… and %d more\n", len(entries)-listLimit))
			break
		}
		builder.WriteString(fmt.Sprintf("• %s %s <i>%s</i>\n", ratingStars(e.Rating), escape(normalizeTitle(e.Title)), e.CreatedAt.In(b.now().Location()).Format("2006-01-02")))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleAddTerm(ctx context.Context, msg *tgbotapi.Message) error {
	name, definition, ok := parseTermArgs(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Usage: /term Wabi-sabi - beauty in imperfection")
	}
	term, err := b.svc.Journal.AddTerm(ctx, name, definition)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not save the term: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📚 Saved <b>%s</b>.", escape(term.Term)))
}

func (b *Bot) handleTerms(ctx context.Context, msg *tgbotapi.Message) error {
	query := strings.TrimSpace(msg.CommandArguments())
	terms, err := b.svc.Journal.SearchTerms(ctx, query)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not search terms: %s", escape(err.Error())))
	}
	if len(terms) == 0 {
		if query == "" {
			return b.sendText(msg.Chat.ID, "The glossary is empty. Add a term with /term.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Nothing matches «%s».", escape(query)))
	}

	var builder strings.Builder
	builder.WriteString("📚 <b>Glossary</b>\n")
	for i, t := range terms {
		if i == listLimit {
			builder.WriteString(fmt.Sprintf("… and %d more\n", len(terms)-listLimit))
			break
		}
		builder.WriteString(fmt.Sprintf("• <b>%s</b>", escape(t.Term)))
		if t.Definition != "" {
			builder.WriteString(" — " + escape(t.Definition))
		}
		builder.WriteByte('\n')
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleMood(ctx context.Context, msg *tgbotapi.Message) error {
	temperature, tags, event, err := parseMoodArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /mood 7 work focus - shipped the release")
	}
	entry, err := b.svc.Journal.LogEmotion(ctx, temperature, tags, event)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not log the mood: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🌡 Logged %d/10%s.", entry.Temperature, formatTags(tags)))
}

func (b *Bot) handleAddCase(ctx context.Context, msg *tgbotapi.Message) error {
	c, ok := parseCaseArgs(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Usage: /case Kyoto tea room | living | japandi, wabi-sabi | calm | light is a material")
	}
	stored, err := b.svc.Journal.AddDesignCase(ctx, c)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not save the case: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🏛 Logged <b>%s</b>%s.", escape(stored.Name), escape(formatTags(stored.Styles))))
}

func (b *Bot) handleCases(ctx context.Context, msg *tgbotapi.Message) error {
	style := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	cases, err := b.svc.Journal.DesignCases(ctx, style)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load design cases: %s", escape(err.Error())))
	}
	if len(cases) == 0 {
		if style == "" {
			return b.sendText(msg.Chat.ID, "No design cases yet. Log one with /case.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("No cases tagged «%s».", escape(style)))
	}

	var builder strings.Builder
	builder.WriteString("🏛 <b>Design cases</b>\n")
	for i, c := range cases {
		if i == listLimit {
			builder.WriteString(fmt.Sprintf("… and %d more\n", len(cases)-listLimit))
			break
		}
		builder.WriteString(formatCase(c))
		builder.WriteByte('\n')
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}
