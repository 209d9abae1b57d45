package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"backlog-planner/internal/backup"
)

const maxBackupBytes = 20 << 20

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) error {
	bundle := b.svc.Backups.ExportAll(ctx)
	data, err := backup.Encode(bundle)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Export failed: %s", escape(err.Error())))
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{Name: backup.FileName(b.now()), Bytes: data})
	doc.Caption = "💾 " + summarizeBundle(bundle)
	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("send backup: %w", err)
	}
	log.Printf("[info] export sent chat=%d bytes=%d", msg.Chat.ID, len(data))
	return nil
}

func (b *Bot) startImport(msg *tgbotapi.Message) error {
	b.clearConfirmation(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageImport})
	return b.sendWithReplyMarkup(msg.Chat.ID,
		"📥 Send the backup <b>.json</b> file as a document.\nCollections in the file <b>replace</b> what is stored now.",
		cancelKeyboard())
}

// handleDocument accepts a backup file after /import or with an /import caption.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	awaiting := state != nil && state.stage == stageImport
	if !awaiting && !strings.HasPrefix(strings.TrimSpace(msg.Caption), "/import") {
		return b.sendText(msg.Chat.ID, "To restore a backup send /import first.")
	}
	b.clearConversation(msg.From.ID)

	if msg.Document.FileSize > maxBackupBytes {
		return b.sendText(msg.Chat.ID, "The file is too large for a backup.")
	}

	data, err := b.download(ctx, msg.Document.FileID)
	if err != nil {
		log.Printf("[warn] download backup: %v", err)
		return b.sendText(msg.Chat.ID, "Could not download the file, try again.")
	}

	bundle, err := backup.Decode(data)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ Not a usable backup: %s\nNothing was changed.", escape(err.Error())))
	}

	b.setConfirmation(msg.From.ID, confirmationRequest{action: actionImport, bundle: bundle})
	text := fmt.Sprintf("Restore from <b>%s</b>?\n%s\nThese collections will be replaced.",
		escape(msg.Document.FileName), escape(summarizeBundle(bundle)))
	return b.sendWithReplyMarkup(msg.Chat.ID, text, confirmKeyboard())
}

func (b *Bot) applyImport(ctx context.Context, chatID int64, bundle backup.Bundle) error {
	report, err := b.svc.Backups.ImportAll(ctx, bundle)
	if err != nil && !errors.Is(err, backup.ErrPartialImport) {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("❌ Import failed: %s", escape(err.Error())))
	}
	b.svc.Plan.Invalidate()
	return b.sendTextWithRemove(chatID, formatImportReport(report))
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get file: status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBackupBytes))
}
