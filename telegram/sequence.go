package telegram

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	tg "github.com/amarnathcjd/gogram/telegram"

	"renamebot/database"
	"renamebot/rename"
)

// HandleStartSequence opens a collection session. Starting while one
// is already active is a reported no-op, never a restart.
func HandleStartSequence(m *tg.NewMessage) error {
	err := db.StartSequence(m.Sender.ID)
	if errors.Is(err, database.ErrSequenceActive) {
		m.Reply("<b>Sequence already active</b>\n\nSend files, then <code>/endsequence</code> to get them back in order, or <code>/cancelsequence</code> to discard.")
		return nil
	}
	if err != nil {
		log.Printf("[SEQUENCE] Failed to start session for %d: %v", m.Sender.ID, err)
		m.Reply("❌ <b>Error</b>\n\nCould not start the sequence. Try again.")
		return nil
	}

	m.Reply("✅ <b>Sequence started</b>\n\nSend your files now. <code>/endsequence</code> delivers them sorted by episode.")
	return nil
}

// HandleSequenceFile captures one file into the active session.
func HandleSequenceFile(m *tg.NewMessage) error {
	fileName := "Unknown"
	if m.File != nil && m.File.Name != "" {
		fileName = m.File.Name
	}

	err := db.AppendSequenceFile(m.Sender.ID, database.SequenceFile{
		FileName:  fileName,
		ChatID:    m.ChatID(),
		MessageID: int32(m.ID),
	})
	if errors.Is(err, database.ErrNoActiveSequence) {
		// Session was closed between the check and the append; let the
		// user resend so the rename path picks it up.
		m.Reply("<b>No active sequence</b>\n\nThe session ended, send the file again to rename it.")
		return nil
	}
	if err != nil {
		log.Printf("[SEQUENCE] Failed to append file for %d: %v", m.Sender.ID, err)
		m.Reply("❌ <b>Error</b>\n\nCould not add this file to the sequence.")
		return nil
	}

	withFloodRetry(func() error {
		_, err := m.Reply(fmt.Sprintf("📂 <b>Added to sequence</b>\n\n<code>%s</code>", fileName))
		return err
	})
	return nil
}

// HandleEndSequence closes the session, sorts the queued files by
// inferred episode number and redelivers them in order.
func HandleEndSequence(m *tg.NewMessage) error {
	files, err := db.EndSequence(m.Sender.ID)
	if errors.Is(err, database.ErrNoActiveSequence) {
		m.Reply("❌ <b>No active sequence</b>\n\nStart one with <code>/startsequence</code>.")
		return nil
	}
	if err != nil {
		log.Printf("[SEQUENCE] Failed to end session for %d: %v", m.Sender.ID, err)
		m.Reply("❌ <b>Error</b>\n\nCould not close the sequence.")
		return nil
	}
	if len(files) == 0 {
		m.Reply("❌ <b>No files in sequence</b>")
		return nil
	}

	// Same inference the rename path uses; unmatched names sort last.
	sort.SliceStable(files, func(i, j int) bool {
		return rename.EpisodeSortKey(files[i].FileName) < rename.EpisodeSortKey(files[j].FileName)
	})

	var status *tg.NewMessage
	withFloodRetry(func() error {
		var err error
		status, err = m.Reply(fmt.Sprintf("<b>Sequencing %d files...</b>", len(files)))
		return err
	})

	delivered := 0
	for i, file := range files {
		if err := redeliver(file, m.ChatID()); err != nil {
			log.Printf("[SEQUENCE] Failed to redeliver %s: %v", file.FileName, err)
			continue
		}
		delivered++

		if status != nil && (i+1)%5 == 0 {
			editStatus(status, fmt.Sprintf("<b>Sequencing...</b> %d/%d", i+1, len(files)))
		}
		time.Sleep(config.SequenceDelay)
	}

	if err := db.IncrementSequenceCount(m.Sender.ID, displayName(m.Sender), delivered); err != nil {
		log.Printf("[SEQUENCE] Failed to update leaderboard for %d: %v", m.Sender.ID, err)
	}

	summary := fmt.Sprintf("✅ <b>Sequence complete</b>\n\n→ Delivered: <code>%d/%d</code>", delivered, len(files))
	if status != nil {
		editStatus(status, summary)
	} else {
		m.Reply(summary)
	}
	return nil
}

// redeliver forwards one queued message back to the requesting chat,
// honoring a single mandated backoff on rate limiting.
func redeliver(file database.SequenceFile, toChat int64) error {
	return withFloodRetry(func() error {
		msg, err := bot.GetMessageByID(file.ChatID, file.MessageID)
		if err != nil {
			return fmt.Errorf("failed to get message %d: %w", file.MessageID, err)
		}
		if _, err := msg.ForwardTo(toChat); err != nil {
			return fmt.Errorf("failed to forward %s: %w", file.FileName, err)
		}
		return nil
	})
}

// HandleCancelSequence discards the active session without delivery.
func HandleCancelSequence(m *tg.NewMessage) error {
	discarded, err := db.CancelSequence(m.Sender.ID)
	if errors.Is(err, database.ErrNoActiveSequence) {
		m.Reply("❌ <b>No active sequence</b>\n\nNothing to cancel.")
		return nil
	}
	if err != nil {
		log.Printf("[SEQUENCE] Failed to cancel session for %d: %v", m.Sender.ID, err)
		m.Reply("❌ <b>Error</b>\n\nCould not cancel the sequence.")
		return nil
	}

	m.Reply(fmt.Sprintf("🗑 <b>Sequence cancelled</b>\n\n→ Discarded files: <code>%d</code>", discarded))
	return nil
}

// HandleLeaderboard shows the top sequencers.
func HandleLeaderboard(m *tg.NewMessage) error {
	entries, err := db.TopSequencers(5)
	if err != nil {
		log.Printf("[SEQUENCE] Failed to load leaderboard: %v", err)
		m.Reply("❌ <b>Error</b>\n\nCould not load the leaderboard.")
		return nil
	}
	if len(entries) == 0 {
		m.Reply("<b>🏆 Leaderboard</b>\n\nNo data yet.")
		return nil
	}

	var response strings.Builder
	response.WriteString("<b>🏆 Top Sequencers</b>\n\n")
	for i, entry := range entries {
		response.WriteString(fmt.Sprintf("<b>%d. %s</b> — <code>%d</code> files\n", i+1, entry.Name, entry.FilesSequenced))
	}

	m.Reply(response.String())
	return nil
}
