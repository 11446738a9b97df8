package telegram

import (
	"fmt"
	"log"
	"strings"

	tg "github.com/amarnathcjd/gogram/telegram"
)

// HandleSetFormat stores the user's rename template.
func HandleSetFormat(m *tg.NewMessage) error {
	format := strings.TrimSpace(m.Args())
	if format == "" {
		m.Reply("<b>Set Rename Format</b>\n\n<b>Usage:</b> <code>/autorename format</code>\n\n" +
			"<b>Placeholders:</b> <code>{title}</code> <code>{season}</code> <code>{episode}</code> <code>{quality}</code> <code>{audio}</code>\n\n" +
			"<b>Example:</b>\n<code>/autorename {title} S{season}E{episode} [{audio}] {quality}</code>")
		return nil
	}

	if err := db.SetFormatTemplate(m.Sender.ID, format); err != nil {
		log.Printf("[SETTINGS] Failed to set format for %d: %v", m.Sender.ID, err)
		m.Reply("❌ <b>Error</b>\n\nFailed to save the format.")
		return nil
	}

	m.Reply(fmt.Sprintf("✅ <b>Rename format saved</b>\n\n<code>%s</code>", format))
	return nil
}

// HandleSetCaption stores the chat's caption template.
func HandleSetCaption(m *tg.NewMessage) error {
	caption := strings.TrimSpace(m.Args())
	if caption == "" {
		m.Reply("<b>Set Caption</b>\n\n<b>Usage:</b> <code>/setcaption caption text</code>\n\n" +
			"<b>Placeholders:</b> <code>{filename}</code> <code>{filesize}</code> <code>{duration}</code>")
		return nil
	}

	if err := db.SetCaption(m.ChatID(), caption); err != nil {
		log.Printf("[SETTINGS] Failed to set caption for chat %d: %v", m.ChatID(), err)
		m.Reply("❌ <b>Error</b>\n\nFailed to save the caption.")
		return nil
	}

	m.Reply("✅ <b>Caption saved</b>")
	return nil
}

func HandleDeleteCaption(m *tg.NewMessage) error {
	if err := db.DeleteCaption(m.ChatID()); err != nil {
		log.Printf("[SETTINGS] Failed to delete caption for chat %d: %v", m.ChatID(), err)
		m.Reply("❌ <b>Error</b>\n\nFailed to delete the caption.")
		return nil
	}
	m.Reply("✅ <b>Caption removed</b>\n\nUploads will carry the new filename instead.")
	return nil
}

// HandleSetMedia stores the preferred upload kind.
func HandleSetMedia(m *tg.NewMessage) error {
	kind := strings.ToLower(strings.TrimSpace(m.Args()))
	switch kind {
	case "document", "video", "audio":
	case "":
		m.Reply("<b>Set Upload Type</b>\n\n<b>Usage:</b> <code>/setmedia document</code>, <code>/setmedia video</code> or <code>/setmedia audio</code>")
		return nil
	default:
		m.Reply("❌ <b>Invalid type</b>\n\nChoose <code>document</code>, <code>video</code> or <code>audio</code>.")
		return nil
	}

	if err := db.SetMediaPreference(m.Sender.ID, kind); err != nil {
		log.Printf("[SETTINGS] Failed to set media preference for %d: %v", m.Sender.ID, err)
		m.Reply("❌ <b>Error</b>\n\nFailed to save the preference.")
		return nil
	}

	m.Reply(fmt.Sprintf("✅ <b>Upload type saved:</b> <code>%s</code>", kind))
	return nil
}

// HandleThumbnailPhoto stores an incoming photo as the chat thumbnail.
func HandleThumbnailPhoto(m *tg.NewMessage) error {
	if m.File == nil || m.File.FileID == "" {
		return nil
	}

	if err := db.SetThumbnail(m.ChatID(), m.File.FileID); err != nil {
		log.Printf("[SETTINGS] Failed to save thumbnail for chat %d: %v", m.ChatID(), err)
		m.Reply("❌ <b>Error</b>\n\nFailed to save the thumbnail.")
		return nil
	}

	m.Reply("✅ <b>Thumbnail saved</b>\n\nIt will be used for every rename in this chat.")
	return nil
}

// HandleViewThumbnail sends the stored thumbnail back.
func HandleViewThumbnail(m *tg.NewMessage) error {
	thumbID, err := db.GetThumbnail(m.ChatID())
	if err != nil {
		log.Printf("[SETTINGS] Thumbnail lookup failed for chat %d: %v", m.ChatID(), err)
		m.Reply("❌ <b>Error</b>\n\nFailed to load the thumbnail.")
		return nil
	}
	if thumbID == "" {
		m.Reply("<b>No thumbnail set</b>\n\nSend a photo to use it as thumbnail.")
		return nil
	}

	if _, err := m.ReplyMedia(thumbID, tg.MediaOptions{Caption: "<b>Current thumbnail</b>"}); err != nil {
		m.Reply("❌ <b>Error</b>\n\nFailed to send the thumbnail.")
	}
	return nil
}

func HandleDeleteThumbnail(m *tg.NewMessage) error {
	if err := db.DeleteThumbnail(m.ChatID()); err != nil {
		log.Printf("[SETTINGS] Failed to delete thumbnail for chat %d: %v", m.ChatID(), err)
		m.Reply("❌ <b>Error</b>\n\nFailed to delete the thumbnail.")
		return nil
	}
	m.Reply("✅ <b>Thumbnail removed</b>")
	return nil
}
