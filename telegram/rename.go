package telegram

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tg "github.com/amarnathcjd/gogram/telegram"

	"renamebot/media"
	"renamebot/rename"
)

// In-flight registry: one concurrent rename per file identifier. A
// duplicate arrival of the same file within the debounce window is
// dropped silently.
var (
	inflightFiles = make(map[string]time.Time)
	inflightMutex sync.Mutex
)

// tryAcquire marks fileID as in flight. It returns false when the
// file is already being processed inside the window. Stale entries
// from crashed handlers are evicted here, which keeps the map bounded.
func tryAcquire(fileID string, window time.Duration) bool {
	inflightMutex.Lock()
	defer inflightMutex.Unlock()

	now := time.Now()
	for id, started := range inflightFiles {
		if now.Sub(started) > window {
			delete(inflightFiles, id)
		}
	}

	if started, ok := inflightFiles[fileID]; ok && now.Sub(started) <= window {
		return false
	}
	inflightFiles[fileID] = now
	return true
}

func release(fileID string) {
	inflightMutex.Lock()
	delete(inflightFiles, fileID)
	inflightMutex.Unlock()
}

// HandleRename runs the whole pipeline for one incoming file: gates,
// tag extraction, template rendering, download, remux, probe,
// thumbnail, upload. Temporary artifacts are removed on every exit
// path and the in-flight marker is always released.
func HandleRename(m *tg.NewMessage, kind string) error {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[RENAME] Panic while processing file from %d: %v", m.Sender.ID, r)
			m.Reply("❌ <b>Something went wrong</b>\n\nPlease try sending the file again.")
		}
	}()

	userID := m.Sender.ID

	premium, err := db.IsPremium(userID)
	if err != nil {
		log.Printf("[RENAME] Premium check failed for %d: %v", userID, err)
	}
	if !premium && !isOwner(userID) {
		m.Reply("❌ <b>Premium Feature</b>\n\nFile renaming is a premium feature.\nUse <code>/myplan</code> to check your status.")
		return nil
	}

	format, err := db.GetFormatTemplate(userID)
	if err != nil {
		log.Printf("[RENAME] Template lookup failed for %d: %v", userID, err)
	}
	if format == "" {
		m.Reply("<b>No rename format set</b>\n\nConfigure one first:\n<code>/autorename {title} S{season}E{episode} {quality}</code>")
		return nil
	}

	if m.File == nil || m.File.Name == "" {
		m.Reply("❌ <b>Invalid Media</b>\n\nThis file has no name to work with.")
		return nil
	}

	fileName := m.File.Name
	fileSize := m.File.Size
	fileID := m.File.FileID

	if !tryAcquire(fileID, config.DebounceWindow) {
		log.Printf("[RENAME] Duplicate submission of %s within debounce window, dropped", fileName)
		return nil
	}
	defer release(fileID)

	tags := rename.ExtractTags(fileName)
	newName := rename.Render(format, tags, fileName, kind)

	downloadPath := workPath(config.DownloadDir, int32(m.ID), newName)
	metadataPath := workPath(config.MetadataDir, int32(m.ID), newName)
	var thumbPath string
	defer func() {
		cleanupFiles(downloadPath, metadataPath, thumbPath)
	}()

	var status *tg.NewMessage
	if err := withFloodRetry(func() error {
		var err error
		status, err = m.Reply(fmt.Sprintf("<b>Renaming</b>\n\n<code>%s</code>\n→ <code>%s</code>\n\n⏳ Downloading...", fileName, newName))
		return err
	}); err != nil {
		log.Printf("[RENAME] Failed to send status message: %v", err)
	}

	if err := withFloodRetry(func() error {
		_, err := m.Download(&tg.DownloadOptions{FileName: downloadPath})
		return err
	}); err != nil {
		editStatus(status, fmt.Sprintf("❌ <b>Download failed</b>\n\n<code>%v</code>", err))
		return nil
	}

	editStatus(status, "⚙️ <b>Writing metadata...</b>")
	uploadPath := downloadPath
	base := strings.TrimSuffix(newName, filepath.Ext(newName))
	remuxErr := media.Remux(downloadPath, metadataPath, media.MetaTags{
		Title:         base,
		Artist:        base,
		Author:        base,
		VideoTitle:    base,
		AudioTitle:    base,
		SubtitleTitle: base,
	})
	if remuxErr != nil {
		// Non-fatal: fall back to the plain download.
		log.Printf("[RENAME] Remux failed for %s, using original: %v", newName, remuxErr)
	} else {
		uploadPath = metadataPath
	}

	duration := "00:00:00"
	if kind == "video" || kind == "audio" {
		duration = media.Duration(uploadPath)
	}

	captionTemplate, err := db.GetCaption(m.ChatID())
	if err != nil {
		log.Printf("[RENAME] Caption lookup failed for chat %d: %v", m.ChatID(), err)
	}
	caption := rename.RenderCaption(captionTemplate, newName, fileSize, duration)
	if caption == "" {
		caption = fmt.Sprintf("<b>%s</b>", newName)
	}

	thumbPath = resolveThumbnail(m.ChatID(), int32(m.ID))

	editStatus(status, "📤 <b>Uploading...</b>")

	preference, err := db.GetMediaPreference(userID)
	if err != nil {
		log.Printf("[RENAME] Media preference lookup failed for %d: %v", userID, err)
	}
	uploadKind := strings.ToLower(preference)
	switch uploadKind {
	case "document", "video", "audio":
	default:
		uploadKind = kind
	}

	uploadErr := withFloodRetry(func() error {
		_, err := m.ReplyMedia(uploadPath, tg.MediaOptions{
			Caption:       caption,
			FileName:      newName,
			Thumb:         thumbPath,
			ForceDocument: uploadKind == "document",
		})
		return err
	})
	if uploadErr != nil {
		editStatus(status, fmt.Sprintf("❌ <b>Upload failed</b>\n\n<code>%v</code>", uploadErr))
		return nil
	}

	if status != nil {
		status.Delete()
	}
	log.Printf("[RENAME] %s → %s for user %d", fileName, newName, userID)
	return nil
}

// workPath keys a temporary artifact by the message that produced it,
// so concurrent renames yielding the same target name never share a
// file on disk.
func workPath(dir string, msgID int32, name string) string {
	return filepath.Join(dir, fmt.Sprintf("%d_%s", msgID, name))
}

// resolveThumbnail downloads and resizes the chat's stored thumbnail,
// returning its local path or "" when the chat has none.
func resolveThumbnail(chatID int64, msgID int32) string {
	thumbID, err := db.GetThumbnail(chatID)
	if err != nil {
		log.Printf("[RENAME] Thumbnail lookup failed for chat %d: %v", chatID, err)
		return ""
	}
	if thumbID == "" {
		return ""
	}

	thumbPath := filepath.Join(config.DownloadDir, fmt.Sprintf("thumb_%d_%d.jpg", chatID, msgID))
	if _, err := bot.DownloadMedia(thumbID, &tg.DownloadOptions{FileName: thumbPath}); err != nil {
		log.Printf("[RENAME] Thumbnail download failed for chat %d: %v", chatID, err)
		return ""
	}
	if err := media.FitThumbnail(thumbPath); err != nil {
		log.Printf("[RENAME] Thumbnail resize failed: %v", err)
		cleanupFiles(thumbPath)
		return ""
	}
	return thumbPath
}

func editStatus(status *tg.NewMessage, text string) {
	if status == nil {
		return
	}
	withFloodRetry(func() error {
		_, err := status.Edit(text)
		return err
	})
}

// cleanupFiles removes temporary artifacts, ignoring paths that were
// never created.
func cleanupFiles(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("[RENAME] Failed to remove %s: %v", path, err)
		}
	}
}
