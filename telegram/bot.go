package telegram

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	tg "github.com/amarnathcjd/gogram/telegram"

	cfg "renamebot/config"
	"renamebot/database"
)

var bot *tg.Client
var db *database.DB
var config *cfg.Config

func InitBot(c *cfg.Config, d *database.DB) error {
	config = c
	db = d

	client, err := tg.NewClient(tg.ClientConfig{
		AppID:    int32(config.AppID),
		AppHash:  config.AppHash,
		Cache:    tg.NewCache("renamebot.db"),
		LogLevel: tg.LogInfo,
	})

	if err != nil {
		return err
	}

	client.Conn()
	if err := client.LoginBot(config.BotToken); err != nil {
		return err
	}

	bot = client

	registerCommands()

	return nil
}

func registerCommands() {
	bot.On("command:start", HandleStart)
	bot.On("command:autorename", HandleSetFormat)
	bot.On("command:setcaption", HandleSetCaption)
	bot.On("command:delcaption", HandleDeleteCaption)
	bot.On("command:setmedia", HandleSetMedia)
	bot.On("command:viewthumb", HandleViewThumbnail)
	bot.On("command:delthumb", HandleDeleteThumbnail)
	bot.On("command:startsequence", HandleStartSequence)
	bot.On("command:endsequence", HandleEndSequence)
	bot.On("command:cancelsequence", HandleCancelSequence)
	bot.On("command:leaderboard", HandleLeaderboard)
	bot.On("command:addpremium", HandleAddPremium)
	bot.On("command:rmpremium", HandleRemovePremium)
	bot.On("command:myplan", HandleMyPlan)
	bot.On(tg.OnCallbackQuery, HandleCallback)
	bot.On(tg.OnNewMessage, HandleIncoming)
}

func isOwner(userID int64) bool {
	return userID == config.OwnerID
}

// HandleStart registers the user and shows usage.
func HandleStart(m *tg.NewMessage) error {
	if m.Sender != nil {
		if err := db.AddUser(m.Sender.ID, m.Sender.Username, m.Sender.FirstName); err != nil {
			log.Printf("[START] Failed to add user %d: %v", m.Sender.ID, err)
		}
	}

	m.Reply("<b>Auto Rename Bot</b>\n\n" +
		"Send me a file and I will rename it using your format.\n\n" +
		"→ <code>/autorename {title} S{season}E{episode} {quality}</code> — set rename format\n" +
		"→ <code>/setcaption</code>, <code>/setmedia</code> — caption and upload type\n" +
		"→ Send a photo to use it as thumbnail\n" +
		"→ <code>/startsequence</code> … <code>/endsequence</code> — batch files and get them back in episode order\n" +
		"→ <code>/myplan</code> — premium status")
	return nil
}

// HandleIncoming routes every non-command message: photos become
// thumbnails, media files go to the sequence collector when a session
// is active and to the rename pipeline otherwise.
func HandleIncoming(m *tg.NewMessage) error {
	if m.Sender == nil || strings.HasPrefix(m.Text(), "/") {
		return nil
	}
	if !m.IsMedia() {
		return nil
	}

	if _, ok := m.Media().(*tg.MessageMediaPhoto); ok {
		return HandleThumbnailPhoto(m)
	}

	kind := mediaKind(m)
	if kind == "" {
		return nil
	}

	if !requireSubscription(m) {
		return nil
	}

	active, err := db.IsSequenceActive(m.Sender.ID)
	if err != nil {
		log.Printf("[SEQUENCE] Failed to check session for %d: %v", m.Sender.ID, err)
	}
	if active {
		return HandleSequenceFile(m)
	}

	return HandleRename(m, kind)
}

// mediaKind classifies a media message as document, video or audio by
// its document attributes. Non-document media yields "".
func mediaKind(m *tg.NewMessage) string {
	doc := m.Document()
	if doc == nil {
		return ""
	}
	for _, attr := range doc.Attributes {
		switch attr.(type) {
		case *tg.DocumentAttributeVideo:
			return "video"
		case *tg.DocumentAttributeAudio:
			return "audio"
		}
	}
	return "document"
}

var floodWaitRe = regexp.MustCompile(`FLOOD_WAIT_(\d+)`)

// floodWait reports the mandated backoff carried by a rate-limit
// error, if err is one.
func floodWait(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	m := floodWaitRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}
	seconds, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

// withFloodRetry runs op and, on a rate-limit error, sleeps exactly
// the mandated duration once and retries that single operation.
func withFloodRetry(op func() error) error {
	err := op()
	if wait, ok := floodWait(err); ok {
		log.Printf("[FLOOD] Rate limited, sleeping %s", wait)
		time.Sleep(wait)
		return op()
	}
	return err
}

// displayName picks something presentable for leaderboard entries.
func displayName(u *tg.UserObj) string {
	if u == nil {
		return "Unknown"
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return fmt.Sprintf("User %d", u.ID)
}
