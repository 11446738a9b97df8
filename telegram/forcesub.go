package telegram

import (
	"fmt"
	"log"
	"strings"

	tg "github.com/amarnathcjd/gogram/telegram"
)

// requireSubscription checks the sender against every configured
// force-sub channel. It returns false after sending a join prompt when
// at least one membership is missing. With no channels configured it
// always passes.
func requireSubscription(m *tg.NewMessage) bool {
	missing := missingChannels(m.Sender.ID)
	if len(missing) == 0 {
		return true
	}

	keyboard := tg.NewKeyboard()
	for _, ch := range missing {
		keyboard.AddRow(tg.Button.URL("Join "+ch, "https://t.me/"+strings.TrimPrefix(ch, "@")))
	}
	keyboard.AddRow(tg.Button.Data("✅ I Joined", "fsub_check"))

	m.Reply("<b>Join Required</b>\n\nYou must join the channel(s) below before using the bot, then press the button.",
		tg.SendOptions{ReplyMarkup: keyboard.Build()})
	return false
}

// missingChannels returns the configured channels the user has not
// joined. An unresolvable membership counts as not joined.
func missingChannels(userID int64) []string {
	var missing []string
	for _, ch := range config.ForceSubChannels {
		member, err := bot.GetChatMember(ch, userID)
		if err != nil {
			log.Printf("[FSUB] Membership lookup failed for %s: %v", ch, err)
			missing = append(missing, ch)
			continue
		}
		if !isMember(string(member.Status)) {
			missing = append(missing, ch)
		}
	}
	return missing
}

// isMember reports whether a chat-member status counts as joined.
func isMember(status string) bool {
	switch strings.ToLower(status) {
	case "left", "kicked", "banned", "":
		return false
	}
	return true
}

// HandleCallback routes inline button presses.
func HandleCallback(c *tg.CallbackQuery) error {
	data := c.DataString()

	if data == "fsub_check" {
		missing := missingChannels(c.OriginalUpdate.UserID)
		if len(missing) > 0 {
			c.Answer(fmt.Sprintf("You still need to join %s.", strings.Join(missing, ", ")))
			return nil
		}
		c.Answer("Thanks for joining!")
		c.Edit("✅ <b>Verified</b>\n\nYou can use the bot now. Send a media file to rename it.")
		return nil
	}

	c.Answer("")
	return nil
}
