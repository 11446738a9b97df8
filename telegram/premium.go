package telegram

import (
	"fmt"
	"log"
	"strings"
	"time"

	tg "github.com/amarnathcjd/gogram/telegram"
)

// HandleAddPremium grants a premium plan: /addpremium <user> <duration>
// or reply to a user with /addpremium <duration>. Duration specs use
// the m/h/d/w/mo/y suffixes, e.g. 30d or 1mo.
func HandleAddPremium(m *tg.NewMessage) error {
	if !isOwner(m.Sender.ID) {
		m.Reply("<b>Access Denied</b>\n\nOnly the owner can grant premium.")
		return nil
	}

	args := strings.Fields(m.Args())

	var targetUserID int64
	var spec string

	if m.IsReply() {
		if len(args) < 1 {
			m.Reply("<b>Usage:</b> reply with <code>/addpremium &lt;duration&gt;</code>, e.g. <code>/addpremium 30d</code>")
			return nil
		}
		replyMsg, err := m.GetReplyMessage()
		if err == nil {
			targetUserID = replyMsg.SenderID()
		}
		spec = args[0]
	} else {
		if len(args) < 2 {
			m.Reply("<b>Usage:</b> <code>/addpremium &lt;user_id|@username&gt; &lt;duration&gt;</code>\n\n" +
				"<b>Durations:</b> <code>10m</code> <code>12h</code> <code>30d</code> <code>2w</code> <code>1mo</code> <code>1y</code>")
			return nil
		}
		user, err := m.Client.GetSendablePeer(args[0])
		if err != nil {
			m.Reply("<b>Error:</b> Invalid user. Use a user ID, @username, or reply to a user.")
			return nil
		}
		targetUserID = m.Client.GetPeerID(user)
		spec = args[1]
	}

	if targetUserID == 0 {
		m.Reply("<b>Error:</b> Could not determine user ID.")
		return nil
	}

	expiry, err := db.AddPremium(targetUserID, spec)
	if err != nil {
		log.Printf("[PREMIUM] Failed to grant premium to %d: %v", targetUserID, err)
		m.Reply(fmt.Sprintf("<b>Error:</b> %v", err))
		return nil
	}

	m.Reply(fmt.Sprintf("✅ <b>Premium granted</b>\n\n<b>User:</b> <code>%d</code>\n<b>Expires:</b> %s",
		targetUserID, expiry.UTC().Format("2006-01-02 15:04 UTC")))
	return nil
}

// HandleRemovePremium revokes a premium plan.
func HandleRemovePremium(m *tg.NewMessage) error {
	if !isOwner(m.Sender.ID) {
		m.Reply("<b>Access Denied</b>\n\nOnly the owner can revoke premium.")
		return nil
	}

	var targetUserID int64

	if m.IsReply() {
		replyMsg, err := m.GetReplyMessage()
		if err == nil {
			targetUserID = replyMsg.SenderID()
		}
	} else {
		args := strings.TrimSpace(m.Args())
		if args == "" {
			m.Reply("<b>Usage:</b> <code>/rmpremium &lt;user_id|@username&gt;</code> or reply to a user.")
			return nil
		}
		user, err := m.Client.GetSendablePeer(args)
		if err != nil {
			m.Reply("<b>Error:</b> Invalid user. Use a user ID, @username, or reply to a user.")
			return nil
		}
		targetUserID = m.Client.GetPeerID(user)
	}

	if targetUserID == 0 {
		m.Reply("<b>Error:</b> Could not determine user ID.")
		return nil
	}

	removed, err := db.RemovePremium(targetUserID)
	if err != nil {
		log.Printf("[PREMIUM] Failed to revoke premium for %d: %v", targetUserID, err)
		m.Reply("<b>Error:</b> Failed to update the database.")
		return nil
	}
	if !removed {
		m.Reply(fmt.Sprintf("<b>Info:</b> User <code>%d</code> has no premium plan.", targetUserID))
		return nil
	}

	m.Reply(fmt.Sprintf("✅ <b>Premium revoked</b> for <code>%d</code>.", targetUserID))
	return nil
}

// HandleMyPlan shows the caller's premium status.
func HandleMyPlan(m *tg.NewMessage) error {
	if isOwner(m.Sender.ID) {
		m.Reply("<b>Your Plan</b>\n\nOwner account, no expiry.")
		return nil
	}

	expiry, active, err := db.GetPremiumExpiry(m.Sender.ID)
	if err != nil {
		log.Printf("[PREMIUM] Plan lookup failed for %d: %v", m.Sender.ID, err)
		m.Reply("❌ <b>Error</b>\n\nFailed to look up your plan.")
		return nil
	}
	if !active {
		m.Reply("<b>Your Plan</b>\n\nNo active premium plan. Contact the bot owner to get one.")
		return nil
	}

	m.Reply(fmt.Sprintf("<b>Your Plan</b>\n\n<b>Status:</b> Premium\n<b>Expires:</b> %s\n<b>Remaining:</b> %s",
		expiry.UTC().Format("2006-01-02 15:04 UTC"), formatRemaining(time.Until(expiry))))
	return nil
}

func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
