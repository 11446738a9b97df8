package telegram

import "testing"

func TestIsMember(t *testing.T) {
	for _, status := range []string{"member", "admin", "creator", "Member", "ADMIN"} {
		if !isMember(status) {
			t.Errorf("isMember(%q) = false, want true", status)
		}
	}
	for _, status := range []string{"left", "kicked", "banned", "Left", ""} {
		if isMember(status) {
			t.Errorf("isMember(%q) = true, want false", status)
		}
	}
}
