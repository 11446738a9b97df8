package rename

import (
	"strings"
	"testing"
)

func TestRenderEndToEnd(t *testing.T) {
	src := "The.Office.S01E02.1080p.HDRip-XYZ"
	tags := ExtractTags(src)
	got := Render("{title} S{season}E{episode} {quality}", tags, src, "video")
	want := "The Office S1E2 1080p.mkv"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderMissingSeasonDefaultsToXX(t *testing.T) {
	src := "Naruto 001"
	tags := ExtractTags(src)
	got := Render("{title} S{season}E{episode}", tags, src, "video")
	want := "Naruto SXXE1.mkv"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderEmptyAudioStripsScaffolding(t *testing.T) {
	tags := Tags{Title: "The Office", Quality: "1080p"}

	tests := []struct {
		template string
		want     string
	}{
		{"{title} [{audio}] {quality}", "The Office 1080p.mkv"},
		{"{title} - {audio}", "The Office.mkv"},
		{"{audio} - {title}", "The Office.mkv"},
		{"{title} [Audio]", "The Office.mkv"},
		{"{title} - AUDIO", "The Office.mkv"},
	}
	for _, tt := range tests {
		got := Render(tt.template, tags, "x.mkv", "video")
		if got != tt.want {
			t.Errorf("Render(%q) = %q, want %q", tt.template, got, tt.want)
		}
		if strings.Contains(got, "[]") || strings.Contains(got, "{audio}") {
			t.Errorf("Render(%q) left audio artifacts: %q", tt.template, got)
		}
	}
}

func TestRenderKeepsAudioWhenPresent(t *testing.T) {
	src := "Show S01E02 Hindi Dub 720p.mkv"
	tags := ExtractTags(src)
	got := Render("{title} [{audio}] {quality}", tags, src, "video")
	if !strings.Contains(got, "[Hindi Dub]") {
		t.Errorf("Render = %q, want audio tag kept", got)
	}
}

func TestRenderLegacyTokens(t *testing.T) {
	season, episode := 3, 7
	tags := Tags{
		Season:  &season,
		Episode: &episode,
		Quality: "720p",
		Title:   "My Show",
		Audio:   "Dual",
	}
	got := Render("Title Season Episode QUALITY AUDIO", tags, "x.mp4", "video")
	want := "My Show 3 7 720p DUAL.mp4"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderUppercaseTitleSentinel(t *testing.T) {
	tags := Tags{Title: UnknownTitle, Quality: "Unknown"}
	got := Render("TITLE", tags, "x.mkv", "video")
	if got != "UNKNOWN.mkv" {
		t.Errorf("Render = %q, want UNKNOWN.mkv", got)
	}
}

// Substituting an already-rendered name again must be a no-op when no
// placeholder text remains.
func TestRenderSubstitutionIdempotent(t *testing.T) {
	src := "The.Office.S01E02.1080p.mkv"
	tags := ExtractTags(src)
	once := Render("{title} S{season}E{episode} {quality}", tags, src, "video")
	base := strings.TrimSuffix(once, ".mkv")
	twice := Render(base, tags, src, "video")
	if twice != once {
		t.Errorf("second render changed output: %q -> %q", once, twice)
	}
}

func TestPickExtension(t *testing.T) {
	tests := []struct {
		src       string
		mediaType string
		want      string
	}{
		{"show.mkv", "document", ".mkv"},
		{"show.MP4", "video", ".mp4"},
		{"song.flac", "audio", ".flac"},
		{"noext", "video", ".mkv"},
		{"noext", "audio", ".mp3"},
		{"weird.HDRip-XYZ", "video", ".mkv"},
	}
	for _, tt := range tests {
		if got := pickExtension(tt.src, tt.mediaType); got != tt.want {
			t.Errorf("pickExtension(%q, %q) = %q, want %q", tt.src, tt.mediaType, got, tt.want)
		}
	}
}

func TestRenderCaption(t *testing.T) {
	got := RenderCaption("{filename} | {filesize} | {duration}", "a.mkv", 2048, "00:10:00")
	want := "a.mkv | 2.0 KB | 00:10:00"
	if got != want {
		t.Errorf("RenderCaption = %q, want %q", got, want)
	}

	if got := RenderCaption("", "a.mkv", 1, "00:00:00"); got != "" {
		t.Errorf("RenderCaption(empty) = %q, want empty", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
