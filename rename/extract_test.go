package rename

import (
	"sort"
	"strconv"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestExtractSeasonEpisode(t *testing.T) {
	tests := []struct {
		filename string
		season   *int
		episode  *int
	}{
		{"The.Office.S01E02.1080p.HDRip-XYZ", intPtr(1), intPtr(2)},
		{"The Office S01 E02 720p", intPtr(1), intPtr(2)},
		{"The Office S01-EP02", intPtr(1), intPtr(2)},
		{"[S01][E02] The Office", intPtr(1), intPtr(2)},
		{"Show Season 1 Episode 2", intPtr(1), intPtr(2)},
		{"Show S01 13", intPtr(1), intPtr(13)},
		{"Show EP07 1080p", nil, intPtr(7)},
		{"Show Episode 13", nil, intPtr(13)},
		{"Naruto 001", nil, intPtr(1)},
		{"no numbers here", nil, nil},
	}

	for _, tt := range tests {
		season, episode := ExtractSeasonEpisode(tt.filename)
		if !intPtrEq(season, tt.season) || !intPtrEq(episode, tt.episode) {
			t.Errorf("ExtractSeasonEpisode(%q) = (%s, %s), want (%s, %s)",
				tt.filename, fmtPtr(season), fmtPtr(episode), fmtPtr(tt.season), fmtPtr(tt.episode))
		}
	}
}

// Pattern order is the precedence policy: the separator variants of
// SxxExx must keep agreeing as patterns are added.
func TestSeasonEpisodePrecedence(t *testing.T) {
	variants := []string{
		"Show.S01E02.mkv",
		"Show S01 E02.mkv",
		"Show S01-EP02.mkv",
		"[S01][E02] Show.mkv",
	}
	for _, filename := range variants {
		season, episode := ExtractSeasonEpisode(filename)
		if season == nil || *season != 1 || episode == nil || *episode != 2 {
			t.Errorf("ExtractSeasonEpisode(%q) = (%s, %s), want (1, 2)",
				filename, fmtPtr(season), fmtPtr(episode))
		}
	}
}

// The sequence sorter and the rename path must agree on the episode
// number of any given name.
func TestEpisodeSortKeyMatchesExtractor(t *testing.T) {
	filenames := []string{
		"The.Office.S01E02.1080p.mkv",
		"Naruto 001.mkv",
		"Show EP12.mkv",
		"nothing at all",
	}
	for _, filename := range filenames {
		_, episode := ExtractSeasonEpisode(filename)
		key := EpisodeSortKey(filename)
		if episode == nil {
			if key != NoEpisode {
				t.Errorf("EpisodeSortKey(%q) = %d, want NoEpisode", filename, key)
			}
			continue
		}
		if key != *episode {
			t.Errorf("EpisodeSortKey(%q) = %d, want %d", filename, key, *episode)
		}
	}
}

func TestEpisodeSortOrder(t *testing.T) {
	files := []string{
		"Show EP05.mkv",
		"Show EP01.mkv",
		"no-match",
		"Show EP03.mkv",
	}
	sort.SliceStable(files, func(i, j int) bool {
		return EpisodeSortKey(files[i]) < EpisodeSortKey(files[j])
	})

	want := []string{"Show EP01.mkv", "Show EP03.mkv", "Show EP05.mkv", "no-match"}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", files, want)
		}
	}
}

func TestExtractQuality(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"Show.S01E02.1080p.mkv", "1080p"},
		{"Show.S01E02.480i.mkv", "480i"},
		{"Show.2160p.mkv", "4k"},
		{"Show.4K.mkv", "4k"},
		{"Show.1440p.mkv", "2k"},
		{"Show.2k.mkv", "2k"},
		{"Show.HDRip.mkv", "HDRip"},
		{"Show.HDTV.mkv", "HDTV"},
		{"Show.S01E02.mkv", "Unknown"},
	}
	for _, tt := range tests {
		if got := ExtractQuality(tt.filename); got != tt.want {
			t.Errorf("ExtractQuality(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

// 4k and 2160p are the same canonical token; same for 2k and 1440p.
func TestQualityNormalization(t *testing.T) {
	if a, b := ExtractQuality("x 2160p y"), ExtractQuality("x 4k y"); a != b {
		t.Errorf("2160p normalized to %q but 4k to %q", a, b)
	}
	if a, b := ExtractQuality("x 1440p y"), ExtractQuality("x 2k y"); a != b {
		t.Errorf("1440p normalized to %q but 2k to %q", a, b)
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"The.Office.S01E02.1080p.HDRip-XYZ", "The Office"},
		{"Naruto - 05 [1080p].mkv", "Naruto"},
		{"Naruto 001", "Naruto"},
		{"Inception (2010) 1080p BluRay.mkv", "Inception"},
		{"Breaking_Bad_S02E05_720p.mkv", "Breaking Bad"},
		{"12345.mkv", UnknownTitle},
		{"ab.mkv", UnknownTitle},
	}
	for _, tt := range tests {
		if got := ExtractTitle(tt.filename); got != tt.want {
			t.Errorf("ExtractTitle(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestExtractAudio(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"Show S01E02 Hindi Dub 1080p", "Hindi Dub"},
		{"Show S01E02 [Dual Audio] 720p", "Dual Audio"},
		{"Show S01E02 (English Sub)", "English Sub"},
		{"Show.S01E02.Dubbed.mkv", "Dubbed"},
		{"Show S01E02 Subtitled", "Subtitled"},
		{"The.Office.S01E02.1080p.HDRip-XYZ", ""},
		{"Subway Surfers Movie 1080p", ""},
		{"[SubsPlease] Naruto - 05 (1080p).mkv", ""},
		{"[DualTone] Show S01E02.mkv", ""},
	}
	for _, tt := range tests {
		if got := ExtractAudio(tt.filename); got != tt.want {
			t.Errorf("ExtractAudio(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestExtractTags(t *testing.T) {
	tags := ExtractTags("The.Office.S01E02.1080p.HDRip-XYZ")
	if tags.Season == nil || *tags.Season != 1 {
		t.Errorf("season = %s, want 1", fmtPtr(tags.Season))
	}
	if tags.Episode == nil || *tags.Episode != 2 {
		t.Errorf("episode = %s, want 2", fmtPtr(tags.Episode))
	}
	if tags.Quality != "1080p" {
		t.Errorf("quality = %q, want 1080p", tags.Quality)
	}
	if tags.Title != "The Office" {
		t.Errorf("title = %q, want The Office", tags.Title)
	}
	if tags.Audio != "" {
		t.Errorf("audio = %q, want empty", tags.Audio)
	}
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtPtr(p *int) string {
	if p == nil {
		return "nil"
	}
	return strconv.Itoa(*p)
}
