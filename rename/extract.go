// Package rename infers season, episode, quality, title and audio tags
// from media filenames and renders them against user templates.
package rename

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Tags holds everything inferred from a single filename.
// Audio is empty (not a sentinel) when no marker was found; the
// renderer relies on that to strip audio scaffolding.
type Tags struct {
	Season  *int
	Episode *int
	Quality string
	Title   string
	Audio   string
}

const (
	UnknownQuality = "Unknown"
	UnknownTitle   = "Unknown Title"
)

// Season/episode patterns, most specific first. The first pattern that
// matches wins; list order is the only tie-break.
var seasonEpisodePatterns = []struct {
	regex        *regexp.Regexp
	seasonGroup  int
	episodeGroup int
}{
	{regexp.MustCompile(`(?i)S(\d{1,2})(?:E|EP)(\d{1,3})`), 1, 2},
	{regexp.MustCompile(`(?i)S(\d{1,2})[\s._-]+(?:E|EP)(\d{1,3})`), 1, 2},
	{regexp.MustCompile(`(?i)Season[\s._-]*(\d{1,2})[\s._-]*Episode[\s._-]*(\d{1,3})`), 1, 2},
	{regexp.MustCompile(`(?i)\[S(\d{1,2})\]\[E(\d{1,3})\]`), 1, 2},
	{regexp.MustCompile(`(?i)S(\d{1,2})[^\d]+(\d{1,3})`), 1, 2},
	{regexp.MustCompile(`(?i)\b(?:EP|E|Episode)[\s._-]*(\d{1,3})\b`), 0, 1},
	{regexp.MustCompile(`\b(\d{1,4})\b`), 0, 1},
}

// ExtractSeasonEpisode returns the season and episode numbers inferred
// from filename. Season is nil when the winning pattern carries no
// season group; both are nil when nothing matches.
func ExtractSeasonEpisode(filename string) (season, episode *int) {
	for _, p := range seasonEpisodePatterns {
		m := p.regex.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		if p.seasonGroup > 0 {
			if v, err := strconv.Atoi(m[p.seasonGroup]); err == nil {
				season = &v
			}
		}
		group := p.episodeGroup
		if group == 0 {
			group = 1
		}
		if v, err := strconv.Atoi(m[group]); err == nil {
			episode = &v
		}
		return season, episode
	}
	return nil, nil
}

// NoEpisode sorts filenames without a recognizable episode number last.
const NoEpisode = math.MaxInt

// EpisodeSortKey returns the inferred episode number of filename, or
// NoEpisode when none can be inferred. The sequence sorter and the
// rename path share this single inference.
func EpisodeSortKey(filename string) int {
	_, episode := ExtractSeasonEpisode(filename)
	if episode == nil {
		return NoEpisode
	}
	return *episode
}

// Quality patterns with their normalizers, first match wins. The
// canonical token set is data here, not control flow: edit the table
// when the heuristic evolves.
var qualityPatterns = []struct {
	regex     *regexp.Regexp
	normalize func(m []string) string
}{
	{regexp.MustCompile(`(?i)\b(4k|2160p)\b`), func([]string) string { return "4k" }},
	{regexp.MustCompile(`(?i)\b(2k|1440p)\b`), func([]string) string { return "2k" }},
	{regexp.MustCompile(`(?i)\b(\d{3,4}[pi])\b`), func(m []string) string { return m[1] }},
	{regexp.MustCompile(`(?i)\b(HDRip|HDTV)\b`), func(m []string) string { return m[1] }},
	{regexp.MustCompile(`(?i)\[(\d{3,4}[pi])\]`), func(m []string) string { return m[1] }},
}

// ExtractQuality returns the canonical quality token inferred from
// filename, or "Unknown" when no pattern matches.
func ExtractQuality(filename string) string {
	for _, p := range qualityPatterns {
		if m := p.regex.FindStringSubmatch(filename); m != nil {
			return p.normalize(m)
		}
	}
	return UnknownQuality
}

// Title patterns, structural and ordered: show before an episode dash,
// show before SxxExx, bracketed show, movie with year, text before a
// quality marker, text before a bare episode number, then generic
// text-before-digits fallbacks.
var titlePatterns = []struct {
	regex     *regexp.Regexp
	stripYear bool
}{
	{regexp.MustCompile(`(?i)^(.+?)\s+-\s*(?:EP?|Episode)?\s*\d{1,3}\b`), false},
	{regexp.MustCompile(`(?i)^(.+?)[\s._-]*S\d{1,2}[\s._-]*(?:E|EP)\d{1,3}`), false},
	{regexp.MustCompile(`(?i)^\[([^\]]+)\][\s._-]*S\d{1,2}`), false},
	{regexp.MustCompile(`(?i)^(.+?\((?:19|20)\d{2}\))`), true},
	{regexp.MustCompile(`(?i)^(.+?)[\s._-]+(?:\d{3,4}[pi]|4k|2k|HDRip|HDTV)\b`), false},
	{regexp.MustCompile(`(?i)^(.+?)[\s._-]+\d{2,3}\b`), false},
	{regexp.MustCompile(`(?i)^(.+?)[\s._-]+(?:S\d|E\d|\d)`), false},
	{regexp.MustCompile(`(?i)^([^\d]+)\d`), false},
}

var (
	titleQualityRe   = regexp.MustCompile(`(?i)\b(\d{3,4}[pi]|4k|2k|HDRip|HDTV)\b`)
	titleAsideRe     = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)
	titleYearRe      = regexp.MustCompile(`\(?\b(?:19|20)\d{2}\b\)?`)
	titleSpacesRe    = regexp.MustCompile(`\s+`)
	titleAllDigitsRe = regexp.MustCompile(`^\d+$`)
)

// ExtractTitle returns the show or movie title inferred from filename,
// or "Unknown Title" when no pattern yields a usable result.
func ExtractTitle(filename string) string {
	for _, p := range titlePatterns {
		m := p.regex.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		if title := cleanTitle(m[1], p.stripYear); title != "" {
			return title
		}
	}
	return UnknownTitle
}

// cleanTitle normalizes a captured title span. It returns "" when the
// cleaned result is too short or purely numeric, which makes the
// caller fall through to the next pattern.
func cleanTitle(raw string, stripYear bool) string {
	title := raw
	if stripYear {
		title = titleYearRe.ReplaceAllString(title, " ")
	}
	title = titleAsideRe.ReplaceAllString(title, " ")
	title = titleQualityRe.ReplaceAllString(title, " ")
	title = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(title)
	title = titleSpacesRe.ReplaceAllString(title, " ")
	title = strings.Trim(title, " ._-")

	if len(title) <= 2 || titleAllDigitsRe.MatchString(title) {
		return ""
	}
	return title
}

// Audio patterns: only explicit Sub/Dub/Dual markers count, optionally
// inside a bracket group or preceded by a language name. Anything else
// yields the empty string.
var audioPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[\[({]\s*([^\])}]*?\b(?:Sub|Dub|Dual)\b[^\])}]*?)\s*[\])}]`),
	regexp.MustCompile(`(?i)\b([A-Za-z]+[\s._-](?:Dual[\s._-]Audio|Dual|Dub(?:bed)?|Sub(?:bed|title[sd]?)?))\b`),
	regexp.MustCompile(`(?i)\b(Dual[\s._-]Audio|Dual|Dub(?:bed)?|Sub(?:bed|title[sd]?)?)\b`),
}

// ExtractAudio returns the audio/language marker found in filename, or
// "" when there is none. Callers depend on the empty value: the
// template renderer uses it to drop audio scaffolding.
func ExtractAudio(filename string) string {
	for _, p := range audioPatterns {
		if m := p.FindStringSubmatch(filename); m != nil {
			audio := strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(m[1])
			return strings.TrimSpace(titleSpacesRe.ReplaceAllString(audio, " "))
		}
	}
	return ""
}

// ExtractTags runs every cascade against filename and returns the
// combined inference.
func ExtractTags(filename string) Tags {
	season, episode := ExtractSeasonEpisode(filename)
	return Tags{
		Season:  season,
		Episode: episode,
		Quality: ExtractQuality(filename),
		Title:   ExtractTitle(filename),
		Audio:   ExtractAudio(filename),
	}
}
