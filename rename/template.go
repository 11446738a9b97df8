package rename

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Placeholder substituted when season or episode could not be inferred.
const missingNumber = "XX"

// Audio scaffolding removed when no audio tag was found: bracketed
// placeholder forms and dash-joined forms on either side, covering the
// legacy capitalized/uppercase spellings too. Without this pass an
// empty audio tag would leave literal "[]" or dangling dashes behind.
var emptyAudioPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\[\s*\{audio\}\s*\]`),
	regexp.MustCompile(`\[\s*(?:AUDIO|Audio)\s*\]`),
	regexp.MustCompile(`(?i)\s*-\s*\{audio\}`),
	regexp.MustCompile(`(?i)\{audio\}\s*-\s*`),
	regexp.MustCompile(`\s*-\s*(?:AUDIO|Audio)\b`),
	regexp.MustCompile(`\b(?:AUDIO|Audio)\s*-\s*`),
}

// Extensions accepted as-is from the source filename. Anything else is
// treated as no extension and defaulted per media type.
var mediaExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true,
	".flv": true, ".webm": true, ".m4v": true, ".ts": true,
	".mp3": true, ".m4a": true, ".flac": true, ".wav": true, ".ogg": true,
	".aac": true, ".opus": true,
	".srt": true, ".ass": true, ".zip": true, ".pdf": true,
}

// Render substitutes tags into format, then appends the source
// extension (or a default matching mediaType) and returns the final
// filename. Every placeholder is applied exactly once; braced forms
// take precedence over the bare legacy tokens.
func Render(format string, tags Tags, srcName, mediaType string) string {
	if tags.Audio == "" {
		for _, p := range emptyAudioPatterns {
			format = p.ReplaceAllString(format, "")
		}
		format = titleSpacesRe.ReplaceAllString(format, " ")
	}

	season := missingNumber
	if tags.Season != nil {
		season = strconv.Itoa(*tags.Season)
	}
	episode := missingNumber
	if tags.Episode != nil {
		episode = strconv.Itoa(*tags.Episode)
	}

	upperTitle := strings.ToUpper(tags.Title)
	if tags.Title == UnknownTitle {
		upperTitle = "UNKNOWN"
	}

	// Order matters: braced forms first, then the bare legacy tokens,
	// so a bare token never eats part of a braced placeholder.
	name := substituteTokens(format, []tokenValue{
		{"{season}", season},
		{"{episode}", episode},
		{"{quality}", tags.Quality},
		{"{title}", tags.Title},
		{"{audio}", tags.Audio},
		{"Season", season},
		{"Episode", episode},
		{"QUALITY", tags.Quality},
		{"TITLE", upperTitle},
		{"Title", tags.Title},
		{"AUDIO", strings.ToUpper(tags.Audio)},
		{"Audio", tags.Audio},
	})

	name = strings.TrimSpace(name)
	return name + pickExtension(srcName, mediaType)
}

type tokenValue struct {
	token string
	value string
}

// substituteTokens walks s once, replacing each token occurrence with
// its value. Replaced values are never rescanned, so substitution
// cannot cascade into itself.
func substituteTokens(s string, tokens []tokenValue) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		replaced := false
		for _, tv := range tokens {
			if strings.HasPrefix(s[i:], tv.token) {
				b.WriteString(tv.value)
				i += len(tv.token)
				replaced = true
				break
			}
		}
		if !replaced {
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

func pickExtension(srcName, mediaType string) string {
	if ext := strings.ToLower(filepath.Ext(srcName)); mediaExtensions[ext] {
		return ext
	}
	if mediaType == "audio" {
		return ".mp3"
	}
	return ".mkv"
}

// RenderCaption substitutes {filename}, {filesize} and {duration} in a
// user caption template. An empty template yields "".
func RenderCaption(template, filename string, size int64, duration string) string {
	if template == "" {
		return ""
	}
	caption := strings.ReplaceAll(template, "{filename}", filename)
	caption = strings.ReplaceAll(caption, "{filesize}", FormatBytes(size))
	caption = strings.ReplaceAll(caption, "{duration}", duration)
	return caption
}

// FormatBytes renders a byte count in human-readable form.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
