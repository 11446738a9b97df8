// Package media wraps the external tooling the bot shells out to:
// ffmpeg for container remuxing, ffprobe for duration, plus thumbnail
// resizing.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// MetaTags are the container-level metadata written during a remux.
type MetaTags struct {
	Title         string
	Artist        string
	Author        string
	VideoTitle    string
	AudioTitle    string
	SubtitleTitle string
}

// Remux copies every stream of inPath to outPath without re-encoding,
// rewriting the container metadata from tags. When ffmpeg is not in
// PATH the file is copied untouched instead.
func Remux(inPath, outPath string, tags MetaTags) error {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		log.Printf("[MEDIA] ffmpeg not found in PATH, copying without metadata")
		return copyFile(inPath, outPath)
	}

	cmd := exec.Command(ffmpeg,
		"-i", inPath,
		"-metadata", "title="+tags.Title,
		"-metadata", "artist="+tags.Artist,
		"-metadata", "author="+tags.Author,
		"-metadata:s:v", "title="+tags.VideoTitle,
		"-metadata:s:a", "title="+tags.AudioTitle,
		"-metadata:s:s", "title="+tags.SubtitleTitle,
		"-map", "0",
		"-c", "copy",
		"-loglevel", "error",
		"-y", outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return nil
}

// Duration probes path and returns its duration as HH:MM:SS. Any
// failure yields "00:00:00"; errors never propagate past this point.
func Duration(path string) string {
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return "00:00:00"
	}

	out, err := exec.Command(ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		log.Printf("[MEDIA] duration probe failed for %s: %v", path, err)
		return "00:00:00"
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return "00:00:00"
	}
	return formatDuration(int(seconds))
}

func formatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

const thumbSize = 320

// FitThumbnail decodes the image at path, scales it to 320x320 and
// re-encodes it as JPEG in place.
func FitThumbnail(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	src, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode thumbnail: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, thumbSize, thumbSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return jpeg.Encode(out, dst, &jpeg.Options{Quality: 90})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
