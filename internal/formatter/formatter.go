// package formatter provides functions to export playlist data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/desertthunder/vidctl/internal/player"
	"github.com/desertthunder/vidctl/internal/playlist"
)

// ExportToCSV converts a playlist snapshot to CSV format with columns: Position, Name, Filename, Playing
func ExportToCSV(snap playlist.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Name", "Filename", "Playing"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, video := range snap.Items {
		record := []string{
			strconv.Itoa(i + 1),
			video.Name,
			video.Filename,
			strconv.FormatBool(i == snap.PlayingIndex),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist snapshot to a Markdown listing.
func ExportToMarkdown(snap playlist.Snapshot, deviceURL string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Device Playlist\n\n")

	if deviceURL != "" {
		buf.WriteString(fmt.Sprintf("**Device**: %s\n\n", deviceURL))
	}

	buf.WriteString(fmt.Sprintf("**Videos**: %d\n\n", len(snap.Items)))

	for i, video := range snap.Items {
		marker := ""
		if i == snap.PlayingIndex {
			marker = " ▶"
		}
		buf.WriteString(fmt.Sprintf("%d. %s (`%s`)%s\n", i+1, video.Name, video.Filename, marker))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist snapshot to plain text, one video per line.
func ExportToText(snap playlist.Snapshot) []byte {
	var buf bytes.Buffer

	for i, video := range snap.Items {
		marker := "  "
		if i == snap.PlayingIndex {
			marker = "▶ "
		}
		buf.WriteString(fmt.Sprintf("%s%3d  %s  (%s)\n", marker, i+1, video.Name, video.Filename))
	}

	if len(snap.Items) == 0 {
		buf.WriteString("(playlist empty)\n")
	}

	return buf.Bytes()
}

// StatusLine renders a device status as a single display line.
// The Black Screen sentinel is kept distinct from both "Playing" and "No video".
func StatusLine(status *player.Status) string {
	switch {
	case status == nil:
		return "Status unknown"
	case status.IsBlackScreen():
		return "Black screen (idle)"
	case status.CurrentVideo == nil:
		return "No video"
	case status.IsPlaying:
		return fmt.Sprintf("Playing: %s", status.CurrentVideo.Name)
	default:
		return fmt.Sprintf("Paused: %s", status.CurrentVideo.Name)
	}
}
