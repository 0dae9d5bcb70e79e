package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/vidctl/internal/player"
)

var _ list.Item = videoItem{}

// videoItem wraps [player.Video] to implement [list.Item].
type videoItem struct {
	video   player.Video
	playing bool
}

func (i videoItem) FilterValue() string { return i.video.Name }
func (i videoItem) Title() string {
	if i.playing {
		return "▶ " + i.video.Name
	}
	return i.video.Name
}
func (i videoItem) Description() string { return i.video.Filename }
