package main

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxCaptionRunes  = 80
	maxUsernameRunes = 32
)

// FrameStyles lists the styles offered by the style picker.
var FrameStyles = []string{"classic", "polaroid", "film", "minimal"}

// FrameColors is the picker palette. Any #rrggbb is accepted.
var FrameColors = []string{"#ffffff", "#111111", "#d4af37", "#c0392b", "#2e86de", "#27ae60"}

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Card is the editable presentation of one photo card. It is a value: every
// edit returns a new Card.
type Card struct {
	Username string `toml:"username"`
	Caption  string `toml:"caption"`
	Style    string `toml:"style"`
	Color    string `toml:"color"`
	Rotate   bool   `toml:"rotate"`
}

// DefaultCard returns a card with the first style and color.
func DefaultCard(username string) Card {
	return Card{
		Username: truncateRunes(strings.TrimSpace(username), maxUsernameRunes),
		Style:    FrameStyles[0],
		Color:    FrameColors[0],
	}
}

func (c Card) WithCaption(caption string) Card {
	c.Caption = truncateRunes(strings.TrimSpace(caption), maxCaptionRunes)
	return c
}

func (c Card) WithUsername(username string) Card {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	c.Username = truncateRunes(username, maxUsernameRunes)
	return c
}

// WithStyle sets a known frame style; unknown styles fall back to classic.
func (c Card) WithStyle(style string) Card {
	style = strings.ToLower(strings.TrimSpace(style))
	if !slices.Contains(FrameStyles, style) {
		style = FrameStyles[0]
	}
	c.Style = style
	return c
}

// WithColor sets a #rrggbb frame color; anything else falls back to white.
func (c Card) WithColor(color string) Card {
	color = strings.TrimSpace(color)
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	if !hexColorRegex.MatchString(color) {
		color = FrameColors[0]
	}
	c.Color = strings.ToLower(color)
	return c
}

func (c Card) ToggleRotate() Card {
	c.Rotate = !c.Rotate
	return c
}

// Normalize re-applies every setter, used for cards read from disk.
func (c Card) Normalize() Card {
	return c.WithCaption(c.Caption).WithUsername(c.Username).WithStyle(c.Style).WithColor(c.Color)
}

// StyleName is the style as shown to the user.
func (c Card) StyleName() string {
	return cases.Title(language.English).String(c.Style)
}

// Handle renders the username as @name, or empty.
func (c Card) Handle() string {
	if c.Username == "" {
		return ""
	}
	return "@" + c.Username
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
