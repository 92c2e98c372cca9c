package main

import (
	"strings"
	"testing"
)

func TestCardEditsReturnCopies(t *testing.T) {
	original := DefaultCard("ada")
	edited := original.WithCaption("  sunset at the pier ").ToggleRotate().WithStyle("polaroid")

	if original.Caption != "" || original.Rotate || original.Style != "classic" {
		t.Fatalf("original card mutated: %+v", original)
	}
	if edited.Caption != "sunset at the pier" || !edited.Rotate || edited.Style != "polaroid" {
		t.Fatalf("unexpected edited card: %+v", edited)
	}
}

func TestCardStyleName(t *testing.T) {
	c := DefaultCard("")
	for _, style := range FrameStyles {
		if got := c.WithStyle(style).Style; got != style {
			t.Fatalf("WithStyle(%q) = %q", style, got)
		}
	}
	if c.WithStyle("FILM").StyleName() != "Film" {
		t.Fatalf("unexpected style name %q", c.WithStyle("FILM").StyleName())
	}
}

func TestCardColorNormalization(t *testing.T) {
	tests := map[string]string{
		"#ABCDEF": "#abcdef",
		"00ff00":  "#00ff00",
		"red":     "#ffffff",
		"#fff":    "#ffffff",
		"":        "#ffffff",
	}
	for in, want := range tests {
		if got := DefaultCard("").WithColor(in).Color; got != want {
			t.Fatalf("WithColor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCardLimits(t *testing.T) {
	c := DefaultCard("").WithCaption(strings.Repeat("é", 200)).WithUsername("@" + strings.Repeat("x", 50))
	if n := len([]rune(c.Caption)); n != maxCaptionRunes {
		t.Fatalf("expected caption capped at %d runes, got %d", maxCaptionRunes, n)
	}
	if n := len(c.Username); n != maxUsernameRunes {
		t.Fatalf("expected username capped at %d, got %d", maxUsernameRunes, n)
	}
	if !strings.HasPrefix(c.Handle(), "@x") {
		t.Fatalf("unexpected handle %q", c.Handle())
	}
}

func TestCardNormalizeUnknownStyle(t *testing.T) {
	c := Card{Style: "neon", Color: "blue", Username: "@bob"}.Normalize()
	if c.Style != "classic" || c.Color != "#ffffff" || c.Username != "bob" {
		t.Fatalf("unexpected normalized card: %+v", c)
	}
}
