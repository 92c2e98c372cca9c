package main

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	BulletStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingRight(1)
	TextStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	DimTextStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	SpinnerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	DetailStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(2)
	ItemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	SelectedItemStyle = lipgloss.NewStyle().PaddingLeft(0).Foreground(lipgloss.Color("3"))
	ErrorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	SuccessStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	WindowStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	TrackStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// cardFrameStyle draws the card preview border in the card's frame color.
func cardFrameStyle(card Card) lipgloss.Style {
	border := lipgloss.RoundedBorder()
	switch card.Style {
	case "polaroid":
		border = lipgloss.ThickBorder()
	case "film":
		border = lipgloss.DoubleBorder()
	case "minimal":
		border = lipgloss.NormalBorder()
	}
	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(lipgloss.Color(card.Color)).
		Padding(0, 2)
}
