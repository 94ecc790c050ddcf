// Package cli provides the styled terminal chat used by the celengan command.
package cli

import (
	"github.com/Veraticus/celengan/internal/reply"
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color (celengan pink).
	PrimaryColor = lipgloss.Color("#F78FB3")
	// SuccessColor indicates committed entries.
	SuccessColor = lipgloss.Color("#4ECDC4") // Teal
	// WarningColor marks entries waiting for confirmation.
	WarningColor = lipgloss.Color("#FFE66D") // Yellow
	// ErrorColor indicates errors or failed commits.
	ErrorColor = lipgloss.Color("#FF6B6B") // Red
	// InfoColor indicates questions back to the user.
	InfoColor = lipgloss.Color("#95E1D3") // Light teal
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)

	// PromptStyle is used for the user's input prompt.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// BotStyle prefixes assistant replies.
	BotStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon  = "✓"
	ErrorIcon    = "✗"
	WarningIcon  = "⚠️"
	InfoIcon     = "ℹ️"
	CelenganIcon = "🐷"
	PendingIcon  = "⏳"
	ChartIcon    = "📊"
	QuestionIcon = "❓"
)

// kindStyle is how each reply kind is shown. Commit results are split by
// outcome in replyStyle.
var kindStyle = map[reply.Kind]struct {
	icon  string
	style lipgloss.Style
}{
	reply.KindProposal:      {PendingIcon, WarningStyle},
	reply.KindRejection:     {CelenganIcon, SubtleStyle},
	reply.KindClarification: {QuestionIcon, InfoStyle},
	reply.KindQueryAnswer:   {ChartIcon, lipgloss.NewStyle()},
	reply.KindExpired:       {WarningIcon, WarningStyle},
	reply.KindFallback:      {CelenganIcon, SubtleStyle},
}

func replyStyle(md reply.Metadata) (string, lipgloss.Style) {
	if md.Kind == reply.KindConfirmation {
		if md.Success {
			return SuccessIcon, SuccessStyle
		}
		return ErrorIcon, ErrorStyle
	}
	if ks, ok := kindStyle[md.Kind]; ok {
		return ks.icon, ks.style
	}
	return CelenganIcon, lipgloss.NewStyle()
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the celengan icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(CelenganIcon + " " + title)
}

// FormatPrompt formats the input prompt.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " › ")
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	)

	return BoxStyle.Render(boxContent)
}
