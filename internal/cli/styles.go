package cli

import "github.com/charmbracelet/lipgloss"

// Centralized Lip Gloss styles for kgit command output.
var (
	CurrentBranchStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#00ff5f"))

	LocalBranchStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff"))

	RemoteBranchStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ff5f5f"))

	HashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d7af00"))

	SubtleStyle = lipgloss.NewStyle().
			Faint(true).
			Foreground(lipgloss.Color("#a8a8a8"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff005f")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff5f")).
			Bold(true)
)

// shortHash returns the first 8 characters of a commit id
func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
