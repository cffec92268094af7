// Package viz renders synthesis results in the terminal: styled matrices,
// labelled metrics and status badges built on lipgloss.
package viz
