package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

type levelStyle struct {
	symbol string
	attr   color.Attribute
}

var levelStyles = map[ErrorLevel]levelStyle{
	ErrorLevelError:   {"❌", color.FgRed},
	ErrorLevelWarning: {"⚠️", color.FgYellow},
}

func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ KEY NOT FOUND: No key 'ownr' on Service.Run.
//	   No key 'ownr' on Service.Run.
//
//	   Did you mean: owner?
//
//	   → See all keys: annotate inspect <snapshot> --member Service.Run
func FormatError(opts ErrorOptions) string {
	style, ok := levelStyles[opts.Level]
	if !ok {
		style = levelStyles[ErrorLevelError]
	}
	header := paint(opts.NoColor, style.attr, color.Bold)
	body := paint(opts.NoColor, style.attr)

	var b strings.Builder
	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", style.symbol, strings.ToUpper(opts.Context), opts.Problem)
		if opts.Problem != "" {
			body.Fprintf(&b, "   %s\n", opts.Problem)
		}
	} else {
		header.Fprintf(&b, "%s %s\n", style.symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		body.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		paint(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		help := paint(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			help.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return paint(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// MemberNotFoundError reports a member missing from a snapshot
func MemberNotFoundError(member string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "MEMBER NOT FOUND",
		Problem:     fmt.Sprintf("Cannot find member '%s'.", member),
		Suggestions: suggestions,
		HelpCommands: []string{
			"See all members: annotate inspect <snapshot>",
		},
		NoColor: noColor,
	})
}

// AmbiguousMemberError reports a short member name that matches members
// of more than one package
func AmbiguousMemberError(member string, candidates []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "AMBIGUOUS MEMBER",
		Problem:     fmt.Sprintf("'%s' matches %d members.", member, len(candidates)),
		Consequence: "Use the full name to pick one.",
		Suggestions: candidates,
		NoColor:     noColor,
	})
}

// EmptySnapshotWarning reports a snapshot with no installed members
func EmptySnapshotWarning(path string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelWarning,
		Context:     "EMPTY SNAPSHOT",
		Problem:     fmt.Sprintf("No members in %s.", path),
		Consequence: "Nothing was annotated when the snapshot was written.",
		HelpCommands: []string{
			"Write a demo snapshot: annotate demo --out annotations.json",
		},
		NoColor: noColor,
	})
}

// KeyNotFoundError reports a metadata key missing from a member's table
func KeyNotFoundError(member, key string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "KEY NOT FOUND",
		Problem:     fmt.Sprintf("No key '%s' on %s.", key, member),
		Consequence: "No values were returned.",
		Suggestions: suggestions,
		HelpCommands: []string{
			fmt.Sprintf("See all keys: annotate inspect <snapshot> --member %s", member),
		},
		NoColor: noColor,
	})
}

// MetadataError reports any other annotator failure
func MetadataError(context, message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: context,
		Problem: message,
		HelpCommands: []string{
			"Get help: annotate inspect --help",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat annotate.yml",
		},
		NoColor: noColor,
	})
}
