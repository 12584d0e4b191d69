package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"

	"github.com/macropower/metareg/pkg/kinds"
)

var (
	marginStyle    = lipgloss.NewStyle().MarginLeft(2)
	attributeStyle = lipgloss.NewStyle().Bold(true)
	ruleStyle      = lipgloss.NewStyle().Faint(true)
)

// ErrorHandler renders command errors for [fang.Execute]. Validation
// violations are listed one per line.
func ErrorHandler(w io.Writer, styles fang.Styles, err error) {
	mustN(fmt.Fprintln(w, styles.ErrorHeader.String()))

	var violations kinds.Violations
	if errors.As(err, &violations) {
		mustN(fmt.Fprintln(w, marginStyle.Render(renderViolations(violations))))
		mustN(fmt.Fprintln(w))

		return
	}

	mustN(fmt.Fprintln(w, marginStyle.Render(err.Error())))
	mustN(fmt.Fprintln(w))
	if isUsageError(err) {
		mustN(fmt.Fprintln(w, lipgloss.JoinHorizontal(
			lipgloss.Left,
			styles.ErrorText.UnsetWidth().Render("Try"),
			styles.Program.Flag.Render("--help"),
			styles.ErrorText.UnsetWidth().UnsetMargins().UnsetTransform().PaddingLeft(1).Render("for usage."),
		)))
		mustN(fmt.Fprintln(w))
	}
}

func renderViolations(violations kinds.Violations) string {
	lines := make([]string, len(violations))
	for i, v := range violations {
		lines[i] = fmt.Sprintf("%s %s %s",
			attributeStyle.Render(v.Attribute),
			v.Message,
			ruleStyle.Render("("+v.Rule+")"),
		)
	}

	return strings.Join(lines, "\n")
}

// XXX: this is a hack to detect usage errors.
// See: https://github.com/spf13/cobra/pull/2266
func isUsageError(err error) bool {
	s := err.Error()
	for _, prefix := range []string{
		"flag needs an argument:",
		"unknown flag:",
		"unknown shorthand flag:",
		"unknown command",
		"invalid argument",
		"accepts ",
		"requires at least",
	} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func mustN(_ int, err error) {
	must(err)
}
