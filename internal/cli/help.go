// internal/cli/help.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/artcrawl/internal/ui"
)

// minFlagWidth keeps flag descriptions aligned across sections
const minFlagWidth = 28

// customHelpFunc provides a colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", ui.Heading(strings.ToUpper(cmd.Name())))
	if cmd.Short != "" {
		fmt.Fprintln(out, cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(out, "\n%s\n", wrapText(cmd.Long, 80))
	}

	printUsageLines(out, cmd)
	if cmd.HasExample() {
		section(out, "Examples")
		printExamples(out, cmd.Example)
	}
	printCommands(out, cmd)
	if cmd.HasAvailableLocalFlags() {
		section(out, "Flags")
		printFlagsTo(out, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		section(out, "Global Flags")
		printFlagsTo(out, cmd.InheritedFlags().FlagUsages())
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(out, "\nUse %q for more information about a command.\n", cmd.CommandPath()+" <command> --help")
	}
	fmt.Fprintln(out)
}

// customUsageFunc provides a colorized usage output on bad invocations
func customUsageFunc(cmd *cobra.Command) error {
	errOut := cmd.ErrOrStderr()
	printUsageLines(errOut, cmd)
	printCommands(errOut, cmd)
	if cmd.HasAvailableLocalFlags() {
		section(errOut, "Flags")
		printFlagsTo(errOut, cmd.LocalFlags().FlagUsages())
	}
	fmt.Fprintf(errOut, "\nUse %q for more information.\n", cmd.CommandPath()+" --help")
	return nil
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", ui.Bold(title))
}

func printUsageLines(w io.Writer, cmd *cobra.Command) {
	section(w, "Usage")
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s\n", ui.Heading(cmd.UseLine()))
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s %s %s\n", ui.Heading(cmd.CommandPath()), ui.Warn("<command>"), "[flags]")
	}
}

// printExamples renders "# comment" lines dimmed and the rest as shell
// commands, with a blank line before a comment that follows a command.
func printExamples(w io.Writer, example string) {
	lastWasCommand := false
	for _, line := range strings.Split(example, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			if lastWasCommand {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "  %s\n", ui.Info(trimmed))
			lastWasCommand = false
			continue
		}
		fmt.Fprintf(w, "  %s\n", ui.Success("$ "+trimmed))
		lastWasCommand = true
	}
}

func printCommands(w io.Writer, cmd *cobra.Command) {
	if !cmd.HasAvailableSubCommands() {
		return
	}
	section(w, "Commands")

	var cmds []*cobra.Command
	width := 0
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() && c.Name() != "help" {
			cmds = append(cmds, c)
			width = max(width, len(c.Name()))
		}
	}
	for _, c := range cmds {
		fmt.Fprintf(w, "  %s%s%s\n", ui.Heading(c.Name()), strings.Repeat(" ", width-len(c.Name())+2), c.Short)
	}
}

// printFlagsTo prints pflag usages with the flag column aligned and
// continuation lines indented under the description.
func printFlagsTo(w io.Writer, flagUsages string) {
	lines := strings.Split(flagUsages, "\n")

	width := minFlagWidth
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "-") {
			flag, _, _ := strings.Cut(trimmed, "  ")
			width = max(width, len(strings.TrimSpace(flag)))
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		trimmed := strings.TrimLeft(line, " ")
		if !strings.HasPrefix(trimmed, "-") {
			fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", width+4), trimmed)
			continue
		}
		flag, desc, ok := strings.Cut(trimmed, "  ")
		flag = strings.TrimSpace(flag)
		if !ok {
			fmt.Fprintf(w, "  %s\n", ui.Success(flag))
			continue
		}
		fmt.Fprintf(w, "  %s%s%s\n", ui.Success(flag), strings.Repeat(" ", width-len(flag)+2), strings.TrimSpace(desc))
	}
}

// wrapText wraps text at width, keeping paragraphs, explicit line breaks
// and list items.
func wrapText(text string, width int) string {
	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		var lines []string
		for _, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
				lines = append(lines, line)
				continue
			}

			var cur strings.Builder
			for _, word := range strings.Fields(line) {
				switch {
				case cur.Len() == 0:
				case cur.Len()+1+len(word) <= width:
					cur.WriteString(" ")
				default:
					lines = append(lines, cur.String())
					cur.Reset()
				}
				cur.WriteString(word)
			}
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
			}
		}
		if len(lines) > 0 {
			paragraphs = append(paragraphs, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
