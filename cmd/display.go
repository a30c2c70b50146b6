package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cottand/qtc/frontend/ilerr"
	"github.com/cottand/qtc/frontend/ir"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

var (
	successColorFG = pterm.FgLightGreen
	successStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	warnColorFG    = pterm.FgYellow
	warnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	errorColorFG   = pterm.FgRed
	errorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
)

// setupColor turns colors off unless stdout is a terminal
func setupColor(disabled bool) {
	fd := os.Stdout.Fd()
	if disabled || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		pterm.DisableColor()
		pterm.DisableStyling()
	}
}

func printErrorMessage(tag string, err error) {
	errorStyleBG.Print(tag)
	errorColorFG.Println(" " + err.Error())
}

func printWarningMessage(tag, msg string) {
	warnStyleBG.Print(tag)
	warnColorFG.Println(" " + msg)
}

func printSuccessMessage(tag, msg string) {
	successStyleBG.Print(tag)
	successColorFG.Println(" " + msg)
}

func printBanner(name string) {
	fmt.Print("\n-- ")
	successColorFG.Print(name)
	fmt.Println(" " + strings.Repeat("-", max(3, 50-len(name))))
}

func printDiagnostic(err ilerr.IleError) {
	errorStyleBG.Print("error")
	errorColorFG.Print(" " + ilerr.FormatWithCode(err))
	fmt.Printf(" at %s\n", ir.Span{Lo: err.Pos(), Hi: err.End()})
}

func printBinding(w io.Writer, name string, value fmt.Stringer) {
	_, _ = fmt.Fprintf(w, "  $%s: %s\n", name, value)
}
