package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cottand/qtc/frontend/fixture"
	"github.com/cottand/qtc/frontend/ilerr"
	"github.com/cottand/qtc/frontend/ir"
	"github.com/cottand/qtc/internal/log"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var SolveCmd = &cobra.Command{
	Use:          "solve problem.yaml...",
	Short:        "Solve inference problems and print their diagnostics",
	RunE:         runSolve,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	logLevel    *int
	dump        *bool
	check       *bool
	noColor     *bool
	debugErrors *bool
)

func init() {
	logLevel = SolveCmd.Flags().IntP("log-level", "l", int(slog.LevelWarn), "log level")
	dump = SolveCmd.Flags().Bool("dump", false, "dump the solution of each problem")
	check = SolveCmd.Flags().Bool("check", false, "compare each problem against its expectations")
	noColor = SolveCmd.Flags().Bool("no-color", false, "disable colored output")
	debugErrors = SolveCmd.Flags().Bool("debug-errors", false, "show where each diagnostic was raised")
}

// solvedBinding is what --dump prints for each bound variable
type solvedBinding struct {
	Var string
	Ty  ir.Ty
}

type solvedFunctor struct {
	Var      string
	Functors ir.FunctorSet
}

func runSolve(_ *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))
	ilerr.SetDebugPrinting(*debugErrors)
	setupColor(*noColor)

	var total *ilerr.Errors
	failed := 0
	for _, path := range args {
		ok, diagnostics, err := solveFile(path)
		if err != nil {
			printErrorMessage("problem", err)
		}
		if err != nil || !ok {
			failed++
		}
		total = total.Merge(diagnostics)
	}
	summary := fmt.Sprintf("%d diagnostics across %d problems", total.Len(), len(args))
	if total.HasError() {
		printWarningMessage("summary", summary)
	} else {
		printSuccessMessage("summary", summary)
	}
	log.DefaultLogger.Debug("solved problems", "section", "cli", "diagnostics", total)
	if failed > 0 {
		return errors.Errorf("%d of %d problems failed", failed, len(args))
	}
	return nil
}

// solveFile reports whether the problem at path passed: without --check it
// passes when it has no diagnostics, with --check when it matches its expectations
func solveFile(path string) (bool, *ilerr.Errors, error) {
	problem, err := fixture.Load(path)
	if err != nil {
		return false, nil, err
	}
	result, err := fixture.Run(problem)
	if err != nil {
		return false, nil, errors.Wrapf(err, "could not run %s", problem.Name)
	}

	printBanner(problem.Name)
	for _, ileError := range result.Diagnostics.Errors() {
		printDiagnostic(ileError)
	}
	for _, b := range result.Tys {
		printBinding(os.Stdout, b.Name, displayTy{b.Value})
		if len(b.Free) > 0 {
			printWarningMessage("free", fmt.Sprintf("$%s still mentions %s", b.Name, joinIds(b.Free)))
		}
	}
	for _, b := range result.Functors {
		printBinding(os.Stdout, b.Name, b.Value)
	}

	if *dump {
		var tys []solvedBinding
		for id, ty := range result.Solution.Tys() {
			tys = append(tys, solvedBinding{Var: id.String(), Ty: ty})
		}
		var functors []solvedFunctor
		for id, f := range result.Solution.Functors() {
			functors = append(functors, solvedFunctor{Var: id.String(), Functors: f})
		}
		spew.Fdump(os.Stdout, tys, functors)
	}

	if !*check {
		return !result.Diagnostics.HasError(), result.Diagnostics, nil
	}
	diffs := result.Check()
	for _, diff := range diffs {
		printWarningMessage("mismatch", diff)
	}
	if len(diffs) == 0 {
		printSuccessMessage("ok", "matches expectations")
	}
	return len(diffs) == 0, result.Diagnostics, nil
}

func joinIds(ids []ir.InferTyId) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	return strings.Join(names, ", ")
}

type displayTy struct{ ir.Ty }

func (d displayTy) String() string { return ir.Display(d.Ty) }
