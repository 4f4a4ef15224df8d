package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	demangle "github.com/appsworld/go-demangle"
	"github.com/spf13/cobra"
)

var (
	outputFile string
	output     io.Writer

	sugar       bool
	noIVarTypes bool
	showTree    bool
	blobMode    bool
)

var rootCmd = &cobra.Command{
	Use:   "swift-demangle [symbols...]",
	Short: "Demangle Swift symbol names",
	Long: `swift-demangle turns mangled Swift symbol names back into readable
declarations.

Symbols are taken from the arguments, or read line by line from stdin
when no arguments are given. Names that fail to demangle print a
placeholder; the tool never exits non-zero because of a malformed
symbol.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			output = f
		} else {
			output = os.Stdout
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if f, ok := output.(*os.File); ok && f != os.Stdout {
			f.Close()
		}
	},
	RunE: runDemangle,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")

	rootCmd.Flags().BoolVar(&sugar, "sugar", false, "print Optional<T> as T? and ImplicitlyUnwrappedOptional<T> as T!")
	rootCmd.Flags().BoolVar(&noIVarTypes, "no-ivar-types", false, "omit field types from field offset records")
	rootCmd.Flags().BoolVar(&showTree, "tree", false, "also dump each symbol's node tree")
	rootCmd.Flags().BoolVar(&blobMode, "blob", false, "treat each input line as free text and rewrite embedded symbols in place")
}

func runDemangle(cmd *cobra.Command, args []string) error {
	opts := demangle.DefaultOptions()
	opts.SynthesizeSugarOnTypes = sugar
	opts.DisplayTypeOfIVarFieldOffset = !noIVarTypes

	if len(args) > 0 {
		for _, arg := range args {
			emit(arg, opts)
		}
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		emit(scanner.Text(), opts)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	return nil
}

func emit(line string, opts demangle.Options) {
	if blobMode {
		fmt.Fprintln(output, demangle.DemangleBlob(line, opts))
		return
	}
	node := demangle.DemangleSymbolAsNode(line, opts)
	fmt.Fprintln(output, demangle.NodeToString(node, opts))
	if showTree {
		demangle.DumpTree(output, node)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
