package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/treeport/convert"
	"github.com/YuminosukeSato/treeport/dump"
)

// conversionFlags are the flags shared by convert and inspect. Each one
// overrides the configuration file only when given on the command line.
type conversionFlags struct {
	objective  string
	baseScore  float64
	numFeature int
	strict     bool
	workers    int
}

func (f *conversionFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.objective, "objective", "", "override the model objective")
	flags.Float64Var(&f.baseScore, "base-score", dump.DefaultBaseScore, "override the base score")
	flags.IntVar(&f.numFeature, "num-feature", 0, "override the number of features")
	flags.BoolVar(&f.strict, "strict", false, "treat conversion warnings as errors")
	flags.IntVarP(&f.workers, "workers", "w", 1, "trees parsed in parallel, -1 for one per CPU")
}

func (f *conversionFlags) apply(cmd *cobra.Command, cfg *convert.Config) {
	flags := cmd.Flags()
	if flags.Changed("objective") {
		cfg.Objective = f.objective
	}
	if flags.Changed("base-score") {
		score := f.baseScore
		cfg.BaseScore = &score
	}
	if flags.Changed("num-feature") {
		cfg.NumFeature = f.numFeature
	}
	if flags.Changed("strict") {
		cfg.Strict = f.strict
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
}

func newConvertCommand(global *globalOptions) *cobra.Command {
	var (
		conv      conversionFlags
		output    string
		name      string
		histogram string
		bins      int
	)

	cmd := &cobra.Command{
		Use:   "convert [model]",
		Short: "Convert a model dump into a portable JSON document",
		Long: `Convert reads a dump_model() text file (.txt, .dump) or a JSON bundle of
get_dump() strings (.json, .jsonc), converts every tree and writes the JSON
document. The model path may also come from the configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.ModelPath = args[0]
			}
			conv.apply(cmd, &cfg)
			flags := cmd.Flags()
			if flags.Changed("output") {
				cfg.OutputPath = output
			}
			if flags.Changed("name") {
				cfg.Name = name
			}
			if flags.Changed("histogram") {
				cfg.HistogramPath = histogram
			}
			if flags.Changed("bins") {
				cfg.HistogramBins = bins
			}

			logger, err := global.setupLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loading model from %s...\n", cfg.ModelPath)
			res, err := convert.Run(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Model successfully converted and saved to %s\n", res.OutputPath)
			return printResult(out, res)
		},
	}

	conv.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", convert.DefaultOutputPath, "output JSON path")
	cmd.Flags().StringVar(&name, "name", "", "model name written to the document (default: model file name)")
	cmd.Flags().StringVar(&histogram, "histogram", "", "write a leaf value histogram (.png, .svg, .pdf)")
	cmd.Flags().IntVar(&bins, "bins", 0, "histogram bins, 0 picks one from the number of leaves")
	return cmd
}

func printResult(w io.Writer, res *convert.Result) error {
	if err := res.Summary.WriteText(w); err != nil {
		return err
	}
	if res.Report.Len() == 0 {
		return nil
	}
	fmt.Fprintln(w, "Diagnostics:")
	for _, warning := range res.Report.Warnings() {
		fmt.Fprintf(w, "- %v\n", warning)
	}
	return nil
}
