package cli

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/treeport/convert"
)

func newInspectCommand(global *globalOptions) *cobra.Command {
	var conv conversionFlags

	cmd := &cobra.Command{
		Use:   "inspect [model]",
		Short: "Parse a model dump and print statistics and diagnostics",
		Long: `Inspect runs the same conversion as convert without writing the document.
It exits non-zero when the model cannot be converted.`,
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
			// inspect never renders images
			cfg.HistogramPath = ""

			logger, err := global.setupLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			res, err := convert.Inspect(cmd.Context(), cfg, logger)
			if res != nil && res.Report != nil && err != nil {
				// show what was found before failing
				for _, warning := range res.Report.Warnings() {
					cmd.PrintErrf("warning: %v\n", warning)
				}
			}
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	conv.register(cmd)
	return cmd
}
