package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/b97tsk/almanac/almanac"
)

func newConvertCmd(app *_App) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Print an almanac in another format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := almanac.ParseFormat(to)
			if err != nil {
				return err
			}
			a, err := almanac.Load(args[0])
			if err != nil {
				return err
			}
			app.logger.Debug("converting", zap.String("file", args[0]), zap.String("to", string(format)))
			return a.Encode(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVar(&to, "to", string(almanac.FormatYAML), "output format: text, yaml, toml or json")
	return cmd
}
