package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cploetz77/port-to-port-map-generator/internal/config"
	"github.com/cploetz77/port-to-port-map-generator/pkg/logger"
	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

func resolveCmd() *cobra.Command {
	var (
		file   string
		remote bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the ports for an order webhook body",
		Long: "Resolve the ports of call for a saved order paid webhook body without\n" +
			"recording it. By default the resolution runs in this process using the\n" +
			"service config; --remote sends the body to a running server instead.",
		Example: `  # Resolve locally with the service config
  port-resolver resolve --file testdata/order.json

  # Read the body from stdin and ask the running server
  cat order.json | port-resolver resolve --file - --remote`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := readBody(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			var (
				result   *domain.ResolutionResult
				resolved *domain.ResolvedFields
			)

			if remote {
				resp, err := newClient().Resolve(cmd.Context(), body)
				if err != nil {
					return err
				}
				result, resolved = resp.Result, &resp.Resolved
			} else {
				cfg, err := config.Load(cfgFile)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

				svc, err := newService(cfg, log)
				if err != nil {
					return err
				}
				res, err := svc.pipeline.Run(cmd.Context(), body)
				if err != nil {
					return fmt.Errorf("resolution failed: %w", err)
				}
				result, resolved = res.Result, &res.Resolved
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), result)
			}
			return printResolution(cmd.OutOrStdout(), result, resolved)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "order JSON file, or - for stdin")
	cmd.Flags().BoolVar(&remote, "remote", false, "resolve on the server at --api-url")
	cobra.CheckErr(cmd.MarkFlagRequired("file"))

	return cmd
}

func readBody(stdin io.Reader, file string) ([]byte, error) {
	if file == "" {
		return nil, errors.New("--file is required")
	}
	if file == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return body, nil
	}
	body, err := os.ReadFile(file) //nolint:gosec // path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading order file: %w", err)
	}
	return body, nil
}
