package main

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	openadas "github.com/goliatone/go-openadas"
)

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "adasctl",
		Short: "Resolve OpenADAS atomic data",
		Long: `adasctl maps physics queries onto OpenADAS data files.

Settings are read from openadas.toml (working directory, then ~/.openadas)
and OPENADAS_* environment variables. The data corpus is selected with
OPENADAS_CORPUS_DRIVER (fs, s3 or memory).

Examples:
  adasctl wavelength D 0 3-2         # Balmer alpha, with isotope fallback
  adasctl rate bms H C 6 --energy 5e4 --density 1e19
  adasctl config entries --category cxs
  adasctl config eval 'len(cxs.H)'
  adasctl audit                      # list configured files missing from the corpus`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}
	root.PersistentFlags().StringVar(&a.settingsFile, "settings", "", "settings file (default openadas.toml)")
	root.PersistentFlags().StringVar(&a.metricsOut, "metrics-out", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(newWavelengthCmd(a))
	root.AddCommand(newRateCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newAuditCmd(a))
	return root
}

func newWavelengthCmd(a *app) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "wavelength <species> <stage> <transition>",
		Short: "Print a line wavelength in nm",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			species, err := parseSpecies(args[0])
			if err != nil {
				return err
			}
			stage, err := parseInt("stage", args[1])
			if err != nil {
				return err
			}
			transition, err := openadas.ParseTransition(args[2])
			if err != nil {
				return err
			}
			value, tr, err := a.resolver.WavelengthTrace(species, stage, transition)
			if trace {
				payload, jsonErr := tr.ToJSON()
				if jsonErr != nil {
					return jsonErr
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%g nm\n", value)
			return nil
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print the lookup strategies tried")
	return cmd
}

func parseSpecies(symbol string) (openadas.Species, error) {
	species, ok := openadas.LookupSpecies(symbol)
	if !ok {
		return nil, errors.WithHintf(errors.Newf("unknown species %q", symbol),
			"known symbols: %v", openadas.KnownSymbols())
	}
	return species, nil
}

func parseInt(name, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Newf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}
