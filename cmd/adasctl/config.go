package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	openadas "github.com/goliatone/go-openadas"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the merged configuration",
		Long: `Inspect the configuration the resolver uses: the embedded default table
with the settings' config_files layered on top, later files winning.`,
	}
	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigEntriesCmd(a))
	cmd.AddCommand(newConfigTraceCmd(a))
	cmd.AddCommand(newConfigEvalCmd(a))
	cmd.AddCommand(newConfigValidateCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot := a.resolver.Store().Snapshot()
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(snapshot); err != nil {
					return err
				}
				return enc.Close()
			case "toml":
				return toml.NewEncoder(out).Encode(snapshot)
			default:
				return errors.Newf("unsupported format %q (supported: json, yaml, toml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: json, yaml, toml")
	return cmd
}

func newConfigEntriesCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List every terminal configuration entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, entry := range a.resolver.Store().Entries() {
				if category != "" && string(entry.Category) != category {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\n", entry.Key(), describeEntry(entry))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list this category (wavelength, cxs, bms, bmp, bme, excitation, recombination)")
	return cmd
}

func describeEntry(entry openadas.Entry) string {
	switch {
	case entry.Wavelength != nil:
		return fmt.Sprintf("%g nm", *entry.Wavelength)
	case entry.Category == openadas.QuantityChargeExchange && entry.Metastable != nil:
		return fmt.Sprintf("%s (metastable %d)", entry.File, *entry.Metastable)
	case entry.Block != nil:
		return fmt.Sprintf("%s (block %d)", entry.File, *entry.Block)
	default:
		return string(entry.File)
	}
}

func newConfigTraceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trace <path>",
		Short: "Show which layer supplies a configuration path",
		Long:  "Show which layer supplies a dotted configuration path such as bms.H.C.6.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, trace, err := a.resolver.Store().Trace(strings.Split(args[0], ".")...)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, layer := range trace.Layers {
				mark := " "
				if layer.Found {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", mark, layer.Scope.Name, layer.Scope.Priority, layer.Value)
			}
			return w.Flush()
		},
	}
}

func newConfigEvalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression against the configuration",
		Long: `Evaluate an expression against the configuration. Categories are bound as
variables and resolve_wavelength(symbol, stage, transition) applies the
isotope fallback. The engine is set with the engine setting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.resolver.Evaluate(args[0])
			if err != nil {
				return err
			}
			payload, err := json.Marshal(resp.Value)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%v\n", resp.Value)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}
}

func newConfigValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every entry of the merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.resolver.Config()
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d entries\n", len(cfg.Entries()))
			return nil
		},
	}
}
