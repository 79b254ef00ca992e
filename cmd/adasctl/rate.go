package main

import (
	"fmt"

	"github.com/spf13/cobra"

	openadas "github.com/goliatone/go-openadas"
)

// rateArgs are the evaluation coordinates shared by the rate subcommands.
type rateArgs struct {
	energy      float64
	density     float64
	temperature float64
}

func newRateCmd(a *app) *cobra.Command {
	var ra rateArgs
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Resolve a rate and evaluate it",
		Long: `Resolve a rate from the configuration and evaluate it.

Beam rates are evaluated at --energy (eV/amu) and --density (m^-3).
Excitation and recombination rates at --density and --temperature (eV).`,
	}
	cmd.PersistentFlags().Float64Var(&ra.energy, "energy", 0, "beam energy")
	cmd.PersistentFlags().Float64Var(&ra.density, "density", 0, "plasma density")
	cmd.PersistentFlags().Float64Var(&ra.temperature, "temperature", 0, "electron temperature")

	cmd.AddCommand(&cobra.Command{
		Use:   "cx <donor> <receiver> <stage> <transition>",
		Short: "Beam charge exchange rates, one per donor metastable",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			donor, receiver, err := speciesPair(args[0], args[1])
			if err != nil {
				return err
			}
			stage, err := parseInt("stage", args[2])
			if err != nil {
				return err
			}
			transition, err := openadas.ParseTransition(args[3])
			if err != nil {
				return err
			}
			list, err := a.resolver.BeamCXRate(cmd.Context(), donor, receiver, stage, transition)
			if err != nil {
				return err
			}
			for _, rate := range list {
				value, err := rate.Evaluate(ra.energy)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "metastable %d: %g (%g nm)\n", rate.DonorMetastable, value, rate.Wavelength)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "bms <beam> <plasma> <stage>",
		Short: "Beam stopping rate",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			beam, plasma, err := speciesPair(args[0], args[1])
			if err != nil {
				return err
			}
			stage, err := parseInt("stage", args[2])
			if err != nil {
				return err
			}
			rate, err := a.resolver.BeamStoppingRate(cmd.Context(), beam, plasma, stage)
			if err != nil {
				return err
			}
			value, err := rate.Evaluate(ra.energy, ra.density)
			return printValue(cmd, value, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "bmp <beam> <metastable> <plasma> <stage>",
		Short: "Beam population rate",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			beam, plasma, err := speciesPair(args[0], args[2])
			if err != nil {
				return err
			}
			metastable, err := parseInt("metastable", args[1])
			if err != nil {
				return err
			}
			stage, err := parseInt("stage", args[3])
			if err != nil {
				return err
			}
			rate, err := a.resolver.BeamPopulationRate(cmd.Context(), beam, metastable, plasma, stage)
			if err != nil {
				return err
			}
			value, err := rate.Evaluate(ra.energy, ra.density)
			return printValue(cmd, value, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "bme <beam> <plasma> <stage> <transition>",
		Short: "Beam emission rate",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			beam, plasma, err := speciesPair(args[0], args[1])
			if err != nil {
				return err
			}
			stage, err := parseInt("stage", args[2])
			if err != nil {
				return err
			}
			transition, err := openadas.ParseTransition(args[3])
			if err != nil {
				return err
			}
			rate, err := a.resolver.BeamEmissionRate(cmd.Context(), beam, plasma, stage, transition)
			if err != nil {
				return err
			}
			value, err := rate.Evaluate(ra.energy, ra.density)
			return printValue(cmd, value, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "excitation <species> <stage> <transition>",
		Short: "Electron impact excitation rate",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			species, stage, transition, err := lineArgs(args)
			if err != nil {
				return err
			}
			rate, err := a.resolver.ImpactExcitationRate(cmd.Context(), species, stage, transition)
			if err != nil {
				return err
			}
			value, err := rate.Evaluate(ra.density, ra.temperature)
			return printValue(cmd, value, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "recombination <species> <stage> <transition>",
		Short: "Recombination rate",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			species, stage, transition, err := lineArgs(args)
			if err != nil {
				return err
			}
			rate, err := a.resolver.RecombinationRate(cmd.Context(), species, stage, transition)
			if err != nil {
				return err
			}
			value, err := rate.Evaluate(ra.density, ra.temperature)
			return printValue(cmd, value, err)
		},
	})
	return cmd
}

func speciesPair(first, second string) (openadas.Species, openadas.Species, error) {
	a, err := parseSpecies(first)
	if err != nil {
		return nil, nil, err
	}
	b, err := parseSpecies(second)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func lineArgs(args []string) (openadas.Species, int, openadas.Transition, error) {
	species, err := parseSpecies(args[0])
	if err != nil {
		return nil, 0, openadas.Transition{}, err
	}
	stage, err := parseInt("stage", args[1])
	if err != nil {
		return nil, 0, openadas.Transition{}, err
	}
	transition, err := openadas.ParseTransition(args[2])
	if err != nil {
		return nil, 0, openadas.Transition{}, err
	}
	return species, stage, transition, nil
}

func printValue(cmd *cobra.Command, value float64, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%g\n", value)
	return nil
}
