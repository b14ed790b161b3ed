/*
Copyright © 2026 the EBM authors.
This file is part of EBM.

EBM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EBM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EBM.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package ebmutil contains the command-line interface and configuration
// handling for EBM.
package ebmutil

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/BurntSushi/toml"
	"github.com/kr/pretty"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/ebm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	d := ebm.DefaultParams()

	// Options are the configuration options available to EBM.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Rows",
			usage: `
              Rows specifies the number of grid rows, spanning latitudes
              from the equator to the pole. It must be less than Cols.`,
			defaultVal: d.Rows,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Cols",
			usage: `
              Cols specifies the number of grid columns, spanning all
              longitudes.`,
			defaultVal: d.Cols,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "DiffusionCoefficient",
			usage: `
              DiffusionCoefficient specifies the fraction of each cell's
              temperature that is spread to its neighbors every tick.
              It must be at least 0 and less than 1.`,
			defaultVal: d.DiffusionCoefficient,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "WindSpeed",
			usage: `
              WindSpeed specifies the fraction of each cell's temperature
              that is advected by the prevailing wind every tick.
              It must be at least 0 and less than 1.`,
			defaultVal: d.WindSpeed,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "SolarConstant",
			usage: `
              SolarConstant specifies the insolation at the pole. Each cell
              receives SolarConstant·sin(latitude).`,
			defaultVal: d.SolarConstant,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "StefanBoltzmann",
			usage: `
              StefanBoltzmann specifies the radiative loss coefficient σ
              in σT⁴.`,
			defaultVal: d.StefanBoltzmann,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Timestep",
			usage: `
              Timestep specifies the integration step for radiative
              forcing.`,
			defaultVal: d.Timestep,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "FrameBudgetMS",
			usage: `
              FrameBudgetMS specifies the target duration of a paced tick
              in milliseconds.`,
			defaultVal: int(d.FrameBudget.Milliseconds()),
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InitialTemperature",
			usage: `
              InitialTemperature specifies the uniform starting temperature.`,
			defaultVal: d.InitialTemperature,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "ResetTemperature",
			usage: `
              ResetTemperature specifies the uniform temperature that the
              reset command sets.`,
			defaultVal: d.ResetTemperature,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "HeatInjection",
			usage: `
              HeatInjection specifies the amount of heat added to a cell by
              a heat edit that does not give an amount.`,
			defaultVal: d.HeatInjection,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "TerrainFile",
			usage: `
              TerrainFile specifies a CSV file with the initial altitude of
              every cell, one line per row. If empty, altitude starts at zero.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "SaveTerrainFile",
			usage: `
              SaveTerrainFile specifies a CSV file to save the altitude field
              to when the simulation ends. If empty, it is not saved.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "NumIterations",
			usage: `
              NumIterations specifies the number of ticks to run. If < 1,
              the simulation runs until the mean temperature changes by
              less than Tolerance between checks.`,
			shorthand:  "n",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), renderCmd.Flags()},
		},
		{
			name: "Tolerance",
			usage: `
              Tolerance specifies the relative change in mean temperature
              below which the simulation is considered converged.`,
			defaultVal: 1e-4,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), renderCmd.Flags()},
		},
		{
			name: "Paced",
			usage: `
              Paced specifies whether ticks are slowed down to one per
              FrameBudgetMS.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies a file to write log messages to in addition
              to standard output. If empty, no log file is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), serveCmd.Flags(), renderCmd.Flags()},
		},
		{
			name: "OutputImage",
			usage: `
              OutputImage specifies a PNG file to draw the display field
              to when the simulation ends.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), renderCmd.Flags()},
		},
		{
			name: "ImageScale",
			usage: `
              ImageScale specifies the size in pixels of each cell in
              OutputImage.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), renderCmd.Flags()},
		},
		{
			name: "Display",
			usage: `
              Display specifies the field to show:
              either "altitude" or "temperature".`,
			defaultVal: "altitude",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), renderCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "Address",
			usage: `
              Address specifies the network address to serve the
              interactive session on.`,
			defaultVal: "localhost:8080",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "row",
			usage: `
              row specifies the row of the cell to inspect.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{inspectCmd.Flags()},
		},
		{
			name: "col",
			usage: `
              col specifies the column of the cell to inspect.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{inspectCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("EBM")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(serveCmd)
	Root.AddCommand(inspectCmd)
	Root.AddCommand(renderCmd)
	Root.AddCommand(configCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("ebm: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "ebm",
	Short: "A simplified energy-balance climate model.",
	Long: `EBM is a simplified energy-balance climate model on a quarter-sphere
latitude/longitude grid. Sunlight, radiative cooling, diffusion and
prevailing winds act on the temperature of every cell, and terrain and
temperature can be edited while the model runs.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'EBM_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of EBM.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("EBM v%s\n", ebm.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs a headless simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run runs a simulation without any user interaction, either for
NumIterations ticks or until the mean temperature converges.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := Params(Cfg)
		if err != nil {
			return err
		}
		display, err := ebm.ParseDisplayField(Cfg.GetString("Display"))
		if err != nil {
			return err
		}
		return Run(cmd, p, RunOptions{
			LogFile:         os.ExpandEnv(Cfg.GetString("LogFile")),
			TerrainFile:     os.ExpandEnv(Cfg.GetString("TerrainFile")),
			SaveTerrainFile: os.ExpandEnv(Cfg.GetString("SaveTerrainFile")),
			OutputImage:     os.ExpandEnv(Cfg.GetString("OutputImage")),
			ImageScale:      Cfg.GetInt("ImageScale"),
			Display:         display,
			NumIterations:   Cfg.GetInt("NumIterations"),
			Tolerance:       Cfg.GetFloat64("Tolerance"),
			Paced:           Cfg.GetBool("Paced"),
		})
	},
	DisableAutoGenTag: true,
}

// renderCmd is a command that runs a simulation and draws the result.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Run the model and draw the result.",
	Long: `render runs a simulation like the run command and then draws the
chosen display field to the PNG file given by OutputImage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := Params(Cfg)
		if err != nil {
			return err
		}
		display, err := ebm.ParseDisplayField(Cfg.GetString("Display"))
		if err != nil {
			return err
		}
		out, err := checkOutputImage(Cfg.GetString("OutputImage"))
		if err != nil {
			return err
		}
		return Run(cmd, p, RunOptions{
			LogFile:       os.ExpandEnv(Cfg.GetString("LogFile")),
			TerrainFile:   os.ExpandEnv(Cfg.GetString("TerrainFile")),
			OutputImage:   out,
			ImageScale:    Cfg.GetInt("ImageScale"),
			Display:       display,
			NumIterations: Cfg.GetInt("NumIterations"),
			Tolerance:     Cfg.GetFloat64("Tolerance"),
		})
	},
	DisableAutoGenTag: true,
}

// serveCmd is a command that serves an interactive simulation.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an interactive simulation.",
	Long: `serve runs a paced simulation and serves it over HTTP at Address.
Open the address in a web browser to watch and edit the simulation.
The simulation stops on interrupt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := Params(Cfg)
		if err != nil {
			return err
		}
		display, err := ebm.ParseDisplayField(Cfg.GetString("Display"))
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		return Serve(ctx, cmd, p, ServeOptions{
			Address:         Cfg.GetString("Address"),
			LogFile:         os.ExpandEnv(Cfg.GetString("LogFile")),
			TerrainFile:     os.ExpandEnv(Cfg.GetString("TerrainFile")),
			SaveTerrainFile: os.ExpandEnv(Cfg.GetString("SaveTerrainFile")),
			Display:         display,
		})
	},
	DisableAutoGenTag: true,
}

// inspectCmd is a command that prints information about one cell.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print information about a grid cell.",
	Long: `inspect builds the model operators and prints the coordinates, state
and neighbor weights of the cell at --row and --col.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := Params(Cfg)
		if err != nil {
			return err
		}
		s, err := NewSession(p, os.ExpandEnv(Cfg.GetString("TerrainFile")), ebm.DisplayTemperature, nil)
		if err != nil {
			return err
		}
		r, err := s.Inspect(Cfg.GetInt("row"), Cfg.GetInt("col"))
		if err != nil {
			return err
		}
		pretty.Fprintf(cmd.OutOrStdout(), "%# v\n", r)
		return nil
	},
	DisableAutoGenTag: true,
}

// configCmd is a command that prints the configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration.",
	Long: `config prints the configuration that would be used by the other
commands, after combining defaults, the configuration file, environment
variables and command-line arguments, in TOML format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := toml.NewEncoder(cmd.OutOrStdout()).Encode(settings(Cfg)); err != nil {
			return fmt.Errorf("ebm: writing configuration: %v", err)
		}
		return nil
	},
	DisableAutoGenTag: true,
}
