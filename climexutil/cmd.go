/*
Copyright © 2019 the climex authors.
This file is part of climex.

climex is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

climex is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with climex.  If not, see <http://www.gnu.org/licenses/>.
*/


package climexutil

import (
	"fmt"
	"strings"

	"github.com/spatialmodel/climex"
	"github.com/spatialmodel/climex/midas"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to climex.
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
			name: "verbose",
			usage: `
              verbose turns on debug logging.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "output",
			usage: `
              output specifies the directory that output files are
              written to. It can contain environment variables.`,
			shorthand:  "o",
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{regionCmd.Flags(), annualCmd.Flags(), precipCmd.Flags()},
		},
		{
			name: "timestep",
			usage: `
              timestep specifies the time of day of the files to
              read. It must be one of 0000, 0600, 1200 or 1800.`,
			defaultVal: "1200",
			flagsets:   []*pflag.FlagSet{regionCmd.Flags()},
		},
		{
			name: "bbox",
			usage: `
              bbox specifies the region to extract in degrees, in the
              format max_lat,min_lat,max_lon,min_lon. The four values can
              also be given as separate arguments, as in
              --bbox 60 48 3 -12. Longitudes are in
              the range [-180, 180]. The default for the region command
              is the whole globe and the default for the annual command
              is the United Kingdom (60,48,3,-12).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{regionCmd.Flags(), annualCmd.Flags()},
		},
		{
			name: "variable",
			usage: `
              variable specifies the variable to map.`,
			defaultVal: "WIND",
			flagsets:   []*pflag.FlagSet{regionCmd.Flags()},
		},
		{
			name: "time-index",
			usage: `
              time-index specifies the index along the first dimension of
              the mapped variable other than latitude and longitude.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{regionCmd.Flags()},
		},
		{
			name: "level-index",
			usage: `
              level-index specifies the index along the second dimension of
              the mapped variable other than latitude and longitude.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{regionCmd.Flags()},
		},
		{
			name: "coastlines",
			usage: `
              coastlines specifies a shapefile of coastlines to draw
              over the map. No coastlines are drawn if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{regionCmd.Flags()},
		},
		{
			name: "pattern",
			usage: `
              pattern specifies the glob pattern of the files to read
              from the source directory.`,
			defaultVal: "*.nc",
			flagsets:   []*pflag.FlagSet{annualCmd.Flags()},
		},
		{
			name: "output-name",
			usage: `
              output-name specifies the name of the annual mean file.`,
			defaultVal: "uk_annual_tas.nc",
			flagsets:   []*pflag.FlagSet{annualCmd.Flags()},
		},
		{
			name: "header-line",
			usage: `
              header-line specifies the number of metadata lines before
              the column header in each MIDAS file.`,
			defaultVal: midas.DefaultOptions.HeaderLine,
			flagsets:   []*pflag.FlagSet{precipCmd.Flags()},
		},
		{
			name: "precip-column",
			usage: `
              precip-column specifies the column holding the
              precipitation amount.`,
			defaultVal: midas.DefaultOptions.PrecipColumn,
			flagsets:   []*pflag.FlagSet{precipCmd.Flags()},
		},
		{
			name: "date-column",
			usage: `
              date-column specifies the column holding the observation
              date.`,
			defaultVal: midas.DefaultOptions.DateColumn,
			flagsets:   []*pflag.FlagSet{precipCmd.Flags()},
		},
		{
			name: "list",
			usage: `
              list specifies a file to write the selected file names to.
              They are written to standard output if it is empty.`,
			shorthand:  "l",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{browseCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CLIMEX")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
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
	Root.AddCommand(regionCmd)
	Root.AddCommand(annualCmd)
	Root.AddCommand(precipCmd)
	Root.AddCommand(browseCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("climex: problem reading configuration file: %v", err)
		}
	}
	setLogging(Cfg.GetBool("verbose"))
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "climex",
	Short: "Regional extraction and summaries of gridded climate data.",
	Long: `climex extracts rectangular regions from gridded climate datasets
stored as NetCDF files, maps them, resamples them to annual means, and
summarizes station precipitation records.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CLIMEX_VAR' where 'VAR' is the
name of the variable to be set, with dashes replaced by underscores.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of climex.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("climex v%s\n", climex.Version)
	},
	DisableAutoGenTag: true,
}

// regionCmd maps a variable over a region.
var regionCmd = &cobra.Command{
	Use:   "region source_dir",
	Short: "Map a variable over a geographic region.",
	Long: `region reads the NetCDF files in source_dir whose names end in
<timestep>.nc, merges them, extracts the region given by --bbox and saves
a map of --variable to <output>/<variable>_<timestep>.png.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timestep, err := checkTimestep(Cfg.GetString("timestep"))
		if err != nil {
			return err
		}
		b, err := parseBBox(Cfg.Get("bbox"), climex.GlobalBox)
		if err != nil {
			return err
		}
		timeIndex, err := checkIndex("time-index", Cfg.GetInt("time-index"))
		if err != nil {
			return err
		}
		levelIndex, err := checkIndex("level-index", Cfg.GetInt("level-index"))
		if err != nil {
			return err
		}
		outputDir, err := checkOutputDir(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		sourceDir, err := checkSourceDir(args[0])
		if err != nil {
			return err
		}
		path, err := Region(cmd.Context(), sourceDir, outputDir, timestep, Cfg.GetString("variable"), b,
			timeIndex, levelIndex, Cfg.GetString("coastlines"))
		if err != nil {
			return err
		}
		cmd.Println(path)
		return nil
	},
	DisableAutoGenTag: true,
}

// annualCmd resamples a region to annual means.
var annualCmd = &cobra.Command{
	Use:   "annual source_dir",
	Short: "Calculate annual means over a geographic region.",
	Long: `annual reads the NetCDF files in source_dir that match --pattern,
merges them, extracts the region given by --bbox, resamples every
time-dependent variable to calendar-year means and writes the result to
<output>/<output-name>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := parseBBox(Cfg.Get("bbox"), climex.UKBox)
		if err != nil {
			return err
		}
		outputDir, err := checkOutputDir(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		sourceDir, err := checkSourceDir(args[0])
		if err != nil {
			return err
		}
		path, err := Annual(cmd.Context(), sourceDir, Cfg.GetString("pattern"), outputDir,
			Cfg.GetString("output-name"), b)
		if err != nil {
			return err
		}
		cmd.Println(path)
		return nil
	},
	DisableAutoGenTag: true,
}

// precipCmd plots annual precipitation statistics for a station.
var precipCmd = &cobra.Command{
	Use:   "precip source_dir",
	Short: "Plot annual precipitation statistics for a weather station.",
	Long: `precip reads the yearly MIDAS rain observation files of one station
in source_dir and saves a plot of the annual minimum, maximum and mean
precipitation to <output>/<station>_precipitation_<first>_<last>.png.
The station name is the name of source_dir.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, err := checkOutputDir(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		sourceDir, err := checkSourceDir(args[0])
		if err != nil {
			return err
		}
		o := midas.Options{
			HeaderLine:   Cfg.GetInt("header-line"),
			PrecipColumn: Cfg.GetString("precip-column"),
			DateColumn:   Cfg.GetString("date-column"),
		}
		path, err := Precip(sourceDir, outputDir, o)
		if err != nil {
			return err
		}
		cmd.Println(path)
		return nil
	},
	DisableAutoGenTag: true,
}

// browseCmd interactively selects a directory of data files.
var browseCmd = &cobra.Command{
	Use:   "browse source_dir",
	Short: "Interactively select a directory of NetCDF files.",
	Long: `browse lists the subdirectories of source_dir and asks which one to
descend into, repeating until a directory without subdirectories is
reached. Choosing * descends into all of them. It then prints the
matching NetCDF files.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceDir, err := checkSourceDir(args[0])
		if err != nil {
			return err
		}
		_, err = Browse(cmd.InOrStdin(), cmd.OutOrStdout(), sourceDir, Cfg.GetString("list"))
		return err
	},
	DisableAutoGenTag: true,
}
