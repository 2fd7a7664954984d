/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/rotblauer/aistrust/common"
	"github.com/rotblauer/aistrust/params"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aistrust",
	Short: "Score how trustworthy a vessel's AIS reports are",
	Long: `aistrust scores AIS position reports against the trajectory they imply.

A score is built from four dimensions: how well short windows of the trajectory
fit a smooth path, whether reported courses agree with observed bearings,
whether reported speeds agree with observed speeds, and how evenly reports arrive.
Scores are in [0,1]; 1 is fully trustworthy.

Scoring can be run one-off (score), as a job worker reading stdin or NATS (worker),
or behind HTTP (webd).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pFlags := rootCmd.PersistentFlags()
	pFlags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.aistrust.yaml)")
	pFlags.String("datadir", params.DatadirRoot, "Directory holding the score database")
	pFlags.CountP("verbosity", "v", "Log verbosity; repeat for more (-v info, -vv debug)")
	pFlags.String("postgres-dsn", "", "Postgres DSN for fetching AIS messages and trajectories")

	bindFlags(pFlags)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".aistrust")
	}

	viper.SetEnvPrefix("AISTRUST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Info("Using config file", "file", viper.ConfigFileUsed())
	}
}

// setDefaultSlog installs a stderr text logger at the level asked for by --verbosity.
// Stdout is left for command output.
func setDefaultSlog(cmd *cobra.Command, args []string) {
	level := common.SlogLevelFromVerbosity(viper.GetInt("verbosity"))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// workerConfig is the default worker config with the root flags applied.
func workerConfig() *params.WorkerConfig {
	config := params.DefaultWorkerConfig()
	config.Postgres.DSN = viper.GetString("postgres-dsn")
	return config
}

// bindFlags lets flag values also come from the config file or AISTRUST_ env vars.
func bindFlags(fs *pflag.FlagSet) {
	cobra.CheckErr(viper.BindPFlags(fs))
}

func viperDatadir() string {
	return viper.GetString("datadir")
}
