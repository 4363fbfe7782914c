package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wilhg/actionskills/internal/config"
)

var (
	v       = config.New()
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "skills",
	Short: "Travel and address lookup skills for agent action groups",
	Long: `skills serves five lookup skills (address by postal code, weather, IATA city codes,
flight offers, hotel offers) behind the action-group event envelope, an HTTP API,
AWS Lambda and the Model Context Protocol.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, cfgFile)
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	if err := config.BindFlags(v, rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}
