package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	var baseUrl string
	var compID int64
	var lbID int64
	var title string
	var logLevel string

	var rootCmd = &cobra.Command{
		Use:   "lbview",
		Short: "Render competition leaderboards in the terminal",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := fetchArchive(exportUrl(baseUrl, compID, lbID, title))
			if err != nil {
				return err
			}
			boards, err := readBoards(archive)
			if err != nil {
				return err
			}
			log.Debug().Int("leaderboards", len(boards)).Msg("results fetched")
			fmt.Fprintln(cmd.OutOrStdout(), renderBoards(boards))
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&baseUrl, "url", "u", "http://localhost:8080", "Competitions API base url")
	rootCmd.Flags().Int64VarP(&compID, "competition", "c", 0, "Competition id (required)")
	rootCmd.Flags().Int64Var(&lbID, "id", 0, "Only the leaderboard with this id")
	rootCmd.Flags().StringVarP(&title, "title", "t", "", "Only leaderboards whose title contains this")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level")
	rootCmd.MarkFlagRequired("competition")

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("lbview failed")
		os.Exit(1)
	}
}
