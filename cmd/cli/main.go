package main

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/myrjola/interviewdash/cmd/cli/dataset"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/spf13/cobra"
	"io/fs"
	"os"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(dataset.Group)
	rootCmd.AddCommand(dataset.Import)
	rootCmd.AddCommand(dataset.CopyCallID)
}

var rootCmd = &cobra.Command{
	Use:          "interviewdash-cli",
	Long:         `Command line utilities for the interview dashboard`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
