/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/schoolroster/roster/config"
	"github.com/schoolroster/roster/internal/storage"
	"github.com/spf13/cobra"
)

var pagesSourceDir string

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Manage the page and asset storage",
}

var pagesPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload a local directory of pages to the configured pages backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := newLogger()

		backend, err := storage.NewBackend(cmd.Context(), cfg.Pages)
		if err != nil {
			return err
		}
		dst := storage.NewStorage(backend)

		count, err := storage.Publish(cmd.Context(), dst, pagesSourceDir)
		if err != nil {
			return fmt.Errorf("publish pages: %w", err)
		}
		logger.Info("published pages", "files", count, "bucket", dst.Bucket())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pagesCmd)
	pagesPublishCmd.Flags().StringVar(&pagesSourceDir, "src", "public", "directory holding the pages to upload")
	pagesCmd.AddCommand(pagesPublishCmd)
}
