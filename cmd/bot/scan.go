package main

import (
	"fmt"
	"os"

	"coursebot/internal/catalog"
	"coursebot/internal/repository/jsonfile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scanRoot string
	scanOut  string
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Rebuild the file mapping from the content tree without starting the bot",
		RunE:  runScan,
	}
	cmd.Flags().StringVarP(&scanRoot, "root", "r", envOr("CONTENT_ROOT", "."), "Content root containing universities/ and specializations/")
	cmd.Flags().StringVarP(&scanOut, "out", "o", envOr("FILE_MAPPING_PATH", "auto_file_mapping.json"), "Where to write the mapping")

	rootCmd.AddCommand(cmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	mapping, err := catalog.NewDirScanner(scanRoot, logger).Scan(cmd.Context())
	if err != nil {
		return err
	}
	if err := jsonfile.WriteJSON(scanOut, mapping); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Mapped %d files across %d scopes into %s\n", mapping.TotalFiles(), len(mapping), scanOut)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
