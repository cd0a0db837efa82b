package main

import (
	"context"
	"fmt"
	"os"

	"placebook/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runInit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Env and flag overrides, including the API key, are not persisted.
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", configPath)
	}

	logger.Info("Place store initialized", zap.String("path", s.Path()))
	fmt.Printf("Place store ready at %s\n", s.Path())
	return nil
}
