// Command places keeps a personal list of photographed, geotagged places.
package main

import (
	"fmt"
	"os"
	"time"

	"placebook/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dbPath     string
	timeout    time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "places",
	Short: "Save and browse favourite places",
	Long: `places keeps a local list of favourite places: a title, a photo,
and the location where it was taken.

Records live in an embedded SQLite database. Addresses are resolved through
the Google Geocoding API when not given explicitly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return prepare()
	},
}

// initCmd creates the database schema and a default config file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the place database",
	Long: `Creates the places table if it does not exist and writes a default
config file when none is present. Existing records are never touched.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// addCmd saves a new place
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new place",
	Long: `Saves a place with a title, a photo and a location.

The photo is copied into the photo library. When --address is omitted the
address is looked up from the coordinates.

Example:
  places add --title "Eiffel Tower" --image ~/DCIM/1042.jpg --lat 48.8584 --lng 2.2945`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

// listCmd lists saved places
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved places",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// showCmd shows one place
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved place and its map preview URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

// deleteCmd removes a place
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved place",
	Long: `Deletes a place. Deleting an id that does not exist succeeds.
With --purge-photo the photo is also removed from the photo library.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "places.yaml", "Config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (overrides config and PLACEBOOK_DB)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	addCmd.Flags().StringVar(&addTitle, "title", "", "Place title (required)")
	addCmd.Flags().StringVar(&addImage, "image", "", "Photo path or URI (required)")
	addCmd.Flags().Float64Var(&addLat, "lat", 0, "Latitude in decimal degrees (required)")
	addCmd.Flags().Float64Var(&addLng, "lng", 0, "Longitude in decimal degrees (required)")
	addCmd.Flags().StringVar(&addAddress, "address", "", "Address (resolved from coordinates when empty)")
	for _, name := range []string{"title", "image", "lat", "lng"} {
		_ = addCmd.MarkFlagRequired(name)
	}

	deleteCmd.Flags().BoolVar(&purgePhoto, "purge-photo", false, "Also remove the photo from the library")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}

func main() {
	err := rootCmd.Execute()
	if werr := writeMetrics(); werr != nil {
		fmt.Fprintln(os.Stderr, werr)
	}
	logging.CloseAll()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
