// pbfontfix repairs font corruption in system resource packs by copying
// valid font resources from a known-good pack into a corrupted one while
// preserving all other resources.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mearman/PebbleOS/internal/common"
	"github.com/Mearman/PebbleOS/pkg/pbpack"
	"github.com/Mearman/PebbleOS/pkg/pbpack/fontfix"
	"github.com/Mearman/PebbleOS/pkg/pbpack/utils"
)

var (
	verbose       bool
	fontsPath     string
	skipSourceCRC bool
)

var rootCmd = &cobra.Command{
	Use:   "pbfontfix <original-pbpack> <corrupted-pbpack> <output-pbpack>",
	Short: "Repair corrupted font resources in a system resource pack",
	Long: "pbfontfix copies valid font resources from the original system pack " +
		"into the corrupted one, restamps their checksums, recomputes the pack " +
		"layout and writes the fixed pack.",
	Args:          cobra.ExactArgs(3),
	SilenceErrors: true,
	RunE:          run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pbfontfix version %s\n", pbpack.Version)
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&fontsPath, "fonts", "", "YAML file overriding the font resource id list")
	rootCmd.Flags().BoolVar(&skipSourceCRC, "skip-source-crc", true, "load the original pack without verifying entry checksums")
	rootCmd.AddCommand(versionCmd)
}

func run(cmd *cobra.Command, args []string) error {
	level := common.LogLevelInfo
	if verbose {
		level = common.LogLevelDebug
	}
	logger := pbpack.NewDefaultLoggerWithLevel(level)

	ids := fontfix.SnowyFontResourceIDs
	if fontsPath != "" {
		var err error
		if ids, err = fontfix.LoadResourceIDs(fontsPath); err != nil {
			return err
		}
	}

	source, err := pbpack.LoadFile(args[0], true, skipSourceCRC)
	if err != nil {
		return err
	}
	logger.Info("loaded original pack", "path", args[0], "resources", len(source.Entries))

	target, err := pbpack.LoadFile(args[1], true, false)
	if err != nil {
		return err
	}
	logger.Info("loaded corrupted pack", "path", args[1], "resources", len(target.Entries))

	replaced := fontfix.Patch(source, target, ids, logger)
	logger.Info("font replacement finished", "replaced", replaced, "requested", len(ids))

	if err := target.WriteFile(args[2]); err != nil {
		return err
	}
	if digest, err := utils.ComputeBLAKE3File(args[2]); err == nil {
		logger.Info("wrote fixed pack", "path", args[2], "blake3", digest)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
