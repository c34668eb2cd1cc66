package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/suiforge/internal/config"
	"github.com/Mohsinsiddi/suiforge/internal/ui"
)

var uploadEpochs int

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a file to Walrus and print its URL",
	Long: `Store a file (typically a coin icon) on Walrus through the configured
publisher and print the aggregator URL to use as --icon-url.

Examples:
  suiforge upload logo.png
  suiforge upload logo.png --epochs 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		epochs := uploadEpochs
		if epochs == 0 {
			epochs = cfg.WalrusEpochs
		}
		id, url, err := storeFile(cmd.Context(), args[0], epochs)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Walrus blob", [][2]string{
			{"File", filepath.Base(args[0])},
			{"Blob ID", ui.Addr(id)},
			{"Epochs", fmt.Sprint(epochs)},
			{"URL", url},
		}))
		return nil
	},
}

func init() {
	uploadCmd.Flags().IntVar(&uploadEpochs, "epochs", 0, "storage epochs (default: config walrus_epochs)")
}

// uploadIcon stores an icon file on Walrus and returns its aggregator URL.
func uploadIcon(ctx context.Context, path string) (string, error) {
	if !looksLikeImage(path) {
		fmt.Println(ui.Warn(fmt.Sprintf("%s does not look like an image; uploading anyway.", filepath.Base(path))))
	}
	_, url, err := storeFile(ctx, path, cfg.WalrusEpochs)
	return url, err
}

func storeFile(ctx context.Context, path string, epochs int) (id, url string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, config.UploadTimeout)
	defer cancel()

	client := cfg.Walrus()
	spin := ui.NewSpinner(fmt.Sprintf("Uploading %s to Walrus...", filepath.Base(path)))
	spin.Start()
	id, err = client.Store(ctx, f, epochs)
	spin.Stop()
	if err != nil {
		return "", "", err
	}
	log.Debug().Str("blob", id).Int("epochs", epochs).Msg("walrus upload")
	return id, client.BlobURL(id), nil
}

func looksLikeImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico":
		return true
	}
	return false
}
