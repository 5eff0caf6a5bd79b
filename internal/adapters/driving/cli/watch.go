package cli

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/couchpush-cli/internal/logger"
)

// debounceDelay batches rapid editor save bursts into one push.
const debounceDelay = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [source-dir] [env-or-url]",
	Short: "Re-push automatically whenever the tree changes",
	Long: `Pushes once, then watches the source tree and pushes again after each
change. Push failures do not stop the watch; every run reports its own
diagnostics. Interrupt to stop.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	target := ""
	if len(args) > 1 {
		target = args[1]
	}

	ctx := cmd.Context()

	result, err := pushOnce(ctx, cmd, root, target)
	reportOutcome(cmd, result, err)
	if result == nil && err != nil {
		// Could not even reach the store or resolve config; a watch
		// loop would fail identically every time.
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watchRecursive(watcher, root); err != nil {
		return err
	}
	cmd.PrintErrf("Watching %s for changes...\n", root)

	return watchLoop(ctx, cmd, watcher, root, target)
}

func watchLoop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher, root, target string) error {
	// The timer is reset on every event; a push happens only after the
	// tree has been quiet for the debounce window.
	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			logger.Debug("change: %s %s", event.Op, event.Name)
			if event.Op.Has(fsnotify.Create) {
				// New directories need their own watches.
				_ = watchRecursive(watcher, event.Name)
			}
			debounce.Reset(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-debounce.C:
			result, err := pushOnce(ctx, cmd, root, target)
			reportOutcome(cmd, result, err)
		}
	}
}

// watchRecursive registers path and every directory below it.
// Non-directories and vanished paths are ignored.
func watchRecursive(watcher *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil //nolint:nilerr // transient paths are expected mid-edit
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		return watcher.Add(p)
	})
}
