package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	configfile "github.com/custodia-labs/couchpush-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/couchpush-cli/internal/adapters/driven/couchdb"
	"github.com/custodia-labs/couchpush-cli/internal/adapters/driven/jsvalidator"
	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
	"github.com/custodia-labs/couchpush-cli/internal/core/services"
)

var pushCmd = &cobra.Command{
	Use:   "push [source-dir] [env-or-url]",
	Short: "Assemble the tree and push it in one bulk request",
	Long: `Assembles the directory tree into documents and pushes them to the
target database. The target is a named environment from couchpush.toml
or a database URL given directly. With no arguments the current
directory and the default environment are used.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	target := ""
	if len(args) > 1 {
		target = args[1]
	}

	result, err := pushOnce(cmd.Context(), cmd, root, target)
	reportOutcome(cmd, result, err)
	return err
}

// pushOnce resolves the environment, builds the store adapter and runs
// one push. Shared by push and watch.
func pushOnce(ctx context.Context, cmd *cobra.Command, root, target string) (*services.PushResult, error) {
	cfg, err := configfile.Load(root)
	if err != nil {
		return nil, err
	}
	env, err := cfg.Resolve(target)
	if err != nil {
		return nil, err
	}

	if env.Username != "" && env.Password == "" {
		env.Password, err = promptPassword(cmd, env.Username)
		if err != nil {
			return nil, err
		}
	}

	var opts []couchdb.Option
	if env.Username != "" {
		opts = append(opts, couchdb.WithCredentials(env.Username, env.Password))
	}
	client, err := couchdb.NewClient(env.URL, opts...)
	if err != nil {
		return nil, err
	}

	reporter := domain.NewReporter(cmd.ErrOrStderr())
	svc := services.NewPushService(couchdb.NewStore(client), jsvalidator.New(), reporter)
	return svc.Push(ctx, root)
}

// reportOutcome prints the closing status line the run contract
// requires: a clear aborting vs. done message.
func reportOutcome(cmd *cobra.Command, result *services.PushResult, err error) {
	switch {
	case result == nil:
		// Setup failure; the returned error carries the detail.
	case errors.Is(err, domain.ErrAborted):
		cmd.PrintErrf("Aborting: %d error(s) recorded, nothing uploaded.\n", result.Errors)
	case err != nil:
		cmd.PrintErrf("Push finished with %d error(s).\n", result.Errors)
	default:
		cmd.Printf("Push complete: %d document(s), %d deletion(s).\n",
			result.DocumentsPushed, result.Deletions)
	}
}

func promptPassword(cmd *cobra.Command, username string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password configured for %s and stdin is not a terminal", username)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", username)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}
