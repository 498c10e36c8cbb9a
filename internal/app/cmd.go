package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hitoshi/blogapi/internal/config"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandCheck はコンテンツファイルの検証を行うことを示す。
	CommandCheck Command = "check"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。サブコマンドを省略した場合はserveとして起動する。
// SIGINTまたはSIGTERMを受信するとコマンドのコンテキストがキャンセルされる。
func Run(w io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, w, args)
}

func execute(ctx context.Context, w io.Writer, args []string) error {
	root := newRootCommand(w)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// newRootCommand はblogapiのコマンドツリーを構築する。
func newRootCommand(w io.Writer) *cobra.Command {
	serve := newServeCommand(w)

	root := &cobra.Command{
		Use:   "blogapi",
		Short: "Read-only JSON API over a directory of MDX blog posts",
		Long: `blogapi serves blog posts stored as MDX files with front matter
as a read-only JSON API under /api/v1.

Run without a subcommand to start the API server.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.SetOut(w)
	root.SetErr(w)
	root.AddCommand(serve, newCheckCommand(w), newHealthcheckCommand())
	return root
}

func newServeCommand(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   string(CommandServe),
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := Init(w)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			log.Info("starting application",
				slog.String("command", string(CommandServe)),
				slog.String("port", cfg.ServerPort),
				slog.String("base_url", cfg.BaseURL),
				slog.String("content_dir", cfg.ContentDir),
			)
			return runServe(cmd.Context(), cfg, log)
		},
	}
}

func newCheckCommand(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   string(CommandCheck) + " [dir]",
		Short: "Load every content file and report failures",
		Long: `Parses the front matter of every content file and prints one line per
entry. Exits non-zero when any file fails to load, which makes it usable
as a CI step for the content repository.

The directory defaults to CONTENT_DIR.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := Init(w)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			checkCfg := withContentDirArg(cfg, args)
			store := newStore(checkCfg, log, nil)
			if err := store.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("content directory %s: %w", checkCfg.ContentDir, err)
			}
			return runCheck(cmd.Context(), store, cmd.OutOrStdout())
		},
	}
}

// withContentDirArg は引数でディレクトリが指定されていればContentDirを差し替えたコピーを返す。
func withContentDirArg(cfg *config.Config, args []string) *config.Config {
	c := *cfg
	if len(args) == 1 {
		c.ContentDir = args[0]
	}
	return &c
}

func newHealthcheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   string(CommandHealthcheck),
		Short: "Probe /health on the local server",
		Args:  cobra.NoArgs,
		// 軽量サブコマンドのため、フル初期化をスキップする
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHealthcheck(cmd.Context(), healthcheckPort())
		},
	}
}
