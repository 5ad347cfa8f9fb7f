// Command companion-exec is the side-effect daemon. It refuses to start
// without the shared approval secret, then polls the queues, verifies each
// approval token and its binding, and dispatches approved items to the
// configured writers exactly once.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/quietdesk/companion/pkg/config"
	"github.com/quietdesk/companion/pkg/contracts"
	"github.com/quietdesk/companion/pkg/executor"
	"github.com/quietdesk/companion/pkg/forum"
	"github.com/quietdesk/companion/pkg/ledger"
	"github.com/quietdesk/companion/pkg/queue"
)

// writers is the daemon's dispatch surface: forum actions go over HTTP when
// a client is configured, everything else logs. Real mail and calendar
// adapters slot in here.
type writers struct {
	*executor.LogWriters
	forum *forum.Client
}

func (w *writers) CreatePost(ctx context.Context, spec contracts.CreatePostSpec) error {
	if w.forum == nil {
		return w.LogWriters.CreatePost(ctx, spec)
	}
	return w.forum.PublishPost(ctx, spec)
}

func (w *writers) ReplyPost(ctx context.Context, spec contracts.ReplyPostSpec) error {
	if w.forum == nil {
		return w.LogWriters.ReplyPost(ctx, spec)
	}
	return w.forum.PublishReply(ctx, spec)
}

func main() {
	var (
		artifactsDir = flag.String("artifacts", "artifacts", "artifacts directory")
		once         = flag.Bool("once", false, "run a single pass and exit")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg := config.Load()
	secret := cfg.SecretBytes()
	if len(secret) == 0 {
		log.Error("COMPANION_EXEC_SECRET is not set; refusing to start")
		os.Exit(1)
	}

	led := ledger.New(filepath.Join(*artifactsDir, "ledger.jsonl"))
	store := queue.NewStore()

	w := &writers{LogWriters: executor.NewLogWriters(log)}
	if cfg.ForumEnabled {
		fc, err := forum.NewClient(cfg.ForumBaseURL, cfg.ForumCredentialsPath)
		if err != nil {
			log.Warn("forum writer disabled", "err", err)
		} else {
			w.forum = fc
		}
	}

	daemon, err := executor.New(*artifactsDir, store, led, secret, w, log)
	if err != nil {
		log.Error("executor init failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		n, err := daemon.RunOnce(ctx)
		if err != nil {
			log.Error("pass failed", "err", err)
			os.Exit(1)
		}
		log.Info("pass complete", "executed", n)
		return
	}
	if err := daemon.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("daemon stopped", "err", err)
		os.Exit(1)
	}
}
