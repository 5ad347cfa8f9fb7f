// Command companion runs the orchestrator tick loop: propose, gate,
// arbitrate, realize one intent per tick, then auto-approve eligible queue
// items. Side effects never happen here; they wait in the queues for the
// executor daemon.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/quietdesk/companion/pkg/config"
	"github.com/quietdesk/companion/pkg/forum"
	"github.com/quietdesk/companion/pkg/ledger"
	"github.com/quietdesk/companion/pkg/llm"
	"github.com/quietdesk/companion/pkg/orchestrator"
	"github.com/quietdesk/companion/pkg/queue"
)

func main() {
	var (
		ticks        = flag.Int("ticks", 5, "number of ticks to run; 0 runs forever")
		interval     = flag.Duration("interval", 100*time.Millisecond, "pause between ticks")
		artifactsDir = flag.String("artifacts", "artifacts", "artifacts directory")
		repos        = flag.String("repos", "", "comma-separated repo paths for the coding scheduler")
		profile      = flag.String("profile", "", "optional YAML approval profile path")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg := config.Load()
	if *profile != "" {
		if _, err := cfg.LoadApprovalProfile(*profile); err != nil {
			log.Error("approval profile load failed", "path", *profile, "err", err)
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(*artifactsDir, 0o755); err != nil {
		log.Error("artifacts dir", "err", err)
		os.Exit(1)
	}

	led := ledger.New(filepath.Join(*artifactsDir, "ledger.jsonl"))
	store := queue.NewStore()
	client := llm.Build(cfg)
	if client == nil {
		log.Info("no llm configured, heuristic schedulers only")
	}

	readers := orchestrator.Readers{Repos: splitList(*repos)}
	if cfg.ForumEnabled {
		fc, err := forum.NewClient(cfg.ForumBaseURL, cfg.ForumCredentialsPath)
		if err != nil {
			log.Warn("forum disabled", "err", err)
		} else {
			readers.Feed = &forum.FeedReader{Client: fc, Sort: cfg.ForumFeedSort, Limit: cfg.ForumFeedLimit}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch := orchestrator.New(*artifactsDir, cfg, client, store, led, readers, log)
	if err := orch.Run(ctx, *ticks, *interval); err != nil && ctx.Err() == nil {
		log.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
