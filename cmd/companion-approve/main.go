// Command companion-approve attaches an approval token to one pending
// queue item by qid, bypassing the auto-approval policy. It is the manual
// half of the approval surface.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/quietdesk/companion/pkg/approve"
	"github.com/quietdesk/companion/pkg/config"
	"github.com/quietdesk/companion/pkg/ledger"
	"github.com/quietdesk/companion/pkg/queue"
)

func main() {
	var (
		artifactsDir = flag.String("artifacts", "artifacts", "artifacts directory")
		qid          = flag.String("qid", "", "queue item to approve")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *qid == "" {
		log.Error("missing -qid")
		os.Exit(2)
	}

	cfg := config.Load()
	secret := cfg.SecretBytes()
	if len(secret) == 0 {
		log.Error("COMPANION_EXEC_SECRET is not set")
		os.Exit(1)
	}

	led := ledger.New(filepath.Join(*artifactsDir, "ledger.jsonl"))
	store := queue.NewStore()
	ttl := time.Duration(cfg.AutoApproveTTLS) * time.Second
	engine := approve.New(store, led, secret, cfg.PolicyConfig(), ttl, log)

	if err := engine.Manual(*artifactsDir, *qid); err != nil {
		log.Error("approve failed", "qid", *qid, "err", err)
		os.Exit(1)
	}
	log.Info("approved", "qid", *qid)
}
