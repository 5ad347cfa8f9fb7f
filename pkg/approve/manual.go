package approve

import (
	"fmt"
	"time"

	"github.com/quietdesk/companion/pkg/contracts"
	"github.com/quietdesk/companion/pkg/queue"
	"github.com/quietdesk/companion/pkg/tokens"
)

// Manual mints a token for one named pending item, regardless of the
// auto-approval policy. This is the queue mutation behind a human's
// approve action; it still refuses items that already carry a token.
func (e *Engine) Manual(artifactsDir, qid string) error {
	if len(e.secret) == 0 {
		return fmt.Errorf("manual approve: no secret configured")
	}
	paths := []string{
		queue.SendQueuePath(artifactsDir),
		queue.EventQueuePath(artifactsDir),
		queue.PostQueuePath(artifactsDir),
	}
	for _, path := range paths {
		found := false
		err := e.store.Update(path, func(items []contracts.QueueItem) ([]contracts.QueueItem, bool, error) {
			for i := range items {
				if items[i].QID != qid {
					continue
				}
				found = true
				if items[i].Status != contracts.StatusPending {
					return items, false, fmt.Errorf("manual approve %s: status %s", qid, items[i].Status)
				}
				if items[i].ApprovalToken != nil {
					return items, false, fmt.Errorf("manual approve %s: already approved", qid)
				}
				hash := items[i].SpecHash
				if hash == "" {
					return items, false, fmt.Errorf("manual approve %s: missing spec_hash", qid)
				}
				token, err := tokens.MintAt(e.secret, items[i].Action.TokenType(), e.ttl, map[string]string{
					"qid":       qid,
					"spec_hash": hash,
				}, e.now())
				if err != nil {
					return items, false, err
				}
				by := "manual"
				at := e.now().UTC().Format(time.RFC3339)
				items[i].ApprovalToken = &token
				items[i].ApprovedBy = &by
				items[i].ApprovedAt = &at
				return items, true, nil
			}
			return items, false, nil
		})
		if err != nil {
			return err
		}
		if found {
			if err := e.ledger.Append("manual_approve", map[string]any{"qid": qid}); err != nil {
				e.log.Warn("ledger append failed", "err", err)
			}
			return nil
		}
	}
	return fmt.Errorf("manual approve: qid %q not found", qid)
}
