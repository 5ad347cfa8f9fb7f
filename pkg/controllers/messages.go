package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"path/filepath"

	"github.com/quietdesk/companion/pkg/contracts"
	"github.com/quietdesk/companion/pkg/llm"
	"github.com/quietdesk/companion/pkg/queue"
	"github.com/quietdesk/companion/pkg/sanitize"
)

// MessagesController drafts reply bodies and enqueues send items. The
// reply address is parsed from the inbound From header; when parsing
// yields nothing the spec's to field stays empty, which both the
// auto-approval policy and the executor reject.
type MessagesController struct {
	artifactsDir string
	store        *queue.Store
	llm          llm.Client
	log          *slog.Logger
}

// NewMessagesController returns a controller writing under artifactsDir.
// client may be nil.
func NewMessagesController(artifactsDir string, store *queue.Store, client llm.Client, log *slog.Logger) *MessagesController {
	if log == nil {
		log = slog.Default()
	}
	return &MessagesController{artifactsDir: artifactsDir, store: store, llm: client, log: log}
}

// Execute implements Controller for draft_reply intents.
func (c *MessagesController) Execute(ctx context.Context, intent contracts.Intent) contracts.ExecutionResult {
	if intent.Type != "draft_reply" {
		return skipped(noteUnsupported)
	}

	threadID := intent.PayloadString("thread_id")
	if threadID == "" {
		threadID = "unknown"
	}
	subject := sanitize.Text(intent.PayloadString("subject"), 200)
	snippet := sanitize.Text(intent.PayloadString("snippet"), 2000)

	var body string
	if c.llm != nil {
		resp, err := c.llm.Complete(ctx, llm.SystemDraftEmail(), llm.UserDraftEmail(subject, snippet), false)
		if err != nil {
			c.log.Warn("draft body generation failed", "thread", threadID, "err", err)
		} else {
			body = resp.Text
		}
	}

	draftPath := filepath.Join(c.artifactsDir, "messages", "drafts", safeID(threadID)+".md")
	content := fmt.Sprintf("# Draft reply\n\nSubject: %s\n\nContext:\n%s\n\n---\n\nDraft:\n\n%s\n", subject, snippet, body)
	if err := writeDraft(draftPath, content); err != nil {
		return failed(err.Error())
	}

	var toAddr string
	if from := intent.PayloadString("from"); from != "" {
		if addr, err := mail.ParseAddress(from); err == nil {
			toAddr = addr.Address
		}
	}

	var replyTo *string
	if mid := intent.PayloadString("message_id"); mid != "" {
		replyTo = &mid
	}

	spec := contracts.SendEmailSpec{
		QID:              "send_" + threadID,
		ThreadID:         threadID,
		To:               toAddr,
		Subject:          subject,
		BodyMDPath:       draftPath,
		ReplyToMessageID: replyTo,
	}
	hash, err := spec.Hash()
	if err != nil {
		return failed(err.Error())
	}
	specMap, err := spec.Map()
	if err != nil {
		return failed(err.Error())
	}

	queuePath := queue.SendQueuePath(c.artifactsDir)
	item := contracts.QueueItem{
		QID:      spec.QID,
		Action:   contracts.ActionSendEmail,
		Spec:     specMap,
		SpecHash: hash,
		Status:   contracts.StatusPending,
	}
	if err := c.store.Append(queuePath, item, true); err != nil {
		if errors.Is(err, queue.ErrAlreadyQueued) {
			return contracts.ExecutionResult{
				Status:    contracts.ExecOK,
				Artifacts: []string{draftPath, queuePath},
				Note:      "draft_exists_skip_enqueue",
			}
		}
		return failed(err.Error())
	}
	return contracts.ExecutionResult{
		Status:    contracts.ExecOK,
		Artifacts: []string{draftPath, queuePath},
		Note:      "draft_created_and_enqueued",
	}
}
