package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/quietdesk/companion/pkg/contracts"
	"github.com/quietdesk/companion/pkg/llm"
	"github.com/quietdesk/companion/pkg/queue"
	"github.com/quietdesk/companion/pkg/sanitize"
)

// ForumController drafts posts and replies for the forum queue. Replies
// deduplicate by qid before drafting: a post already queued reports success
// without regenerating the draft, so an approved body is never rewritten
// under a still-valid token.
type ForumController struct {
	artifactsDir string
	store        *queue.Store
	llm          llm.Client
	log          *slog.Logger
}

// NewForumController returns a controller writing under artifactsDir.
// client may be nil.
func NewForumController(artifactsDir string, store *queue.Store, client llm.Client, log *slog.Logger) *ForumController {
	if log == nil {
		log = slog.Default()
	}
	return &ForumController{artifactsDir: artifactsDir, store: store, llm: client, log: log}
}

// Execute implements Controller for draft_forum_reply and draft_forum_post.
func (c *ForumController) Execute(ctx context.Context, intent contracts.Intent) contracts.ExecutionResult {
	draftsDir := filepath.Join(c.artifactsDir, "forum", "drafts")
	queuePath := queue.PostQueuePath(c.artifactsDir)

	switch intent.Type {
	case "draft_forum_reply":
		postID := sanitize.Text(intent.PayloadString("post_id"), 200)
		title := sanitize.Text(intent.PayloadString("title"), 200)
		content := sanitize.Text(intent.PayloadString("content"), 4000)

		safePostID := safeID(postID)
		qid := "molt_reply_" + safePostID

		// An already-queued reply keeps its draft as approved. The unique
		// append below remains as the backstop against a concurrent enqueue.
		if queued, err := queue.Load(queuePath); err == nil {
			for _, it := range queued {
				if it.QID == qid {
					return contracts.ExecutionResult{
						Status:    contracts.ExecOK,
						Artifacts: []string{queuePath},
						Note:      "draft_exists_skip_enqueue",
					}
				}
			}
		}

		var body string
		if c.llm != nil {
			resp, err := c.llm.Complete(ctx, llm.SystemForumReply(), llm.UserForumReply(title, content), false)
			if err != nil {
				c.log.Warn("forum reply generation failed", "post", safePostID, "err", err)
			} else {
				body = resp.Text
			}
		}

		draftPath := filepath.Join(draftsDir, "reply_"+safePostID+".md")
		text := fmt.Sprintf("# Forum Reply Draft\n\nPost: %s\n\nContext:\n%s\n\n---\n\nDraft:\n\n%s\n", title, content, body)
		if err := writeDraft(draftPath, text); err != nil {
			return failed(err.Error())
		}

		spec := contracts.ReplyPostSpec{QID: qid, PostID: postID, BodyMDPath: draftPath}
		hash, err := spec.Hash()
		if err != nil {
			return failed(err.Error())
		}
		specMap, err := spec.Map()
		if err != nil {
			return failed(err.Error())
		}

		item := contracts.QueueItem{
			QID:      qid,
			Action:   contracts.ActionReplyPost,
			Spec:     specMap,
			SpecHash: hash,
			Status:   contracts.StatusPending,
		}
		if err := c.store.Append(queuePath, item, true); err != nil {
			if errors.Is(err, queue.ErrAlreadyQueued) {
				return contracts.ExecutionResult{
					Status:    contracts.ExecOK,
					Artifacts: []string{queuePath},
					Note:      "draft_exists_skip_enqueue",
				}
			}
			return failed(err.Error())
		}
		return contracts.ExecutionResult{
			Status:    contracts.ExecOK,
			Artifacts: []string{draftPath, queuePath},
			Note:      "reply_draft_created_and_enqueued",
		}

	case "draft_forum_post":
		title := sanitize.Text(intent.PayloadString("title"), 200)
		context_ := sanitize.Text(intent.PayloadString("context"), 4000)

		var body string
		if c.llm != nil {
			resp, err := c.llm.Complete(ctx, llm.SystemForumPost(), llm.UserForumPost(title, context_), false)
			if err != nil {
				c.log.Warn("forum post generation failed", "err", err)
			} else {
				body = resp.Text
			}
		}

		hexID := randomHex()
		draftPath := filepath.Join(draftsDir, "post_"+hexID+".md")
		text := fmt.Sprintf("# Forum Post Draft\n\nTitle: %s\n\nContext:\n%s\n\n---\n\nDraft:\n\n%s\n", title, context_, body)
		if err := writeDraft(draftPath, text); err != nil {
			return failed(err.Error())
		}

		spec := contracts.CreatePostSpec{QID: "molt_post_" + hexID, Title: title, BodyMDPath: draftPath}
		hash, err := spec.Hash()
		if err != nil {
			return failed(err.Error())
		}
		specMap, err := spec.Map()
		if err != nil {
			return failed(err.Error())
		}

		item := contracts.QueueItem{
			QID:      spec.QID,
			Action:   contracts.ActionCreatePost,
			Spec:     specMap,
			SpecHash: hash,
			Status:   contracts.StatusPending,
		}
		if err := c.store.Append(queuePath, item, true); err != nil {
			return failed(err.Error())
		}
		return contracts.ExecutionResult{
			Status:    contracts.ExecOK,
			Artifacts: []string{draftPath, queuePath},
			Note:      "post_draft_created_and_enqueued",
		}
	}

	return skipped(noteUnsupported)
}
