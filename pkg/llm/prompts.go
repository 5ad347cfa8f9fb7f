package llm

import "fmt"

// Prompt builders for the scheduler and the drafting controllers. Every
// prompt keeps the model draft-only; nothing here authorizes an action.

// SystemMessagesScheduler is the system prompt for inbox intent proposals.
func SystemMessagesScheduler() string {
	return "Propose draft-only message intents. Return strict JSON only."
}

// UserMessagesScheduler embeds the sanitized inbox threads.
func UserMessagesScheduler(threadsJSON string) string {
	return "Given inbox threads, propose 3-8 intents. " +
		"Allowed types: draft_reply, triage_summary, ask_clarifying_question. " +
		"Return JSON: {\"intents\":[...]}\n\n" +
		"Inbox threads:\n" + threadsJSON
}

// SystemDraftEmail is the system prompt for reply bodies.
func SystemDraftEmail() string {
	return "Write a concise email draft. Draft-only. Return only the body."
}

// UserDraftEmail embeds the sanitized subject and context.
func UserDraftEmail(subject, context string) string {
	return fmt.Sprintf("Subject: %s\n\nContext:\n%s\n\nWrite the draft reply body.", subject, context)
}

// SystemForumReply is the system prompt for forum reply bodies.
func SystemForumReply() string {
	return "Write a concise forum comment reply. Draft-only. Return only the reply body."
}

// UserForumReply embeds the sanitized post title and content.
func UserForumReply(title, content string) string {
	return fmt.Sprintf("Post title: %s\n\nPost content:\n%s\n\nWrite a helpful, concise reply.", title, content)
}

// SystemForumPost is the system prompt for new forum posts.
func SystemForumPost() string {
	return "Write a concise forum post. Draft-only. Return only the post body."
}

// UserForumPost embeds the sanitized title and context.
func UserForumPost(title, context string) string {
	return fmt.Sprintf("Post title: %s\n\nContext:\n%s\n\nWrite the post body.", title, context)
}
