// Package schedulers turns normalized input state into candidate intents,
// one scheduler per domain. Schedulers propose; they never act. Everything
// they emit still passes the gate.
package schedulers

// maxIntentsPerTick caps every scheduler's output.
const maxIntentsPerTick = 10

// Thread is one normalized inbox thread.
type Thread struct {
	ThreadID  string `json:"thread_id"`
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	Subject   string `json:"subject"`
	Snippet   string `json:"snippet"`
	Unread    bool   `json:"unread"`
	Important bool   `json:"important"`
}

// InboxState is the messages domain input bundle.
type InboxState struct {
	Threads []Thread `json:"threads"`
}

// Event is one normalized calendar event.
type Event struct {
	EventID     string `json:"event_id"`
	Title       string `json:"title"`
	When        string `json:"when"`
	Description string `json:"description"`
}

// CalendarState is the calendar domain input bundle.
type CalendarState struct {
	Events []Event `json:"events"`
}

// RepoState is the coding domain input bundle.
type RepoState struct {
	Repos []string `json:"repos"`
}

// Post is one normalized forum feed item.
type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// FeedState is the forum domain input bundle.
type FeedState struct {
	Posts []Post `json:"posts"`
}
