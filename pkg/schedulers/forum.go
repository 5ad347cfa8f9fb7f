package schedulers

import (
	"github.com/google/uuid"

	"github.com/quietdesk/companion/pkg/contracts"
)

// ForumScheduler proposes one reply draft per feed item with a non-empty id.
type ForumScheduler struct {
	state FeedState
}

// NewForumScheduler returns a scheduler over the given feed state.
func NewForumScheduler(state FeedState) *ForumScheduler {
	return &ForumScheduler{state: state}
}

// Propose returns candidate intents for this tick, at most ten.
func (s *ForumScheduler) Propose() []contracts.Intent {
	posts := s.state.Posts
	if len(posts) > maxIntentsPerTick {
		posts = posts[:maxIntentsPerTick]
	}
	intents := make([]contracts.Intent, 0, len(posts))
	for _, post := range posts {
		if post.ID == "" {
			continue
		}
		content := post.Content
		if len([]rune(content)) > 2000 {
			content = string([]rune(content)[:2000])
		}
		intents = append(intents, contracts.Intent{
			ID:     uuid.NewString(),
			Domain: contracts.DomainForum,
			Type:   "draft_forum_reply",
			Payload: map[string]any{
				"post_id": post.ID,
				"title":   post.Title,
				"content": content,
			},
			Value:         0.4,
			Urgency:       0.3,
			EffortS:       120,
			Preconditions: []string{"has_forum_feed"},
		})
	}
	return intents
}
