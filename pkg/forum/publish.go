package forum

import (
	"context"
	"fmt"
	"os"

	"github.com/quietdesk/companion/pkg/contracts"
)

// PublishPost reads the drafted markdown body and creates the post.
func (c *Client) PublishPost(ctx context.Context, spec contracts.CreatePostSpec) error {
	body, err := os.ReadFile(spec.BodyMDPath)
	if err != nil {
		return fmt.Errorf("publish post %s: %w", spec.QID, err)
	}
	return c.CreatePost(ctx, spec.Title, string(body))
}

// PublishReply reads the drafted markdown body and posts the comment.
func (c *Client) PublishReply(ctx context.Context, spec contracts.ReplyPostSpec) error {
	body, err := os.ReadFile(spec.BodyMDPath)
	if err != nil {
		return fmt.Errorf("publish reply %s: %w", spec.QID, err)
	}
	return c.ReplyPost(ctx, spec.PostID, string(body))
}
