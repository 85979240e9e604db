package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrphanSweepsCheckWholeAncestorChain(t *testing.T) {
	byLabel := map[string]orphanSweep{}
	for _, s := range orphanSweeps {
		byLabel[s.label] = s
	}
	require.Len(t, byLabel, 5)

	// a reply under a comment whose post is gone is an orphan even before
	// that comment is swept
	assert.Equal(t,
		"NOT EXISTS (SELECT 1 FROM comments p JOIN posts pp ON pp.id = p.post_id WHERE p.id = replies.comment_id)",
		byLabel["replies"].predicate())
	assert.Contains(t, byLabel["comment_likes"].predicate(), "JOIN posts pp")
	reply := byLabel["reply_likes"].predicate()
	assert.Contains(t, reply, "JOIN comments pc ON pc.id = p.comment_id")
	assert.Contains(t, reply, "JOIN posts pp ON pp.id = pc.post_id")
	assert.Equal(t,
		"NOT EXISTS (SELECT 1 FROM posts p WHERE p.id = post_likes.subject_id)",
		byLabel["post_likes"].predicate())

	// parents are swept before their children
	order := map[string]int{}
	for i, s := range orphanSweeps {
		order[s.label] = i
	}
	assert.Less(t, order["comments"], order["replies"])
	assert.Less(t, order["replies"], order["reply_likes"])
}
