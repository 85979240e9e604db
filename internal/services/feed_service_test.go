package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/apperrors"
	"social-go/internal/models"
)

func mustPage(t *testing.T, number, size int) Page {
	t.Helper()
	p, err := NewPage(number, size, 0)
	require.NoError(t, err)
	return p
}

func TestGlobalFeedAnnotations(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "Ann", "Lee")
	bob := env.user(t, "Bob", "Ray")
	older := env.post(t, ann, "older")
	newer := env.post(t, bob, "newer")
	env.comment(t, bob, older.ID, "c1")
	env.comment(t, ann, older.ID, "c2")
	_, err := env.likes.Toggle(ctx, models.KindPost, older.ID, bob.ID)
	require.NoError(t, err)

	feed, err := env.feed.GlobalFeed(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, newer.ID, feed[0].ID)
	assert.Equal(t, older.ID, feed[1].ID)

	assert.Equal(t, "Ann", feed[1].Creator.FirstName)
	assert.Equal(t, int64(1), feed[1].LikeCount)
	assert.Equal(t, int64(2), feed[1].CommentCount)
	assert.True(t, feed[1].IsLikedByUser)
	assert.NotNil(t, feed[1].Media)

	assert.Equal(t, int64(0), feed[0].LikeCount)
	assert.False(t, feed[0].IsLikedByUser)

	anon, err := env.feed.GlobalFeed(ctx, "")
	require.NoError(t, err)
	assert.False(t, anon[1].IsLikedByUser)
}

func TestFriendFeedScope(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "Ann", "Lee")
	bob := env.user(t, "Bob", "Ray")
	cat := env.user(t, "Cat", "Fox")
	require.NoError(t, env.friends.SendFriendRequest(ctx, ann.ID, bob.ID))
	require.NoError(t, env.friends.AcceptFriendRequest(ctx, bob.ID, ann.ID))

	mine := env.post(t, ann, "mine")
	friends := env.post(t, bob, "friend's")
	env.post(t, cat, "stranger's")

	feed, err := env.feed.FriendFeed(ctx, ann.ID, mustPage(t, 1, 10))
	require.NoError(t, err)
	ids := []string{}
	for _, v := range feed {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{friends.ID, mine.ID}, ids)
}

func TestUserTimelinePaging(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "Ann", "Lee")
	var created []string
	for i := 0; i < 7; i++ {
		created = append(created, env.post(t, ann, "post").ID)
	}

	var seen []string
	for page := 1; page <= 3; page++ {
		views, err := env.feed.UserTimeline(ctx, "", ann.ID, mustPage(t, page, 3), SortAsc)
		require.NoError(t, err)
		for _, v := range views {
			seen = append(seen, v.ID)
		}
	}
	assert.Equal(t, created, seen, "pages partition the timeline without gaps or repeats")

	desc, err := env.feed.UserTimeline(ctx, "", ann.ID, mustPage(t, 1, 2), SortDesc)
	require.NoError(t, err)
	assert.Equal(t, created[6], desc[0].ID)

	beyond, err := env.feed.UserTimeline(ctx, "", ann.ID, mustPage(t, 9, 5), SortDesc)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	_, err = env.feed.UserTimeline(ctx, "", models.NewID(), mustPage(t, 1, 5), SortDesc)
	requireKind(t, err, apperrors.KindNotFound)
	_, err = env.feed.UserTimeline(ctx, "", "nope", mustPage(t, 1, 5), SortDesc)
	requireKind(t, err, apperrors.KindValidation)
}

func TestCommentAndReplyListings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "Ann", "Lee")
	post := env.post(t, ann, "p")
	c1 := env.comment(t, ann, post.ID, "c1")
	c2 := env.comment(t, ann, post.ID, "c2")
	r1 := env.reply(t, ann, c1.ID, "r1")
	env.reply(t, ann, c1.ID, "r2")
	_, err := env.likes.Toggle(ctx, models.KindReply, r1.ID, ann.ID)
	require.NoError(t, err)

	comments, err := env.feed.PostComments(ctx, ann.ID, post.ID, mustPage(t, 1, 5), SortAsc)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, c1.ID, comments[0].ID)
	assert.Equal(t, int64(2), comments[0].ReplyCount)
	assert.Equal(t, c2.ID, comments[1].ID)
	assert.Equal(t, int64(0), comments[1].ReplyCount)

	replies, err := env.feed.CommentReplies(ctx, ann.ID, c1.ID, mustPage(t, 1, 1), SortAsc)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, r1.ID, replies[0].ID)
	assert.Equal(t, post.ID, replies[0].PostID)
	assert.True(t, replies[0].IsLikedByUser)
	assert.Equal(t, int64(1), replies[0].LikeCount)

	_, err = env.feed.PostComments(ctx, ann.ID, models.NewID(), mustPage(t, 1, 5), SortAsc)
	requireKind(t, err, apperrors.KindNotFound)
	_, err = env.feed.CommentReplies(ctx, ann.ID, models.NewID(), mustPage(t, 1, 5), SortAsc)
	requireKind(t, err, apperrors.KindNotFound)
}

func TestSingleViews(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "Ann", "Lee")
	post := env.post(t, ann, "p")
	comment := env.comment(t, ann, post.ID, "c")
	reply := env.reply(t, ann, comment.ID, "r")

	pv, err := env.feed.GetPostView(ctx, ann.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pv.CommentCount)

	cv, err := env.feed.GetCommentView(ctx, ann.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, cv.PostID)
	assert.Equal(t, int64(1), cv.ReplyCount)

	rv, err := env.feed.GetReplyView(ctx, ann.ID, reply.ID)
	require.NoError(t, err)
	assert.Equal(t, comment.ID, rv.CommentID)

	_, err = env.feed.GetPostView(ctx, ann.ID, models.NewID())
	requireKind(t, err, apperrors.KindNotFound)
	_, err = env.feed.GetPostView(ctx, ann.ID, "123")
	requireKind(t, err, apperrors.KindValidation)
}

func TestOrphanedCreatorRendersBareSummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ghost := models.NewID()
	_, err := env.content.CreatePost(ctx, ghost, "still here", nil)
	require.NoError(t, err)

	feed, err := env.feed.GlobalFeed(ctx, "")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, models.UserBasicInfo{ID: ghost}, feed[0].Creator)
}
