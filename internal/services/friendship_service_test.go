package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/apperrors"
	"social-go/internal/models"
)

func friendIDs(t *testing.T, env *testEnv, userID string) []string {
	t.Helper()
	friends, err := env.friends.ListFriends(context.Background(), userID)
	require.NoError(t, err)
	ids := []string{}
	for _, f := range friends {
		ids = append(ids, f.ID)
	}
	return ids
}

func TestFriendRequestLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "Ann", "Lee")
	bob := env.user(t, "Bob", "Ray")

	require.NoError(t, env.friends.SendFriendRequest(ctx, ann.ID, bob.ID))

	pending, err := env.friends.ListFriendRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ann.ID, pending[0].SenderID)
	require.NotNil(t, pending[0].Sender)
	assert.Equal(t, "Ann", pending[0].Sender.FirstName)

	err = env.friends.SendFriendRequest(ctx, ann.ID, bob.ID)
	requireKind(t, err, apperrors.KindConflict)
	err = env.friends.SendFriendRequest(ctx, bob.ID, ann.ID)
	requireKind(t, err, apperrors.KindConflict)

	require.NoError(t, env.friends.AcceptFriendRequest(ctx, bob.ID, ann.ID))
	assert.Equal(t, []string{bob.ID}, friendIDs(t, env, ann.ID))
	assert.Equal(t, []string{ann.ID}, friendIDs(t, env, bob.ID))

	pending, err = env.friends.ListFriendRequests(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	err = env.friends.SendFriendRequest(ctx, bob.ID, ann.ID)
	requireKind(t, err, apperrors.KindConflict)

	err = env.friends.AcceptFriendRequest(ctx, bob.ID, ann.ID)
	requireKind(t, err, apperrors.KindNotFound)

	require.NoError(t, env.friends.RemoveFriend(ctx, bob.ID, ann.ID))
	assert.Empty(t, friendIDs(t, env, ann.ID))
	assert.Empty(t, friendIDs(t, env, bob.ID))

	err = env.friends.RemoveFriend(ctx, bob.ID, ann.ID)
	requireKind(t, err, apperrors.KindNotFound)
}

func TestSendFriendRequestErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "Ann", "Lee")

	requireKind(t, env.friends.SendFriendRequest(ctx, ann.ID, ann.ID), apperrors.KindConflict)
	requireKind(t, env.friends.SendFriendRequest(ctx, ann.ID, models.NewID()), apperrors.KindNotFound)
	requireKind(t, env.friends.SendFriendRequest(ctx, ann.ID, "bad"), apperrors.KindValidation)
}

func TestCancelAndDecline(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "Ann", "Lee")
	bob := env.user(t, "Bob", "Ray")

	require.NoError(t, env.friends.SendFriendRequest(ctx, ann.ID, bob.ID))
	require.NoError(t, env.friends.CancelFriendRequest(ctx, ann.ID, bob.ID))
	require.NoError(t, env.friends.CancelFriendRequest(ctx, ann.ID, bob.ID), "cancel is idempotent")
	requireKind(t, env.friends.CancelFriendRequest(ctx, ann.ID, models.NewID()), apperrors.KindNotFound)

	require.NoError(t, env.friends.SendFriendRequest(ctx, ann.ID, bob.ID))
	require.NoError(t, env.friends.DeclineFriendRequest(ctx, bob.ID, ann.ID))
	requireKind(t, env.friends.DeclineFriendRequest(ctx, bob.ID, ann.ID), apperrors.KindNotFound)
	assert.Empty(t, friendIDs(t, env, bob.ID))
}

func TestAcceptFromRemovedSenderPrunesRequest(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bob := env.user(t, "Bob", "Ray")
	ghost := models.NewID()
	require.NoError(t, env.repos.FriendRequests.Create(ctx, &models.FriendRequest{ReceiverID: bob.ID, SenderID: ghost}))

	requireKind(t, env.friends.AcceptFriendRequest(ctx, bob.ID, ghost), apperrors.KindNotFound)
	exists, err := env.repos.FriendRequests.Exists(ctx, bob.ID, ghost)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRecommendFriends(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "Ann", "Lee")
	bob := env.user(t, "Bob", "Ray")
	cat := env.user(t, "Cat", "Fox")
	dan := env.user(t, "Dan", "Oak")
	eve := env.user(t, "Eve", "Elm")

	require.NoError(t, env.friends.SendFriendRequest(ctx, ann.ID, bob.ID))
	require.NoError(t, env.friends.AcceptFriendRequest(ctx, bob.ID, ann.ID))
	require.NoError(t, env.friends.SendFriendRequest(ctx, ann.ID, cat.ID))
	require.NoError(t, env.friends.SendFriendRequest(ctx, dan.ID, ann.ID))

	recs, err := env.friends.RecommendFriends(ctx, ann.ID, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, eve.ID, recs[0].ID)

	_, err = env.friends.RecommendFriends(ctx, ann.ID, MaxRecommendLimit+1)
	requireKind(t, err, apperrors.KindValidation)

	recs, err = env.friends.RecommendFriends(ctx, eve.ID, 2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestListFriendsOfMissingUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.friends.ListFriends(context.Background(), models.NewID())
	requireKind(t, err, apperrors.KindNotFound)
}
