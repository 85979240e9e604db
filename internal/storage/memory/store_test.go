package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/models"
	"social-go/internal/storage"
)

func TestPostPagingPartitions(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	creator := models.NewID()

	var created []string
	for i := 0; i < 7; i++ {
		p := &models.Post{CreatorID: creator, Text: "p"}
		require.NoError(t, repos.Posts.Create(ctx, p))
		created = append(created, p.ID)
	}

	var seen []string
	for offset := 0; offset < 9; offset += 3 {
		page, err := repos.Posts.ListByCreators(ctx, []string{creator}, storage.PageQuery{Offset: offset, Limit: 3})
		require.NoError(t, err)
		for _, p := range page {
			seen = append(seen, p.ID)
		}
	}
	assert.Equal(t, created, seen)

	desc, err := repos.Posts.ListAll(ctx, storage.PageQuery{Desc: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, created[6], desc[0].ID)
	assert.Equal(t, created[5], desc[1].ID)

	empty, err := repos.Posts.ListAll(ctx, storage.PageQuery{Offset: 50, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, empty)

	empty, err = repos.Posts.ListAll(ctx, storage.PageQuery{Offset: -100, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLikeInsertIsUnique(t *testing.T) {
	ctx := context.Background()
	likes := NewStore().Repositories().Likes
	subject, user := models.NewID(), models.NewID()

	var wg sync.WaitGroup
	var mu sync.Mutex
	inserted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := likes.Insert(ctx, models.KindPost, subject, user)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, inserted)

	counts, err := likes.CountBySubjects(ctx, models.KindPost, []string{subject})
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[subject])

	_, err = likes.Insert(ctx, models.ContentKind("user"), subject, user)
	assert.Error(t, err)
}

func TestAcceptMovesRequestToFriendship(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	a, b := models.NewID(), models.NewID()

	require.NoError(t, repos.FriendRequests.Create(ctx, &models.FriendRequest{ReceiverID: b, SenderID: a}))
	assert.ErrorIs(t, repos.FriendRequests.Create(ctx, &models.FriendRequest{ReceiverID: b, SenderID: a}), storage.ErrDuplicatedKey)

	ok, err := repos.FriendRequests.Accept(ctx, b, a)
	require.NoError(t, err)
	assert.True(t, ok)

	friends, err := repos.Friendships.AreUsersFriends(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, friends)

	ok, err = repos.FriendRequests.Accept(ctx, b, a)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUsernameUniqueIgnoringCase(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Repositories().Users
	require.NoError(t, users.Create(ctx, &models.User{Username: "ann@example.com", FirstName: "Ann", LastName: "Lee"}))
	err := users.Create(ctx, &models.User{Username: "ANN@example.com", FirstName: "Ann", LastName: "Lee"})
	assert.ErrorIs(t, err, storage.ErrDuplicatedKey)
}
