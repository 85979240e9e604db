package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/mediatypes"
	"social-go/internal/models"
	"social-go/internal/storage"
	"social-go/internal/storage/memory"
)

// fakeMediaStore keeps stored objects in a map.
type fakeMediaStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{objects: map[string][]byte{}}
}

func (f *fakeMediaStore) Store(ctx context.Context, r io.Reader, size int64, fileName, mimeType string) (*mediatypes.MediaRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	key := models.NewID() + "-" + fileName
	f.objects[key] = data
	return &mediatypes.MediaRef{Key: key, URL: "/uploads/" + key, MimeType: mimeType, Size: int64(len(data)), FileName: fileName}, nil
}

func (f *fakeMediaStore) Delete(ctx context.Context, ref mediatypes.MediaRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, ref.Key)
	f.deleted = append(f.deleted, ref.Key)
	return nil
}

func (f *fakeMediaStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// flakyMedia fails every Store after the first failAfter calls.
type flakyMedia struct {
	*fakeMediaStore
	failAfter int
	calls     int
}

func (f *flakyMedia) Store(ctx context.Context, r io.Reader, size int64, fileName, mimeType string) (*mediatypes.MediaRef, error) {
	f.calls++
	if f.calls > f.failAfter {
		return nil, errors.New("disk full")
	}
	return f.fakeMediaStore.Store(ctx, r, size, fileName, mimeType)
}

// recordingOrphans captures recorded cleanup tasks.
type recordingOrphans struct {
	mu    sync.Mutex
	tasks []CleanupTask
}

func (r *recordingOrphans) Record(ctx context.Context, task CleanupTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return nil
}

// failingLikes fails DeleteBySubjects for one kind.
type failingLikes struct {
	storage.LikeRepository
	kind models.ContentKind
}

func (f *failingLikes) DeleteBySubjects(ctx context.Context, kind models.ContentKind, ids []string) (int64, error) {
	if kind == f.kind {
		return 0, errors.New("connection reset")
	}
	return f.LikeRepository.DeleteBySubjects(ctx, kind, ids)
}

type testEnv struct {
	repos   *storage.Repositories
	media   *fakeMediaStore
	orphans *recordingOrphans
	likes   LikeLedger
	content ContentService
	feed    FeedService
	friends FriendshipService
	users   UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, memory.NewStore().Repositories())
}

func newTestEnvWith(t *testing.T, repos *storage.Repositories) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	env := &testEnv{repos: repos, media: newFakeMediaStore(), orphans: &recordingOrphans{}}
	env.likes = NewLikeLedger(repos, logger)
	env.content = NewContentService(repos, env.media, env.orphans, 4, logger)
	env.feed = NewFeedService(repos, env.likes, logger)
	env.friends = NewFriendshipService(repos, logger)
	env.users = NewUserService(repos.Users, env.media, logger)
	return env
}

func (e *testEnv) user(t *testing.T, first, last string) *models.User {
	t.Helper()
	u := &models.User{Username: first + "." + last + "@example.com", FirstName: first, LastName: last}
	require.NoError(t, e.repos.Users.Create(context.Background(), u))
	return u
}

func (e *testEnv) post(t *testing.T, creator *models.User, text string) *models.Post {
	t.Helper()
	p, err := e.content.CreatePost(context.Background(), creator.ID, text, nil)
	require.NoError(t, err)
	return p
}

func (e *testEnv) comment(t *testing.T, creator *models.User, postID, text string) *models.Comment {
	t.Helper()
	c, err := e.content.CreateComment(context.Background(), creator.ID, postID, text)
	require.NoError(t, err)
	return c
}

func (e *testEnv) reply(t *testing.T, creator *models.User, commentID, text string) *models.Reply {
	t.Helper()
	r, err := e.content.CreateReply(context.Background(), creator.ID, commentID, text)
	require.NoError(t, err)
	return r
}

func imageUpload(name string) mediatypes.Upload {
	data := []byte("\x89PNG fake image " + name)
	return mediatypes.Upload{Reader: bytes.NewReader(data), Size: int64(len(data)), FileName: name, MimeType: "image/png"}
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperrors.KindOf(err), "error: %v", err)
}
