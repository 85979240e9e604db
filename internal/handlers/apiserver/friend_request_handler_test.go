package apiserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/models"
)

func TestFriendRequestLifecycle(t *testing.T) {
	s := newTestServer(t)
	alice := s.signUp("Alice")
	bob := s.signUp("Bob")

	rec := s.do(http.MethodPut, "/users/"+bob.id+"/friends-requests", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPut, "/users/"+bob.id+"/friends-requests", alice.token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPut, "/users/"+alice.id+"/friends-requests", alice.token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPut, "/users/"+models.NewID()+"/friends-requests", alice.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// only the receiver can list
	rec = s.do(http.MethodGet, "/users/"+bob.id+"/friends-requests", alice.token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/users/"+bob.id+"/friends-requests", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []models.FriendRequestWithSender
	decode(t, rec, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, alice.id, pending[0].Sender.ID)

	rec = s.do(http.MethodPut, "/users/friend-requests/"+alice.id+"/accept", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPut, "/users/friend-requests/"+alice.id+"/accept", bob.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, sess := range []session{alice, bob} {
		rec = s.do(http.MethodGet, "/users/"+sess.id+"/friends", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var friends []models.UserBasicInfo
		decode(t, rec, &friends)
		assert.Len(t, friends, 1)
	}

	rec = s.do(http.MethodPut, "/users/friend-list/"+alice.id+"/delete", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPut, "/users/friend-list/"+alice.id+"/delete", bob.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/users/"+alice.id+"/friends", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCancelAndDecline(t *testing.T) {
	s := newTestServer(t)
	alice := s.signUp("Alice")
	bob := s.signUp("Bob")

	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/users/"+bob.id+"/friends-requests", alice.token, nil).Code)
	rec := s.do(http.MethodPut, "/users/friend-requests/"+bob.id+"/cancel", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	// idempotent
	rec = s.do(http.MethodPut, "/users/friend-requests/"+bob.id+"/cancel", alice.token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/users/"+bob.id+"/friends-requests", alice.token, nil).Code)
	rec = s.do(http.MethodPut, "/users/friend-requests/"+alice.id+"/decline", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPut, "/users/friend-requests/"+alice.id+"/decline", bob.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPut, "/users/friend-requests/xyz/accept", bob.token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
