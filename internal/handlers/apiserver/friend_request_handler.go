package apiserver

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/config"
	"social-go/internal/middleware"
	"social-go/internal/services"
)

// FriendRequestHandler handles HTTP requests related to friend requests.
// Requests are addressed by the other user's id; the acting user comes from the token.
type FriendRequestHandler struct {
	handlerBase
	friendService services.FriendshipService
}

// NewFriendRequestHandler creates a new FriendRequestHandler.
func NewFriendRequestHandler(fs services.FriendshipService, cfg config.Config, logger *zap.Logger) *FriendRequestHandler {
	return &FriendRequestHandler{
		handlerBase:   handlerBase{paging: cfg.Feed, storage: cfg.Storage, logger: logger},
		friendService: fs,
	}
}

// ListRequests handles GET /users/{userId}/friends-requests. Only the owner may list.
func (h *FriendRequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserIDFromContext(r.Context())
	userID, err := pathID(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if userID != actorID {
		h.fail(w, r, apperrors.Forbidden("You can only view your own friend requests"))
		return
	}
	requests, err := h.friendService.ListFriendRequests(r.Context(), actorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, emptyIfNil(requests))
}

// Send handles PUT /users/{userId}/friends-requests.
func (h *FriendRequestHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "userId", "Friend request sent", h.friendService.SendFriendRequest)
}

// Accept handles PUT /users/friend-requests/{requestId}/accept, where requestId is the sender.
func (h *FriendRequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "requestId", "Friend request accepted", h.friendService.AcceptFriendRequest)
}

// Cancel handles PUT /users/friend-requests/{requestId}/cancel, where requestId is the receiver.
func (h *FriendRequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "requestId", "Friend request cancelled", h.friendService.CancelFriendRequest)
}

// Decline handles PUT /users/friend-requests/{requestId}/decline.
func (h *FriendRequestHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "requestId", "Friend request declined", h.friendService.DeclineFriendRequest)
}

// RemoveFriend handles PUT /users/friend-list/{requestId}/delete.
func (h *FriendRequestHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "requestId", "Friend removed", h.friendService.RemoveFriend)
}

// act runs op(actor, other) where other is read from the path variable.
func (h *FriendRequestHandler) act(w http.ResponseWriter, r *http.Request, param, message string,
	op func(ctx context.Context, actorID, otherID string) error) {
	actorID, _ := middleware.GetUserIDFromContext(r.Context())
	otherID, err := pathID(r, param)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := op(r.Context(), actorID, otherID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, message)
}
