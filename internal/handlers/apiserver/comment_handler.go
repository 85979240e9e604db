package apiserver

import (
	"net/http"

	"social-go/internal/middleware"
)

// GetComment handles GET /comments/{id}.
func (h *ContentHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	comment, err := h.feed.GetCommentView(r.Context(), viewerID(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, comment)
}

// CommentReplies handles GET /comments/{id}/replies.
func (h *ContentHandler) CommentReplies(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, order, err := parseListing(r, h.paging)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	replies, err := h.feed.CommentReplies(r.Context(), viewerID(r), id, page, order)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, emptyIfNil(replies))
}

// CreateComment handles POST /comments/{postId}.
func (h *ContentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserIDFromContext(r.Context())
	postID, err := pathID(r, "postId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req TextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	comment, err := h.content.CreateComment(r.Context(), actorID, postID, req.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.feed.GetCommentView(r.Context(), actorID, comment.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// GetReply handles GET /replies/{id}.
func (h *ContentHandler) GetReply(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	reply, err := h.feed.GetReplyView(r.Context(), viewerID(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, reply)
}

// CreateReply handles POST /replies/{commentId}.
func (h *ContentHandler) CreateReply(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserIDFromContext(r.Context())
	commentID, err := pathID(r, "commentId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req TextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	reply, err := h.content.CreateReply(r.Context(), actorID, commentID, req.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.feed.GetReplyView(r.Context(), actorID, reply.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}
