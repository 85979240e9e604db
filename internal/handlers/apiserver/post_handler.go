package apiserver

import (
	"net/http"

	"social-go/internal/mediatypes"
	"social-go/internal/middleware"
)

// GlobalFeed handles GET /posts.
func (h *ContentHandler) GlobalFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.feed.GlobalFeed(r.Context(), viewerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, emptyIfNil(posts))
}

// FriendFeed handles GET /posts/user-feed: the viewer's and their friends' posts.
func (h *ContentHandler) FriendFeed(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r, h.paging)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	posts, err := h.feed.FriendFeed(r.Context(), viewerID(r), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, emptyIfNil(posts))
}

// UserTimeline handles GET /posts/{userId}/user-posts.
func (h *ContentHandler) UserTimeline(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, order, err := parseListing(r, h.paging)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	posts, err := h.feed.UserTimeline(r.Context(), viewerID(r), userID, page, order)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, emptyIfNil(posts))
}

// GetPost handles GET /posts/{id}.
func (h *ContentHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	post, err := h.feed.GetPostView(r.Context(), viewerID(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, post)
}

// PostComments handles GET /posts/{id}/comments.
func (h *ContentHandler) PostComments(w http.ResponseWriter, r *http.Request) {
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
	comments, err := h.feed.PostComments(r.Context(), viewerID(r), id, page, order)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, emptyIfNil(comments))
}

// CreatePost handles POST /posts. The body is either JSON {"text"} or a
// multipart form with a "text" field and up to MaxPostImages "images" files.
func (h *ContentHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserIDFromContext(r.Context())

	var (
		text    string
		uploads []mediatypes.Upload
	)
	if isMultipart(r) {
		form, err := parseImages(w, r, h.storage, "images", h.storage.MaxPostImages)
		if err != nil {
			h.respondUploadError(w, r, err)
			return
		}
		defer form.Close()
		text, uploads = form.Value("text"), form.Uploads
	} else {
		var req TextRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
		text = req.Text
	}

	post, err := h.content.CreatePost(r.Context(), actorID, text, uploads)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.feed.GetPostView(r.Context(), actorID, post.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}
