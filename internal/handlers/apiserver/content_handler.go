package apiserver

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"social-go/internal/config"
	"social-go/internal/middleware"
	"social-go/internal/models"
	"social-go/internal/services"
)

// ContentHandler serves posts, comments and replies. Likes, edits and
// deletes share one code path per kind.
type ContentHandler struct {
	handlerBase
	content services.ContentService
	feed    services.FeedService
	likes   services.LikeLedger
}

// NewContentHandler 创建一个新的 ContentHandler 实例。
func NewContentHandler(content services.ContentService, feed services.FeedService, likes services.LikeLedger, cfg config.Config, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		handlerBase: handlerBase{paging: cfg.Feed, storage: cfg.Storage, logger: logger},
		content:     content,
		feed:        feed,
		likes:       likes,
	}
}

// TextRequest is the body of create and edit requests for comments and replies.
type TextRequest struct {
	Text string `json:"text" validate:"required"`
}

// DeleteResponse is returned by the delete endpoints.
// PendingCleanup counts cascade steps handed to the cleanup worker.
type DeleteResponse struct {
	Message        string           `json:"message"`
	Removed        map[string]int64 `json:"removed"`
	PendingCleanup int              `json:"pendingCleanup,omitempty"`
}

// like toggles the actor's like on the subject named by the {id} route variable.
// 201 when the like was added, 200 when it was removed.
func (h *ContentHandler) like(kind models.ContentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _ := middleware.GetUserIDFromContext(r.Context())
		id, err := pathID(r, "id")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		outcome, err := h.likes.Toggle(r.Context(), kind, id, actorID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		status := http.StatusOK
		if outcome.Liked {
			status = http.StatusCreated
		}
		writeJSONResponse(w, status, outcome)
	}
}

// edit replaces the text of the subject and responds with its fresh view.
func (h *ContentHandler) edit(kind models.ContentKind, view func(ctx context.Context, viewerID, id string) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _ := middleware.GetUserIDFromContext(r.Context())
		id, err := pathID(r, "id")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		var req TextRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
		if err := h.content.EditText(r.Context(), kind, id, actorID, req.Text); err != nil {
			h.fail(w, r, err)
			return
		}
		out, err := view(r.Context(), actorID, id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSONResponse(w, http.StatusOK, out)
	}
}

// remove runs the cascading delete for the subject.
func (h *ContentHandler) remove(message string, del func(ctx context.Context, id, actorID string) (*services.CascadeReport, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _ := middleware.GetUserIDFromContext(r.Context())
		id, err := pathID(r, "id")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		report, err := del(r.Context(), id, actorID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if !report.Complete() {
			h.logger.Warn("cascade left work for cleanup",
				zap.String("kind", string(report.Kind)),
				zap.String("id", report.ID),
				zap.Int("failed", len(report.Failed)))
		}
		writeJSONResponse(w, http.StatusOK, DeleteResponse{
			Message:        message,
			Removed:        report.Removed,
			PendingCleanup: len(report.Failed),
		})
	}
}

func (h *ContentHandler) postView(ctx context.Context, viewerID, id string) (interface{}, error) {
	return h.feed.GetPostView(ctx, viewerID, id)
}

func (h *ContentHandler) commentView(ctx context.Context, viewerID, id string) (interface{}, error) {
	return h.feed.GetCommentView(ctx, viewerID, id)
}

func (h *ContentHandler) replyView(ctx context.Context, viewerID, id string) (interface{}, error) {
	return h.feed.GetReplyView(ctx, viewerID, id)
}

// LikePost handles POST /posts/{id}/like.
func (h *ContentHandler) LikePost() http.HandlerFunc { return h.like(models.KindPost) }

// LikeComment handles POST /comments/{id}/like.
func (h *ContentHandler) LikeComment() http.HandlerFunc { return h.like(models.KindComment) }

// LikeReply handles POST /replies/{id}/like.
func (h *ContentHandler) LikeReply() http.HandlerFunc { return h.like(models.KindReply) }

// EditPost handles PUT /posts/{id}.
func (h *ContentHandler) EditPost() http.HandlerFunc { return h.edit(models.KindPost, h.postView) }

// EditComment handles PUT /comments/{id}.
func (h *ContentHandler) EditComment() http.HandlerFunc {
	return h.edit(models.KindComment, h.commentView)
}

// EditReply handles PUT /replies/{id}.
func (h *ContentHandler) EditReply() http.HandlerFunc { return h.edit(models.KindReply, h.replyView) }

// DeletePost handles DELETE /posts/{id}.
func (h *ContentHandler) DeletePost() http.HandlerFunc {
	return h.remove("Post deleted", h.content.DeletePost)
}

// DeleteComment handles DELETE /comments/{id}.
func (h *ContentHandler) DeleteComment() http.HandlerFunc {
	return h.remove("Comment deleted", h.content.DeleteComment)
}

// DeleteReply handles DELETE /replies/{id}.
func (h *ContentHandler) DeleteReply() http.HandlerFunc {
	return h.remove("Reply deleted", h.content.DeleteReply)
}
