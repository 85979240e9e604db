package apiserver

import (
	"net/http"

	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/config"
	"social-go/internal/middleware"
	"social-go/internal/services"
)

// UserHandler 封装了用户相关的 HTTP 处理器方法。
type UserHandler struct {
	handlerBase
	userService   services.UserService
	friendService services.FriendshipService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService services.UserService, friendService services.FriendshipService, cfg config.Config, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		handlerBase:   handlerBase{paging: cfg.Feed, storage: cfg.Storage, logger: logger},
		userService:   userService,
		friendService: friendService,
	}
}

// EditInfoRequest 是更新姓名的请求结构体。
type EditInfoRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

// GetUser 处理 GET /users/{userId}。
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// EditInfo 处理 PUT /users/edit-info，只能修改自己的资料。
func (h *UserHandler) EditInfo(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req EditInfoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.userService.UpdateInfo(r.Context(), userID, req.FirstName, req.LastName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// EditAvatar 处理 PUT /users/edit-image，表单字段 "image"。
func (h *UserHandler) EditAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	form, err := parseImages(w, r, h.storage, "image", 1)
	if err != nil {
		h.respondUploadError(w, r, err)
		return
	}
	defer form.Close()

	switch len(form.Uploads) {
	case 0:
		h.fail(w, r, apperrors.ValidationFields("Image is required", map[string]string{"image": "required"}))
		return
	case 1:
	default:
		h.fail(w, r, apperrors.ValidationFields("Only one image is allowed", map[string]string{"image": "at most 1"}))
		return
	}

	user, err := h.userService.UpdateAvatar(r.Context(), userID, form.Uploads[0])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// Search 处理 GET /users/search?q=，按名字前缀匹配。
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Search(r.Context(), r.URL.Query().Get("q"), viewerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, emptyIfNil(users))
}

// RecommendedFriends 处理 GET /users/recommended-friends?limit=。
func (h *UserHandler) RecommendedFriends(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	limit, err := queryInt(r, "limit", h.paging.RecommendLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	users, err := h.friendService.RecommendFriends(r.Context(), userID, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, emptyIfNil(users))
}

// ListFriends 处理 GET /users/{userId}/friends。
func (h *UserHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	friends, err := h.friendService.ListFriends(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, emptyIfNil(friends))
}
