package apiserver

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/middleware"
)

// Handlers groups the API handlers mounted by NewRouter. OAuth may be nil.
type Handlers struct {
	Auth    *AuthHandler
	OAuth   *OAuthHandler
	Users   *UserHandler
	Friends *FriendRequestHandler
	Content *ContentHandler
}

// NewRouter 注册全部 API 路由。
// 静态路径必须先于同级的 {id} 路径注册，否则会被参数路由吞掉。
func NewRouter(h Handlers, verifier middleware.TokenVerifier, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RecoveryMiddleware(logger), middleware.RequestLogger(logger))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, logger, apperrors.NotFound("Route not found"))
	})

	authMW := middleware.AuthMiddleware(verifier, logger)
	optionalMW := middleware.OptionalAuthMiddleware(verifier)
	private := func(f http.HandlerFunc) http.Handler { return authMW(f) }
	optional := func(f http.HandlerFunc) http.Handler { return optionalMW(f) }

	r.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, "pong")
	}).Methods(http.MethodGet)

	// 认证
	r.HandleFunc("/users/sign-up", h.Auth.SignUp).Methods(http.MethodPost)
	r.HandleFunc("/users/log-in", h.Auth.LogIn).Methods(http.MethodPost)
	r.Handle("/users/log-out", private(h.Auth.LogOut)).Methods(http.MethodPost)
	if h.OAuth != nil {
		r.HandleFunc("/auth/facebook", h.OAuth.Begin).Methods(http.MethodGet)
		r.HandleFunc("/auth/facebook/callback", h.OAuth.Callback).Methods(http.MethodGet)
	}

	// 用户与好友
	r.Handle("/users/search", optional(h.Users.Search)).Methods(http.MethodGet)
	r.Handle("/users/recommended-friends", private(h.Users.RecommendedFriends)).Methods(http.MethodGet)
	r.Handle("/users/edit-info", private(h.Users.EditInfo)).Methods(http.MethodPut)
	r.Handle("/users/edit-image", private(h.Users.EditAvatar)).Methods(http.MethodPut)
	r.Handle("/users/friend-requests/{requestId}/accept", private(h.Friends.Accept)).Methods(http.MethodPut)
	r.Handle("/users/friend-requests/{requestId}/cancel", private(h.Friends.Cancel)).Methods(http.MethodPut)
	r.Handle("/users/friend-requests/{requestId}/decline", private(h.Friends.Decline)).Methods(http.MethodPut)
	r.Handle("/users/friend-list/{requestId}/delete", private(h.Friends.RemoveFriend)).Methods(http.MethodPut)
	r.Handle("/users/{userId}/friends-requests", private(h.Friends.ListRequests)).Methods(http.MethodGet)
	r.Handle("/users/{userId}/friends-requests", private(h.Friends.Send)).Methods(http.MethodPut)
	r.Handle("/users/{userId}/friends", optional(h.Users.ListFriends)).Methods(http.MethodGet)
	r.Handle("/users/{userId}", optional(h.Users.GetUser)).Methods(http.MethodGet)

	// 帖子
	c := h.Content
	r.Handle("/posts", optional(c.GlobalFeed)).Methods(http.MethodGet)
	r.Handle("/posts", private(c.CreatePost)).Methods(http.MethodPost)
	r.Handle("/posts/user-feed", private(c.FriendFeed)).Methods(http.MethodGet)
	r.Handle("/posts/{userId}/user-posts", optional(c.UserTimeline)).Methods(http.MethodGet)
	r.Handle("/posts/{id}/comments", optional(c.PostComments)).Methods(http.MethodGet)
	r.Handle("/posts/{id}/like", private(c.LikePost())).Methods(http.MethodPost)
	r.Handle("/posts/{id}", optional(c.GetPost)).Methods(http.MethodGet)
	r.Handle("/posts/{id}", private(c.EditPost())).Methods(http.MethodPut)
	r.Handle("/posts/{id}", private(c.DeletePost())).Methods(http.MethodDelete)

	// 评论
	r.Handle("/comments/{id}/replies", optional(c.CommentReplies)).Methods(http.MethodGet)
	r.Handle("/comments/{id}/like", private(c.LikeComment())).Methods(http.MethodPost)
	r.Handle("/comments/{id}", optional(c.GetComment)).Methods(http.MethodGet)
	r.Handle("/comments/{postId}", private(c.CreateComment)).Methods(http.MethodPost)
	r.Handle("/comments/{id}", private(c.EditComment())).Methods(http.MethodPut)
	r.Handle("/comments/{id}", private(c.DeleteComment())).Methods(http.MethodDelete)

	// 回复
	r.Handle("/replies/{id}/like", private(c.LikeReply())).Methods(http.MethodPost)
	r.Handle("/replies/{id}", optional(c.GetReply)).Methods(http.MethodGet)
	r.Handle("/replies/{commentId}", private(c.CreateReply)).Methods(http.MethodPost)
	r.Handle("/replies/{id}", private(c.EditReply())).Methods(http.MethodPut)
	r.Handle("/replies/{id}", private(c.DeleteReply())).Methods(http.MethodDelete)

	return r
}
