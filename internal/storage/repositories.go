package storage

import "gorm.io/gorm"

// Repositories bundles every repository the services depend on.
type Repositories struct {
	Users          UserRepository
	FriendRequests FriendRequestRepository
	Friendships    FriendshipRepository
	Posts          PostRepository
	Comments       CommentRepository
	Replies        ReplyRepository
	Likes          LikeRepository
}

// NewGormRepositories builds every repository over one GORM handle.
func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:          NewGormUserRepository(db),
		FriendRequests: NewGormFriendRequestRepository(db),
		Friendships:    NewGormFriendshipRepository(db),
		Posts:          NewGormPostRepository(db),
		Comments:       NewGormCommentRepository(db),
		Replies:        NewGormReplyRepository(db),
		Likes:          NewGormLikeRepository(db),
	}
}
