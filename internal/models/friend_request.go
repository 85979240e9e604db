package models

import "time"

// FriendRequest 是接收者待处理列表中的一项：sender -> receiver。
// 没有独立 ID，(ReceiverID, SenderID) 即主键，重复发送在存储层即被拒绝。
type FriendRequest struct {
	ReceiverID string    `gorm:"type:char(24);primaryKey" json:"receiverId"`
	SenderID   string    `gorm:"type:char(24);primaryKey;index" json:"senderId"`
	CreatedAt  time.Time `gorm:"not null" json:"timestamp"`
}

// TableName 指定 FriendRequest 模型的表名。
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// FriendRequestWithSender is a pending request joined with its sender's summary.
type FriendRequestWithSender struct {
	FriendRequest
	Sender *UserBasicInfo `json:"sender"`
}
