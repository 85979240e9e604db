package models

import "time"

// LikeRecord 是点赞账本中的一行：某用户点赞了某个对象。
// 三种对象各有一张表，结构相同；(SubjectID, UserID) 复合主键保证同一用户最多一条记录，
// 且以 subject_id 开头，按对象批量计数时可直接走主键索引。
type LikeRecord struct {
	SubjectID string    `gorm:"type:char(24);primaryKey" json:"subjectId"`
	UserID    string    `gorm:"type:char(24);primaryKey" json:"userId"`
	CreatedAt time.Time `gorm:"not null" json:"timestamp"`
}

// LikeTables lists the ledger table for every likeable kind.
var LikeTables = map[ContentKind]string{
	KindPost:    "post_likes",
	KindComment: "comment_likes",
	KindReply:   "reply_likes",
}

// LikeTable returns the ledger table for kind.
func (k ContentKind) LikeTable() (string, bool) {
	t, ok := LikeTables[k]
	return t, ok
}

// Valid reports whether k names a level of the content tree.
func (k ContentKind) Valid() bool {
	_, ok := LikeTables[k]
	return ok
}
