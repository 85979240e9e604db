package models

import (
	"encoding/json"

	"social-go/internal/mediatypes"
)

// ContentKind identifies a level of the content tree.
type ContentKind string

const (
	KindPost    ContentKind = "post"
	KindComment ContentKind = "comment"
	KindReply   ContentKind = "reply"
)

// Owned is implemented by every entity that has a creator.
type Owned interface {
	GetCreatorID() string
}

// Post 是内容树的根节点。Media 以 JSONB 数组存储。
type Post struct {
	BaseModel
	CreatorID string          `gorm:"type:char(24);not null;index" json:"creatorId"`
	Text      string          `gorm:"type:text;not null" json:"text"`
	MediaRaw  json.RawMessage `gorm:"column:media;type:jsonb" json:"-"`
	Edited    bool            `gorm:"not null" json:"edited"`
}

// TableName 指定 Post 模型的表名。
func (Post) TableName() string {
	return "posts"
}

func (p *Post) GetCreatorID() string { return p.CreatorID }

// SetMedia helper to set media refs
func (p *Post) SetMedia(refs []mediatypes.MediaRef) error {
	if len(refs) == 0 {
		p.MediaRaw = nil
		return nil
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	p.MediaRaw = data
	return nil
}

// GetMedia helper to decode media refs. A post without media yields an empty slice.
func (p *Post) GetMedia() ([]mediatypes.MediaRef, error) {
	refs := []mediatypes.MediaRef{}
	if len(p.MediaRaw) == 0 || string(p.MediaRaw) == "null" {
		return refs, nil
	}
	if err := json.Unmarshal(p.MediaRaw, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// Comment belongs to a post.
type Comment struct {
	BaseModel
	CreatorID string `gorm:"type:char(24);not null;index" json:"creatorId"`
	PostID    string `gorm:"type:char(24);not null;index" json:"postId"`
	Text      string `gorm:"type:text;not null" json:"text"`
	Edited    bool   `gorm:"not null" json:"edited"`
}

// TableName 指定 Comment 模型的表名。
func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) GetCreatorID() string { return c.CreatorID }

// Reply belongs to a comment. PostID is copied from the comment at creation.
type Reply struct {
	BaseModel
	CreatorID string `gorm:"type:char(24);not null;index" json:"creatorId"`
	CommentID string `gorm:"type:char(24);not null;index" json:"commentId"`
	PostID    string `gorm:"type:char(24);not null;index" json:"postId"`
	Text      string `gorm:"type:text;not null" json:"text"`
	Edited    bool   `gorm:"not null" json:"edited"`
}

// TableName 指定 Reply 模型的表名。
func (Reply) TableName() string {
	return "replies"
}

func (r *Reply) GetCreatorID() string { return r.CreatorID }
