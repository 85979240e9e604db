package models

// Gender values accepted at sign-up.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// User 代表系统中的用户。Username 即登录邮箱。
type User struct {
	BaseModel
	Username     string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash string  `gorm:"type:varchar(255)" json:"-"` // 不暴露密码哈希
	FirstName    string  `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName     string  `gorm:"type:varchar(100);not null" json:"lastName"`
	Gender       string  `gorm:"type:varchar(10);not null;default:'other'" json:"gender"`
	Birthday     string  `gorm:"type:varchar(10)" json:"birthday,omitempty"` // YYYY-MM-DD
	AvatarURL    string  `gorm:"type:varchar(512)" json:"avatarUrl,omitempty"`
	AvatarKey    string  `gorm:"type:varchar(512)" json:"-"`
	OAuthID      *string `gorm:"column:oauth_id;type:varchar(255);uniqueIndex" json:"-"`
}

// UserBasicInfo holds minimal public information about a user.
// It is the creator summary attached to every feed item.
type UserBasicInfo struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// TableName 指定 User 模型的表名。
func (User) TableName() string {
	return "users"
}

// BasicInfo projects the public summary of u.
func (u *User) BasicInfo() UserBasicInfo {
	return UserBasicInfo{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
	}
}
