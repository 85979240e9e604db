package models

// Friendship represents a friendship relationship between two users.
// To avoid duplicates and simplify queries, UserID1 should always be less than UserID2;
// a single row therefore stands for both directions of the friend list.
type Friendship struct {
	BaseModel
	UserID1 string `gorm:"type:char(24);not null;uniqueIndex:idx_friendship_users" json:"userId1"`
	UserID2 string `gorm:"type:char(24);not null;uniqueIndex:idx_friendship_users;index" json:"userId2"`
}

// TableName 指定 Friendship 模型的表名。
func (Friendship) TableName() string {
	return "friendships"
}

// EnsureCanonicalOrder sets UserID1 to the smaller ID and UserID2 to the larger ID.
// This should be called before creating a Friendship record.
func (f *Friendship) EnsureCanonicalOrder() {
	if f.UserID1 > f.UserID2 {
		f.UserID1, f.UserID2 = f.UserID2, f.UserID1
	}
}

// CanonicalPair orders two user ids the same way EnsureCanonicalOrder does.
func CanonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// Other returns the member of the friendship that is not userID.
func (f *Friendship) Other(userID string) string {
	if f.UserID1 == userID {
		return f.UserID2
	}
	return f.UserID1
}
