package model

import "time"

// User 表示系统用户。
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                // 用户 ID
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`              // 显示名称
	Email     string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"` // 邮箱（唯一）
	Password  string    `gorm:"not null" json:"-"`                                   // bcrypt 哈希，不参与序列化
	CreatedAt time.Time `json:"created_at"`                                          // 创建时间
	UpdatedAt time.Time `json:"-"`

	GemPosts []GemPost `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// PublicUser 是对外返回的用户视图（不含密码哈希）。
type PublicUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public 返回可安全对外暴露的用户投影。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
