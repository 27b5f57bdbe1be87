package model

import (
	"time"
)

// GemType 宝石种类（闭集枚举）。
type GemType string

// GemColor 宝石颜色（闭集枚举）。
type GemColor string

// WeightUnit 重量单位（闭集枚举）。
type WeightUnit string

const (
	GemTypeDiamond  GemType = "Diamond"
	GemTypeRuby     GemType = "Ruby"
	GemTypeSapphire GemType = "Sapphire"
	GemTypeEmerald  GemType = "Emerald"

	GemColorRed   GemColor = "Red"
	GemColorBlue  GemColor = "Blue"
	GemColorWhite GemColor = "White"
	GemColorGreen GemColor = "Green"

	WeightUnitMilligram WeightUnit = "mg"
	WeightUnitGram      WeightUnit = "g"
)

// Valid 判断宝石种类是否属于枚举。
func (t GemType) Valid() bool {
	switch t {
	case GemTypeDiamond, GemTypeRuby, GemTypeSapphire, GemTypeEmerald:
		return true
	}
	return false
}

// Valid 判断宝石颜色是否属于枚举。
func (c GemColor) Valid() bool {
	switch c {
	case GemColorRed, GemColorBlue, GemColorWhite, GemColorGreen:
		return true
	}
	return false
}

// Valid 判断重量单位是否属于枚举。
func (u WeightUnit) Valid() bool {
	switch u {
	case WeightUnitMilligram, WeightUnitGram:
		return true
	}
	return false
}

// GemPost 表示一条宝石出售信息。
//
// 每条信息属于一个用户（发布者），删除用户时级联删除其信息。
// 种类、颜色、重量单位均为数据库层 ENUM，边界校验在 handler 完成。
type GemPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"` // 信息唯一标识
	CreatedAt time.Time `json:"created_at"`           // 创建时间
	UpdatedAt time.Time `json:"updated_at"`           // 更新时间

	UserID     uint       `gorm:"not null;index" json:"user_id"`                                           // 发布者用户 ID
	PostedDate time.Time  `gorm:"type:date;not null" json:"posted_date"`                                   // 登记日期
	Type       GemType    `gorm:"column:gem_type;type:enum('Diamond','Ruby','Sapphire','Emerald');not null" json:"gem_type"` // 宝石种类
	Color      GemColor   `gorm:"column:gem_color;type:enum('Red','Blue','White','Green');not null" json:"gem_color"`        // 宝石颜色
	Weight     float64    `gorm:"column:gem_weight;type:decimal(10,2);not null" json:"gem_weight"`         // 重量（正数）
	WeightUnit WeightUnit `gorm:"column:gem_weight_unit;type:enum('mg','g');not null" json:"gem_weight_unit"` // 重量单位

	OwnerName     string `gorm:"type:varchar(255);not null" json:"owner_name"`    // 物主姓名
	ContactNumber string `gorm:"type:varchar(20);not null" json:"contact_number"` // 联系电话
	Address       string `gorm:"type:text;not null" json:"address"`               // 地址
	OtherInfo     string `gorm:"type:text" json:"other_info"`                     // 备注（可选）
}

// TableName 指定表名，与既有库表保持一致。
func (GemPost) TableName() string {
	return "gem_posts"
}
