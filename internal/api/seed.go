package api

import (
	"context"
	"time"

	"github.com/PasanRansinghe/gems/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDemoData 初始化演示数据，保证新环境首页不是空板。
//
// 以演示邮箱为键做 find-or-create，可重复执行；prod 环境跳过。
func (s *Server) SeedDemoData(ctx context.Context) error {
	if s.cfg.App.Env == "prod" {
		return nil
	}

	const demoEmail = "demo@gems.local"
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", demoEmail).First(&user).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == gorm.ErrRecordNotFound {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
		if hashErr != nil {
			return hashErr
		}
		user = model.User{
			Name:     "Demo Seller",
			Email:    demoEmail,
			Password: string(hash),
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return err
		}
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.GemPost{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	today := time.Now().Truncate(24 * time.Hour)
	posts := []model.GemPost{
		{
			UserID:        user.ID,
			PostedDate:    today,
			Type:          model.GemTypeSapphire,
			Color:         model.GemColorBlue,
			Weight:        2.35,
			WeightUnit:    model.WeightUnitGram,
			OwnerName:     "Demo Seller",
			ContactNumber: "0770000000",
			Address:       "Ratnapura",
			OtherInfo:     "Heat treated",
		},
		{
			UserID:        user.ID,
			PostedDate:    today,
			Type:          model.GemTypeRuby,
			Color:         model.GemColorRed,
			Weight:        450,
			WeightUnit:    model.WeightUnitMilligram,
			OwnerName:     "Demo Seller",
			ContactNumber: "0770000000",
			Address:       "Ratnapura",
		},
	}
	return s.db.WithContext(ctx).Create(&posts).Error
}
