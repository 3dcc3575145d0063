package model

import "time"

// Achievement 每个 (用户, 成就类型) 至多一条，只增不改不删。
// 唯一索引是"恰好解锁一次"的最终保证。
type Achievement struct {
	BaseModel
	UserID     uint      `gorm:"uniqueIndex:idx_user_type;type:bigint unsigned;not null" json:"userId"`
	Type       string    `gorm:"uniqueIndex:idx_user_type;size:50;not null" json:"type"`
	AchievedOn time.Time `json:"achievedOn"`
}

func (Achievement) TableName() string {
	return "achievements"
}
