package model

import "time"

type QuestionType string

const (
	QuestionTypeMCQ    QuestionType = "mcq"
	QuestionTypeCoding QuestionType = "coding"
)

// UserProgress 每个 (用户, 题目, 题型) 至多一行，由唯一索引保证。
// 首次访问时经 provisioner 懒创建，之后只更新，从不删除。
// Attempts 单调不减，每次判题 +1（编程题与选择题同一计数语义）。
// Version 是乐观锁计数，判题写入走 CAS 防止并发评测互相覆盖。
type UserProgress struct {
	BaseModel
	UserID          uint         `gorm:"uniqueIndex:idx_user_question;type:bigint unsigned;not null" json:"userId"`
	QuestionID      uint         `gorm:"uniqueIndex:idx_user_question;type:bigint unsigned;not null" json:"questionId"`
	QuestionType    QuestionType `gorm:"uniqueIndex:idx_user_question;size:20;not null" json:"questionType"`
	Completed       bool         `gorm:"default:false" json:"completed"`
	Score           int          `gorm:"default:0" json:"score"`
	Attempts        int          `gorm:"default:0" json:"attempts"`
	Solution        string       `gorm:"type:text" json:"solution"`
	Language        string       `gorm:"size:50" json:"language"`
	LastAttemptedAt time.Time    `json:"lastAttemptedAt"`
	Version         uint64       `gorm:"default:0" json:"-"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}
