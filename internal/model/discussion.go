package model

// Discussion 每道题一个讨论串，(题目, 题型) 唯一，
// 首次访问时经 provisioner 懒创建。
type Discussion struct {
	BaseModel
	ProblemID   uint         `gorm:"uniqueIndex:idx_problem;type:bigint unsigned;not null" json:"problemId"`
	ProblemType QuestionType `gorm:"uniqueIndex:idx_problem;size:20;not null" json:"problemType"`
	Title       string       `gorm:"size:255;default:'Discussion'" json:"title"`
	CreatedBy   uint         `gorm:"type:bigint unsigned" json:"createdBy"`
}

func (Discussion) TableName() string {
	return "discussions"
}

type Comment struct {
	BaseModel
	DiscussionID uint   `gorm:"index;type:bigint unsigned;not null" json:"discussionId"`
	UserID       uint   `gorm:"type:bigint unsigned;not null" json:"userId"`
	Content      string `gorm:"type:text;not null" json:"content"`
}

func (Comment) TableName() string {
	return "comments"
}
