package model

// MCQQuestion 选择题
// swagger:model MCQQuestion
type MCQQuestion struct {
	BaseModel
	Title         string     `gorm:"size:255;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Options       StringList `gorm:"type:json" json:"options"`
	CorrectAnswer string     `gorm:"type:text" json:"-"`
	Explanation   string     `gorm:"type:text" json:"explanation"`
	Points        int        `gorm:"default:0" json:"points"`
}

func (MCQQuestion) TableName() string {
	return "mcq_questions"
}
