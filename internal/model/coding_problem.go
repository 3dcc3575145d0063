package model

// CodingProblem 编程题。TestCases 与 ExpectedOutputs 按下标对齐，
// 期望输出是原始字符串（判题按整行精确匹配，不做结构化比较）。
// 评测视角下题目只读。
// swagger:model CodingProblem
type CodingProblem struct {
	BaseModel
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Difficulty      string     `gorm:"size:50;default:'easy'" json:"difficulty"`
	Points          int        `gorm:"default:0" json:"points"`
	TestCases       JSONValues `gorm:"type:json" json:"testCases"`
	ExpectedOutputs StringList `gorm:"type:json" json:"expectedOutputs"`
	StarterCode     StringMap  `gorm:"type:json" json:"starterCode"`
}

func (CodingProblem) TableName() string {
	return "coding_problems"
}

// Ready 评测前置条件：用例非空且与期望输出一一对齐
func (p *CodingProblem) Ready() bool {
	return len(p.TestCases) > 0 && len(p.TestCases) == len(p.ExpectedOutputs)
}
