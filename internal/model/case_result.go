package model

import "encoding/json"

// CaseResult 单个测试用例的判题结果，只存在于一次评测的生命周期内。
// Actual 已经过归一化（去首尾空白、去换行）。
type CaseResult struct {
	Input    json.RawMessage `json:"input"`
	Expected string          `json:"expected"`
	Actual   string          `json:"actual"`
	Passed   bool            `json:"passed"`
	Error    string          `json:"error,omitempty"`
}
