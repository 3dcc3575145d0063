package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// 题目的测试用例和选项在库里是 JSON 列。这里在存取边界上
// 做一次结构校验，而不是在使用点信任任意形状的动态值。

// JSONValues 有序的任意 JSON 值序列（测试用例输入）
type JSONValues []json.RawMessage

func (v JSONValues) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]json.RawMessage(v))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (v *JSONValues) Scan(src interface{}) error {
	b, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("JSONValues: %w", err)
	}
	var out []json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("JSONValues: not a JSON array: %w", err)
	}
	*v = out
	return nil
}

// StringList JSON 字符串数组（期望输出、选择题选项）
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	b, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("StringList: %w", err)
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("StringList: not a JSON string array: %w", err)
	}
	*l = out
	return nil
}

// StringMap JSON 字符串字典（按语言的起始代码）
type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *StringMap) Scan(src interface{}) error {
	b, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("StringMap: %w", err)
	}
	var out map[string]string
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("StringMap: not a JSON string map: %w", err)
	}
	*m = out
	return nil
}

func jsonBytes(src interface{}) ([]byte, error) {
	switch s := src.(type) {
	case nil:
		return []byte("null"), nil
	case []byte:
		return s, nil
	case string:
		return []byte(s), nil
	default:
		return nil, errors.New("unsupported column type")
	}
}
