package service

import (
	"bytes"
	"code_practice_backend/internal/config"
	"code_practice_backend/internal/model"
	"code_practice_backend/internal/util"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Judge0 语言编号
const (
	languageIDPython     = 71
	languageIDJava       = 62
	languageIDJavaScript = 93
)

func languageIDOf(language string) int {
	switch language {
	case "python":
		return languageIDPython
	case "java":
		return languageIDJava
	default:
		return languageIDJavaScript
	}
}

// pythonHarness / javascriptHarness 把用户代码包进固定执行模板：
// 定义 solution 函数，从沙箱 stdin 读一个 JSON 值，把返回值写到 stdout。
const pythonHarness = `
%s

import sys, json
input_data = json.loads(sys.stdin.read())
print(solution(input_data))
`

const javascriptHarness = `
%s

const fs = require('fs');
const input = JSON.parse(fs.readFileSync(0, 'utf-8'));
console.log(solution(input));
`

func wrapCodeWithHarness(code, language string) string {
	switch language {
	case "python":
		return fmt.Sprintf(pythonHarness, code)
	case "javascript":
		return fmt.Sprintf(javascriptHarness, code)
	default:
		// 不支持模板的语言原样提交
		return code
	}
}

// normalizeOutput 比较前的归一化：去首尾空白，去掉所有换行符。
// 比较是单行精确字符串匹配，没有数值容差。
func normalizeOutput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "")
}

// canonicalJSON 测试输入的规范 JSON 文本，作为沙箱的 stdin
func canonicalJSON(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TestCaseRunner 按序驱动 Judge 跑完一道题的全部测试用例。
// 串行而不并行：结果下标必须与期望输出对齐，同时限制远端负载。
type TestCaseRunner struct {
	judge        Judge
	pollInterval time.Duration
	caseTimeout  time.Duration
}

func NewTestCaseRunner(judge Judge, cfg config.Judge0Config) *TestCaseRunner {
	return &TestCaseRunner{
		judge:        judge,
		pollInterval: cfg.PollInterval,
		caseTimeout:  cfg.CaseTimeout,
	}
}

// Run 逐个用例判题并产出结构化结果。
// 任何传输层错误或用例超时都是致命的：立即放弃剩余用例，
// 不返回半截结果。stderr/compile_output 不论通过与否都记录。
func (r *TestCaseRunner) Run(ctx context.Context, problem *model.CodingProblem, code, language string) ([]model.CaseResult, error) {
	wrapped := wrapCodeWithHarness(code, language)
	languageID := languageIDOf(language)

	results := make([]model.CaseResult, 0, len(problem.TestCases))
	for i, testCase := range problem.TestCases {
		stdin, err := canonicalJSON(testCase)
		if err != nil {
			return nil, fmt.Errorf("test case %d: invalid input payload: %w", i, err)
		}

		verdict, err := r.runCase(ctx, wrapped, languageID, stdin)
		if err != nil {
			return nil, fmt.Errorf("test case %d: %w", i, err)
		}

		actual := normalizeOutput(verdict.Stdout)
		errText := strings.TrimSpace(verdict.Stderr)
		if errText == "" {
			errText = strings.TrimSpace(verdict.CompileOutput)
		}

		expected := problem.ExpectedOutputs[i]
		results = append(results, model.CaseResult{
			Input:    testCase,
			Expected: expected,
			Actual:   actual,
			Passed:   actual == expected,
			Error:    errText,
		})
	}

	return results, nil
}

// runCase 一次提交加轮询循环，墙钟上限用 context deadline 硬性截断
func (r *TestCaseRunner) runCase(ctx context.Context, source string, languageID int, stdin string) (*JudgeVerdict, error) {
	caseCtx, cancel := context.WithTimeout(ctx, r.caseTimeout)
	defer cancel()

	token, err := r.judge.Submit(caseCtx, source, languageID, stdin)
	if err != nil {
		return nil, translateDeadline(caseCtx, err)
	}

	for {
		verdict, err := r.judge.Poll(caseCtx, token)
		if err != nil {
			return nil, translateDeadline(caseCtx, err)
		}
		if verdict.Terminal() {
			return verdict, nil
		}

		// 固定轮询间隔，无指数退避
		select {
		case <-caseCtx.Done():
			return nil, translateDeadline(caseCtx, caseCtx.Err())
		case <-time.After(r.pollInterval):
		}
	}
}

// translateDeadline 超时统一上报为评测超时，其余错误原样透传
func translateDeadline(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", util.ErrEvaluationTimeout, err)
	}
	return err
}
