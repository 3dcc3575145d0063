package util

import "errors"

// 评测错误按规约分为四类：前置条件、传输、持久化、竞争已恢复。
// 前两类对用户可见且可重试，竞争冲突由 provisioner 内部消化。
var (
	// Precondition：题目/进度上下文缺失，快速失败，无任何副作用
	ErrProblemNotFound  = errors.New("problem not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrNotReady         = errors.New("problem is not ready for evaluation")

	// Transport：远程判题服务不可用或拒绝，整次评测终止
	ErrSubmissionRejected = errors.New("judge rejected the submission")
	ErrJudgeUnavailable   = errors.New("judge service unavailable")
	ErrEvaluationTimeout  = errors.New("evaluation timed out")

	// Persistence
	ErrProgressConflict = errors.New("progress record was modified concurrently")

	ErrDiscussionNotFound = errors.New("discussion not found")
)
