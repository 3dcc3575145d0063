package controller

import (
	"code_practice_backend/internal/service"
	"code_practice_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	EvaluationService *service.EvaluationService
}

func NewSubmissionController(evaluationService *service.EvaluationService) *SubmissionController {
	return &SubmissionController{EvaluationService: evaluationService}
}

type SubmissionRequest struct {
	Code     string `json:"code" binding:"required"`
	Language string `json:"language" binding:"required,oneof=javascript python java"`
}

// @Summary 运行提交
// @Description 对题目全部测试用例评测一次提交
// @Tags 评测
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param submission body SubmissionRequest true "提交内容"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 502 {object} util.Response
// @Failure 504 {object} util.Response
// @Router /api/problems/coding/{id}/run [post]
func (c *SubmissionController) Run(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	problemID := util.MustParseUint(ctx.Param("id"))

	var req SubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	outcome, err := c.EvaluationService.Evaluate(ctx.Request.Context(), user.UserID, problemID, req.Code, req.Language)
	if err != nil {
		c.writeEvaluationError(ctx, err)
		return
	}

	util.Success(ctx, outcome)
}

// @Summary 保存代码
// @Description 保存草稿代码，不评测、不影响完成状态
// @Tags 评测
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param submission body SubmissionRequest true "提交内容"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/problems/coding/{id}/save [post]
func (c *SubmissionController) Save(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	problemID := util.MustParseUint(ctx.Param("id"))

	var req SubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.EvaluationService.SaveSolution(ctx.Request.Context(), user.UserID, problemID, req.Code, req.Language); err != nil {
		if errors.Is(err, util.ErrProblemNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Solution saved"})
}

// @Summary 题目进度
// @Description 获取当前用户在某道编程题上的进度（不存在则初始化）
// @Tags 评测
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/problems/coding/{id}/progress [get]
func (c *SubmissionController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	problemID := util.MustParseUint(ctx.Param("id"))

	progress, err := c.EvaluationService.GetProgress(ctx.Request.Context(), user.UserID, problemID)
	if err != nil {
		if errors.Is(err, util.ErrProblemNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// 前置条件错误归咎调用方，传输类错误提示稍后重试
func (c *SubmissionController) writeEvaluationError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrProblemNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrNotReady):
		util.BadRequest(ctx, "Problem has no runnable test cases")
	case errors.Is(err, util.ErrEvaluationTimeout):
		util.Error(ctx, http.StatusGatewayTimeout, "Evaluation timed out, please try again later")
	case errors.Is(err, util.ErrSubmissionRejected), errors.Is(err, util.ErrJudgeUnavailable):
		util.Retryable(ctx, "Code execution service unavailable, please try again later")
	default:
		util.LogInternalError(ctx, err)
	}
}
