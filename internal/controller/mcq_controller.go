package controller

import (
	"code_practice_backend/internal/service"
	"code_practice_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type MCQController struct {
	MCQService *service.MCQService
}

func NewMCQController(mcqService *service.MCQService) *MCQController {
	return &MCQController{MCQService: mcqService}
}

type MCQAnswerRequest struct {
	Selected string `json:"selected" binding:"required"`
}

// @Summary 提交选择题答案
// @Description 判定所选选项，记录一次尝试；答对返回解析
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param answer body MCQAnswerRequest true "所选选项"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/problems/mcq/{id}/answer [post]
func (c *MCQController) Answer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questionID := util.MustParseUint(ctx.Param("id"))

	var req MCQAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.MCQService.Answer(ctx.Request.Context(), user.UserID, questionID, req.Selected)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
