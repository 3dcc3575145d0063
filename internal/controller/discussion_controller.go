package controller

import (
	"code_practice_backend/internal/model"
	"code_practice_backend/internal/service"
	"code_practice_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type DiscussionController struct {
	DiscussionService *service.DiscussionService
}

func NewDiscussionController(discussionService *service.DiscussionService) *DiscussionController {
	return &DiscussionController{DiscussionService: discussionService}
}

func problemTypeFromQuery(ctx *gin.Context) (model.QuestionType, bool) {
	switch ctx.DefaultQuery("type", string(model.QuestionTypeCoding)) {
	case string(model.QuestionTypeCoding):
		return model.QuestionTypeCoding, true
	case string(model.QuestionTypeMCQ):
		return model.QuestionTypeMCQ, true
	}
	return "", false
}

// @Summary 题目讨论串
// @Description 获取题目的讨论串，首次访问自动创建
// @Tags 讨论区
// @Produce json
// @Security BearerAuth
// @Param problemId path int true "题目ID"
// @Param type query string false "题型" Enums(coding, mcq) default(coding)
// @Success 200 {object} util.Response
// @Router /api/discussions/problem/{problemId} [get]
func (c *DiscussionController) GetThread(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	problemType, ok := problemTypeFromQuery(ctx)
	if !ok {
		util.BadRequest(ctx, "Invalid problem type")
		return
	}
	problemID := util.MustParseUint(ctx.Param("problemId"))

	thread, err := c.DiscussionService.GetOrCreateThread(ctx.Request.Context(), problemID, problemType, user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, thread)
}

// @Summary 讨论串评论列表
// @Description 获取讨论串下的全部评论
// @Tags 讨论区
// @Produce json
// @Security BearerAuth
// @Param id path int true "讨论串ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/discussions/{id}/comments [get]
func (c *DiscussionController) ListComments(ctx *gin.Context) {
	discussionID := util.MustParseUint(ctx.Param("id"))

	comments, err := c.DiscussionService.ListComments(ctx.Request.Context(), discussionID)
	if err != nil {
		if errors.Is(err, util.ErrDiscussionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, comments)
}

type CommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// @Summary 发表评论
// @Description 在讨论串下发表评论
// @Tags 讨论区
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "讨论串ID"
// @Param comment body CommentRequest true "评论内容"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/discussions/{id}/comments [post]
func (c *DiscussionController) AddComment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	discussionID := util.MustParseUint(ctx.Param("id"))

	var req CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	comment, err := c.DiscussionService.AddComment(ctx.Request.Context(), discussionID, user.UserID, req.Content)
	if err != nil {
		if errors.Is(err, util.ErrDiscussionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, comment)
}
