package controller

import (
	"code_practice_backend/internal/service"
	"code_practice_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ProblemController struct {
	ProblemService *service.ProblemService
}

func NewProblemController(problemService *service.ProblemService) *ProblemController {
	return &ProblemController{ProblemService: problemService}
}

func pagination(ctx *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// @Summary 编程题列表
// @Description 分页获取编程题摘要
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/problems/coding [get]
func (c *ProblemController) ListCodingProblems(ctx *gin.Context) {
	page, limit := pagination(ctx)

	problems, total, err := c.ProblemService.ListCodingProblems(ctx.Request.Context(), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  problems,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 编程题详情
// @Description 获取单道编程题，含测试用例和起始代码
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/problems/coding/{id} [get]
func (c *ProblemController) GetCodingProblem(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	problem, err := c.ProblemService.GetCodingProblem(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, util.ErrProblemNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, problem)
}

// @Summary 选择题列表
// @Description 分页获取选择题
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/problems/mcq [get]
func (c *ProblemController) ListMCQQuestions(ctx *gin.Context) {
	page, limit := pagination(ctx)

	questions, total, err := c.ProblemService.ListMCQQuestions(ctx.Request.Context(), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  questions,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 选择题详情
// @Description 获取单道选择题（不含正确答案）
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/problems/mcq/{id} [get]
func (c *ProblemController) GetMCQQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	question, err := c.ProblemService.GetMCQQuestion(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, question)
}
