package controller

import (
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/service"
	"eduassess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	Service *service.GradeService
}

func NewGradeController(svc *service.GradeService) *GradeController {
	return &GradeController{Service: svc}
}

// @Summary 人工评分
// @Description 同一答卷同一题目重复评分时覆盖
// @Tags 评分
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.GradeRequest true "评分"
// @Success 201 {object} util.Response{data=model.Grade}
// @Router /api/grades [post]
func (c *GradeController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	g, err := c.Service.Create(req, user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, g)
}

// @Summary 修改评分
// @Tags 评分
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "评分ID"
// @Param body body service.UpdateGradeRequest true "评分"
// @Success 200 {object} util.Response{data=model.Grade}
// @Router /api/grades/{id} [put]
func (c *GradeController) Update(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.UpdateGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	g, err := c.Service.Update(id, req, user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, g)
}

// @Summary 评分列表
// @Tags 评分
// @Produce json
// @Security BearerAuth
// @Param submissionId query int false "答卷ID"
// @Param questionId query int false "题目ID"
// @Success 200 {object} util.Response{data=[]model.Grade}
// @Router /api/grades [get]
func (c *GradeController) List(ctx *gin.Context) {
	submissionID, ok := queryID(ctx, "submissionId")
	if !ok {
		return
	}
	questionID, ok := queryID(ctx, "questionId")
	if !ok {
		return
	}

	gs, err := c.Service.List(repository.GradeFilter{SubmissionID: submissionID, QuestionID: questionID})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gs)
}

// @Summary 评分详情
// @Tags 评分
// @Produce json
// @Security BearerAuth
// @Param id path int true "评分ID"
// @Success 200 {object} util.Response{data=model.Grade}
// @Router /api/grades/{id} [get]
func (c *GradeController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	g, err := c.Service.Get(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, g)
}
