package controller

import (
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/service"
	"eduassess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	Service *service.QuestionService
}

func NewQuestionController(svc *service.QuestionService) *QuestionController {
	return &QuestionController{Service: svc}
}

// @Summary 题目列表
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param subjectId query int false "科目ID"
// @Param createdBy query int false "出题教师ID"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Router /api/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	subjectID, ok := queryID(ctx, "subjectId")
	if !ok {
		return
	}
	createdBy, ok := queryID(ctx, "createdBy")
	if !ok {
		return
	}

	qs, err := c.Service.List(repository.QuestionFilter{SubjectID: subjectID, CreatedBy: createdBy})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, qs)
}

// @Summary 题目详情
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	q, err := c.Service.Get(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary 创建题目
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /api/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.Create(req, user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// @Summary 更新题目
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body service.QuestionRequest true "题目信息"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.Update(id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary 删除题目
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.Delete(id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
