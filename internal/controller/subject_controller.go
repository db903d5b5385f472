package controller

import (
	"eduassess_backend/internal/service"
	"eduassess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubjectController struct {
	Service *service.SubjectService
}

func NewSubjectController(svc *service.SubjectService) *SubjectController {
	return &SubjectController{Service: svc}
}

// @Summary 科目列表
// @Description 仅返回启用的科目
// @Tags 科目
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Subject}
// @Router /api/subjects [get]
func (c *SubjectController) List(ctx *gin.Context) {
	subjects, err := c.Service.List()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// @Summary 科目详情
// @Tags 科目
// @Produce json
// @Security BearerAuth
// @Param id path int true "科目ID"
// @Success 200 {object} util.Response{data=model.Subject}
// @Router /api/subjects/{id} [get]
func (c *SubjectController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	subject, err := c.Service.Get(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// @Summary 创建科目
// @Tags 科目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SubjectRequest true "科目信息"
// @Success 201 {object} util.Response{data=model.Subject}
// @Failure 409 {object} util.Response
// @Router /api/subjects [post]
func (c *SubjectController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.Service.Create(req, user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// @Summary 更新科目
// @Tags 科目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "科目ID"
// @Param body body service.SubjectRequest true "科目信息"
// @Success 200 {object} util.Response{data=model.Subject}
// @Router /api/subjects/{id} [put]
func (c *SubjectController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.Service.Update(id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// @Summary 删除科目
// @Description 仍被题目或测评引用时返回 409
// @Tags 科目
// @Produce json
// @Security BearerAuth
// @Param id path int true "科目ID"
// @Success 200 {object} util.Response
// @Router /api/subjects/{id} [delete]
func (c *SubjectController) Delete(ctx *gin.Context) {
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
