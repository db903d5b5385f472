package controller

import (
	"bytes"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/service"
	"eduassess_backend/internal/util"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service   *service.AssessmentService
	Analytics *service.AnalyticsService
}

func NewAssessmentController(svc *service.AssessmentService, analytics *service.AnalyticsService) *AssessmentController {
	return &AssessmentController{Service: svc, Analytics: analytics}
}

// @Summary 测评列表
// @Description 学生只能看到启用中的测评
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param subjectId query int false "科目ID"
// @Param createdBy query int false "创建教师ID"
// @Success 200 {object} util.Response{data=[]model.Assessment}
// @Router /api/assessments [get]
func (c *AssessmentController) List(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	subjectID, ok := queryID(ctx, "subjectId")
	if !ok {
		return
	}
	createdBy, ok := queryID(ctx, "createdBy")
	if !ok {
		return
	}

	list, err := c.Service.List(repository.AssessmentFilter{SubjectID: subjectID, CreatedBy: createdBy}, user.IsStaff())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 测评详情
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	a, err := c.Service.Get(id, user.IsStaff())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 获取试卷
// @Description 按测评顺序返回题目，不含正确答案
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 200 {object} util.Response{data=service.Paper}
// @Router /api/assessments/{id}/paper [get]
func (c *AssessmentController) GetPaper(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	paper, err := c.Service.GetPaper(id, user.IsStaff())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, paper)
}

// @Summary 创建测评
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AssessmentRequest true "测评信息"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Router /api/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.Create(req, user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// @Summary 更新测评
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param body body service.AssessmentRequest true "测评信息"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /api/assessments/{id} [put]
func (c *AssessmentController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.Update(id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 删除测评
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id} [delete]
func (c *AssessmentController) Delete(ctx *gin.Context) {
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

// @Summary 导出测评成绩
// @Description CSV（UTF-8 BOM），含百分制分数
// @Tags 测评
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 200 {file} file
// @Router /api/assessments/{id}/export [get]
func (c *AssessmentController) Export(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	filename, err := c.Analytics.ExportAssessmentCSV(id, &buf)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
