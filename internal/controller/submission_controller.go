package controller

import (
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/service"
	"eduassess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	Service *service.SubmissionService
}

func NewSubmissionController(svc *service.SubmissionService) *SubmissionController {
	return &SubmissionController{Service: svc}
}

// @Summary 开始答题
// @Description 已有进行中的答卷时直接返回该答卷
// @Tags 答卷
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.StartSubmissionRequest true "测评ID"
// @Success 201 {object} util.Response{data=model.Submission}
// @Success 200 {object} util.Response{data=model.Submission}
// @Router /api/submissions [post]
func (c *SubmissionController) Start(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.StartSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, created, err := c.Service.Start(req.AssessmentID, user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, sub)
		return
	}
	util.Success(ctx, sub)
}

// @Summary 保存作答 / 交卷
// @Description status=submitted 时交卷并自动评分；已交卷的答卷返回 409
// @Tags 答卷
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "答卷ID"
// @Param body body service.UpdateSubmissionRequest true "作答内容"
// @Success 200 {object} util.Response{data=model.Submission}
// @Failure 409 {object} util.Response
// @Router /api/submissions/{id} [put]
func (c *SubmissionController) Update(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.UpdateSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.Service.Update(id, user.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// @Summary 答卷列表
// @Description 学生只能看到自己的答卷
// @Tags 答卷
// @Produce json
// @Security BearerAuth
// @Param assessmentId query int false "测评ID"
// @Param studentId query int false "学生ID"
// @Param status query string false "状态" Enums(in-progress, submitted, graded)
// @Success 200 {object} util.Response{data=[]model.Submission}
// @Router /api/submissions [get]
func (c *SubmissionController) List(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	assessmentID, ok := queryID(ctx, "assessmentId")
	if !ok {
		return
	}
	studentID, ok := queryID(ctx, "studentId")
	if !ok {
		return
	}

	filter := repository.SubmissionFilter{
		AssessmentID: assessmentID,
		StudentID:    studentID,
		Status:       model.SubmissionStatus(ctx.Query("status")),
	}
	subs, err := c.Service.List(filter, user)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// @Summary 答卷详情
// @Tags 答卷
// @Produce json
// @Security BearerAuth
// @Param id path int true "答卷ID"
// @Success 200 {object} util.Response{data=model.Submission}
// @Router /api/submissions/{id} [get]
func (c *SubmissionController) Get(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	sub, err := c.Service.Get(id, user)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}
