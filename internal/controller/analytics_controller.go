package controller

import (
	"eduassess_backend/internal/service"
	"eduassess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Service *service.AnalyticsService
}

func NewAnalyticsController(svc *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Service: svc}
}

// @Summary 成绩分析
// @Description 已评分答卷的百分制汇总、分数段分布与各科目统计
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param subjectId query int false "科目ID"
// @Success 200 {object} util.Response{data=model.AnalyticsReport}
// @Router /api/analytics [get]
func (c *AnalyticsController) Report(ctx *gin.Context) {
	subjectID, ok := queryID(ctx, "subjectId")
	if !ok {
		return
	}

	report, err := c.Service.Report(ctx.Request.Context(), subjectID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// @Summary 教师首页统计
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.DashboardStats}
// @Router /api/stats [get]
func (c *AnalyticsController) Stats(ctx *gin.Context) {
	stats, err := c.Service.Stats(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
