package controller

import (
	"eduassess_backend/internal/service"
	"eduassess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AwardPointsRequest struct {
	UserID uint   `json:"userId" binding:"required"`
	Points int    `json:"points" binding:"required"`
	Reason string `json:"reason" binding:"required,max=255"`
}

type EarnBadgeRequest struct {
	UserID  uint   `json:"userId" binding:"required"`
	BadgeID string `json:"badgeId" binding:"required"`
}

type GamificationController struct {
	Service *service.GamificationService
}

func NewGamificationController(svc *service.GamificationService) *GamificationController {
	return &GamificationController{Service: svc}
}

// allowed 学生只能访问自己的数据
func allowed(ctx *gin.Context, userID uint) bool {
	user, ok := currentUser(ctx)
	if !ok {
		return false
	}
	if !user.IsStaff() && user.UserID != userID {
		util.Forbidden(ctx)
		return false
	}
	return true
}

// @Summary 积分、等级、徽章与成就
// @Tags 激励
// @Produce json
// @Security BearerAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response{data=service.GamificationProfile}
// @Router /api/gamification/{userId} [get]
func (c *GamificationController) Profile(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")
	if !ok || !allowed(ctx, userID) {
		return
	}

	profile, err := c.Service.Profile(userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// @Summary 发放积分
// @Description 积分可为负数，但总积分不能小于 0
// @Tags 激励
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AwardPointsRequest true "积分"
// @Success 200 {object} util.Response{data=service.GamificationProfile}
// @Router /api/gamification/award-points [post]
func (c *GamificationController) AwardPoints(ctx *gin.Context) {
	var req AwardPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.Service.AwardPoints(req.UserID, req.Points, req.Reason)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// @Summary 检查成就
// @Description 返回本次新完成的成就
// @Tags 激励
// @Produce json
// @Security BearerAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response{data=[]service.AchievementView}
// @Router /api/gamification/check-achievements/{userId} [post]
func (c *GamificationController) CheckAchievements(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")
	if !ok || !allowed(ctx, userID) {
		return
	}

	newly, err := c.Service.CheckAchievements(userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, newly)
}

// @Summary 获得徽章
// @Tags 激励
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EarnBadgeRequest true "徽章"
// @Success 200 {object} util.Response{data=service.GamificationProfile}
// @Router /api/gamification/earn-badge [post]
func (c *GamificationController) EarnBadge(ctx *gin.Context) {
	var req EarnBadgeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !allowed(ctx, req.UserID) {
		return
	}

	profile, err := c.Service.EarnBadge(req.UserID, req.BadgeID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}
