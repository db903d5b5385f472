package controller

import (
	"eduassess_backend/internal/service"
	"eduassess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Service *service.AuthService
}

func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{Service: svc}
}

// @Summary 教师登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.TeacherLoginRequest true "用户名与密码"
// @Success 200 {object} util.Response{data=service.LoginResult}
// @Failure 401 {object} util.Response
// @Router /api/auth/teacher-login [post]
func (c *AuthController) TeacherLogin(ctx *gin.Context) {
	var req service.TeacherLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.TeacherLogin(req.Username, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// @Summary 学生登录
// @Description 按姓名与生日(YYMMDD)登录，首次登录自动创建学生
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.StudentLoginRequest true "姓名与生日"
// @Success 200 {object} util.Response{data=service.StudentLoginResult}
// @Router /api/auth/student-login [post]
func (c *AuthController) StudentLogin(ctx *gin.Context) {
	var req service.StudentLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.StudentLogin(req.Name, req.BirthDate)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// @Summary 退出登录
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	if err := c.Service.Logout(ctx.Request.Context(), user); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary 当前用户信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	profile, err := c.Service.GetProfile(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}
