package controller

import (
	"eduassess_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID 解析路径参数中的ID，失败时已写入 400 响应
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// queryID 可选的查询参数ID
func queryID(ctx *gin.Context, name string) (*uint, bool) {
	id, err := util.ParseOptionalUint(ctx.Query(name))
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return nil, false
	}
	return id, true
}

func currentUser(ctx *gin.Context) (*util.Claims, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return user, true
}
