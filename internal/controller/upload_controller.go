package controller

import (
	"eduassess_backend/internal/service"
	"eduassess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	Storage *service.StorageService
}

func NewUploadController(storage *service.StorageService) *UploadController {
	return &UploadController{Storage: storage}
}

// @Summary 上传图片
// @Description 仅支持图片，大小受 storage.max_upload_mb 限制
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "图片文件"
// @Success 200 {object} util.Response{data=service.UploadResult}
// @Failure 413 {object} util.Response
// @Router /api/upload [post]
func (c *UploadController) UploadImage(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}
	defer file.Close()

	res, err := c.Storage.UploadImage(ctx.Request.Context(), file, header.Size)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
