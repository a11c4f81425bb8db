package handler

import (
	"net/http"

	"github.com/MaulRai/tiku/internal/upload"
	"github.com/gin-gonic/gin"
)

// UploadHandler 文件上传接口
type UploadHandler struct {
	store *upload.Store
}

func NewUploadHandler(store *upload.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

// UploadImage 上传图片（活动海报等）
func (h *UploadHandler) UploadImage(c *gin.Context) {
	h.save(c, upload.KindImage)
}

// UploadDocument 上传文档（提案附件等）
func (h *UploadHandler) UploadDocument(c *gin.Context) {
	h.save(c, upload.KindDocument)
}

func (h *UploadHandler) save(c *gin.Context, kind upload.Kind) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "缺少上传文件")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "读取上传文件失败")
		return
	}
	defer file.Close()

	stored, err := h.store.Save(file, kind)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusCreated, gin.H{"file": stored})
}
