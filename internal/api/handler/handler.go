package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/d60-Lab/daily-poem/config"
	"github.com/d60-Lab/daily-poem/internal/publisher"
	"github.com/d60-Lab/daily-poem/internal/repository"
	"github.com/d60-Lab/daily-poem/internal/service"
	"github.com/d60-Lab/daily-poem/pkg/response"
)

// Selector 触发一次选诗发布
type Selector interface {
	Run(ctx context.Context) (*service.SelectionResult, error)
}

// Handler HTTP 处理器集合
type Handler struct {
	poemService service.PoemService
	selector    Selector
	auth        config.AuthConfig
	db          *gorm.DB
}

func NewHandler(poemService service.PoemService, selector Selector, auth config.AuthConfig, db *gorm.DB) *Handler {
	return &Handler{poemService: poemService, selector: selector, auth: auth, db: db}
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Fail(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	response.Success(c, gin.H{"status": "ok"})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid poem id")
		return 0, false
	}
	return uint(id), true
}

// writeError 按错误类型映射 HTTP 状态码
func writeError(c *gin.Context, err error) {
	var tooLong *publisher.ContentTooLongError
	switch {
	case errors.Is(err, service.ErrMarkFailed):
		response.Fail(c, http.StatusInternalServerError, "Poem was tweeted but could not be marked as posted.")
	case errors.Is(err, service.ErrInvalidPoem):
		response.BadRequest(c, err.Error())
	case errors.As(err, &tooLong):
		response.BadRequest(c, tooLong.Error())
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, "Poem not found.")
	case errors.Is(err, publisher.ErrPublishFailed):
		response.Fail(c, http.StatusBadGateway, err.Error())
	default:
		response.InternalError(c, err)
	}
}
