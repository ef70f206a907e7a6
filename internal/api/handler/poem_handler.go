package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/daily-poem/internal/dto"
	"github.com/d60-Lab/daily-poem/internal/service"
	"github.com/d60-Lab/daily-poem/pkg/response"
)

func toInput(r dto.PoemRequest) service.PoemInput {
	return service.PoemInput{Title: r.Title, Content: r.Content, Author: r.Author, Source: r.Source}
}

// ListPoems 查询全部诗歌
// @Summary 查询全部诗歌
// @Tags 诗歌
// @Produce json
// @Success 200 {array} dto.PoemResponse
// @Failure 500 {object} response.Response
// @Router /poems [get]
func (h *Handler) ListPoems(c *gin.Context) {
	poems, err := h.poemService.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, dto.FromPoems(poems))
}

// GetPoem 查询单首诗歌
// @Summary 查询单首诗歌
// @Tags 诗歌
// @Produce json
// @Param id path int true "诗歌ID"
// @Success 200 {object} dto.PoemResponse
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /poems/{id} [get]
func (h *Handler) GetPoem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	poem, err := h.poemService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, dto.FromPoem(poem))
}

// CreatePoem 新增诗歌
// @Summary 新增诗歌
// @Tags 诗歌
// @Accept json
// @Produce json
// @Param request body dto.PoemRequest true "诗歌信息"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /poems [post]
func (h *Handler) CreatePoem(c *gin.Context) {
	var req dto.PoemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid json: "+err.Error())
		return
	}
	poem, err := h.poemService.Create(c.Request.Context(), toInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, response.Response{Message: "Poem added successfully.", ID: &poem.ID})
}

// CreatePoemsBulk 批量新增
// @Summary 批量新增诗歌
// @Tags 诗歌
// @Accept json
// @Produce json
// @Param request body []dto.PoemRequest true "诗歌列表"
// @Security BearerAuth
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /poems/bulk [post]
func (h *Handler) CreatePoemsBulk(c *gin.Context) {
	var req []dto.PoemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid json: "+err.Error())
		return
	}
	in := make([]service.PoemInput, len(req))
	for i, r := range req {
		in[i] = toInput(r)
	}
	n, err := h.poemService.CreateBulk(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, response.Response{Message: fmt.Sprintf("%d poems added successfully.", n), Count: &n})
}

// UpdatePoem 整体替换诗歌字段，is_posted 可选
// @Summary 更新诗歌
// @Tags 诗歌
// @Accept json
// @Produce json
// @Param id path int true "诗歌ID"
// @Param request body dto.PoemUpdateRequest true "诗歌信息"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /poems/{id} [put]
func (h *Handler) UpdatePoem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.PoemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid json: "+err.Error())
		return
	}
	in := service.PoemInput{Title: req.Title, Content: req.Content, Author: req.Author, Source: req.Source}
	if err := h.poemService.Update(c.Request.Context(), id, in, req.IsPosted); err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, "Poem updated successfully.")
}

// DeletePoem 删除诗歌
// @Summary 删除诗歌
// @Tags 诗歌
// @Produce json
// @Param id path int true "诗歌ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /poems/{id} [delete]
func (h *Handler) DeletePoem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.poemService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, "Poem deleted successfully.")
}

// TweetRandom 立即执行一次随机选诗发布
// @Summary 手动触发发布
// @Tags 发布
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /poems/tweetrandom [post]
func (h *Handler) TweetRandom(c *gin.Context) {
	res, err := h.selector.Run(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if !res.Posted {
		response.Message(c, "No unposted poems left.")
		return
	}
	response.Success(c, response.Response{Message: "Poem tweeted successfully.", PoemID: &res.PoemID})
}

// ResetPosted 把所有诗歌重置为未发布
// @Summary 重置发布状态
// @Tags 发布
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /poems/reset [post]
func (h *Handler) ResetPosted(c *gin.Context) {
	n, err := h.poemService.ResetPosted(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, response.Response{Message: "All poems have been reset to not posted.", Count: &n})
}
