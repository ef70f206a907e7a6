package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/daily-poem/internal/dto"
	"github.com/d60-Lab/daily-poem/internal/publisher"
)

const formTemplate = "form.html"

type formView struct {
	Form      dto.PoemRequest
	MaxLength int
	Success   string
	Warning   string
	Error     string
}

// PoemForm 录入页面
func (h *Handler) PoemForm(c *gin.Context) {
	c.HTML(http.StatusOK, formTemplate, formView{MaxLength: publisher.MaxLength})
}

// SubmitPoemForm 处理表单提交：解析失败直接报错；先校验拼接后的发布文本长度，再检查必填项
func (h *Handler) SubmitPoemForm(c *gin.Context) {
	var req dto.PoemRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, formTemplate, formView{
			MaxLength: publisher.MaxLength,
			Error:     "Could not read the form: " + err.Error(),
		})
		return
	}
	view := formView{Form: req, MaxLength: publisher.MaxLength}

	composed := publisher.ComposeText(req.Content, req.Author, req.Source)
	if n := publisher.Length(composed); n > publisher.MaxLength {
		view.Error = fmt.Sprintf("Too long: %d/%d", n, publisher.MaxLength)
		c.HTML(http.StatusBadRequest, formTemplate, view)
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" ||
		strings.TrimSpace(req.Author) == "" || strings.TrimSpace(req.Source) == "" {
		view.Warning = "Please fill in every field."
		c.HTML(http.StatusBadRequest, formTemplate, view)
		return
	}

	if _, err := h.poemService.Create(c.Request.Context(), toInput(req)); err != nil {
		view.Error = "Could not save poem: " + err.Error()
		c.HTML(http.StatusBadRequest, formTemplate, view)
		return
	}
	c.HTML(http.StatusOK, formTemplate, formView{MaxLength: publisher.MaxLength, Success: "Saved!"})
}
