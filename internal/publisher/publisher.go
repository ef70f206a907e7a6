package publisher

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxLength 单条推文最大字符数
const MaxLength = 280

// ErrPublishFailed 平台拒绝、请求失败或未返回确认数据
var ErrPublishFailed = errors.New("publish failed")

// ContentTooLongError 超长内容，不会发起网络请求
type ContentTooLongError struct {
	Length int
	Limit  int
}

func (e *ContentTooLongError) Error() string {
	return fmt.Sprintf("content too long to publish: %d/%d characters", e.Length, e.Limit)
}

// Publisher 外部发布平台适配器
type Publisher interface {
	Publish(ctx context.Context, text string) error
}

// ComposeText 生成发布文本：正文 + 署名后缀
func ComposeText(content, author, source string) string {
	return content + "\n\n- " + author + " (" + source + ")"
}

// Length 按 Unicode 码点计数
func Length(text string) int { return utf8.RuneCountInString(text) }

// CheckLength 校验发布文本长度
func CheckLength(text string) error {
	if n := Length(text); n > MaxLength {
		return &ContentTooLongError{Length: n, Limit: MaxLength}
	}
	return nil
}
