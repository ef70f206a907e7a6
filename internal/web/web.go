// Package web 内嵌录入页面模板
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates 解析全部内嵌模板
func Templates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}
