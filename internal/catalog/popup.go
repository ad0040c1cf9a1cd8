package catalog

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var popupPolicy = newPopupPolicy()

func newPopupPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "strong")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// 文档注释：渲染点位弹窗 HTML
// 背景：弹窗内容以 Markdown 维护，渲染后经白名单清洗再交给地图信息窗，防止数据源注入脚本。
// 约束：Popup 为空时回退为转义后的地址；渲染失败时同样回退。
func PopupHTML(p MapPoint) string {
	src := strings.TrimSpace(p.Popup)
	if src == "" {
		return "<p>" + html.EscapeString(p.Address) + "</p>"
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "<p>" + html.EscapeString(p.Address) + "</p>"
	}
	return strings.TrimSpace(popupPolicy.Sanitize(buf.String()))
}
