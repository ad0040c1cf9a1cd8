package catalog

import (
	"context"
	"fmt"
	"os"
	"resource-map/internal/logger"
	"sync"

	"gopkg.in/yaml.v3"
)

// 文档注释：解析 YAML 目录
// 背景：无数据库部署时以单文件维护条目、点位与控件；点位缺省 ID 时以地址充当 ID。
// 约束：默认样式 button；标签统一归一化，与数据库来源保持一致。
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i := range c.Points {
		if c.Points[i].ID == "" {
			c.Points[i].ID = c.Points[i].Address
		}
	}
	for i := range c.Toggles {
		t := &c.Toggles[i]
		t.ID = NormalizeTag(t.ID)
		if t.Style == "" {
			t.Style = StyleButton
		}
	}
	for i := range c.Entries {
		e := &c.Entries[i]
		e.Categories = normalizeAll(e.Categories)
		e.Features = normalizeAll(e.Features)
		e.Requirements = normalizeAll(e.Requirements)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func normalizeAll(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := NormalizeTag(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// LoadFile：读取并解析目录文件
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.L().Debug("catalog_loaded", "path", path, "entries", len(c.Entries), "points", len(c.Points), "toggles", len(c.Toggles))
	return c, nil
}

// 文档注释：文件目录源
// 背景：与数据库源实现同一读取契约，供 API 层按需切换；首次读取后缓存于内存。
type FileSource struct {
	Path string

	once sync.Once
	c    *Catalog
	err  error
}

func (s *FileSource) Catalog(ctx context.Context) (*Catalog, error) {
	s.once.Do(func() { s.c, s.err = LoadFile(s.Path) })
	return s.c, s.err
}

// Associations：返回条目的描述字段；条目不存在时返回空映射
func (s *FileSource) Associations(ctx context.Context, id string) (map[string]string, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	if e, ok := c.Entry(id); ok {
		for k, v := range e.Details {
			out[k] = v
		}
	}
	return out, nil
}
