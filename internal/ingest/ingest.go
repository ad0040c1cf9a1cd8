// 包 ingest：将 YAML 目录导入 PostgreSQL 描述符模型，供无管理后台的部署初始化数据
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"resource-map/internal/catalog"
	"resource-map/internal/logger"

	"github.com/lib/pq"
)

var kindDescriptor = map[catalog.ToggleKind]string{
	catalog.KindCategory:    "categories",
	catalog.KindFeature:     "features",
	catalog.KindRequirement: "requirements",
}

// descriptor：待写入的描述符；Vals 为空表示文本描述符
type descriptor struct {
	Name  string
	Vals  []string
	index map[string]int
}

// 文档注释：由目录推导描述符
// 背景：三个标签描述符的取值优先使用控件标签（标签归一化后须等于控件 ID，否则用 ID），条目上出现但无控件的标签按原样追加；详情键各自成为文本描述符。
// 约束：取值顺序稳定（控件顺序，其后按标签字典序），保证重复导入得到相同的选项下标。
func buildDescriptors(c *catalog.Catalog) []*descriptor {
	var out []*descriptor
	for _, kind := range []catalog.ToggleKind{catalog.KindCategory, catalog.KindFeature, catalog.KindRequirement} {
		d := &descriptor{Name: kindDescriptor[kind], index: map[string]int{}}
		add := func(id, label string) {
			if _, ok := d.index[id]; ok || id == "" {
				return
			}
			d.index[id] = len(d.Vals)
			d.Vals = append(d.Vals, label)
		}
		for _, t := range c.Toggles {
			if t.Kind == kind {
				label := t.Label
				if catalog.NormalizeTag(label) != t.ID {
					label = t.ID
				}
				add(t.ID, label)
			}
		}
		var extra []string
		for _, e := range c.Entries {
			extra = append(extra, tagsOf(e, kind)...)
		}
		sort.Strings(extra)
		for _, tag := range extra {
			add(tag, tag)
		}
		out = append(out, d)
	}
	keys := map[string]bool{}
	for _, e := range c.Entries {
		for k := range e.Details {
			keys[k] = true
		}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		out = append(out, &descriptor{Name: k})
	}
	return out
}

func tagsOf(e catalog.Entry, kind catalog.ToggleKind) []string {
	switch kind {
	case catalog.KindCategory:
		return e.Categories
	case catalog.KindFeature:
		return e.Features
	case catalog.KindRequirement:
		return e.Requirements
	}
	return nil
}

// 文档注释：导入目录
// 背景：单事务写入资源、描述符、选项与文本关联；资源主键由数据库分配，条目原 ID 不保留。
// 异常：任一步失败整体回滚并返回错误，不做重试。
func ImportCatalog(ctx context.Context, db *sql.DB, c *catalog.Catalog) (int, error) {
	logger.L().Info("ingest_start", "entries", len(c.Entries))
	descs := buildDescriptors(c)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	descID := map[string]int{}
	for _, d := range descs {
		var id int
		vals := d.Vals
		if vals == nil {
			vals = []string{}
		}
		if err := tx.QueryRowContext(ctx, "INSERT INTO descriptors(name, vals, is_searchable) VALUES($1,$2,$3) RETURNING id",
			d.Name, pq.Array(vals), len(d.Vals) > 0).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert descriptor %q: %w", d.Name, err)
		}
		descID[d.Name] = id
	}

	stmtRes, err := tx.PrepareContext(ctx, "INSERT INTO resources(name,address,latitude,longitude) VALUES($1,$2,$3,$4) RETURNING id")
	if err != nil {
		return 0, err
	}
	defer stmtRes.Close()
	stmtOpt, err := tx.PrepareContext(ctx, "INSERT INTO option_associations(resource_id,descriptor_id,option) VALUES($1,$2,$3) ON CONFLICT DO NOTHING")
	if err != nil {
		return 0, err
	}
	defer stmtOpt.Close()
	stmtText, err := tx.PrepareContext(ctx, "INSERT INTO text_associations(resource_id,descriptor_id,text) VALUES($1,$2,$3) ON CONFLICT (resource_id, descriptor_id) DO UPDATE SET text=EXCLUDED.text")
	if err != nil {
		return 0, err
	}
	defer stmtText.Close()

	count := 0
	for _, e := range c.Entries {
		var address string
		var lat, lng sql.NullFloat64
		if p, ok := c.Point(e.MapPoint); ok && e.MapPoint != "" {
			address = p.Address
			if lit, ok := p.Literal(); ok {
				lat = sql.NullFloat64{Float64: lit.Lat, Valid: true}
				lng = sql.NullFloat64{Float64: lit.Lng, Valid: true}
			}
		}
		name := e.Name
		if name == "" {
			name = e.ID
		}
		var rid int
		if err := stmtRes.QueryRowContext(ctx, name, address, lat, lng).Scan(&rid); err != nil {
			return 0, fmt.Errorf("insert resource %q: %w", e.ID, err)
		}
		for _, d := range descs[:3] {
			kind := kindOf(d.Name)
			for _, tag := range tagsOf(e, kind) {
				if _, err := stmtOpt.ExecContext(ctx, rid, descID[d.Name], d.index[tag]); err != nil {
					return 0, err
				}
			}
		}
		for k, v := range e.Details {
			if _, err := stmtText.ExecContext(ctx, rid, descID[k], v); err != nil {
				return 0, err
			}
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logger.L().Info("ingest_done", "count", count)
	return count, nil
}

func kindOf(name string) catalog.ToggleKind {
	for k, n := range kindDescriptor {
		if n == name {
			return k
		}
	}
	return ""
}

// EnsureInitialized：资源表为空时从目录文件导入一次
func EnsureInitialized(ctx context.Context, db *sql.DB, path string) error {
	var n int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(1) FROM resources").Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		logger.L().Debug("ingest_skip", "reason", "resources_present", "count", n)
		return nil
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}
	_, err = ImportCatalog(ctx, db, c)
	return err
}
