// 包 store: 提供与 PostgreSQL 的数据访问层，将资源与描述符组装为目录
package store

import (
	"context"
	"database/sql"
	"fmt"
	"resource-map/internal/catalog"
	"resource-map/internal/logger"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// 描述符名称到选择集合的映射；其余选项描述符只作为详情字段
var tagDescriptors = map[string]catalog.ToggleKind{
	"categories":   catalog.KindCategory,
	"features":     catalog.KindFeature,
	"requirements": catalog.KindRequirement,
}

// Store: 数据库访问入口，持有连接池
type Store struct {
	db   *sql.DB
	city string
}

func AttachDB(db *sql.DB, city string) *Store { return &Store{db: db, city: city} }

func (s *Store) DB() *sql.DB { return s.db }

// 文档注释：从数据库组装目录
// 背景：名为 categories/features/requirements 的选项描述符提供标签与控件，其余选项及文本描述符进入条目详情。
// 约束：条目与点位 ID 均为资源主键文本；地址与坐标都为空的资源没有点位；标签统一归一化。
func (s *Store) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	c := &catalog.Catalog{City: s.city}
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, address, latitude, longitude FROM resources ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()
	index := map[int]int{}
	for rows.Next() {
		var id int
		var name, address string
		var lat, lng sql.NullFloat64
		if err := rows.Scan(&id, &name, &address, &lat, &lng); err != nil {
			return nil, err
		}
		key := strconv.Itoa(id)
		e := catalog.Entry{ID: key, Name: name, Details: map[string]string{}}
		if address != "" || (lat.Valid && lng.Valid) {
			p := catalog.MapPoint{ID: key, Address: address, Popup: "**" + name + "**\n\n" + address}
			if lat.Valid && lng.Valid {
				la, ln := lat.Float64, lng.Float64
				p.Lat, p.Lng = &la, &ln
			}
			c.Points = append(c.Points, p)
			e.MapPoint = key
		}
		index[id] = len(c.Entries)
		c.Entries = append(c.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orows, err := s.db.QueryContext(ctx, `SELECT oa.resource_id, d.name, d.vals, oa.option
        FROM option_associations oa JOIN descriptors d ON d.id = oa.descriptor_id
        ORDER BY oa.resource_id, d.name, oa.option`)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer orows.Close()
	for orows.Next() {
		var rid, opt int
		var name string
		var vals []string
		if err := orows.Scan(&rid, &name, pq.Array(&vals), &opt); err != nil {
			return nil, err
		}
		i, ok := index[rid]
		if !ok || opt < 0 || opt >= len(vals) {
			continue
		}
		e := &c.Entries[i]
		tag := catalog.NormalizeTag(vals[opt])
		switch tagDescriptors[catalog.NormalizeTag(name)] {
		case catalog.KindCategory:
			e.Categories = append(e.Categories, tag)
		case catalog.KindFeature:
			e.Features = append(e.Features, tag)
		case catalog.KindRequirement:
			e.Requirements = append(e.Requirements, tag)
		default:
			e.Details[name] = vals[opt]
		}
	}
	if err := orows.Err(); err != nil {
		return nil, err
	}

	trows, err := s.db.QueryContext(ctx, `SELECT ta.resource_id, d.name, ta.text
        FROM text_associations ta JOIN descriptors d ON d.id = ta.descriptor_id`)
	if err != nil {
		return nil, fmt.Errorf("query texts: %w", err)
	}
	defer trows.Close()
	for trows.Next() {
		var rid int
		var name, text string
		if err := trows.Scan(&rid, &name, &text); err != nil {
			return nil, err
		}
		if i, ok := index[rid]; ok {
			c.Entries[i].Details[name] = text
		}
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}

	toggles, err := s.toggles(ctx)
	if err != nil {
		return nil, err
	}
	c.Toggles = toggles
	logger.L().Debug("store_catalog_loaded", "entries", len(c.Entries), "points", len(c.Points), "toggles", len(c.Toggles))
	return c, c.Validate()
}

// toggles：由标签描述符的取值生成控件；分类与要求使用复选框样式，特性使用按钮样式
func (s *Store) toggles(ctx context.Context) ([]catalog.Toggle, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, vals FROM descriptors ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query descriptors: %w", err)
	}
	defer rows.Close()
	var out []catalog.Toggle
	seen := map[string]bool{}
	for rows.Next() {
		var name string
		var vals []string
		if err := rows.Scan(&name, pq.Array(&vals)); err != nil {
			return nil, err
		}
		kind, ok := tagDescriptors[catalog.NormalizeTag(name)]
		if !ok {
			continue
		}
		style := catalog.StyleCheckbox
		if kind == catalog.KindFeature {
			style = catalog.StyleButton
		}
		for _, v := range vals {
			id := catalog.NormalizeTag(v)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, catalog.Toggle{ID: id, Kind: kind, Style: style, Label: v, Icon: id})
		}
	}
	return out, rows.Err()
}

// 文档注释：读取单个资源的全部描述字段
// 约束：资源不存在或 ID 非法时返回空映射，不视为错误。
func (s *Store) Associations(ctx context.Context, id string) (map[string]string, error) {
	out := map[string]string{}
	rid, err := strconv.Atoi(id)
	if err != nil {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT d.name, ta.text FROM text_associations ta JOIN descriptors d ON d.id = ta.descriptor_id WHERE ta.resource_id=$1`, rid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	orows, err := s.db.QueryContext(ctx, `SELECT d.name, d.vals, oa.option FROM option_associations oa JOIN descriptors d ON d.id = oa.descriptor_id WHERE oa.resource_id=$1 ORDER BY oa.option`, rid)
	if err != nil {
		return nil, err
	}
	defer orows.Close()
	multi := map[string][]string{}
	for orows.Next() {
		var k string
		var vals []string
		var opt int
		if err := orows.Scan(&k, pq.Array(&vals), &opt); err != nil {
			return nil, err
		}
		if opt >= 0 && opt < len(vals) {
			multi[k] = append(multi[k], vals[opt])
		}
	}
	for k, vs := range multi {
		sort.Strings(vs)
		out[k] = strings.Join(vs, ", ")
	}
	return out, orows.Err()
}

// SaveCoordinates：回写解析得到的坐标，后续加载即为字面坐标
func (s *Store) SaveCoordinates(ctx context.Context, id string, c catalog.Coordinates) error {
	rid, err := strconv.Atoi(id)
	if err != nil {
		return fmt.Errorf("bad resource id %q: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx, "UPDATE resources SET latitude=$1, longitude=$2 WHERE id=$3", c.Lat, c.Lng, rid)
	return err
}
