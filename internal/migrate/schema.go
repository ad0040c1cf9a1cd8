package migrate

import (
	"database/sql"
	"resource-map/internal/logger"
)

// 背景：首次运行自动创建资源、描述符与关联表，保障后续导入与查询
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS resources (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            address TEXT NOT NULL DEFAULT '',
            latitude DOUBLE PRECISION,
            longitude DOUBLE PRECISION
        )`,
		`CREATE INDEX IF NOT EXISTS idx_resources_name ON resources(name)`,
		`CREATE TABLE IF NOT EXISTS descriptors (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            vals TEXT[] NOT NULL DEFAULT '{}',
            is_searchable BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE INDEX IF NOT EXISTS idx_descriptors_name ON descriptors(name)`,
		`CREATE TABLE IF NOT EXISTS option_associations (
            resource_id INT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
            descriptor_id INT NOT NULL REFERENCES descriptors(id) ON DELETE CASCADE,
            option INT NOT NULL,
            PRIMARY KEY (resource_id, descriptor_id, option)
        )`,
		`CREATE TABLE IF NOT EXISTS text_associations (
            resource_id INT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
            descriptor_id INT NOT NULL REFERENCES descriptors(id) ON DELETE CASCADE,
            text TEXT NOT NULL DEFAULT '',
            PRIMARY KEY (resource_id, descriptor_id)
        )`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
