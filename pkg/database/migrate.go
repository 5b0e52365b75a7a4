package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// migrationsFS 内嵌的目录表迁移：modules、categories、focuses
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsTable 目录迁移版本记录表，与其他服务共用数据库时互不干扰
const MigrationsTable = "catalog_schema_migrations"

// catalogMigrations 以 iofs 读取内嵌的迁移文件
func catalogMigrations() (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("加载迁移文件失败: %w", err)
	}
	return src, nil
}

// RunMigrations 把目录表迁移到最新版本。
// 版本记录在 MigrationsTable；dirty 状态只告警，由维护者手动 force。
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	src, err := catalogMigrations()
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行目录表迁移失败: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("读取迁移版本失败: %w", err)
	}
	if dirty {
		logger.Warn("目录表迁移处于 dirty 状态",
			zap.Uint("version", version), zap.String("table", MigrationsTable))
		return nil
	}
	logger.Info("目录表迁移完成", zap.Uint("version", version), zap.String("table", MigrationsTable))
	return nil
}
