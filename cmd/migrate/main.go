package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/masjidnetwork/backend/internal/config"
	"github.com/masjidnetwork/backend/internal/logging"
)

const (
	dropAllFile      = "000_drop_all.sql"
	consolidatedFile = "000_consolidated.sql"
)

var migrationDir string

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "差分マイグレーションを適用",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *migrator) error {
				return m.incremental()
			})
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&migrationDir, "dir", "", "migrations directory (default: ./migrations or ../migrations)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "全テーブルを DROP し、集約スキーマで再作成",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *migrator) error {
				if err := m.dropAll(); err != nil {
					return err
				}
				return m.consolidated()
			})
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "fresh",
		Short: "全テーブルを DROP し、全マイグレーションを順番に適用",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *migrator) error {
				if err := m.dropAll(); err != nil {
					return err
				}
				return m.incremental()
			})
		},
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type migrator struct {
	ctx    context.Context
	pool   *pgxpool.Pool
	dir    string
	logger *slog.Logger
}

func withMigrator(ctx context.Context, fn func(m *migrator) error) error {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel)

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	dir := migrationDir
	if dir == "" {
		dir = findMigrationDir()
	}
	return fn(&migrator{ctx: ctx, pool: pool, dir: dir, logger: logger})
}

func findMigrationDir() string {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}

// collectUpFiles は .up.sql ファイル名をソート済みで返す
func collectUpFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (m *migrator) ensureSchemaMigrations() error {
	_, err := m.pool.Exec(m.ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

func (m *migrator) execFile(name string) error {
	sql, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if _, err := m.pool.Exec(m.ctx, string(sql)); err != nil {
		return fmt.Errorf("apply %s: %w", name, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// (default) 差分マイグレーション
// ---------------------------------------------------------------------------
func (m *migrator) incremental() error {
	if err := m.ensureSchemaMigrations(); err != nil {
		return err
	}
	upFiles, err := collectUpFiles(m.dir)
	if err != nil {
		return err
	}

	applied := 0
	for i, filename := range upFiles {
		name := strings.TrimSuffix(filename, ".up.sql")

		var exists bool
		if err := m.pool.QueryRow(m.ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}

		if err := m.execFile(filename); err != nil {
			return err
		}
		if _, err := m.pool.Exec(m.ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}
		applied++
		m.logger.Info("migration completed", "number", i+1, "migration", name)
	}

	if applied == 0 {
		m.logger.Info("all migrations already applied")
	} else {
		m.logger.Info("migrations completed", "count", applied)
	}
	return nil
}

// ---------------------------------------------------------------------------
// 全テーブル DROP
// ---------------------------------------------------------------------------
func (m *migrator) dropAll() error {
	m.logger.Info("dropping all tables")
	if err := m.execFile(dropAllFile); err != nil {
		return err
	}
	m.logger.Info("all tables dropped")
	return nil
}

// ---------------------------------------------------------------------------
// 集約スキーマで再作成
// ---------------------------------------------------------------------------
func (m *migrator) consolidated() error {
	m.logger.Info("applying consolidated schema")
	if err := m.execFile(consolidatedFile); err != nil {
		return err
	}

	// 全マイグレーションを適用済みとして記録
	if err := m.ensureSchemaMigrations(); err != nil {
		return err
	}
	upFiles, err := collectUpFiles(m.dir)
	if err != nil {
		return err
	}
	for _, filename := range upFiles {
		name := strings.TrimSuffix(filename, ".up.sql")
		if _, err := m.pool.Exec(m.ctx,
			"INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT DO NOTHING", name); err != nil {
			return err
		}
	}
	m.logger.Info("consolidated schema applied", "migrations_marked", len(upFiles))
	return nil
}
