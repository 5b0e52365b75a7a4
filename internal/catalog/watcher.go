package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 200 * time.Millisecond

// Watcher 监听本地目录文件，变更后重新加载并替换 Store 中的快照。
// 编辑器保存文件时通常是先删除再创建，因此监听所在目录而不是文件本身。
type Watcher struct {
	path     string
	store    *Store
	onReload func(*Catalog)
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
}

// NewWatcher 创建文件监听器；onReload 可为 nil
func NewWatcher(path string, store *Store, onReload func(*Catalog), logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监听失败: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("监听目录失败: %w", err)
	}
	return &Watcher{
		path:     abs,
		store:    store,
		onReload: onReload,
		logger:   logger,
		watcher:  fw,
	}, nil
}

// Reload 立即从文件加载一次
func (w *Watcher) Reload() error {
	cat, err := LoadFile(w.path)
	if err != nil {
		return err
	}
	w.store.Replace(NewSnapshot(cat.Modules))
	if w.onReload != nil {
		w.onReload(cat)
	}
	w.logger.Info("目录文件已加载", zap.String("path", w.path), zap.Int("modules", len(cat.Modules)))
	return nil
}

// Run 阻塞直到 ctx 取消
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.Reload(); err != nil {
				// 保留旧快照
				w.logger.Warn("目录文件重新加载失败", zap.String("path", w.path), zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("目录文件监听异常", zap.Error(err))
		}
	}
}
