package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lost-university/backend/internal/model"
)

const (
	routeModules    = "/modules.json"
	routeCategories = "/categories.json"
	routeFocuses    = "/focuses.json"

	maxResponseBytes = 8 << 20
)

// Fetcher 从公开数据仓库下载目录。
// 模块列表与学习规章无关；类别与方向按学习规章分目录存放（<base><studienordnung>/categories.json）。
type Fetcher struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewFetcher 创建 Fetcher；client 为 nil 时使用 15 秒超时的默认客户端
func NewFetcher(baseURL string, client *http.Client, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// Fetch 并发下载模块、类别与方向
func (f *Fetcher) Fetch(ctx context.Context, studienordnung string) (*Catalog, error) {
	var (
		modules    []moduleJSON
		categories []categoryJSON
		focuses    []focusJSON
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.getJSON(gctx, f.baseURL+routeModules, &modules)
	})
	g.Go(func() error {
		return f.getJSON(gctx, f.baseURL+studienordnung+routeCategories, &categories)
	})
	g.Go(func() error {
		return f.getJSON(gctx, f.baseURL+studienordnung+routeFocuses, &focuses)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cat := &Catalog{
		Modules:    modulesFromJSON(modules),
		Categories: make([]model.Category, 0, len(categories)),
		Focuses:    make([]model.Focus, 0, len(focuses)),
	}
	for _, c := range categories {
		cat.Categories = append(cat.Categories, c.toModel(studienordnung))
	}
	for _, fc := range focuses {
		cat.Focuses = append(cat.Focuses, fc.toModel(studienordnung))
	}

	f.logger.Info("目录下载完成",
		zap.String("studienordnung", studienordnung),
		zap.Int("modules", len(cat.Modules)),
		zap.Int("categories", len(cat.Categories)),
		zap.Int("focuses", len(cat.Focuses)),
	)
	return cat, nil
}

func (f *Fetcher) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("下载 %s 失败: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("下载 %s 失败: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("读取 %s 失败: %w", url, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("解析 %s 失败: %w", url, err)
	}
	return nil
}
