package errors

import "errors"

// ErrCatalogUnavailable 目录尚未加载（首次同步未完成或失败）
var ErrCatalogUnavailable = errors.New("模块目录尚未加载，请稍后重试")

// ErrUpstream 外部目录数据源不可用
var ErrUpstream = errors.New("目录数据源不可用")
