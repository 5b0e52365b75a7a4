package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// catalogFile 本地目录文件结构。
// 顶层也可以直接是模块数组（与 modules.json 相同）。
type catalogFile struct {
	Studienordnung string         `json:"studienordnung" yaml:"studienordnung"`
	Modules        []moduleJSON   `json:"modules"        yaml:"modules"`
	Categories     []categoryJSON `json:"categories"     yaml:"categories"`
	Focuses        []focusJSON    `json:"focuses"        yaml:"focuses"`
}

// LoadFile 读取本地目录文件，按扩展名选择 YAML（.yaml/.yml）或 JSON
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取目录文件失败: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return parseJSON(data)
	}
}

func parseJSON(data []byte) (*Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		modules, err := decodeModules(trimmed)
		if err != nil {
			return nil, err
		}
		return &Catalog{Modules: modules}, nil
	}

	var f catalogFile
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, fmt.Errorf("解析目录文件失败: %w", err)
	}
	return f.toCatalog(), nil
}

func parseYAML(data []byte) (*Catalog, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("解析目录文件失败: %w", err)
	}
	if len(root.Content) > 0 && root.Content[0].Kind == yaml.SequenceNode {
		var raw []moduleJSON
		if err := root.Content[0].Decode(&raw); err != nil {
			return nil, fmt.Errorf("解析模块数据失败: %w", err)
		}
		return &Catalog{Modules: modulesFromJSON(raw)}, nil
	}

	var f catalogFile
	if err := root.Decode(&f); err != nil {
		return nil, fmt.Errorf("解析目录文件失败: %w", err)
	}
	return f.toCatalog(), nil
}

func (f catalogFile) toCatalog() *Catalog {
	cat := &Catalog{Modules: modulesFromJSON(f.Modules)}
	for _, c := range f.Categories {
		cat.Categories = append(cat.Categories, c.toModel(f.Studienordnung))
	}
	for _, fc := range f.Focuses {
		cat.Focuses = append(cat.Focuses, fc.toModel(f.Studienordnung))
	}
	return cat
}

// FileSource 以本地文件作为目录来源，与 Fetcher 提供相同的 Fetch 方法
type FileSource struct {
	Path string
}

// Fetch 读取文件；文件未声明学习规章时类别与方向归入 studienordnung
func (s FileSource) Fetch(_ context.Context, studienordnung string) (*Catalog, error) {
	cat, err := LoadFile(s.Path)
	if err != nil {
		return nil, err
	}
	for i := range cat.Categories {
		if cat.Categories[i].Studienordnung == "" {
			cat.Categories[i].Studienordnung = studienordnung
		}
	}
	for i := range cat.Focuses {
		if cat.Focuses[i].Studienordnung == "" {
			cat.Focuses[i].Studienordnung = studienordnung
		}
	}
	return cat, nil
}
