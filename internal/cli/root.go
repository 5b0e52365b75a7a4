// Package cli 实现 planctl 命令行工具：离线解析、编码、校验计划文本，
// 查询学期，以及为目录同步接口签发维护者 Token。
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lost-university/backend/internal/catalog"
	"lost-university/backend/internal/service"
	applogger "lost-university/backend/pkg/logger"
	"lost-university/backend/pkg/semester"
)

// options 全局参数
type options struct {
	catalogPath    string
	now            string
	studienordnung string
	configPath     string
	jsonOutput     bool
	verbose        bool

	logger *zap.Logger
}

// NewRootCommand 构建 planctl 根命令
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "planctl",
		Short: "学习计划命令行工具",
		Long: `planctl 在本地处理学习计划文本，不需要启动服务。

示例:
  planctl decode '#/plan/AD1_DBS-SE1?startSemester=HS23' --catalog catalog.yaml
  planctl validate '#/plan/AD1-AD1' --catalog catalog.yaml --now FS25
  planctl encode --file plan.yaml
  planctl semester next FS --start HS23
  planctl token --subject alice --ttl 24h`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			opts.logger = applogger.NewCLILogger(opts.verbose)
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.catalogPath, "catalog", "", "目录文件（YAML/JSON）")
	flags.StringVar(&opts.now, "now", "", "当前学期（如 FS25），默认取系统时间")
	flags.StringVar(&opts.studienordnung, "studienordnung", semester.Studienordnung23, "未设置入学学期时使用的学习规章")
	flags.StringVar(&opts.configPath, "config", "", "配置文件路径（token 命令使用）")
	flags.BoolVar(&opts.jsonOutput, "json", false, "以 JSON 输出")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(
		newDecodeCommand(opts),
		newValidateCommand(opts),
		newEncodeCommand(opts),
		newSemesterCommand(opts),
		newTokenCommand(opts),
	)
	return root
}

// Execute 运行 planctl
func Execute() error {
	return NewRootCommand().Execute()
}

// clock --now 指定的学期换算为该学期内的一个时间点
func (o *options) clock() (service.Clock, error) {
	if o.now == "" {
		return time.Now, nil
	}
	info, ok := semester.Parse(o.now)
	if !ok {
		return nil, fmt.Errorf("--now 格式无效: %q（应为 FS25 或 HS25）", o.now)
	}
	month := time.October
	if info.IsSpringTerm {
		month = time.March
	}
	t := time.Date(info.Year, month, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }, nil
}

// loadStore 读取目录文件；未指定时返回空目录
func (o *options) loadStore() (*catalog.Store, error) {
	store := catalog.NewStore()
	if o.catalogPath == "" {
		o.logger.Warn("未指定 --catalog，所有模块都将视为未知")
		return store, nil
	}
	cat, err := catalog.LoadFile(o.catalogPath)
	if err != nil {
		return nil, err
	}
	store.Replace(catalog.NewSnapshot(cat.Modules))
	o.logger.Debug("目录已加载", zap.String("path", o.catalogPath), zap.Int("modules", len(cat.Modules)))
	return store, nil
}

// planService 离线模式：不使用会话缓存与指标
func (o *options) planService() (service.PlanService, error) {
	store, err := o.loadStore()
	if err != nil {
		return nil, err
	}
	clock, err := o.clock()
	if err != nil {
		return nil, err
	}
	cache := service.NewSessionCache(nil, time.Hour, 1)
	return service.NewPlanService(store, cache, o.studienordnung, clock, nil, o.logger), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
