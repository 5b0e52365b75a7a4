package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lost-university/backend/internal/dto"
)

// ErrHardFindings --strict 模式下存在严重问题
var ErrHardFindings = errors.New("计划存在严重问题")

// ── decode ──

func newDecodeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <text>",
		Short: "解析计划文本并输出规范形式",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.planService()
			if err != nil {
				return err
			}
			resp, err := svc.Decode(cmd.Context(), "", args[0])
			if err != nil {
				return fmt.Errorf("解析失败: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, resp)
			}
			st := newStyles()
			st.renderPlan(out, resp)
			if resp.ValidationEnabled {
				st.renderFindings(out, resp.Findings)
			}
			return nil
		},
	}
}

// ── validate ──

func newValidateCommand(opts *options) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <text>",
		Short: "校验计划（忽略计划中的校验开关）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.planService()
			if err != nil {
				return err
			}
			resp, err := svc.Validate(cmd.Context(), "", args[0])
			if err != nil {
				return fmt.Errorf("校验失败: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				if err := writeJSON(out, resp); err != nil {
					return err
				}
			} else {
				st := newStyles()
				st.renderFindings(out, resp.Findings)
				fmt.Fprintln(out, st.Muted.Render(fmt.Sprintf("严重 %d，提示 %d", resp.HardCount, resp.SoftCount)))
			}

			if strict && resp.HardCount > 0 {
				return ErrHardFindings
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "存在严重问题时以非零状态退出")
	return cmd
}

// ── encode ──

// planFile 计划文件格式
//
//	start_semester: HS23
//	validation: true
//	semesters:
//	  - [AD1, DBS]
//	  - []
//	  - [SE1]
type planFile struct {
	StartSemester string     `yaml:"start_semester"`
	Validation    *bool      `yaml:"validation"`
	Semesters     [][]string `yaml:"semesters"`
}

func (f planFile) toPayload() *dto.PlanPayload {
	payload := &dto.PlanPayload{
		StartSemester:     f.StartSemester,
		ValidationEnabled: f.Validation,
		Semesters:         make([]dto.SemesterPayload, len(f.Semesters)),
	}
	for i, ids := range f.Semesters {
		payload.Semesters[i] = dto.SemesterPayload{ModuleIDs: ids}
	}
	return payload
}

func newEncodeCommand(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "从 YAML 计划文件生成规范文本",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pf, err := readPlanFile(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			svc, err := opts.planService()
			if err != nil {
				return err
			}
			resp, err := svc.Encode(cmd.Context(), "", pf.toPayload())
			if err != nil {
				return fmt.Errorf("编码失败: %w", err)
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "计划文件，- 表示标准输入")
	return cmd
}

func readPlanFile(stdin io.Reader, path string) (*planFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("读取计划文件失败: %w", err)
	}

	var pf planFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("解析计划文件失败: %w", err)
	}
	return &pf, nil
}
