package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lost-university/backend/internal/dto"
	"lost-university/backend/internal/service"
)

func newSemesterCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "semester",
		Short: "学期查询",
	}

	semesterService := func() (service.SemesterService, error) {
		clock, err := opts.clock()
		if err != nil {
			return nil, err
		}
		return service.NewSemesterService(clock, opts.studienordnung, opts.logger), nil
	}

	now := &cobra.Command{
		Use:   "now",
		Short: "当前学期",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := semesterService()
			if err != nil {
				return err
			}
			cur := svc.Current()
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), cur)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cur.Semester)
			return nil
		},
	}

	var start string
	next := &cobra.Command{
		Use:   "next <FS|HS|FS/HS>",
		Short: "从入学学期起，该开课学期模块最早可修的学期",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := semesterService()
			if err != nil {
				return err
			}
			if start == "" {
				start = svc.Current().Semester
			}
			resp, err := svc.NextPossible(&dto.NextPossibleRequest{Term: args[0], Start: start})
			if err != nil {
				return fmt.Errorf("%w: term=%q start=%q", err, args[0], start)
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Semester)
			return nil
		},
	}
	next.Flags().StringVar(&start, "start", "", "起始学期（默认当前学期）")

	cmd.AddCommand(now, next)
	return cmd
}
