package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lost-university/backend/config"
	"lost-university/backend/internal/service"
	"lost-university/backend/pkg/jwt"
)

// newTokenCommand 签发维护者 Token；密钥与签发者读取服务端配置
func newTokenCommand(opts *options) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发目录同步接口使用的维护者 Token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Auth.AccessTokenTTL
			}

			auth := service.NewAuthService(jwt.NewManager(&cfg.Auth), service.NewRevocation(nil), opts.logger)
			token, err := auth.Issue(subject, role, ttl)
			if err != nil {
				return fmt.Errorf("签发 Token 失败: %w", err)
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"token":      token,
					"subject":    subject,
					"role":       role,
					"expires_in": int(ttl.Seconds()),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "维护者标识")
	cmd.Flags().StringVar(&role, "role", jwt.RoleAdmin, "角色")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "有效期（默认取 auth.access_token_ttl）")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
