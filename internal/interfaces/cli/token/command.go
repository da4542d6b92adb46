// Package token mints bearer tokens for the admin consistency endpoints.
package token

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/devicehub/devicehub/internal/infrastructure/auth"
	"github.com/devicehub/devicehub/internal/interfaces/cli/bootstrap"
)

var (
	env        string
	configPath string
	subject    string
	role       string
	ttl        time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed JWT for the admin API",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVar(&subject, "subject", "ops", "Token subject")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "Token role")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: auth.jwt.access_exp_minutes)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Load(env, configPath, false)
	if err != nil {
		return err
	}

	svc := auth.NewJWTService(rt.Config.Auth.JWT.Secret, rt.Config.Auth.JWT.AccessExpMinutes)
	return mint(cmd.OutOrStdout(), svc, subject, role, ttl)
}

func mint(w io.Writer, svc *auth.JWTService, subject, role string, ttl time.Duration) error {
	if subject == "" {
		return fmt.Errorf("subject is required")
	}
	signed, expiresAt, err := svc.Generate(subject, role, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, signed)
	fmt.Fprintf(w, "# expires %s\n", expiresAt.UTC().Format(time.RFC3339))
	return nil
}
