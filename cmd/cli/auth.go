package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/threadline/internal/domain"
	"github.com/aryan0dhankhar/threadline/internal/handler"
	"github.com/aryan0dhankhar/threadline/internal/service"
)

func newAuthCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Register, log in and manage the stored session",
	}
	cmd.AddCommand(newRegisterCmd(opts), newLoginCmd(opts), newLogoutCmd(opts), newWhoAmICmd(opts))
	return cmd
}

func newRegisterCmd(opts *clientOptions) *cobra.Command {
	var req handler.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var res handler.RegisterResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/auth/register", false, req, &res); err != nil {
				return err
			}
			cmd.Printf("✓ %s: %s <%s>\n", res.Message, res.User.Username, res.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "5-20 letters or digits")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "8-20 characters with upper, lower, digit and symbol")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(opts *clientOptions) *cobra.Command {
	var req handler.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := opts.client()
			var res service.LoginResult
			if err := client.do(cmd.Context(), http.MethodPost, "/auth/login", false, req, &res); err != nil {
				return err
			}
			if err := client.saveToken(res.AccessToken); err != nil {
				return err
			}
			cmd.Printf("✓ Logged in as %s (token expires %s)\n", res.Username, res.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Identifier, "identifier", "", "username or email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	cmd.Flags().BoolVar(&req.RememberMe, "remember-me", false, "request a 30 day token")
	_ = cmd.MarkFlagRequired("identifier")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored token and forget it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := opts.client()
			var res handler.MessageResponse
			if err := client.do(cmd.Context(), http.MethodPost, "/auth/logout", true, nil, &res); err != nil {
				return err
			}
			if err := client.forgetToken(); err != nil {
				return err
			}
			cmd.Printf("✓ %s\n", res.Message)
			return nil
		},
	}
}

func newWhoAmICmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var me domain.Profile
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/user/me", true, nil, &me); err != nil {
				return err
			}
			cmd.Printf("%s <%s>\n", me.Username, me.Email)
			return nil
		},
	}
}
