package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"docchat/internal/app"
	"docchat/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var configPath string

func loadApplication() (*app.Application, error) {
	// A .env next to the binary is a convenience for development setups;
	// missing files are fine.
	_ = godotenv.Load()

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return app.NewApplication(cfg)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

func main() {
	root := &cobra.Command{
		Use:     "docchat",
		Short:   "Chat with your documents from the terminal",
		Long:    "docchat is a terminal client for a document chat backend.\n\nRun without arguments for the interactive UI, or use the subcommands for scripted session management.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			defer application.Shutdown()

			p := tea.NewProgram(tui.New(application), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	loginCmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in and persist the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			defer application.Shutdown()

			password, err := readSecret("Password: ")
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()
			if err := application.Auth.Login(ctx, args[0], password); err != nil {
				return err
			}
			fmt.Println("Signed in. Run docchat to start chatting.")
			return nil
		},
	}
	root.AddCommand(loginCmd)

	registerCmd := &cobra.Command{
		Use:   "register [username] [email]",
		Short: "Create an account and persist the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			defer application.Shutdown()

			password, err := readSecret("Password: ")
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()
			if err := application.Auth.Register(ctx, args[0], args[1], password); err != nil {
				return err
			}
			fmt.Println("Account created and signed in.")
			return nil
		},
	}
	root.AddCommand(registerCmd)

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			defer application.Shutdown()

			application.Auth.Logout()
			fmt.Println("Signed out.")
			return nil
		},
	}
	root.AddCommand(logoutCmd)

	forgotCmd := &cobra.Command{
		Use:   "forgot-password [email]",
		Short: "Request a password reset code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			defer application.Shutdown()

			ctx, cancel := signalContext()
			defer cancel()
			if err := application.Auth.ForgotPassword(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Reset code sent. Confirm it with: docchat reset-password", args[0])
			return nil
		},
	}
	root.AddCommand(forgotCmd)

	resetCmd := &cobra.Command{
		Use:   "reset-password [email] [code]",
		Short: "Confirm a password reset code and set a new password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			defer application.Shutdown()

			password, err := readSecret("New password: ")
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()
			if err := application.Auth.ConfirmForgotPassword(ctx, args[0], args[1], password); err != nil {
				return err
			}
			fmt.Println("Password updated.")
			return nil
		},
	}
	root.AddCommand(resetCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
