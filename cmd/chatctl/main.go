package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/client"
	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/config"
	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/tunnel"
)

func main() {
	_ = godotenv.Load()
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var (
		baseURL   string
		token     string
		useTunnel bool
		logLevel  string
	)

	root := &cobra.Command{
		Use:           "chatctl",
		Short:         "Client utilities for a running chatd server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&baseURL, "base-url", envStr("CHATCTL_BASE_URL", "http://127.0.0.1:8000"), "Base URL of the chatd server")
	root.PersistentFlags().StringVar(&token, "token", "", "Optional bearer token sent with every request")
	root.PersistentFlags().StringVar(&logLevel, "log-level", envStr("CHATCTL_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")

	chatCmd := &cobra.Command{
		Use:     "chat",
		Short:   "Send the sample chat completion and print the reply",
		Example: "  chatctl chat\n  chatctl chat --tunnel",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(logLevel)
			ctx, cancel := signalContext()
			defer cancel()

			target := baseURL
			if useTunnel {
				fwd, err := tunnel.OpenForward(ctx, config.NgrokAuthtoken(), baseURL, log)
				if err != nil {
					return fmt.Errorf("tunnel: %w", err)
				}
				defer fwd.Close()
				target = fwd.URL()
				fmt.Printf("[ngrok] Public URL: %s\n", target)
			}

			c := client.New(target, token, log)
			reply, err := c.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("[chat] %s\n", reply)
			if useTunnel {
				fmt.Println("[done] Tunnel remains active. Ctrl+C to close.")
				<-ctx.Done()
			}
			return nil
		},
	}
	chatCmd.Flags().BoolVar(&useTunnel, "tunnel", false, "Expose the server through ngrok and exercise the public URL")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List the models reported by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(logLevel)
			ctx, cancel := signalContext()
			defer cancel()

			c := client.New(baseURL, token, log)
			list, err := c.ListModels(ctx)
			if err != nil {
				return err
			}
			for _, m := range list.Data {
				fmt.Println(m.ID)
			}
			return nil
		},
	}

	root.AddCommand(chatCmd, modelsCmd)
	return root
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
