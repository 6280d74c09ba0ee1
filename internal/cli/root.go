package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"imagestudio/internal/config"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

type ui struct {
	title func(a ...any) string
	ok    func(a ...any) string
	info  func(a ...any) string
	warn  func(a ...any) string
	err   func(a ...any) string
	dim   func(a ...any) string
}

func newUI() *ui {
	return &ui{
		title: color.New(color.FgHiCyan, color.Bold).SprintFunc(),
		ok:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		info:  color.New(color.FgCyan).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		err:   color.New(color.FgRed, color.Bold).SprintFunc(),
		dim:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

// app is the state shared by all subcommands.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	ui         *ui
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v, ui: newUI()}

	root := &cobra.Command{
		Use:   "imagestudio",
		Short: "Multi-model image generation",
		Long:  "imagestudio generates images from text prompts on Replicate-hosted models.",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a toml config file (default ./config.toml)")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(a.v, a.configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		a.cfg = cfg

		zerolog.SetGlobalLevel(cfg.LogLevel())
		if isTerminal(os.Stderr) {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		}

		return nil
	}

	root.AddCommand(serveCmd(a))
	root.AddCommand(generateCmd(a))
	root.AddCommand(modelsCmd(a))
	root.AddCommand(historyCmd(a))

	return root
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(viper.GetViper())
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, newUI().err("[ERROR]"), err.Error())
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
