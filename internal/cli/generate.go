package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"imagestudio/internal/adapters/file"
	"imagestudio/internal/adapters/identity"
	"imagestudio/internal/core/domain"
	"imagestudio/internal/core/service"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

func generateCmd(a *app) *cobra.Command {
	var (
		model   string
		saveDir string
		user    string
	)

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate an image from a prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Server.RequestTimeout)
			defer cancel()

			gen, err := newGenerator(a.cfg)
			if err != nil {
				return err
			}

			history, closeStore, err := newRedisStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			if user != "" {
				if history == nil {
					return errNoHistoryStore
				}
				ctx = identity.NewContext(ctx, user)
			}

			orchestrator := service.NewOrchestrator(gen, history, identity.ContextProvider{}, time.Now)
			prompt := strings.Join(args, " ")

			var spin *spinner.Spinner
			if isTerminal(os.Stdout) {
				spin = spinner.New(spinner.CharSets[14], 120*time.Millisecond)
				spin.Suffix = fmt.Sprintf(" Generating with %s...", model)
				spin.Start()
			}
			result := orchestrator.Submit(ctx, prompt, domain.ModelID(model))
			if spin != nil {
				spin.Stop()
			}

			if !result.OK() {
				return errors.New(result.Message())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", a.ui.ok("[OK]"), result.ImageURL)

			if result.PersistErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", a.ui.warn("[WARN]"), result.PersistErr.Error())
			}

			if saveDir != "" {
				p, err := file.Download(ctx, saveDir, result.ImageURL)
				if err != nil {
					return fmt.Errorf("image generated but could not be saved: %w", err)
				}
				fmt.Fprintf(out, "%s saved to %s\n", a.ui.info("[FILE]"), p)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", string(domain.DefaultModel), "Model ID (see `imagestudio models`)")
	cmd.Flags().StringVar(&saveDir, "save-dir", "", "Download the generated image into this directory")
	cmd.Flags().StringVar(&user, "user", "", "Identity to record the generation under (needs redis)")

	return cmd
}
