package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/progress"
	"github.com/abhisek/vault/internal/ui/theme"
	"github.com/abhisek/vault/internal/userlock"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect or reset a learner's saved progress",
}

var progressShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show a learner's progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := progress.NewService(s.ProgressRepo(), userlock.New()).Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		topic, level := "(none)", "(none)"
		if p.Topic != nil {
			topic = *p.Topic
		}
		fmt.Println(theme.Title.Render("Progress for " + args[0]))
		fmt.Println(theme.Field("Topic", topic))
		if p.CurrentLevel != nil {
			level = fmt.Sprintf("%s  %s", theme.Bar(*p.CurrentLevel, levels.Max), levels.Label(*p.CurrentLevel))
		}
		fmt.Println(theme.Field("Level", level))
		fmt.Println(theme.Field("Unlocked", theme.Check(p.DiagnosticPassed)))
		fmt.Println(theme.Field("Attempts", strconv.Itoa(p.DiagnosticAttempts)))
		fmt.Println(theme.Field("Hint stage", strconv.Itoa(p.HintStage)))
		if !p.UpdatedAt.IsZero() {
			fmt.Println(theme.Field("Updated", p.UpdatedAt.Local().Format("2006-01-02 15:04:05")))
		}
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset <user-id>",
	Short: "Delete a learner's progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := progress.NewService(s.ProgressRepo(), userlock.New()).Reset(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}
		fmt.Println(theme.Correct.Render("Progress reset for " + args[0]))
		return nil
	},
}

func init() {
	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressResetCmd)
}
