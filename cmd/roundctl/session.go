package main

import (
	"fmt"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create and inspect sessions",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Start a session for a child",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("child")
		childID, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid --child: %w", err)
		}
		agent, _ := cmd.Flags().GetBool("agent")

		ss, err := newClient().CreateSession(cmd.Context(), childID, agent)
		if err != nil {
			return err
		}
		return printJSON(cmd, ss)
	},
}

var sessionGetCmd = &cobra.Command{
	Use:   "get <session-id>",
	Short: "Show a session with its rounds and stories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id: %w", err)
		}
		detail, err := newClient().GetSession(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, detail)
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the story and script catalog",
}

var catalogStoriesCmd = &cobra.Command{
	Use:   "stories",
	Short: "List catalog stories",
	RunE: func(cmd *cobra.Command, args []string) error {
		stories, err := newClient().Stories(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, stories)
	},
}

var catalogScriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "List regulation scripts for an emotion and intensity",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("emotion")
		emotion, ok := model.ParseEmotion(raw)
		if !ok {
			return fmt.Errorf("unknown emotion %q", raw)
		}
		intensity, _ := cmd.Flags().GetInt("intensity")
		if !model.ValidIntensity(intensity) {
			return fmt.Errorf("intensity must be between %d and %d", model.MinIntensity, model.MaxIntensity)
		}
		scripts, err := newClient().Scripts(cmd.Context(), emotion, intensity)
		if err != nil {
			return err
		}
		return printJSON(cmd, scripts)
	},
}

func init() {
	sessionCreateCmd.Flags().String("child", "", "child id")
	sessionCreateCmd.Flags().Bool("agent", false, "generate stories and scripts with the language model")
	_ = sessionCreateCmd.MarkFlagRequired("child")
	sessionCmd.AddCommand(sessionCreateCmd, sessionGetCmd)

	catalogScriptsCmd.Flags().String("emotion", "", "emotion name")
	catalogScriptsCmd.Flags().Int("intensity", 3, "intensity 1-5")
	_ = catalogScriptsCmd.MarkFlagRequired("emotion")
	catalogCmd.AddCommand(catalogStoriesCmd, catalogScriptsCmd)
}
