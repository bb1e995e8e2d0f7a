package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/emotionlab/server/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "roundctl",
	Short: "Drive Emotion Lab practice sessions from the terminal",
	Long: `roundctl talks to an Emotion Lab server.

It can:
  - Create and inspect practice sessions
  - Browse the story and regulation script catalog
  - Play a session round by round, interactively or with --auto

The server address comes from --server or EMOTIONLAB_SERVER.
`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8029", "server base url")
	rootCmd.PersistentFlags().Bool("verbose", false, "log requests")
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.SetEnvPrefix("emotionlab")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(versionCmd, sessionCmd, catalogCmd, playCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("roundctl version %s\n", version)
	},
}

func newClient() *client.Client {
	log := zap.NewNop()
	if viper.GetBool("verbose") {
		if l, err := zap.NewDevelopment(); err == nil {
			log = l
		}
	}
	return client.New(viper.GetString("server"), log)
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
