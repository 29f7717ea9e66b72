package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/careloom/reminisce/internal/config"
	"github.com/careloom/reminisce/internal/outline"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate <memory-id>",
		Short: "Generate and save a therapy outline for a memory",
		Args:  cobra.ExactArgs(1),
		Run:   runGenerate,
	}

	cmd.Flags().String("model", "", "Override the configured model")

	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	modelFlag, _ := cmd.Flags().GetString("model")

	cfg, err := config.Load()
	if err != nil {
		exitErr("load config", err)
	}
	if modelFlag != "" {
		cfg.LLM.Model = modelFlag
	}

	apiKey := cfg.APIKey()
	if apiKey == "" {
		exitErr("generate", fmt.Errorf("API key not set (export %s or set llm.api_key_env in config)", cfg.LLM.APIKeyEnv))
	}

	llm, err := openai.New(
		openai.WithModel(cfg.LLM.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		exitErr("init llm", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	svc := outline.NewService(s, s, s, llm, outline.Options{
		Temperature:     cfg.LLM.Temperature,
		Timeout:         time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		MaxPromptTokens: cfg.LLM.MaxPromptTokens,
	})

	id, err := svc.GenerateAndSave(cmd.Context(), args[0])
	if err != nil {
		exitErr("generate", err)
	}

	b, _ := json.Marshal(map[string]string{"outline_id": id})
	fmt.Println(string(b))
}
