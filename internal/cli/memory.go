package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careloom/reminisce/internal/store"
)

func init() {
	memoryCmd := &cobra.Command{
		Use:   "memory",
		Short: "Manage patient memories",
	}

	putCmd := &cobra.Command{
		Use:   "put [description]",
		Short: "Store a memory",
		Long:  "Store a memory. Description can be a positional arg or piped via stdin.",
		Run:   runMemoryPut,
	}
	putCmd.Flags().StringP("patient", "p", "", "Patient id (required)")
	putCmd.Flags().String("title", "", "Memory title (required)")
	putCmd.Flags().StringP("media", "m", "", "Comma-separated media URLs")
	putCmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	putCmd.Flags().String("id", "", "Explicit memory id (default: generated)")
	putCmd.MarkFlagRequired("patient")
	putCmd.MarkFlagRequired("title")

	getCmd := &cobra.Command{
		Use:   "get <memory-id>",
		Short: "Retrieve a memory",
		Args:  cobra.ExactArgs(1),
		Run:   runMemoryGet,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List memories, newest first",
		Run:   runMemoryList,
	}
	listCmd.Flags().StringP("patient", "p", "", "Filter by patient id")
	listCmd.Flags().StringP("tags", "t", "", "Comma-separated tag filter")
	listCmd.Flags().IntP("limit", "l", 20, "Maximum results")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search memories by title, description or tags",
		Args:  cobra.ExactArgs(1),
		Run:   runMemorySearch,
	}
	searchCmd.Flags().StringP("patient", "p", "", "Filter by patient id")
	searchCmd.Flags().IntP("limit", "l", 20, "Maximum results")

	memoryCmd.AddCommand(putCmd, getCmd, listCmd, searchCmd)
	RootCmd.AddCommand(memoryCmd)
}

func splitCSV(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func runMemoryPut(cmd *cobra.Command, args []string) {
	patientID, _ := cmd.Flags().GetString("patient")
	title, _ := cmd.Flags().GetString("title")
	mediaStr, _ := cmd.Flags().GetString("media")
	tagsStr, _ := cmd.Flags().GetString("tags")
	id, _ := cmd.Flags().GetString("id")

	// Get description: positional arg first, then check stdin
	var description string
	if len(args) > 0 {
		description = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			description = string(b)
		}
	}

	if strings.TrimSpace(description) == "" {
		exitErr("memory put", fmt.Errorf("description is required (positional arg or stdin)"))
	}

	var media, tags []string
	if mediaStr != "" {
		media = splitCSV(mediaStr)
	}
	if tagsStr != "" {
		tags = splitCSV(tagsStr)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	mem, err := s.PutMemory(cmd.Context(), store.PutMemoryParams{
		ID:          id,
		PatientID:   patientID,
		Title:       title,
		Description: strings.TrimSpace(description),
		MediaURLs:   media,
		Tags:        tags,
	})
	if err != nil {
		exitErr("memory put", err)
	}

	b, _ := json.Marshal(mem)
	fmt.Println(string(b))
}

func runMemoryGet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	mem, err := s.GetMemoryByID(cmd.Context(), args[0])
	if err != nil {
		exitErr("memory get", err)
	}

	b, _ := json.MarshalIndent(mem, "", "  ")
	fmt.Println(string(b))
}

func runMemoryList(cmd *cobra.Command, args []string) {
	patientID, _ := cmd.Flags().GetString("patient")
	tagsStr, _ := cmd.Flags().GetString("tags")
	limit, _ := cmd.Flags().GetInt("limit")

	var tags []string
	if tagsStr != "" {
		tags = splitCSV(tagsStr)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memories, err := s.ListMemories(cmd.Context(), store.ListMemoriesParams{
		PatientID: patientID,
		Tags:      tags,
		Limit:     limit,
	})
	if err != nil {
		exitErr("memory list", err)
	}

	b, _ := json.MarshalIndent(memories, "", "  ")
	fmt.Println(string(b))
}

func runMemorySearch(cmd *cobra.Command, args []string) {
	patientID, _ := cmd.Flags().GetString("patient")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.SearchMemories(cmd.Context(), store.SearchMemoriesParams{
		PatientID: patientID,
		Query:     args[0],
		Limit:     limit,
	})
	if err != nil {
		exitErr("memory search", err)
	}

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}
