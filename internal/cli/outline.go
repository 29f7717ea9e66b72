package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	outlineCmd := &cobra.Command{
		Use:   "outline",
		Short: "Retrieve saved therapy outlines",
	}

	getCmd := &cobra.Command{
		Use:   "get <memory-id>",
		Short: "Retrieve the latest outline saved for a memory",
		Args:  cobra.ExactArgs(1),
		Run:   runOutlineGet,
	}

	outlineCmd.AddCommand(getCmd)
	RootCmd.AddCommand(outlineCmd)
}

func runOutlineGet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	o, err := s.GetTherapyOutlineByMemoryID(cmd.Context(), args[0])
	if err != nil {
		exitErr("outline get", err)
	}

	b, _ := json.MarshalIndent(o, "", "  ")
	fmt.Println(string(b))
}
