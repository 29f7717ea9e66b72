package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careloom/reminisce/internal/store"
)

func init() {
	patientCmd := &cobra.Command{
		Use:   "patient",
		Short: "Manage patient profiles",
	}

	putCmd := &cobra.Command{
		Use:   "put",
		Short: "Store a patient profile",
		Run:   runPatientPut,
	}
	putCmd.Flags().StringP("name", "n", "", "Patient name (required)")
	putCmd.Flags().Int("birth-year", 0, "Birth year")
	putCmd.Flags().StringP("background", "b", "", "Background notes")
	putCmd.Flags().StringP("interests", "i", "", "Comma-separated interests")
	putCmd.Flags().String("id", "", "Explicit patient id (default: generated)")
	putCmd.MarkFlagRequired("name")

	getCmd := &cobra.Command{
		Use:   "get <patient-id>",
		Short: "Retrieve a patient profile",
		Args:  cobra.ExactArgs(1),
		Run:   runPatientGet,
	}

	patientCmd.AddCommand(putCmd, getCmd)
	RootCmd.AddCommand(patientCmd)
}

func runPatientPut(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	birthYear, _ := cmd.Flags().GetInt("birth-year")
	background, _ := cmd.Flags().GetString("background")
	interestsStr, _ := cmd.Flags().GetString("interests")
	id, _ := cmd.Flags().GetString("id")

	var interests []string
	if interestsStr != "" {
		for _, v := range strings.Split(interestsStr, ",") {
			v = strings.TrimSpace(v)
			if v != "" {
				interests = append(interests, v)
			}
		}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	patient, err := s.PutPatient(cmd.Context(), store.PutPatientParams{
		ID:         id,
		Name:       name,
		BirthYear:  birthYear,
		Background: background,
		Interests:  interests,
	})
	if err != nil {
		exitErr("patient put", err)
	}

	b, _ := json.Marshal(patient)
	fmt.Println(string(b))
}

func runPatientGet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	patient, err := s.GetPatientByID(cmd.Context(), args[0])
	if err != nil {
		exitErr("patient get", err)
	}

	b, _ := json.MarshalIndent(patient, "", "  ")
	fmt.Println(string(b))
}
