package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sidirok-cf-server/internal/app"
	"github.com/sidirok-cf-server/internal/domain"
)

// parseSymptom reads "G07" or "G07=0.8". A bare id means full certainty.
func parseSymptom(raw string) (domain.SelectedSymptom, error) {
	id, value, hasValue := strings.Cut(strings.TrimSpace(raw), "=")
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return domain.SelectedSymptom{}, fmt.Errorf("symptom %q: missing id", raw)
	}

	certainty := 1.0
	if hasValue {
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return domain.SelectedSymptom{}, fmt.Errorf("symptom %q: certainty is not a number", raw)
		}
		certainty = v
	}
	return domain.SelectedSymptom{SymptomID: id, Certainty: certainty}, nil
}

func newDiagnoseCmd(cli *cliContext) *cobra.Command {
	var (
		symptoms   []string
		profile    domain.RiskProfile
		age        int
		years      int
		cigarettes int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Run a single diagnosis against the configured knowledge base",
		Example: `  sidirokctl diagnose -s G07 -s G01=0.6 --age 52 --smoking-years 30 --cigarettes 20
  sidirokctl diagnose -s G12=0.8 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &domain.DiagnosisRequest{}
			for _, raw := range symptoms {
				s, err := parseSymptom(raw)
				if err != nil {
					return err
				}
				req.SelectedSymptoms = append(req.SelectedSymptoms, s)
			}
			profile.Age = domain.Count(age)
			profile.SmokingYears = domain.Count(years)
			profile.CigarettesPerDay = domain.Count(cigarettes)
			req.UserData = profile

			cfg, err := cli.loadConfig()
			if err != nil {
				return err
			}
			cfg.History.Backend = app.HistoryNone
			cfg.Cache.RedisEnabled = false

			deps, err := app.New(cmd.Context(), cfg, cli.logger(cfg))
			if err != nil {
				return err
			}
			defer deps.Close()

			outcome, err := deps.Diagnosis.Diagnose(cmd.Context(), req, "")
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(outcome)
			}
			writeOutcome(cmd.OutOrStdout(), outcome)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&symptoms, "symptom", "s", nil, "symptom as ID or ID=certainty (repeatable)")
	cmd.Flags().StringVar(&profile.Name, "name", "", "patient name shown in the summary")
	cmd.Flags().IntVar(&age, "age", 0, "age in years")
	cmd.Flags().IntVar(&years, "smoking-years", 0, "years of smoking")
	cmd.Flags().IntVar(&cigarettes, "cigarettes", 0, "cigarettes per day")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full outcome as JSON")
	_ = cmd.MarkFlagRequired("symptom")

	return cmd
}

func writeOutcome(w io.Writer, outcome *domain.DiagnosisOutcome) {
	summary := outcome.Summary

	fmt.Fprintf(w, "Risk: %s (factor %.3f)\n", summary.RiskLevel, outcome.RiskFactor)
	if summary.RiskNarrative != "" {
		fmt.Fprintf(w, "  %s\n", summary.RiskNarrative)
	}

	if summary.PrimaryDiagnosis == nil {
		fmt.Fprintln(w, "No disease matched the selected symptoms.")
		return
	}

	fmt.Fprintln(w)
	for i, r := range outcome.Results {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-4s %-40s %6.1f%%  (%d rules)\n",
			marker, r.DiseaseID, r.Disease.Name, r.Percentage, len(r.Evidences))
	}

	if len(summary.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, rec := range summary.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
}
