package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/sidirok-cf-server/internal/domain"
	"github.com/sidirok-cf-server/pkg/certainty"
)

// Tool names.
const (
	ToolDiagnoseSymptoms    = "diagnose_symptoms"
	ToolCalculateRiskFactor = "calculate_risk_factor"
	ToolListSymptoms        = "list_symptoms"
	ToolDiagnosisHistory    = "diagnosis_history"
)

var toolNames = []string{ToolDiagnoseSymptoms, ToolCalculateRiskFactor, ToolListSymptoms, ToolDiagnosisHistory}

// History actions accepted by diagnosis_history.
const (
	HistoryList       = "list"
	HistoryGet        = "get"
	HistoryDelete     = "delete"
	HistoryStatistics = "statistics"
	HistoryExport     = "export"
	HistoryImport     = "import"
)

// SymptomParam is one reported symptom.
type SymptomParam struct {
	SymptomID string  `json:"symptom_id" jsonschema:"symptom id such as G07"`
	Certainty float64 `json:"certainty" jsonschema:"how sure the user is, between 0.2 and 1"`
}

// ProfileParams is the smoking risk profile.
type ProfileParams struct {
	Name             string `json:"name,omitempty"`
	Age              int    `json:"age,omitempty" jsonschema:"age in years"`
	SmokingYears     int    `json:"smoking_years,omitempty" jsonschema:"years the user has smoked"`
	CigarettesPerDay int    `json:"cigarettes_per_day,omitempty" jsonschema:"cigarettes smoked per day"`
}

func (p ProfileParams) toDomain() domain.RiskProfile {
	profile := domain.RiskProfile{Name: p.Name}
	if p.Age > 0 {
		profile.Age = domain.Count(p.Age)
	}
	if p.SmokingYears > 0 {
		profile.SmokingYears = domain.Count(p.SmokingYears)
	}
	if p.CigarettesPerDay > 0 {
		profile.CigarettesPerDay = domain.Count(p.CigarettesPerDay)
	}
	return profile
}

// DiagnoseSymptomsParams defines parameters for diagnose_symptoms tool
type DiagnoseSymptomsParams struct {
	Symptoms []SymptomParam `json:"symptoms" jsonschema:"reported symptoms with certainty"`
	Profile  ProfileParams  `json:"profile,omitempty"`
	Save     bool           `json:"save,omitempty" jsonschema:"store the diagnosis in history"`
}

// RiskFactorResult defines the result structure for calculate_risk_factor tool
type RiskFactorResult struct {
	RiskFactor float64          `json:"risk_factor"`
	Percentage float64          `json:"percentage"`
	RiskLevel  domain.RiskLevel `json:"risk_level"`
}

// ListSymptomsParams defines parameters for list_symptoms tool
type ListSymptomsParams struct {
	Category string `json:"category,omitempty" jsonschema:"restrict to one category such as respiratory"`
}

// ListSymptomsResult defines the result structure for list_symptoms tool
type ListSymptomsResult struct {
	Symptoms   []domain.Symptom `json:"symptoms"`
	Categories []string         `json:"categories"`
}

// DiagnosisHistoryParams defines parameters for diagnosis_history tool
type DiagnosisHistoryParams struct {
	Action    string `json:"action" jsonschema:"one of list, get, delete, statistics, export, import"`
	ID        string `json:"id,omitempty" jsonschema:"diagnosis id for get and delete"`
	Page      int    `json:"page,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	StartDate string `json:"start_date,omitempty" jsonschema:"statistics window start, YYYY-MM-DD"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"statistics window end, YYYY-MM-DD, inclusive"`
	Path      string `json:"path,omitempty" jsonschema:"file to import from"`
}

// HistoryTransferResult reports an export or import.
type HistoryTransferResult struct {
	Path     string `json:"path"`
	Imported int    `json:"imported,omitempty"`
	Skipped  int    `json:"skipped,omitempty"`
}

// handleDiagnoseSymptoms handles the diagnose_symptoms tool invocation
func (s *Server) handleDiagnoseSymptoms(ctx context.Context, req *mcp.CallToolRequest, params DiagnoseSymptomsParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolDiagnoseSymptoms).Info("Tool invoked")

	request := &domain.DiagnosisRequest{
		UserData:         params.Profile.toDomain(),
		SelectedSymptoms: make([]domain.SelectedSymptom, 0, len(params.Symptoms)),
	}
	for _, sym := range params.Symptoms {
		request.SelectedSymptoms = append(request.SelectedSymptoms, domain.SelectedSymptom{
			SymptomID: strings.TrimSpace(sym.SymptomID),
			Certainty: sym.Certainty,
		})
	}

	userID := ""
	if params.Save {
		userID = s.userID
	}

	outcome, err := s.diagnosis.Diagnose(ctx, request, userID)
	if err != nil {
		return s.createErrorResult("Diagnosis failed", err), nil, nil
	}

	return textResult(describeOutcome(outcome)), outcome, nil
}

// handleCalculateRiskFactor handles the calculate_risk_factor tool invocation
func (s *Server) handleCalculateRiskFactor(ctx context.Context, req *mcp.CallToolRequest, params ProfileParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolCalculateRiskFactor).Info("Tool invoked")

	risk, level := s.diagnosis.RiskFactor(params.toDomain())
	result := RiskFactorResult{
		RiskFactor: risk,
		Percentage: certainty.Percentage(risk),
		RiskLevel:  level,
	}

	return textResult(fmt.Sprintf("Risk factor %.1f%% (%s)", result.Percentage, level)), result, nil
}

// handleListSymptoms handles the list_symptoms tool invocation
func (s *Server) handleListSymptoms(ctx context.Context, req *mcp.CallToolRequest, params ListSymptomsParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolListSymptoms).Info("Tool invoked")

	symptoms, err := s.knowledge.ListSymptoms(ctx, strings.TrimSpace(params.Category))
	if err != nil {
		return s.createErrorResult("Failed to list symptoms", err), nil, nil
	}
	categories, err := s.knowledge.Categories(ctx)
	if err != nil {
		return s.createErrorResult("Failed to list categories", err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d symptoms", len(symptoms))
	for _, sym := range symptoms {
		fmt.Fprintf(&b, "\n%s %s (%s)", sym.ID, sym.Name, sym.Category)
	}

	return textResult(b.String()), ListSymptomsResult{Symptoms: symptoms, Categories: categories}, nil
}

// handleDiagnosisHistory handles the diagnosis_history tool invocation
func (s *Server) handleDiagnosisHistory(ctx context.Context, req *mcp.CallToolRequest, params DiagnosisHistoryParams) (*mcp.CallToolResult, any, error) {
	action := strings.ToLower(strings.TrimSpace(params.Action))
	if action == "" {
		action = HistoryList
	}
	s.logger.WithFields(logrus.Fields{"tool": ToolDiagnosisHistory, "action": action}).Info("Tool invoked")

	switch action {
	case HistoryList:
		page, err := s.diagnosis.History(ctx, s.userID, domain.NewPage(params.Page, params.Limit))
		if err != nil {
			return s.createErrorResult("Failed to list history", err), nil, nil
		}
		return jsonResult(fmt.Sprintf("%d of %d diagnoses", len(page.Data), page.Pagination.Total), page)

	case HistoryGet:
		if params.ID == "" {
			return s.createErrorResult("Missing required parameter", errors.New("id is required")), nil, nil
		}
		record, err := s.diagnosis.HistoryEntry(ctx, params.ID, s.userID)
		if err != nil {
			return s.createErrorResult("Failed to get diagnosis", err), nil, nil
		}
		return jsonResult("Diagnosis "+record.ID, record)

	case HistoryDelete:
		if params.ID == "" {
			return s.createErrorResult("Missing required parameter", errors.New("id is required")), nil, nil
		}
		if err := s.diagnosis.DeleteHistoryEntry(ctx, params.ID, s.userID); err != nil {
			return s.createErrorResult("Failed to delete diagnosis", err), nil, nil
		}
		return textResult("Deleted diagnosis " + params.ID), nil, nil

	case HistoryStatistics:
		from, to, err := parseWindow(params.StartDate, params.EndDate)
		if err != nil {
			return s.createErrorResult("Invalid date", err), nil, nil
		}
		stats, err := s.diagnosis.Statistics(ctx, from, to)
		if err != nil {
			return s.createErrorResult("Failed to compute statistics", err), nil, nil
		}
		return jsonResult(fmt.Sprintf("%d diagnoses between %s and %s", stats.Total,
			stats.From.Format(time.RFC3339), stats.To.Format(time.RFC3339)), stats)

	case HistoryExport:
		result, err := s.exportHistory(ctx)
		if err != nil {
			return s.createErrorResult("Export failed", err), nil, nil
		}
		return textResult("Exported history to " + result.Path), result, nil

	case HistoryImport:
		result, err := s.importHistory(ctx, params.Path)
		if err != nil {
			return s.createErrorResult("Import failed", err), nil, nil
		}
		return textResult(fmt.Sprintf("Imported %d diagnoses, skipped %d", result.Imported, result.Skipped)), result, nil
	}

	return s.createErrorResult("Unknown action", fmt.Errorf("%q is not one of list, get, delete, statistics, export, import", action)), nil, nil
}

func (s *Server) exportHistory(ctx context.Context) (*HistoryTransferResult, error) {
	if s.history == nil {
		return nil, domain.ErrHistoryDisabled
	}
	if s.exportDir == "" {
		return nil, errors.New("no export directory configured")
	}
	if err := os.MkdirAll(s.exportDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(s.exportDir, fmt.Sprintf("history-%s.json", time.Now().UTC().Format("20060102-150405")))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	if err := s.history.ExportJSON(ctx, file); err != nil {
		return nil, err
	}
	return &HistoryTransferResult{Path: path}, nil
}

func (s *Server) importHistory(ctx context.Context, path string) (*HistoryTransferResult, error) {
	if s.history == nil {
		return nil, domain.ErrHistoryDisabled
	}
	if path == "" {
		return nil, errors.New("path is required")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	imported, skipped, err := s.history.ImportJSON(ctx, file)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"imported": imported, "skipped": skipped}).Info("History imported")
	return &HistoryTransferResult{Path: path, Imported: imported, Skipped: skipped}, nil
}

// parseWindow reads an optional calendar window. The end date is inclusive.
func parseWindow(start, end string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if start != "" {
		if from, err = time.Parse("2006-01-02", start); err != nil {
			return from, to, fmt.Errorf("start_date: %w", err)
		}
	}
	if end != "" {
		if to, err = time.Parse("2006-01-02", end); err != nil {
			return from, to, fmt.Errorf("end_date: %w", err)
		}
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func describeOutcome(outcome *domain.DiagnosisOutcome) string {
	summary := outcome.Summary
	if summary.PrimaryDiagnosis == nil {
		return "No matching disease was found for the selected symptoms."
	}

	var b strings.Builder
	primary := summary.PrimaryDiagnosis
	fmt.Fprintf(&b, "Primary diagnosis: %s (%.1f%%), risk level %s.", primary.Disease.Name, primary.Percentage, summary.RiskLevel)
	for _, alt := range summary.Alternatives {
		fmt.Fprintf(&b, "\nAlternative: %s (%.1f%%)", alt.Disease.Name, alt.Percentage)
	}
	if summary.RiskNarrative != "" {
		b.WriteString("\n" + summary.RiskNarrative)
	}
	for _, rec := range summary.Recommendations {
		b.WriteString("\n- " + rec)
	}
	if outcome.ID != "" {
		b.WriteString("\nSaved as " + outcome.ID)
	}
	return b.String()
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// jsonResult renders v as indented JSON after a one-line headline.
func jsonResult(headline string, v any) (*mcp.CallToolResult, any, error) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return textResult(headline + "\n" + string(encoded)), v, nil
}

// createErrorResult creates a standardized error result for tool calls
func (s *Server) createErrorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
		s.logger.WithError(err).Warn(message)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
