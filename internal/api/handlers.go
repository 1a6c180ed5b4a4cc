package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sidirok-cf-server/internal/domain"
	"github.com/sidirok-cf-server/internal/middleware"
	"github.com/sidirok-cf-server/pkg/certainty"
)

const dateLayout = "2006-01-02"

func (s *Server) handleListSymptoms(c *gin.Context) {
	symptoms, err := s.knowledge.ListSymptoms(c.Request.Context(), strings.TrimSpace(c.Query("category")))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": symptoms, "total": len(symptoms)})
}

func (s *Server) handleSymptomCategories(c *gin.Context) {
	categories, err := s.knowledge.Categories(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (s *Server) handleGetSymptom(c *gin.Context) {
	symptom, err := s.knowledge.GetSymptom(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, symptom)
}

func (s *Server) handleListDiseases(c *gin.Context) {
	diseases, err := s.knowledge.ListDiseases(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": diseases, "total": len(diseases)})
}

func (s *Server) handleGetDisease(c *gin.Context) {
	detail, err := s.knowledge.GetDisease(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) handleListRules(c *gin.Context) {
	filter := domain.RuleFilter{
		DiseaseID: strings.TrimSpace(c.Query("disease_id")),
		SymptomID: strings.TrimSpace(c.Query("symptom_id")),
	}
	result, err := s.knowledge.ListRules(c.Request.Context(), filter, pageFromQuery(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetRule(c *gin.Context) {
	rule, err := s.knowledge.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (s *Server) handleCreateRule(c *gin.Context) {
	var req domain.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "Invalid rule payload", err)
		return
	}

	rule, err := s.knowledge.CreateRule(c.Request.Context(), &req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (s *Server) handleDiagnose(c *gin.Context) {
	var req domain.DiagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "Invalid diagnosis payload", err)
		return
	}

	outcome, err := s.diagnosis.Diagnose(c.Request.Context(), &req, userID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// handleRiskFactor scores a profile without running a diagnosis.
func (s *Server) handleRiskFactor(c *gin.Context) {
	var profile domain.RiskProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		s.badRequest(c, "Invalid risk profile", err)
		return
	}

	risk, level := s.diagnosis.RiskFactor(profile)
	c.JSON(http.StatusOK, gin.H{
		"risk_factor": risk,
		"percentage":  certainty.Percentage(risk),
		"risk_level":  level,
		"profile":     profile,
	})
}

func (s *Server) handleListHistory(c *gin.Context) {
	user, ok := s.requireUser(c)
	if !ok {
		return
	}
	result, err := s.diagnosis.History(c.Request.Context(), user, pageFromQuery(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetHistory(c *gin.Context) {
	user, ok := s.requireUser(c)
	if !ok {
		return
	}
	record, err := s.diagnosis.HistoryEntry(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleDeleteHistory(c *gin.Context) {
	user, ok := s.requireUser(c)
	if !ok {
		return
	}
	if err := s.diagnosis.DeleteHistoryEntry(c.Request.Context(), c.Param("id"), user); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStatistics(c *gin.Context) {
	from, err := parseDate(c.Query("start_date"), false)
	if err != nil {
		s.respondError(c, domain.NewValidationError("start_date", "must be YYYY-MM-DD or RFC 3339", c.Query("start_date")))
		return
	}
	to, err := parseDate(c.Query("end_date"), true)
	if err != nil {
		s.respondError(c, domain.NewValidationError("end_date", "must be YYYY-MM-DD or RFC 3339", c.Query("end_date")))
		return
	}

	stats, err := s.diagnosis.Statistics(c.Request.Context(), from, to)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func userID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(middleware.UserIDHeader))
}

// requireUser aborts with 400 when the request carries no user id.
func (s *Server) requireUser(c *gin.Context) (string, bool) {
	user := userID(c)
	if user == "" {
		s.badRequest(c, middleware.UserIDHeader+" header is required", nil)
		return "", false
	}
	return user, true
}

// pageFromQuery reads page and limit. Unparseable values fall back to defaults.
func pageFromQuery(c *gin.Context) domain.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return domain.NewPage(page, limit)
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. A calendar end
// date covers the whole day, so it is moved to the following midnight.
func parseDate(raw string, end bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if end {
			t = t.AddDate(0, 0, 1)
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
