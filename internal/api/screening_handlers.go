package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/VivekRai-gif/matchly/internal/ats"
	"github.com/VivekRai-gif/matchly/internal/screening"
)

type compareRequest struct {
	OriginalEvaluation   string `json:"original_evaluation"`
	AnonymizedEvaluation string `json:"anonymized_evaluation"`
}

type fairnessReportRequest struct {
	Evaluations []screening.BiasOutcome `json:"evaluations"`
}

type skillsRequest struct {
	ResumeText     string   `json:"resume_text"`
	JobDescription string   `json:"job_description"`
	Skills         []string `json:"skills"`
}

type matchResultRequest struct {
	TransparentMatch json.RawMessage `json:"transparent_match"`
}

type compareCandidatesRequest struct {
	TransparentMatches []json.RawMessage `json:"transparent_matches"`
}

type atsRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
	Filename       string `json:"filename"`
}

// handleCompareEvaluations handles POST /api/bias/compare
func (s *Server) handleCompareEvaluations(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.OriginalEvaluation) == "" || strings.TrimSpace(req.AnonymizedEvaluation) == "" {
		writeError(w, http.StatusBadRequest, "Missing original_evaluation or anonymized_evaluation")
		return
	}
	if !s.checkSize(w, req.OriginalEvaluation) || !s.checkSize(w, req.AnonymizedEvaluation) || !s.requireScreener(w) {
		return
	}

	res, err := s.screener.CompareEvaluations(r.Context(), req.OriginalEvaluation, req.AnonymizedEvaluation)
	if err != nil {
		s.writeOracleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*screening.Comparison
	}{true, res})
}

// handleFairnessReport handles POST /api/bias/fairness-report
func (s *Server) handleFairnessReport(w http.ResponseWriter, r *http.Request) {
	var req fairnessReportRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Evaluations == nil {
		writeError(w, http.StatusBadRequest, "Missing evaluations")
		return
	}

	report := screening.BuildFairnessReport(req.Evaluations, time.Now())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"fairness_report": report,
	})
}

// handleExtractSkills handles POST /api/skills/extract
func (s *Server) handleExtractSkills(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeText(w, r)
	if !ok || !s.requireScreener(w) {
		return
	}

	res, err := s.screener.ExtractSkills(r.Context(), text)
	if err != nil {
		s.writeOracleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*screening.SkillExtraction
	}{true, res})
}

// handleVerifySkills handles POST /api/skills/verify
func (s *Server) handleVerifySkills(w http.ResponseWriter, r *http.Request) {
	var req skillsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ResumeText) == "" || len(req.Skills) == 0 {
		writeError(w, http.StatusBadRequest, "Missing resume_text or skills")
		return
	}
	if !s.checkSize(w, req.ResumeText) || !s.requireScreener(w) {
		return
	}

	res, err := s.screener.VerifySkillClaims(r.Context(), req.ResumeText, req.Skills)
	if err != nil {
		s.writeOracleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*screening.SkillVerification
	}{true, res})
}

// handleCrossVerify handles POST /api/skills/cross-verify
func (s *Server) handleCrossVerify(w http.ResponseWriter, r *http.Request) {
	var req skillsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.checkJobRequest(w, req.ResumeText, req.JobDescription) {
		return
	}

	res, err := s.screener.CrossVerify(r.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		s.writeOracleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*screening.SkillAlignment
	}{true, res})
}

// handleTransparentMatch handles POST /api/match/transparent
func (s *Server) handleTransparentMatch(w http.ResponseWriter, r *http.Request) {
	var req skillsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.checkJobRequest(w, req.ResumeText, req.JobDescription) {
		return
	}

	res, err := s.screener.Match(r.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		s.writeOracleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*screening.TransparentMatch
	}{true, res})
}

// handleScoreBreakdown handles POST /api/match/score-breakdown
func (s *Server) handleScoreBreakdown(w http.ResponseWriter, r *http.Request) {
	match, ok := s.decodeMatch(w, r)
	if !ok {
		return
	}

	breakdown, err := screening.BreakDownScore(match)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"score_breakdown": breakdown,
	})
}

// handleExplanationReport handles POST /api/match/explanation-report
func (s *Server) handleExplanationReport(w http.ResponseWriter, r *http.Request) {
	match, ok := s.decodeMatch(w, r)
	if !ok {
		return
	}

	report, err := screening.ExplainMatch(match, time.Now())
	if err != nil {
		writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"report":  report,
	})
}

// handleCompareCandidates handles POST /api/match/compare
func (s *Server) handleCompareCandidates(w http.ResponseWriter, r *http.Request) {
	var req compareCandidatesRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.TransparentMatches == nil {
		writeError(w, http.StatusBadRequest, "Missing transparent_matches")
		return
	}

	ranking, err := screening.RankCandidates(req.TransparentMatches)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"comparison": ranking,
	})
}

// handleATSAnalyze handles POST /api/ats/analyze and POST /api/analyze-ats
func (s *Server) handleATSAnalyze(w http.ResponseWriter, r *http.Request) {
	var req atsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		writeError(w, http.StatusBadRequest, "Missing resume_text")
		return
	}
	if !s.checkSize(w, req.ResumeText) || !s.checkSize(w, req.JobDescription) {
		return
	}

	report, err := s.ats.Analyze(r.Context(), req.ResumeText, req.JobDescription, req.Filename)
	if errors.Is(err, ats.ErrEmptyInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.writeOracleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*ats.Report
	}{true, report})
}

func (s *Server) requireScreener(w http.ResponseWriter) bool {
	if s.screener == nil {
		writeError(w, http.StatusServiceUnavailable, "Screening not configured")
		return false
	}
	return true
}

// checkJobRequest validates a resume and job description pair
func (s *Server) checkJobRequest(w http.ResponseWriter, resumeText, jobDescription string) bool {
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobDescription) == "" {
		writeError(w, http.StatusBadRequest, "Missing resume_text or job_description")
		return false
	}
	return s.checkSize(w, resumeText) && s.checkSize(w, jobDescription) && s.requireScreener(w)
}

// decodeMatch reads a body holding a transparent_match object
func (s *Server) decodeMatch(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	var req matchResultRequest
	if !s.decode(w, r, &req) {
		return nil, false
	}
	if len(req.TransparentMatch) == 0 || bytes.Equal(req.TransparentMatch, []byte("null")) {
		writeError(w, http.StatusBadRequest, "Missing transparent_match")
		return nil, false
	}
	return req.TransparentMatch, true
}

func writeMatchError(w http.ResponseWriter, err error) {
	if errors.Is(err, screening.ErrInvalidMatch) {
		writeError(w, http.StatusBadRequest, "Invalid transparent_match")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
