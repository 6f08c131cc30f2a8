package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/VivekRai-gif/matchly/internal/anonymizer"
	"github.com/VivekRai-gif/matchly/internal/audit"
	"github.com/VivekRai-gif/matchly/internal/cache"
	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/credential"
	"github.com/VivekRai-gif/matchly/internal/extract"
	"github.com/VivekRai-gif/matchly/internal/oracle"
	"github.com/VivekRai-gif/matchly/internal/privacy"
	"github.com/VivekRai-gif/matchly/internal/screening"
	"github.com/VivekRai-gif/matchly/internal/websocket"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// redactionResponse never carries the matched values
type redactionResponse struct {
	Success         bool     `json:"success"`
	RedactedText    string   `json:"redacted_text"`
	FiredCategories []string `json:"fired_categories"`
	PIIFound        bool     `json:"pii_found"`
	PrivacyLevel    string   `json:"privacy_level,omitempty"`
	OriginalLength  int      `json:"original_length"`
	RedactedLength  int      `json:"redacted_length"`
}

type profileResponse struct {
	Success bool             `json:"success"`
	Profile anonymousProfile `json:"anonymous_profile"`
}

type anonymousProfile struct {
	anonymizer.Profile
	PIIRemoved bool      `json:"pii_removed"`
	CreatedAt  time.Time `json:"created_at"`
}

type reportResponse struct {
	Success bool          `json:"success"`
	Report  privacyReport `json:"privacy_report"`
}

type privacyReport struct {
	privacy.Report
	GeneratedAt time.Time `json:"generated_at"`
}

type minimalDataResponse struct {
	Success bool `json:"success"`
	extract.MinimalExtraction
}

type credentialResponse struct {
	Success    bool                  `json:"success"`
	Credential credential.Credential `json:"credential"`
	Payload    string                `json:"payload"`
	Registered bool                  `json:"registered"`
}

type verifyResponse struct {
	Success          bool      `json:"success"`
	Verified         bool      `json:"verified"`
	VerificationTime time.Time `json:"verification_time"`
}

// Request bodies

type textRequest struct {
	ResumeText *string `json:"resume_text"`
}

type maskPIIRequest struct {
	ResumeText       *string `json:"resume_text"`
	KeepProfessional *bool   `json:"keep_professional"`
}

type minimalDataRequest struct {
	ResumeText     *string  `json:"resume_text"`
	RequiredFields []string `json:"required_fields"`
}

type credentialRequest struct {
	Email  string   `json:"email"`
	Skills []string `json:"skills"`
}

type verifyRequest struct {
	Payload      *string `json:"payload"`
	ExpectedHash string  `json:"expected_hash"`
	CredentialID string  `json:"credential_id"`
}

type fairEvaluationRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

type detectBiasRequest struct {
	EvaluationText string `json:"evaluation_text"`
	ResumeText     string `json:"resume_text"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"components": map[string]bool{
			"credential_registry": s.registry != nil,
			"audit_store":         s.audit != nil,
			"screening":           s.screener != nil,
			"websocket":           s.wsHub != nil,
		},
	})
}

// handleMaskPII handles POST /api/privacy/mask-pii
func (s *Server) handleMaskPII(w http.ResponseWriter, r *http.Request) {
	var req maskPIIRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ResumeText == nil {
		writeError(w, http.StatusBadRequest, "Missing resume_text")
		return
	}
	if req.KeepProfessional == nil {
		writeError(w, http.StatusBadRequest, "Missing keep_professional")
		return
	}
	if !s.checkSize(w, *req.ResumeText) {
		return
	}

	start := time.Now()
	res := s.redactor.Redact(*req.ResumeText, catalog.DomainPII, *req.KeepProfessional)
	s.publishRedaction(r.Context(), "mask_pii", catalog.DomainPII, res, start)

	writeJSON(w, http.StatusOK, redactionResponse{
		Success:         true,
		RedactedText:    res.RedactedText,
		FiredCategories: res.FiredCategories,
		PIIFound:        len(res.FiredCategories) > 0,
		PrivacyLevel:    string(anonymizer.PrivacyLevelFor(*req.KeepProfessional)),
		OriginalLength:  res.OriginalLength,
		RedactedLength:  res.RedactedLength,
	})
}

// handleMaskPersonalInfo handles POST /api/bias/mask-personal-info
func (s *Server) handleMaskPersonalInfo(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeText(w, r)
	if !ok {
		return
	}

	start := time.Now()
	res := s.redactor.Redact(text, catalog.DomainDemographic, false)
	s.publishRedaction(r.Context(), "mask_personal_info", catalog.DomainDemographic, res, start)

	writeJSON(w, http.StatusOK, redactionResponse{
		Success:         true,
		RedactedText:    res.RedactedText,
		FiredCategories: res.FiredCategories,
		PIIFound:        len(res.FiredCategories) > 0,
		OriginalLength:  res.OriginalLength,
		RedactedLength:  res.RedactedLength,
	})
}

// handleAnonymousProfile handles POST /api/privacy/anonymous-profile
func (s *Server) handleAnonymousProfile(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeText(w, r)
	if !ok {
		return
	}

	start := time.Now()
	res := s.anonymizer.AnonymizeDetailed(text)
	report := s.assessor.Summarize(res.PII)
	s.recordAudit(r.Context(), res.Profile.CandidateID, audit.SourceAnonymize, report)

	s.stats.redactions.Add(1)
	if s.wsHub != nil {
		s.wsHub.PublishRedaction(websocket.RedactionEvent{
			RequestID:      getRequestID(r.Context()),
			Operation:      "anonymous_profile",
			Domain:         string(catalog.DomainPII),
			Categories:     report.PIITypesFound,
			TotalInstances: report.TotalPIIInstances,
			RiskLevel:      string(report.RiskLevel),
			CandidateID:    res.Profile.CandidateID,
			OriginalLength: res.PII.OriginalLength,
			RedactedLength: len([]rune(res.Profile.ProfileData)),
			ProcessingMS:   msSince(start),
		})
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Success: true,
		Profile: anonymousProfile{
			Profile:    res.Profile,
			PIIRemoved: true,
			CreatedAt:  time.Now().UTC(),
		},
	})
}

// handlePrivacyReport handles POST /api/privacy/report
func (s *Server) handlePrivacyReport(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeText(w, r)
	if !ok {
		return
	}

	start := time.Now()
	report := s.assessor.Assess(text)
	s.recordAudit(r.Context(), anonymizer.CandidateID(text), audit.SourceReport, report)

	s.stats.redactions.Add(1)
	if s.wsHub != nil {
		s.wsHub.PublishRedaction(websocket.RedactionEvent{
			RequestID:      getRequestID(r.Context()),
			Operation:      "privacy_report",
			Domain:         string(catalog.DomainPII),
			Categories:     report.PIITypesFound,
			TotalInstances: report.TotalPIIInstances,
			RiskLevel:      string(report.RiskLevel),
			ProcessingMS:   msSince(start),
		})
	}

	writeJSON(w, http.StatusOK, reportResponse{
		Success: true,
		Report:  privacyReport{Report: report, GeneratedAt: time.Now().UTC()},
	})
}

// handleMinimalData handles POST /api/privacy/minimal-data
func (s *Server) handleMinimalData(w http.ResponseWriter, r *http.Request) {
	var req minimalDataRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ResumeText == nil || req.RequiredFields == nil {
		writeError(w, http.StatusBadRequest, "Missing resume_text or required_fields")
		return
	}
	if !s.checkSize(w, *req.ResumeText) {
		return
	}

	out := s.extractor.Extract(*req.ResumeText, req.RequiredFields)
	writeJSON(w, http.StatusOK, minimalDataResponse{Success: true, MinimalExtraction: out})
}

// handleIssueCredential handles POST /api/skills/credential
func (s *Server) handleIssueCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Skills == nil {
		writeError(w, http.StatusBadRequest, "Missing email or skills")
		return
	}

	c := s.issuer.Issue(req.Email, req.Skills)
	log := s.logger.WithRequestID(getRequestID(r.Context()))

	registered := false
	if s.registry != nil {
		err := s.registry.Store(r.Context(), &cache.CredentialRecord{
			CredentialID:     c.CredentialID,
			VerificationHash: c.VerificationHash,
			Issuer:           c.Issuer,
			IssuedAt:         c.IssuedAt,
			SkillCount:       len(c.Skills),
		})
		if err != nil {
			log.Warn("Failed to register credential", zap.Error(err))
		} else {
			registered = true
		}
	}

	log.Info("Credential issued",
		zap.String("credential_id", c.CredentialID),
		zap.Int("skill_count", len(c.Skills)),
		zap.Bool("registered", registered),
	)

	writeJSON(w, http.StatusOK, credentialResponse{
		Success:    true,
		Credential: c,
		Payload:    credential.Canonical(c),
		Registered: registered,
	})
}

// handleVerifyCredential handles POST /api/skills/credential/verify
func (s *Server) handleVerifyCredential(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Payload == nil {
		writeError(w, http.StatusBadRequest, "Missing payload")
		return
	}

	expected := strings.TrimSpace(req.ExpectedHash)
	if expected == "" {
		id := strings.TrimSpace(req.CredentialID)
		if id == "" {
			writeError(w, http.StatusBadRequest, "Missing expected_hash or credential_id")
			return
		}
		if s.registry == nil {
			writeError(w, http.StatusServiceUnavailable, "Credential registry not configured")
			return
		}
		record, err := s.registry.Lookup(r.Context(), id)
		if errors.Is(err, cache.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Credential not found")
			return
		}
		if err != nil {
			s.logger.WithRequestID(getRequestID(r.Context())).Error("Credential lookup failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Credential lookup failed")
			return
		}
		expected = record.VerificationHash
	}

	writeJSON(w, http.StatusOK, verifyResponse{
		Success:          true,
		Verified:         credential.Verify(*req.Payload, expected),
		VerificationTime: time.Now().UTC(),
	})
}

// handleRevokeCredential handles DELETE /api/skills/credential/{id}
func (s *Server) handleRevokeCredential(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeError(w, http.StatusServiceUnavailable, "Credential registry not configured")
		return
	}
	id := mux.Vars(r)["id"]
	log := s.logger.WithRequestID(getRequestID(r.Context()))

	err := s.registry.Revoke(r.Context(), id)
	if errors.Is(err, cache.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Credential not found")
		return
	}
	if err != nil {
		log.Error("Credential revocation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Credential revocation failed")
		return
	}

	log.Info("Credential revoked", zap.String("credential_id", id))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"revoked":       true,
		"credential_id": id,
	})
}

// handleFairEvaluation handles POST /api/bias/fair-evaluation
func (s *Server) handleFairEvaluation(w http.ResponseWriter, r *http.Request) {
	var req fairEvaluationRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ResumeText) == "" || strings.TrimSpace(req.JobDescription) == "" {
		writeError(w, http.StatusBadRequest, "Missing resume_text or job_description")
		return
	}
	if !s.checkSize(w, req.ResumeText) || !s.checkSize(w, req.JobDescription) {
		return
	}
	if s.screener == nil {
		writeError(w, http.StatusServiceUnavailable, "Screening not configured")
		return
	}

	res, err := s.screener.FairEvaluation(r.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		s.writeOracleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*screening.Evaluation
	}{true, res})
}

// handleDetectBias handles POST /api/bias/detect
func (s *Server) handleDetectBias(w http.ResponseWriter, r *http.Request) {
	var req detectBiasRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.EvaluationText) == "" {
		writeError(w, http.StatusBadRequest, "Missing evaluation_text")
		return
	}
	if !s.checkSize(w, req.EvaluationText) || !s.checkSize(w, req.ResumeText) {
		return
	}
	if s.screener == nil {
		writeError(w, http.StatusServiceUnavailable, "Screening not configured")
		return
	}

	res, err := s.screener.DetectBias(r.Context(), req.EvaluationText, req.ResumeText)
	if err != nil {
		s.writeOracleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*screening.BiasAnalysis
	}{true, res})
}

// handleAuditStats handles GET /api/privacy/audit/stats
func (s *Server) handleAuditStats(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusServiceUnavailable, "Audit store not configured")
		return
	}
	stats, err := s.audit.GetStats(r.Context())
	if err != nil {
		s.logger.WithRequestID(getRequestID(r.Context())).Error("Failed to load audit stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load audit stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

func (s *Server) writeOracleError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.WithRequestID(getRequestID(r.Context())).Warn("Oracle request failed", zap.Error(err))
	switch {
	case errors.Is(err, screening.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, oracle.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "Text analysis service not configured")
	default:
		writeError(w, http.StatusBadGateway, "Text analysis failed: "+err.Error())
	}
}

// recordAudit stores derived data only; failures do not fail the request
func (s *Server) recordAudit(ctx context.Context, candidateID, source string, report privacy.Report) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, &audit.Entry{
		CandidateID:    candidateID,
		Source:         source,
		RiskLevel:      string(report.RiskLevel),
		PIITypes:       report.PIITypesFound,
		TotalInstances: report.TotalPIIInstances,
	})
	if err != nil {
		s.logger.WithRequestID(getRequestID(ctx)).Warn("Failed to record audit entry", zap.Error(err))
	}
}

func (s *Server) publishRedaction(ctx context.Context, op string, domain catalog.Domain, res privacy.RedactionResult, start time.Time) {
	s.stats.redactions.Add(1)
	if s.wsHub == nil {
		return
	}
	s.wsHub.PublishRedaction(websocket.RedactionEvent{
		RequestID:      getRequestID(ctx),
		Operation:      op,
		Domain:         string(domain),
		Categories:     res.FiredCategories,
		TotalInstances: res.InstanceCount(),
		OriginalLength: res.OriginalLength,
		RedactedLength: res.RedactedLength,
		ProcessingMS:   msSince(start),
	})
}

// decode reads a JSON body into dst, answering 400 or 413 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// decodeText reads a body holding a required resume_text
func (s *Server) decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return "", false
	}
	if req.ResumeText == nil {
		writeError(w, http.StatusBadRequest, "Missing resume_text")
		return "", false
	}
	if !s.checkSize(w, *req.ResumeText) {
		return "", false
	}
	return *req.ResumeText, true
}

func (s *Server) checkSize(w http.ResponseWriter, text string) bool {
	if limit := s.config.Server.MaxTextBytes; limit > 0 && int64(len(text)) > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "Text exceeds maximum size")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}
