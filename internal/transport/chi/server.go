// Package chi exposes the biometric gate over HTTP. Handlers decode
// transport concerns (base64 captures, session headers) and delegate to
// the usecase services; domain sentinels map to status codes through the
// errorHandler chain.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
	enrolluc "github.com/kailas-cloud/biogate/internal/usecase/enroll"
	healthuc "github.com/kailas-cloud/biogate/internal/usecase/health"
	validateuc "github.com/kailas-cloud/biogate/internal/usecase/validate"
)

const defaultMaxBodyBytes = 16 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the enrollment and validation services.
type Server struct {
	enroll        *enrolluc.Service
	validate      *validateuc.Service
	identities    validateuc.IdentityReader
	health        *healthuc.Service
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	enroll *enrolluc.Service,
	validate *validateuc.Service,
	identities validateuc.IdentityReader,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		enroll:       enroll,
		validate:     validate,
		identities:   identities,
		health:       health,
		logger:       logger,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrIdentityNotFound, http.StatusNotFound, codeIdentityNotFound),
		sentinelHandler(domain.ErrExtractionFailed, http.StatusBadRequest, codeExtractionFailed),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// WithMaxBodyBytes overrides the request body cap. Captures are base64
// encoded, so the cap must leave room for the encoding overhead.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Routes mounts all endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/enroll/{modality}", s.Enroll)
		r.Post("/validate/{modality}", s.Validate)
		r.Route("/identities/{identity}", func(r chi.Router) {
			r.Get("/status", s.EnrollmentStatus)
			r.Get("/vehicles", s.ListVehicles)
			r.Delete("/biometrics", s.ResetAll)
			r.Delete("/biometrics/{modality}", s.Reset)
		})
	})
}

// Enroll handles POST /v1/enroll/{modality}.
func (s *Server) Enroll(w http.ResponseWriter, r *http.Request) {
	m, ok := parseModality(w, r)
	if !ok {
		return
	}

	var req enrollRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Identity <= 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "identity is required")
		return
	}

	if m == modality.Proximity {
		err := s.enroll.EnrollProximity(r.Context(), req.Identity, enrolluc.ProximityIdentifiers{
			KeyFob:        req.KeyFob,
			MobileDevice:  req.MobileDevice,
			BluetoothAddr: req.BluetoothAddr,
			NFCTag:        req.NFCTag,
		})
		if errors.Is(err, domain.ErrNoIdentifiers) {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "at least one proximity identifier is required")
			return
		}
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, enrollResponse{Identity: req.Identity, Modality: string(m)})
		return
	}

	capture, err := decodeCapture(req.Capture)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	vec, err := s.enroll.EnrollBiometric(r.Context(), req.Identity, m, capture)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, enrollResponse{
		Identity: req.Identity,
		Modality: string(m),
		Features: vec.Len(),
		Reduced:  vec.Reduced(),
	})
}

// Validate handles POST /v1/validate/{modality}.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	m, ok := parseModality(w, r)
	if !ok {
		return
	}

	var req validateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ucReq := validateuc.Request{
		Modality:   m,
		SourceAddr: r.RemoteAddr,
	}
	if req.Session != nil {
		hm, err := modality.Parse(req.Session.Modality)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid session modality")
			return
		}
		ucReq.Hint = &domain.SessionHint{Identity: req.Session.Identity, Modality: hm}
	}

	if m == modality.Proximity {
		ucReq.Proximity = &enrolluc.ProximityIdentifiers{
			KeyFob:        req.KeyFob,
			MobileDevice:  req.MobileDevice,
			BluetoothAddr: req.BluetoothAddr,
			NFCTag:        req.NFCTag,
		}
	} else {
		capture, err := decodeCapture(req.Capture)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		ucReq.Capture = capture
	}

	result, err := s.validate.Validate(r.Context(), ucReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, validationStatus(result.Decision), validateResponseFrom(result))
}

// EnrollmentStatus handles GET /v1/identities/{identity}/status.
func (s *Server) EnrollmentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIdentity(w, r)
	if !ok {
		return
	}

	status, err := s.enroll.Status(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	enrolled := make(map[string]bool, len(status))
	for m, has := range status {
		enrolled[string(m)] = has
	}
	writeJSON(w, http.StatusOK, statusResponse{Identity: id, Enrolled: enrolled})
}

// ListVehicles handles GET /v1/identities/{identity}/vehicles.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIdentity(w, r)
	if !ok {
		return
	}

	if _, err := s.identities.GetIdentity(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	vehicles, err := s.identities.ListOwnedVehicles(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehiclesResponse{Identity: id, Vehicles: vehicles})
}

// ResetAll handles DELETE /v1/identities/{identity}/biometrics.
func (s *Server) ResetAll(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIdentity(w, r)
	if !ok {
		return
	}
	if err := s.enroll.ResetAll(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reset handles DELETE /v1/identities/{identity}/biometrics/{modality}.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIdentity(w, r)
	if !ok {
		return
	}
	m, ok := parseModality(w, r)
	if !ok {
		return
	}
	if err := s.enroll.Reset(r.Context(), id, m); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// --- helpers ---

func parseModality(w http.ResponseWriter, r *http.Request) (modality.Modality, bool) {
	m, err := modality.Parse(chi.URLParam(r, "modality"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return "", false
	}
	return m, true
}

func parseIdentity(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "identity"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid identity")
		return 0, false
	}
	return id, true
}

// validationStatus maps an evaluated decision to an HTTP status. The
// decision body is returned in every case.
func validationStatus(d domain.Decision) int {
	switch {
	case d.Accepted:
		return http.StatusOK
	case d.SecurityViolation:
		return http.StatusForbidden
	case d.ErrorKind != "":
		return http.StatusBadRequest
	default:
		return http.StatusUnauthorized
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("Unhandled domain error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNoFaceDetected,
		domain.ErrCaptureTooShort,
		domain.ErrBadCapture,
		domain.ErrNoIdentifiers,
		domain.ErrExtractionFailed,
		domain.ErrIdentityNotFound,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// decodeCapture accepts raw base64 or a data URI ("data:...;base64,").
func decodeCapture(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.New("capture is required")
	}
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ";base64,")
		if idx < 0 {
			return nil, errors.New("data URI capture must be base64 encoded")
		}
		s = s[idx+len(";base64,"):]
	}
	data, err := base64Decode(s)
	if err != nil {
		return nil, errors.New("capture is not valid base64")
	}
	return data, nil
}
