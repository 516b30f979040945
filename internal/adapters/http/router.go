package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/clearclause/clearclause/internal/core/ports"
	"github.com/clearclause/clearclause/internal/observability/metrics"
)

const (
	serviceName    = "api"
	maxUploadBytes = 20 << 20
)

type Router struct {
	analyzer   ports.DocumentAnalyzer
	insights   ports.InsightsGenerator
	translator ports.Translator
	speech     ports.SpeechService
	extractor  ports.TextExtractor
	audioDir   string
	metrics    *metrics.HTTPServerMetrics
}

func NewRouter(
	analyzer ports.DocumentAnalyzer,
	insights ports.InsightsGenerator,
	translator ports.Translator,
	speech ports.SpeechService,
	extractor ports.TextExtractor,
	audioDir string,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		analyzer:   analyzer,
		insights:   insights,
		translator: translator,
		speech:     speech,
		extractor:  extractor,
		audioDir:   audioDir,
		metrics:    m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents/analyze", rt.analyzeDocument)
	mux.HandleFunc("/v1/documents/insights", rt.documentInsights)
	mux.HandleFunc("/v1/clauses/analyze", rt.analyzeClause)
	mux.HandleFunc("/v1/translate", rt.translate)
	mux.HandleFunc("/v1/speech", rt.synthesizeSpeech)
	mux.HandleFunc("/v1/voices", rt.listVoices)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.Handle("/static/audio/", http.StripPrefix("/static/audio/", http.FileServer(http.Dir(rt.audioDir))))

	handler := rt.metrics.Middleware(serviceName, mux)
	handler = accessLogMiddleware(handler)
	handler = tracingMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) analyzeDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read uploaded file"})
		return
	}

	req := ports.AnalyzeRequest{
		FileBytes:     data,
		Filename:      fileHeader.Filename,
		Language:      formValue(r, "language", "english"),
		GenerateAudio: parseBoolField(r.FormValue("generate_audio")),
		Voice:         formValue(r, "voice", "kore"),
	}

	rt.metrics.StartAnalysis()
	start := time.Now()
	result := rt.analyzer.Analyze(r.Context(), req)

	if result.Error != "" {
		rt.metrics.FinishAnalysis(serviceName, "error", time.Since(start), 0, 0)
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	rt.metrics.FinishAnalysis(serviceName, "success", time.Since(start),
		result.Metadata.TotalClauses, result.Metadata.TotalEntities)
	rt.metrics.RecordClassification(serviceName, string(result.Method))
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) documentInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	text, language, ok := rt.textFromRequest(w, r)
	if !ok {
		return
	}

	insights := rt.insights.Generate(r.Context(), text, language)
	rt.metrics.RecordInsights(serviceName, nil)
	writeJSON(w, http.StatusOK, insights)
}

func (rt *Router) analyzeClause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		ClauseText string `json:"clause_text"`
		Language   string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.ClauseText) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "clause_text is required"})
		return
	}
	if req.Language == "" {
		req.Language = "english"
	}

	writeJSON(w, http.StatusOK, rt.analyzer.AnalyzeClause(r.Context(), req.ClauseText, req.Language))
}

func (rt *Router) translate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Text           string `json:"text"`
		SourceLanguage string `json:"source_language"`
		TargetLanguage string `json:"target_language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}
	if req.TargetLanguage == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "target_language is required"})
		return
	}
	if req.SourceLanguage == "" {
		req.SourceLanguage = "english"
	}

	translated, err := rt.translator.Translate(r.Context(), req.Text, req.SourceLanguage, req.TargetLanguage)
	rt.metrics.RecordTranslation(serviceName, err)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"translated_text": translated,
		"target_language": req.TargetLanguage,
	})
}

func (rt *Router) synthesizeSpeech(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Voice    string `json:"voice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}
	if req.Language == "" {
		req.Language = "english"
	}
	if req.Voice == "" {
		req.Voice = "kore"
	}

	start := time.Now()
	path := rt.speech.Synthesize(r.Context(), req.Text, req.Language, req.Voice)
	rt.metrics.RecordSynthesis(serviceName, time.Since(start), path != "")
	if path == "" {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "speech synthesis failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"audio_path": path})
}

func (rt *Router) listVoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	language := r.URL.Query().Get("language")
	if language == "" {
		language = "english"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"language": language,
		"voices":   rt.speech.Voices(language),
	})
}

// textFromRequest accepts either a JSON body with a text field or a multipart
// upload to run text extraction on.
func (rt *Router) textFromRequest(w http.ResponseWriter, r *http.Request) (text, language string, ok bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
			return "", "", false
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read uploaded file"})
			return "", "", false
		}
		text = rt.extractor.Extract(r.Context(), data, fileHeader.Filename)
		if strings.TrimSpace(text) == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "no extractable text found in document"})
			return "", "", false
		}
		return text, formValue(r, "language", "english"), true
	}

	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return "", "", false
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return "", "", false
	}
	if req.Language == "" {
		req.Language = "english"
	}
	return req.Text, req.Language, true
}

func formValue(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return fallback
}

func parseBoolField(v string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
