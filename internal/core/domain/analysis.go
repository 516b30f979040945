package domain

// EntityType is the domain taxonomy for extracted entities.
type EntityType string

const (
	EntityParty         EntityType = "Party"
	EntityLocation      EntityType = "Location"
	EntityDate          EntityType = "Date"
	EntityLegalTerm     EntityType = "Legal Term"
	EntityMonetaryValue EntityType = "Monetary Value"
	EntityObligation    EntityType = "Obligation"
	EntityLegalContext  EntityType = "Legal Context"
	EntityOther         EntityType = "Other"
)

// Clause is a numbered or paragraph-delimited segment of a legal document.
// Numbers are 1-based and assigned in order of appearance, regardless of the
// numbering scheme found in the source text.
type Clause struct {
	Number         int    `json:"clause_number"`
	OriginalText   string `json:"original_text"`
	SimplifiedText string `json:"simplified_text,omitempty"`
}

// Entity is a span of interest found in document or clause text. Offsets are
// byte offsets into the text the entity was extracted from.
type Entity struct {
	Type       EntityType `json:"type"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
}

// ClassificationMethod records which branch produced a classification result,
// so fallback is a designed outcome rather than an incidental catch.
type ClassificationMethod string

const (
	MethodModel     ClassificationMethod = "model"
	MethodFastLabel ClassificationMethod = "fast-label"
	MethodKeyword   ClassificationMethod = "keyword"
)

type Classification struct {
	DocType    string               `json:"doc_type"`
	Subtype    string               `json:"subtype"`
	Confidence float64              `json:"confidence"`
	Method     ClassificationMethod `json:"method,omitempty"`
}

// AnalysisMetadata describes the processed document.
type AnalysisMetadata struct {
	Filename      string `json:"filename"`
	Language      string `json:"language"`
	TotalClauses  int    `json:"total_clauses"`
	TotalEntities int    `json:"total_entities"`
}

// AnalysisResult is the aggregate output of one document-processing run and
// the sole artifact consumed by the transport layer. Substructures are always
// non-nil, including in the error path. AudioPaths keys are clause numbers
// rendered as strings, plus the "summary" sentinel.
type AnalysisResult struct {
	Error          string               `json:"error,omitempty"`
	DocType        string               `json:"doc_type"`
	DocSubtype     string               `json:"doc_subtype"`
	Confidence     float64              `json:"confidence"`
	Method         ClassificationMethod `json:"classification_method,omitempty"`
	Entities       []Entity             `json:"entities"`
	Clauses        []Clause             `json:"clauses"`
	ClauseEntities map[int][]Entity     `json:"clause_entities"`
	AudioPaths     map[string]string    `json:"audio_paths"`
	Metadata       AnalysisMetadata     `json:"metadata"`
}

// EmptyAnalysisResult returns a result with every substructure allocated, used
// for error outcomes so consumers never see nil maps or slices.
func EmptyAnalysisResult(errMessage, filename, language string) *AnalysisResult {
	return &AnalysisResult{
		Error:          errMessage,
		DocType:        "Unknown",
		DocSubtype:     "Unknown",
		Entities:       []Entity{},
		Clauses:        []Clause{},
		ClauseEntities: map[int][]Entity{},
		AudioPaths:     map[string]string{},
		Metadata: AnalysisMetadata{
			Filename: filename,
			Language: language,
		},
	}
}

// ClauseAnalysis is the drill-down result for a single clause.
type ClauseAnalysis struct {
	OriginalText   string   `json:"original_text"`
	SimplifiedText string   `json:"simplified_text"`
	Entities       []Entity `json:"entities"`
	Language       string   `json:"language"`
}

// Insights is the reduced output of concurrent per-chunk document analyses.
type Insights struct {
	Summary      string   `json:"summary"`
	KeyPoints    []string `json:"key_points"`
	Risks        []string `json:"risks"`
	ActionItems  []string `json:"action_items"`
	DocumentType string   `json:"document_type"`
	Language     string   `json:"detected_language"`
}

// TagSpan is a raw span produced by the statistical entity-tagging capability,
// before re-labeling into the domain taxonomy.
type TagSpan struct {
	Label string  `json:"label"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}
