package bootstrap

import (
	"fmt"

	"github.com/clearclause/clearclause/internal/config"
	"github.com/clearclause/clearclause/internal/core/ports"
	"github.com/clearclause/clearclause/internal/core/usecase"
	"github.com/clearclause/clearclause/internal/infrastructure/chunking"
	"github.com/clearclause/clearclause/internal/infrastructure/extractor"
	"github.com/clearclause/clearclause/internal/infrastructure/llm/gemini"
	"github.com/clearclause/clearclause/internal/infrastructure/resilience"
	"github.com/clearclause/clearclause/internal/infrastructure/speech/edge"
	"github.com/clearclause/clearclause/internal/infrastructure/storage/localfs"
	"github.com/clearclause/clearclause/internal/infrastructure/tagger/hf"
	"github.com/clearclause/clearclause/internal/lexicon"
)

type App struct {
	Config config.Config

	Analyzer   ports.DocumentAnalyzer
	Insights   ports.InsightsGenerator
	Translator ports.Translator
	Speech     ports.SpeechService
	Extractor  ports.TextExtractor
}

func New(cfg config.Config) (*App, error) {
	lex, err := lexicon.Load()
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	store, err := localfs.New(cfg.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("init audio storage: %w", err)
	}

	exec := resilience.NewExecutor(resilience.Config{
		MaxConcurrent:    cfg.ExecMaxConcurrent,
		PacingInterval:   cfg.ExecPacingInterval,
		JitterMin:        cfg.ExecJitterMin,
		JitterMax:        cfg.ExecJitterMax,
		MaxAttempts:      cfg.ExecMaxAttempts,
		QuotaBackoffStep: cfg.ExecQuotaBackoffStep,
		BreakerEnabled:   cfg.ExecBreakerEnabled,
	})

	llm := gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)
	tagger := hf.New(cfg.HFBaseURL, cfg.HFToken, cfg.HFNERModel, cfg.HFLabelModel)
	synth := edge.New(cfg.SpeechEndpoint, cfg.SpeechOrigin)

	chunker := chunking.NewSplitter(cfg.ChunkSize)
	textExtractor := extractor.New()

	segmenter := usecase.NewClauseSegmenter()
	classifier := usecase.NewDocumentClassifier(llm, tagger, exec, chunker, lex)
	entities := usecase.NewEntityExtractor(tagger, lex)
	simplifier := usecase.NewClauseSimplifier(llm, exec, lex, usecase.SimplifierConfig{
		BatchSize:        cfg.SimplifyBatchSize,
		BatchMaxChars:    cfg.SimplifyBatchMaxChars,
		CircuitThreshold: cfg.SimplifyCircuitThreshold,
	})
	speech := usecase.NewSpeechOrchestrator(synth, store, lex, usecase.SpeechConfig{
		MaxTextLen:       cfg.SpeechMaxTextLen,
		MaxAttempts:      cfg.SpeechMaxAttempts,
		RetryDelay:       cfg.SpeechRetryDelay,
		InterClauseDelay: cfg.SpeechInterClauseDelay,
	})

	return &App{
		Config:     cfg,
		Analyzer:   usecase.NewAnalyzePipeline(textExtractor, segmenter, classifier, entities, simplifier, speech),
		Insights:   usecase.NewInsightGenerator(llm, exec, chunker),
		Translator: usecase.NewTextTranslator(llm, exec, chunker, lex),
		Speech:     speech,
		Extractor:  textExtractor,
	}, nil
}
