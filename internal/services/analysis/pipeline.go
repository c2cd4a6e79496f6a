package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/domain/news"
	"marketpulse/internal/domain/portfolio"
	"marketpulse/internal/domain/scenario"
	"marketpulse/internal/domain/sector"
	"marketpulse/internal/domain/sentiment"
	"marketpulse/internal/domain/summary"
	"marketpulse/internal/domain/text"
	"marketpulse/internal/metrics"
	"marketpulse/internal/services/drivers"
	"marketpulse/internal/services/extraction"
	portfoliosvc "marketpulse/internal/services/portfolio"
	scenariosvc "marketpulse/internal/services/scenario"
	sectorsvc "marketpulse/internal/services/sector"
	sentimentsvc "marketpulse/internal/services/sentiment"
	summarysvc "marketpulse/internal/services/summary"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
	"marketpulse/pkg/templates"
)

// Pipeline is the rule-based Analyzer. It holds no per-request state; every
// call works on the snapshot that was active when it started.
type Pipeline struct {
	store     *dictionary.Store
	opts      Options
	cache     Cache
	templates *templates.Registry
	log       *logger.Logger
}

// NewPipeline creates a rule-based pipeline. cache may be nil.
func NewPipeline(store *dictionary.Store, opts Options, cache Cache) (*Pipeline, error) {
	if store == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "dictionary store is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid analysis options")
	}
	registry := templates.Get()
	if err := CheckTemplates(registry); err != nil {
		return nil, errors.NewConfigError("analysis templates", err)
	}
	return &Pipeline{
		store:     store,
		opts:      opts,
		cache:     cache,
		templates: registry,
		log:       logger.Get().With("component", "analysis_pipeline"),
	}, nil
}

// CheckTemplates verifies that reg defines every block the scenario generator
// and the portfolio mapper render
func CheckTemplates(reg *templates.Registry) error {
	if err := scenariosvc.CheckTemplates(reg); err != nil {
		return err
	}
	return portfoliosvc.CheckTemplates(reg)
}

// Mode implements Analyzer
func (p *Pipeline) Mode() Mode { return ModeRuleBased }

// Options returns the options the pipeline was built with
func (p *Pipeline) Options() Options { return p.opts }

// stages are the services bound to one snapshot
type stages struct {
	sentiment  *sentimentsvc.Classifier
	sectors    *sectorsvc.Classifier
	extractor  *extraction.Extractor
	summarizer *summarysvc.Summarizer
	aggregator *summarysvc.Aggregator
	detector   *drivers.Detector
	scenarios  *scenariosvc.Generator
	mapper     *portfoliosvc.Mapper
}

func (p *Pipeline) stagesFor(snap *dictionary.Snapshot) *stages {
	sectors := sectorsvc.NewClassifier(snap, p.opts.SectorTopN)
	extractor := extraction.NewExtractor(snap, p.opts.MaxKeywords)
	summarizer := summarysvc.NewSummarizer(snap, extractor, summarysvc.Options{
		MaxSentences: p.opts.MaxSentencesPerNews,
		MaxChars:     p.opts.MaxCharsPerNews,
	})
	return &stages{
		sentiment:  sentimentsvc.NewClassifier(snap),
		sectors:    sectors,
		extractor:  extractor,
		summarizer: summarizer,
		aggregator: summarysvc.NewAggregator(summarizer, summarysvc.MetaOptions{
			MaxSentences:   p.opts.MetaSummaryMaxSentences,
			MaxChars:       p.opts.MetaSummaryMaxChars,
			DedupThreshold: p.opts.DedupSimilarityThreshold,
		}),
		detector: drivers.NewDetector(drivers.Options{
			MinNewsPerDriver: p.opts.MinNewsPerDriver,
			MaxDrivers:       p.opts.MaxDrivers,
			MinKeywordFreq:   p.opts.MinKeywordFreq,
		}),
		scenarios: scenariosvc.NewGenerator(snap, p.templates, scenariosvc.Options{
			MinConfidence: p.opts.MinScenarioConfidence,
		}),
		mapper: portfoliosvc.NewMapper(sectors, p.templates, portfoliosvc.Options{
			MinConfidence: p.opts.MinMappingConfidence,
		}),
	}
}

// Analyze runs the map stage (per article, in parallel) and then the batch,
// meta-summary, driver, scenario and mapping stages. Unusable articles and
// portfolio items become warnings; only cancellation and rendering failures
// abort the call.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := p.store.Current()

	var cacheKey string
	if p.cache != nil {
		key, err := CacheKey(snap.Version(), req, p.opts)
		if err != nil {
			p.log.Warnw("Report cache key failed", "error", err)
		} else {
			cacheKey = key
			cached, ok, err := p.cache.Get(ctx, key)
			if err != nil {
				p.log.Warnw("Report cache lookup failed", "error", err)
			} else if ok {
				return cached, nil
			}
		}
	}

	st := p.stagesFor(snap)
	report := &Report{
		Mode:              ModeRuleBased,
		DictionaryVersion: snap.Version(),
		Drivers:           []DriverReport{},
		Warnings:          []news.Warning{},
	}

	// map
	stageStart := time.Now()
	articles, problems := p.screen(req.Articles)
	analyses, err := p.mapArticles(ctx, st, articles, problems, req.Language)
	if err != nil {
		return nil, err
	}
	report.Articles = analyses
	for i, problem := range problems {
		if problem != "" {
			report.Warnings = append(report.Warnings, p.warn(errors.NewInputError(problem), articles[i].ID))
		}
	}
	metrics.RecordStage("map", time.Since(stageStart))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// summarize
	stageStart = time.Now()
	summaries := make([]summary.ExtractiveSummary, 0, len(analyses))
	for _, a := range analyses {
		if !a.Skipped {
			summaries = append(summaries, a.Summary)
		}
	}
	report.Batches = summarysvc.BuildBatches(summaries, p.opts.BatchSize, p.opts.MaxCharsPerBatch)
	report.MetaSummary = st.aggregator.Aggregate(report.Batches)
	metrics.RecordStage("summarize", time.Since(stageStart))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// drivers
	stageStart = time.Now()
	detected := st.detector.Detect(analyses)
	metrics.RecordStage("drivers", time.Since(stageStart))
	if len(detected) == 0 {
		report.Warnings = append(report.Warnings, p.warn(errors.NewInsufficientDataError(
			fmt.Sprintf("no group reached %d articles", p.opts.MinNewsPerDriver),
		), ""))
	}

	// scenarios and mappings
	stageStart = time.Now()
	items := p.validItems(req.Portfolio, report)
	byID := make(map[string]news.Article, len(articles))
	for i, a := range articles {
		if !analyses[i].Skipped {
			byID[a.ID] = a
		}
	}

	for _, d := range detected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		members := make([]news.Article, 0, d.Size())
		texts := make([]string, 0, d.Size())
		for _, id := range d.MemberIDs {
			a := byID[id]
			members = append(members, a)
			texts = append(texts, a.Text())
		}

		set, err := st.scenarios.Generate(d, members)
		if err != nil {
			return nil, errors.Wrapf(err, "driver %s", d.ID)
		}

		mappings := []portfolio.AssetMapping{}
		if len(items) > 0 {
			mappings, err = st.mapper.Map(d, set, texts, items)
			if err != nil {
				return nil, errors.Wrapf(err, "driver %s", d.ID)
			}
		}

		report.Drivers = append(report.Drivers, DriverReport{Driver: d, Scenarios: set, Mappings: mappings})
		recordDriver(set, mappings)
	}
	metrics.RecordStage("scenarios", time.Since(stageStart))

	skipped := 0
	for _, a := range analyses {
		if a.Skipped {
			skipped++
		}
	}
	metrics.RecordArticles(len(analyses)-skipped, skipped)
	metrics.RecordStage("total", time.Since(start))

	p.log.Debugw("Analysis complete",
		"dictionary_version", report.DictionaryVersion,
		"articles", len(analyses),
		"skipped", skipped,
		"batches", len(report.Batches),
		"drivers", len(report.Drivers),
		"warnings", len(report.Warnings),
		"duration", time.Since(start),
	)

	if cacheKey != "" {
		if err := p.cache.Set(ctx, cacheKey, report); err != nil {
			p.log.Warnw("Report cache store failed", "error", err)
		}
	}
	return report, nil
}

// screen assigns ids to anonymous articles and returns, per article, why it
// cannot be analyzed ("" when it can).
func (p *Pipeline) screen(in []news.Article) ([]news.Article, []string) {
	articles := make([]news.Article, len(in))
	problems := make([]string, len(in))
	seen := make(map[string]struct{}, len(in))

	for i, a := range in {
		a.ID = strings.TrimSpace(a.ID)
		if a.ID == "" {
			a.ID = fmt.Sprintf("article-%d", i+1)
		}
		articles[i] = a

		if _, dup := seen[a.ID]; dup {
			problems[i] = fmt.Sprintf("duplicate article id %q", a.ID)
			continue
		}
		seen[a.ID] = struct{}{}

		chars := text.CharCount(strings.TrimSpace(a.Body))
		switch {
		case chars == 0:
			problems[i] = "article body is empty"
		case chars < p.opts.MinArticleChars:
			problems[i] = fmt.Sprintf("article body has %d chars, minimum is %d", chars, p.opts.MinArticleChars)
		}
	}
	return articles, problems
}

// mapArticles analyzes every article with at most Workers in flight. Results
// are stored by index so output order equals input order.
func (p *Pipeline) mapArticles(ctx context.Context, st *stages, articles []news.Article, problems []string, hint string) ([]news.Analysis, error) {
	out := make([]news.Analysis, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i := range articles {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if problems[i] != "" {
				out[i] = skippedAnalysis(articles[i].ID, hint, p.opts.SectorTopN)
				return nil
			}
			out[i] = st.analyze(articles[i], hint)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (st *stages) analyze(a news.Article, hint string) news.Analysis {
	doc := a.Text()
	score := st.sentiment.Classify(doc, hint)
	ext := st.extractor.Extract(doc, score.Language)

	return news.Analysis{
		ArticleID: a.ID,
		Sentiment: score,
		Sector:    st.sectors.Classify(doc),
		Keywords:  ext.Keywords,
		Entities:  ext.Entities,
		Tickers:   ext.Tickers,
		Summary:   st.summarizer.Summarize(a.ID, a.Body),
	}
}

func skippedAnalysis(id, hint string, topN int) news.Analysis {
	lang := hint
	if lang == "" {
		lang = text.DefaultLanguage
	}
	return news.Analysis{
		ArticleID: id,
		Sentiment: sentiment.Fallback(lang),
		Sector:    sector.FromWeights(nil, topN),
		Keywords:  []string{},
		Entities:  []string{},
		Tickers:   []string{},
		Summary:   summary.ExtractiveSummary{ArticleID: id, Sentences: []summary.Sentence{}},
		Skipped:   true,
	}
}

// validItems drops portfolio items that fail validation, one warning each
func (p *Pipeline) validItems(items []portfolio.Item, report *Report) []portfolio.Item {
	valid := make([]portfolio.Item, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			report.Warnings = append(report.Warnings, p.warn(
				errors.NewInputError(fmt.Sprintf("portfolio item %q ignored: %v", item.ID, err)), "",
			))
			continue
		}
		valid = append(valid, item)
	}
	return valid
}

func (p *Pipeline) warn(err *errors.DomainError, articleID string) news.Warning {
	p.log.Warnw("Recovered analysis problem",
		"code", err.Code,
		"article_id", articleID,
		"message", err.Message,
	)
	metrics.RecordWarning(err.Code)
	return news.Warning{
		Code:      err.Code,
		ArticleID: articleID,
		Message:   err.Message,
	}
}

func recordDriver(set scenario.Set, mappings []portfolio.AssetMapping) {
	variants := make([]string, 0, len(set))
	for _, sc := range set {
		variants = append(variants, string(sc.Variant))
	}
	matches := make([]string, 0, len(mappings))
	for _, m := range mappings {
		matches = append(matches, string(m.MatchType))
	}
	metrics.RecordDriver(variants, matches)
}
