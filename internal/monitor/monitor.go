package monitor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/pokebrief/gradewatch/internal/alert"
	"github.com/pokebrief/gradewatch/internal/analysis"
	"github.com/pokebrief/gradewatch/internal/cache"
	"github.com/pokebrief/gradewatch/internal/model"
	"github.com/pokebrief/gradewatch/internal/tier"
)

// Source is any listing search backend: the Browse API client or the
// sold-listings scraper.
type Source interface {
	Available() bool
	Search(ctx context.Context, query string, limit int) ([]model.Listing, error)
}

// Notifier delivers an approved alert. Implemented by the Discord bot.
type Notifier interface {
	PostAlert(report *model.Report, profit float64) error
}

// Config holds the monitor's tuning knobs. Zero values pick sensible
// defaults in New.
type Config struct {
	PollInterval    time.Duration
	FetchTimeout    time.Duration
	SearchLimit     int
	SampleSize      int
	Workers         int
	GradingFee      float64
	ProfitThreshold float64
	ReportTTL       time.Duration
}

// Monitor owns the periodic card checks: fetch, classify, aggregate,
// estimate, gate, notify. It is created once at startup and mutated only
// through its own methods.
type Monitor struct {
	cfg        Config
	cards      []model.Card
	source     Source
	classifier *tier.Classifier
	gate       *alert.Gate
	reports    *cache.Cache
	limiter    *rate.Limiter
	cron       *cron.Cron

	mu       sync.RWMutex
	notifier Notifier
}

func New(cfg Config, cards []model.Card, source Source, classifier *tier.Classifier, gate *alert.Gate, reports *cache.Cache) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Minute
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 20 * time.Second
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 50
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.ReportTTL <= 0 {
		cfg.ReportTTL = cfg.PollInterval
	}

	return &Monitor{
		cfg:        cfg,
		cards:      cards,
		source:     source,
		classifier: classifier,
		gate:       gate,
		reports:    reports,
		limiter:    rate.NewLimiter(rate.Every(time.Second), cfg.Workers),
		cron:       cron.New(),
	}
}

// SetNotifier attaches the alert delivery target. Safe to call before
// Start; the bot and the monitor reference each other, so one side has to
// be wired late.
func (m *Monitor) SetNotifier(n Notifier) {
	m.mu.Lock()
	m.notifier = n
	m.mu.Unlock()
}

func (m *Monitor) getNotifier() Notifier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.notifier
}

// Start schedules poll cycles and kicks one off immediately.
func (m *Monitor) Start(ctx context.Context) error {
	spec := "@every " + m.cfg.PollInterval.String()
	if _, err := m.cron.AddFunc(spec, func() { m.RunCycle(ctx) }); err != nil {
		return fmt.Errorf("schedule poll: %w", err)
	}
	m.cron.Start()
	go m.RunCycle(ctx)

	log.Printf("monitor: polling %d card(s) every %s", len(m.cards), m.cfg.PollInterval)
	return nil
}

// Stop halts the schedule and waits for a running cycle to finish.
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
}

// RunCycle checks every tracked card once. Card checks fan out to a small
// worker pool; one card's failure never stops the others, it just waits
// for the next tick.
func (m *Monitor) RunCycle(ctx context.Context) {
	if len(m.cards) == 0 {
		return
	}

	jobs := make(chan model.Card)
	var wg sync.WaitGroup

	for w := 0; w < m.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for card := range jobs {
				if err := m.limiter.Wait(ctx); err != nil {
					return
				}
				if err := m.CheckCard(ctx, card); err != nil {
					log.Printf("monitor: %s: %v", card.Name, err)
				}
			}
		}()
	}

feed:
	for _, card := range m.cards {
		select {
		case jobs <- card:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
}

// CheckCard runs the fetch → classify → aggregate → estimate → gate
// pipeline for one card and notifies when the gate approves.
func (m *Monitor) CheckCard(ctx context.Context, card model.Card) error {
	report, err := m.BuildReport(ctx, card)
	if err != nil {
		return err
	}
	m.storeReport(report)

	profit := report.Profits[tier.Grade10]
	decision := m.gate.TryConsume(card.Name, profit, m.threshold(card))
	if !decision.Approved {
		log.Printf("monitor: %s: alert withheld (%s)", card.Name, decision.Reason)
		return nil
	}

	notifier := m.getNotifier()
	if notifier == nil {
		log.Printf("monitor: %s: alert approved, no notifier attached", card.Name)
		return nil
	}
	if err := notifier.PostAlert(report, *profit); err != nil {
		return fmt.Errorf("post alert: %w", err)
	}

	log.Printf("monitor: %s: alert sent (profit %s)", card.Name, analysis.Money(profit))
	return nil
}

// BuildReport fetches current listings for the card and aggregates them
// into per-tier stats and profit estimates.
func (m *Monitor) BuildReport(ctx context.Context, card model.Card) (*model.Report, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, m.cfg.FetchTimeout)
	defer cancel()

	listings, err := m.source.Search(fetchCtx, card.Query, m.cfg.SearchLimit)
	if err != nil {
		return nil, err
	}

	buckets := m.classifier.Partition(listings)

	report := &model.Report{
		Card:      card,
		Tiers:     make(map[string]model.TierStats, len(buckets)),
		Profits:   make(map[string]*float64),
		FetchedAt: time.Now().UTC(),
	}
	for name, sample := range buckets {
		report.Tiers[name] = analysis.Aggregate(sample, m.cfg.SampleSize)
	}

	raw := report.Tiers[tier.Raw]
	for _, graded := range m.classifier.GradedTiers() {
		report.Profits[graded] = analysis.EstimateProfit(raw, report.Tiers[graded], m.fee(card))
	}

	return report, nil
}

// Lookup serves on-demand price checks. A live cached report answers
// first; otherwise the card is fetched fresh, whether tracked or not.
func (m *Monitor) Lookup(ctx context.Context, name string) (*model.Report, error) {
	if m.reports != nil {
		var report model.Report
		if found, _ := m.reports.Get(cache.ReportKey(name), &report); found {
			return &report, nil
		}
	}

	card, ok := m.findCard(name)
	if !ok {
		card = model.Card{Name: name, Query: "pokemon " + strings.ToLower(name)}
	}

	report, err := m.BuildReport(ctx, card)
	if err != nil {
		return nil, err
	}
	m.storeReport(report)
	return report, nil
}

func (m *Monitor) storeReport(report *model.Report) {
	if m.reports == nil {
		return
	}
	if err := m.reports.Put(cache.ReportKey(report.Card.Name), report, m.cfg.ReportTTL); err != nil {
		log.Printf("monitor: cache report for %s: %v", report.Card.Name, err)
	}
}

func (m *Monitor) findCard(name string) (model.Card, bool) {
	for _, card := range m.cards {
		if strings.EqualFold(strings.TrimSpace(name), card.Name) {
			return card, true
		}
	}
	return model.Card{}, false
}

func (m *Monitor) fee(card model.Card) float64 {
	if card.GradingFee > 0 {
		return card.GradingFee
	}
	return m.cfg.GradingFee
}

func (m *Monitor) threshold(card model.Card) float64 {
	if card.ProfitThreshold > 0 {
		return card.ProfitThreshold
	}
	return m.cfg.ProfitThreshold
}
