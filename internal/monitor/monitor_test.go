package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pokebrief/gradewatch/internal/alert"
	"github.com/pokebrief/gradewatch/internal/cache"
	"github.com/pokebrief/gradewatch/internal/model"
	"github.com/pokebrief/gradewatch/internal/tier"
)

type fakeSource struct {
	mu       sync.Mutex
	listings map[string][]model.Listing
	failures map[string]error
	queries  []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		listings: make(map[string][]model.Listing),
		failures: make(map[string]error),
	}
}

func (s *fakeSource) Available() bool { return true }

func (s *fakeSource) Search(ctx context.Context, query string, limit int) ([]model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if err, ok := s.failures[query]; ok {
		return nil, err
	}
	return s.listings[query], nil
}

func (s *fakeSource) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []string
}

func (n *fakeNotifier) PostAlert(report *model.Report, profit float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, report.Card.Name)
	return nil
}

func (n *fakeNotifier) alertCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

func profitableListings() []model.Listing {
	return []model.Listing{
		{Title: "Charizard Base Set Holo", Price: 50},
		{Title: "Charizard Base Set Holo NM", Price: 60},
		{Title: "Charizard Base Set PSA 9", Price: 200},
		{Title: "Charizard Base Set PSA 10 GEM MINT", Price: 400},
		{Title: "Charizard Base Set PSA 10", Price: 500},
	}
}

func newTestMonitor(t *testing.T, src Source, cards []model.Card) *Monitor {
	t.Helper()

	classifier, err := tier.NewClassifier(tier.DefaultTiers(), 5)
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}

	reports, err := cache.New(filepath.Join(t.TempDir(), "reports.json"))
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}

	cfg := Config{
		FetchTimeout:    5 * time.Second,
		SearchLimit:     50,
		SampleSize:      5,
		Workers:         2,
		GradingFee:      25,
		ProfitThreshold: 50,
		ReportTTL:       time.Hour,
	}
	gate := alert.NewGate(24*time.Hour, 0)
	return New(cfg, cards, src, classifier, gate, reports)
}

func TestCheckCard_SendsAlertWhenProfitable(t *testing.T) {
	src := newFakeSource()
	src.listings["pokemon charizard"] = profitableListings()

	card := model.Card{Name: "Charizard", Query: "pokemon charizard"}
	mon := newTestMonitor(t, src, []model.Card{card})
	notifier := &fakeNotifier{}
	mon.SetNotifier(notifier)

	if err := mon.CheckCard(context.Background(), card); err != nil {
		t.Fatalf("CheckCard() error = %v", err)
	}
	if notifier.alertCount() != 1 {
		t.Fatalf("alerts = %d, want 1", notifier.alertCount())
	}
	// raw avg 55, grade_10 avg 450, fee 25 -> profit 370, over threshold
	if notifier.alerts[0] != "Charizard" {
		t.Errorf("alert card = %q, want Charizard", notifier.alerts[0])
	}
}

func TestCheckCard_NoAlertWithoutGradedData(t *testing.T) {
	src := newFakeSource()
	src.listings["pokemon pikachu"] = []model.Listing{
		{Title: "Pikachu Jungle", Price: 10},
		{Title: "Pikachu Jungle 1st Edition", Price: 15},
	}

	card := model.Card{Name: "Pikachu", Query: "pokemon pikachu"}
	mon := newTestMonitor(t, src, []model.Card{card})
	notifier := &fakeNotifier{}
	mon.SetNotifier(notifier)

	if err := mon.CheckCard(context.Background(), card); err != nil {
		t.Fatalf("CheckCard() error = %v", err)
	}
	if notifier.alertCount() != 0 {
		t.Fatalf("alerts = %d, want 0 when no graded listings", notifier.alertCount())
	}
}

func TestCheckCard_NoNotifierAttached(t *testing.T) {
	src := newFakeSource()
	src.listings["pokemon charizard"] = profitableListings()

	card := model.Card{Name: "Charizard", Query: "pokemon charizard"}
	mon := newTestMonitor(t, src, []model.Card{card})

	if err := mon.CheckCard(context.Background(), card); err != nil {
		t.Fatalf("CheckCard() without notifier error = %v", err)
	}
}

func TestRunCycle_FailedFetchDoesNotStopOtherCards(t *testing.T) {
	src := newFakeSource()
	src.failures["pokemon charizard"] = errors.New("source down")
	src.listings["pokemon blastoise"] = profitableListings()
	src.listings["pokemon pikachu"] = profitableListings()

	cards := []model.Card{
		{Name: "Charizard", Query: "pokemon charizard"},
		{Name: "Blastoise", Query: "pokemon blastoise"},
		{Name: "Pikachu", Query: "pokemon pikachu"},
	}
	mon := newTestMonitor(t, src, cards)
	notifier := &fakeNotifier{}
	mon.SetNotifier(notifier)

	mon.RunCycle(context.Background())

	if got := src.queryCount(); got != 3 {
		t.Fatalf("queries = %d, want all 3 cards checked", got)
	}
	// global cooldown is off in the test gate, so both healthy cards alert
	if notifier.alertCount() != 2 {
		t.Errorf("alerts = %d, want 2 from the healthy cards", notifier.alertCount())
	}
}

func TestBuildReport_ProfitUsesPerCardOverrides(t *testing.T) {
	src := newFakeSource()
	src.listings["pokemon charizard"] = profitableListings()

	card := model.Card{Name: "Charizard", Query: "pokemon charizard", GradingFee: 100}
	mon := newTestMonitor(t, src, []model.Card{card})

	report, err := mon.BuildReport(context.Background(), card)
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	profit := report.Profits[tier.Grade10]
	if profit == nil {
		t.Fatal("grade_10 profit is nil, want a value")
	}
	// raw avg 55, grade_10 avg 450, override fee 100 -> 295
	if *profit != 295 {
		t.Errorf("profit = %v, want 295 with per-card fee override", *profit)
	}
}

func TestLookup_ServesCachedReportWithoutRefetch(t *testing.T) {
	src := newFakeSource()
	src.listings["pokemon charizard"] = profitableListings()

	card := model.Card{Name: "Charizard", Query: "pokemon charizard"}
	mon := newTestMonitor(t, src, []model.Card{card})

	first, err := mon.Lookup(context.Background(), "Charizard")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	second, err := mon.Lookup(context.Background(), "charizard")
	if err != nil {
		t.Fatalf("second Lookup() error = %v", err)
	}

	if src.queryCount() != 1 {
		t.Fatalf("queries = %d, want 1 (second lookup served from cache)", src.queryCount())
	}
	if !first.FetchedAt.Equal(second.FetchedAt) {
		t.Errorf("cached report FetchedAt = %v, want %v", second.FetchedAt, first.FetchedAt)
	}
}

func TestLookup_UntrackedCardGetsDefaultQuery(t *testing.T) {
	src := newFakeSource()
	src.listings["pokemon mewtwo"] = profitableListings()

	mon := newTestMonitor(t, src, nil)

	report, err := mon.Lookup(context.Background(), "Mewtwo")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if report.Card.Query != "pokemon mewtwo" {
		t.Errorf("query = %q, want derived %q", report.Card.Query, "pokemon mewtwo")
	}
	if !strings.EqualFold(report.Card.Name, "Mewtwo") {
		t.Errorf("card name = %q, want Mewtwo", report.Card.Name)
	}
}
