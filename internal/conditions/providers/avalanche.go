package providers

import (
	"bytes"
	"context"
	"html"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/resort-conditions-aggregation/internal/common"
	"github.com/i474232898/resort-conditions-aggregation/internal/conditions"
)

const (
	SierraAvalancheName     = "sierra-avalanche-center"
	DefaultAvalancheFeedURL = "https://www.sierraavalanchecenter.org/xml"

	defaultDangerLevel = 2
	advisoryTextLimit  = 200
	noAdvisoryText     = "No advisory text available"
)

var (
	dangerLevelRe = regexp.MustCompile(`(?i)danger level (\d)`)
	markupRe      = regexp.MustCompile(`<[^>]*>`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// SierraAvalancheProvider implements conditions.AvalancheSource over the Sierra Avalanche
// Center RSS feed.
type SierraAvalancheProvider struct {
	name    string
	feedURL string
	client  *http.Client
	clock   clockwork.Clock
	logger  *zap.SugaredLogger
	circuit *gobreaker.CircuitBreaker
}

func NewSierraAvalancheProvider(deps Deps, feedURL string) *SierraAvalancheProvider {
	deps = deps.withDefaults()
	if feedURL == "" {
		feedURL = DefaultAvalancheFeedURL
	}
	return &SierraAvalancheProvider{
		name:    SierraAvalancheName,
		feedURL: feedURL,
		client:  deps.Client,
		clock:   deps.Clock,
		logger:  deps.Logger.With("source", SierraAvalancheName),
		circuit: newBreaker(SierraAvalancheName),
	}
}

func (p *SierraAvalancheProvider) Name() string {
	return p.name
}

// Fetch downloads and parses the advisory feed.
func (p *SierraAvalancheProvider) Fetch(ctx context.Context) (*gofeed.Feed, error) {
	body, err := fetchBody(ctx, p.client, p.circuit, p.name, p.feedURL, "application/rss+xml, application/xml, text/xml")
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, parseErr(p.name, err)
	}
	return feed, nil
}

// FetchAvalanche fetches and normalizes the current advisory.
func (p *SierraAvalancheProvider) FetchAvalanche(ctx context.Context) (conditions.AvalancheAdvisory, error) {
	feed, err := p.Fetch(ctx)
	if err != nil {
		return conditions.AvalancheAdvisory{}, err
	}
	adv := NormalizeAvalancheFeed(feed, p.clock.Now())
	p.logger.Debugw("parsed advisory", "danger_level", adv.DangerLevel, "problems", adv.Problems)
	return adv, nil
}

// NormalizeAvalancheFeed extracts a danger level, summary text and problem list from a feed.
// A missing danger level defaults to 2 (moderate).
func NormalizeAvalancheFeed(feed *gofeed.Feed, now time.Time) conditions.AvalancheAdvisory {
	text := plainText(advisoryDescription(feed))

	level := defaultDangerLevel
	if m := dangerLevelRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			level = n
		}
	}

	summary := common.Truncate(text, advisoryTextLimit, "...")
	if summary == "" {
		summary = noAdvisoryText
	}

	return conditions.AvalancheAdvisory{
		DangerLevel: conditions.ClampDangerLevel(level),
		Text:        summary,
		Problems:    extractProblems(text),
		LastUpdated: feedTime(feed, now).UTC(),
		Source:      SierraAvalancheName,
	}
}

func advisoryDescription(feed *gofeed.Feed) string {
	if feed == nil {
		return ""
	}
	if strings.TrimSpace(feed.Description) != "" {
		return feed.Description
	}
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if strings.TrimSpace(item.Description) != "" {
			return item.Description
		}
		if strings.TrimSpace(item.Title) != "" {
			return item.Title
		}
	}
	return ""
}

// extractProblems returns vocabulary problems mentioned in text, in vocabulary order.
func extractProblems(text string) []string {
	problems := make([]string, 0, conditions.MaxProblems)
	for _, p := range conditions.AvalancheProblems {
		if len(problems) == conditions.MaxProblems {
			break
		}
		if common.ContainsFold(text, p) {
			problems = append(problems, p)
		}
	}
	return problems
}

func feedTime(feed *gofeed.Feed, now time.Time) time.Time {
	if feed == nil {
		return now
	}
	if feed.UpdatedParsed != nil {
		return *feed.UpdatedParsed
	}
	if feed.PublishedParsed != nil {
		return *feed.PublishedParsed
	}
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if item.UpdatedParsed != nil {
			return *item.UpdatedParsed
		}
		if item.PublishedParsed != nil {
			return *item.PublishedParsed
		}
	}
	return now
}

func plainText(s string) string {
	s = html.UnescapeString(markupRe.ReplaceAllString(s, " "))
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
