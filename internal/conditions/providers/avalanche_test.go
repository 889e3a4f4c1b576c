package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/resort-conditions-aggregation/internal/conditions"
)

const advisoryFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Sierra Avalanche Center</title>
    <link>https://www.sierraavalanchecenter.org</link>
    <description><![CDATA[<p>Avalanche danger level 3 (Considerable) near and above treeline.</p><p>Expect <b>Wind Slab</b> and Persistent Slab problems on northerly aspects.</p>]]></description>
    <pubDate>Wed, 14 Jan 2026 07:00:00 GMT</pubDate>
    <item>
      <title>Avalanche Forecast</title>
      <description>Storm Slab possible</description>
    </item>
  </channel>
</rss>`

func rssWithItem(desc string) string {
	return fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel><title>t</title><item><title>Forecast</title><description><![CDATA[%s]]></description></item></channel></rss>`, desc)
}

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, "application/rss+xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSierraAvalanche_FetchAvalanche(t *testing.T) {
	srv := feedServer(t, http.StatusOK, advisoryFeed)
	p := NewSierraAvalancheProvider(testDeps(srv.Client()), srv.URL)

	adv, err := p.FetchAvalanche(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, adv.DangerLevel)
	assert.Equal(t, []string{"Wind Slab", "Persistent Slab"}, adv.Problems)
	assert.True(t, strings.HasPrefix(adv.Text, "Avalanche danger level 3 (Considerable)"))
	assert.NotContains(t, adv.Text, "<")
	assert.Equal(t, time.Date(2026, 1, 14, 7, 0, 0, 0, time.UTC), adv.LastUpdated)
	assert.Equal(t, SierraAvalancheName, adv.Source)
}

func TestNormalizeAvalancheFeed_DangerLevel(t *testing.T) {
	cases := map[string]struct {
		desc string
		want int
	}{
		"no match defaults to moderate": {"Conditions are variable today.", 2},
		"case insensitive":              {"DANGER LEVEL 4 across the range", 4},
		"clamped low":                   {"danger level 0 reported", 1},
		"clamped high":                  {"danger level 9 reported", 5},
		"first match wins":              {"danger level 1 below, danger level 3 above", 1},
	}

	parser := gofeed.NewParser()
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			feed, err := parser.ParseString(rssWithItem(tc.desc))
			require.NoError(t, err)

			adv := NormalizeAvalancheFeed(feed, testNow)
			assert.Equal(t, tc.want, adv.DangerLevel)
			assert.Equal(t, testNow, adv.LastUpdated)
		})
	}
}

func TestNormalizeAvalancheFeed_TextAndProblems(t *testing.T) {
	long := strings.Repeat("a", 250) + " wind slab storm slab cornice fall loose snow"
	adv := NormalizeAvalancheFeed(&gofeed.Feed{Description: long}, testNow)

	assert.Len(t, []rune(adv.Text), 203)
	assert.True(t, strings.HasSuffix(adv.Text, "..."))
	assert.Equal(t, []string{"Wind Slab", "Storm Slab", "Cornice Fall"}, adv.Problems)

	titleOnly := NormalizeAvalancheFeed(&gofeed.Feed{Items: []*gofeed.Item{{Title: "Danger level 5 &amp; Wet Avalanche"}}}, testNow)
	assert.Equal(t, 5, titleOnly.DangerLevel)
	assert.Equal(t, "Danger level 5 & Wet Avalanche", titleOnly.Text)
	assert.Equal(t, []string{"Wet Avalanche"}, titleOnly.Problems)

	empty := NormalizeAvalancheFeed(&gofeed.Feed{}, testNow)
	assert.Equal(t, 2, empty.DangerLevel)
	assert.Equal(t, noAdvisoryText, empty.Text)
	assert.NotNil(t, empty.Problems)
	assert.Empty(t, empty.Problems)
}

func TestSierraAvalanche_Fetch_Errors(t *testing.T) {
	t.Run("malformed feed", func(t *testing.T) {
		srv := feedServer(t, http.StatusOK, "this is not a feed")
		p := NewSierraAvalancheProvider(testDeps(srv.Client()), srv.URL)

		_, err := p.FetchAvalanche(context.Background())
		var parseErr *conditions.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, SierraAvalancheName, parseErr.Source)
	})

	t.Run("status", func(t *testing.T) {
		srv := feedServer(t, http.StatusServiceUnavailable, "down")
		p := NewSierraAvalancheProvider(testDeps(srv.Client()), srv.URL)

		_, err := p.FetchAvalanche(context.Background())
		var statusErr *conditions.UpstreamStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	})
}

func TestSierraAvalanche_ServiceMasksFailure(t *testing.T) {
	srv := feedServer(t, http.StatusInternalServerError, "boom")
	p := NewSierraAvalancheProvider(testDeps(srv.Client()), srv.URL)

	svc := conditions.NewService(conditions.Options{Avalanche: []conditions.AvalancheSource{p}})
	adv := svc.GetAvalancheDanger(context.Background())

	assert.Equal(t, conditions.SourceSynthetic, adv.Source)
	assert.GreaterOrEqual(t, adv.DangerLevel, conditions.MinDangerLevel)
	assert.LessOrEqual(t, adv.DangerLevel, conditions.MaxDangerLevel)
	assert.NotEmpty(t, adv.Problems)
}
