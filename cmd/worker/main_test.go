package main

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestScrapeScheduleRetriesAndRateLimits(t *testing.T) {
	lg := logrus.New()
	lg.SetLevel(logrus.PanicLevel)

	specs := scrapeSchedule(lg, nil, nil, nil, nil)
	require.Len(t, specs, 4)

	wantRate := map[string]rate.Limit{
		"scrape-linkedin":          rate.Every(30 * time.Minute),
		"scrape-reliefweb":         rate.Every(time.Hour),
		"scrape-myjobmag":          rate.Every(10 * time.Minute),
		"scrape-corporatestaffing": rate.Every(15 * time.Minute),
	}

	for _, spec := range specs {
		want, ok := wantRate[spec.Name]
		require.True(t, ok, "unexpected task %s", spec.Name)
		require.Equal(t, want, spec.RateLimit, spec.Name)
		require.Equal(t, 3, spec.MaxRetries, spec.Name)
		require.Equal(t, time.Minute, spec.RetryDelay, spec.Name)
		require.NotNil(t, spec.Run, spec.Name)
	}
}
