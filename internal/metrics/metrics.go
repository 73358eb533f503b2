// Package metrics exposes the bot's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VentsSubmitted counts vents accepted and published.
	VentsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hearth",
		Name:      "vents_submitted_total",
		Help:      "Number of vent submissions published.",
	})

	// CheckinsPosted counts daily check-in messages posted.
	CheckinsPosted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hearth",
		Name:      "checkins_posted_total",
		Help:      "Number of daily check-in messages posted.",
	})

	// StickyReposts counts sticky message reposts.
	StickyReposts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hearth",
		Name:      "sticky_reposts_total",
		Help:      "Number of times the sticky message was reposted.",
	})

	// TokenRedemptions counts successful access token redemptions.
	TokenRedemptions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hearth",
		Name:      "token_redemptions_total",
		Help:      "Number of access tokens redeemed.",
	})
)
