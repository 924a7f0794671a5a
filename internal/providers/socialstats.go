package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chainmagnet/chainmagnet/internal/config"
	"github.com/chainmagnet/chainmagnet/internal/health"
	"github.com/chainmagnet/chainmagnet/internal/metrics"
	"github.com/chainmagnet/chainmagnet/internal/signals"
)

// SocialStats produces the community-demand signal.
type SocialStats struct {
	base
}

// NewSocialStats builds the SocialStats client.
func NewSocialStats(cfg config.ProviderConfig, tracker *health.Tracker, reg *metrics.Registry) *SocialStats {
	return &SocialStats{base: newBase(health.ProviderSocialStats, cfg, tracker, reg)}
}

type communityPayload struct {
	Followers      float64 `json:"followers"`
	Subscribers    float64 `json:"subscribers"`
	ActiveUsers48h float64 `json:"active_users_48h"`
	SentimentScore float64 `json:"sentiment_score"` // [-1, 1]
	BullishPct     float64 `json:"bullish_pct"`     // [0, 100]
	TrendPct       float64 `json:"trend_pct"`
}

func (s *SocialStats) headers() map[string]string {
	if s.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + s.apiKey}
}

// Community fetches the social signal for one token.
func (s *SocialStats) Community(ctx context.Context, tokenID string) (*signals.Social, error) {
	u := fmt.Sprintf("%s/tokens/%s/community", s.baseURL, url.PathEscape(tokenID))

	var payload communityPayload
	if err := s.getJSON(ctx, u, s.headers(), &payload); err != nil {
		return nil, err
	}
	return &signals.Social{
		Followers:      payload.Followers,
		Subscribers:    payload.Subscribers,
		ActiveUsers48:  payload.ActiveUsers48h,
		SentimentScore: payload.SentimentScore,
		SentimentPct:   payload.BullishPct,
		TrendPct:       payload.TrendPct,
	}, nil
}
