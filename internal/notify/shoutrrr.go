package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"slices"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// ShoutrrrChannel sends alerts to any shoutrrr service URL (slack, telegram,
// generic webhooks, smtp...).
type ShoutrrrChannel struct {
	urls   []string
	sender *router.ServiceRouter
}

// NewShoutrrrChannel validates urls and builds a single sender for all of them.
func NewShoutrrrChannel(urls []string, timeout time.Duration) (*ShoutrrrChannel, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one notification URL is required")
	}
	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("create shoutrrr sender: %w", err)
	}
	if timeout > 0 {
		sender.Timeout = timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))
	return &ShoutrrrChannel{urls: slices.Clone(urls), sender: sender}, nil
}

func (s *ShoutrrrChannel) Name() string { return "shoutrrr" }

func (s *ShoutrrrChannel) Send(_ context.Context, alert weather.Alert) error {
	params := stypes.Params{}
	params.SetTitle("Temperature alert: " + alert.City)

	for _, err := range s.sender.Send(alert.Message, &params) {
		if err != nil {
			return err
		}
	}
	return nil
}
