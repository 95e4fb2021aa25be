// Package broadcast periodically publishes weather updates to confirmed
// subscribers.
package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/skycast-dev/skycast/internal/email"
	"github.com/skycast-dev/skycast/internal/notifier"
	"github.com/skycast-dev/skycast/internal/repository"
	"github.com/skycast-dev/skycast/internal/weather"
	"github.com/skycast-dev/skycast/internal/weather/types"
)

// cronSpec fires every minute, at second 0 (standard 5-field).
const cronSpec = "* * * * *"

// Broadcaster drives the per-minute publish cycle: pick the subscriptions
// whose schedule matches the current slot, fabricate one report per location
// and fan it out to the subscribers.
type Broadcaster struct {
	cron    *cron.Cron
	repo    repository.SubscriptionRepository
	fetcher weather.Fetcher
	sender  email.Sender
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// New wires up a Broadcaster. Call Start to begin publishing.
func New(
	repo repository.SubscriptionRepository,
	fetcher weather.Fetcher,
	sender email.Sender,
	baseURL string,
	logger *zap.Logger,
) *Broadcaster {
	return &Broadcaster{
		cron:    cron.New(),
		repo:    repo,
		fetcher: fetcher,
		sender:  sender,
		baseURL: baseURL,
		logger:  logger,
		now:     time.Now,
	}
}

// Start schedules the publish job and starts the cron loop.
func (b *Broadcaster) Start() error {
	if _, err := b.cron.AddFunc(cronSpec, b.publishDue); err != nil {
		return fmt.Errorf("unable to schedule publish job: %w", err)
	}
	b.logger.Info("starting broadcaster", zap.String("cronSpec", cronSpec))
	b.cron.Start()
	return nil
}

// Stop halts the cron loop; a publish cycle already running is not interrupted.
func (b *Broadcaster) Stop() {
	b.cron.Stop()
}

// publishDue collects the subscription batches whose schedule matches the
// current slot and publishes to them.
func (b *Broadcaster) publishDue() {
	// Add 30s to avoid rolling edge cases (e.g. 12:05:59.999)
	now := b.now().Add(30 * time.Second)
	minute := now.Minute()
	hour := now.Hour()

	ctx := context.Background()
	var due []repository.Subscription

	hourlySubs, err := b.repo.HourlyBatch(ctx, minute)
	if err != nil {
		b.logger.Error("failed to fetch hourly subscriptions",
			zap.Int("minute", minute), zap.Error(err))
	} else {
		due = append(due, hourlySubs...)
	}

	dailySubs, err := b.repo.DailyBatch(ctx, hour, minute)
	if err != nil {
		b.logger.Error("failed to fetch daily subscriptions",
			zap.Int("hour", hour), zap.Int("minute", minute), zap.Error(err))
	} else {
		due = append(due, dailySubs...)
	}

	if len(due) == 0 {
		return
	}
	b.Publish(ctx, due)
}

// Publish fetches one report per distinct location and dispatches it through
// an observer registry: a log observer plus one mail observer per subscriber.
// The rendered emails go out in a single batch afterwards.
func (b *Broadcaster) Publish(ctx context.Context, subs []repository.Subscription) {
	groups := make(map[string][]repository.Subscription)
	for _, sub := range subs {
		key := sub.Location().Key()
		groups[key] = append(groups[key], sub)
	}

	var outbox []email.Message
	logObserver := notifier.NewLogObserver(b.logger)

	for _, group := range groups {
		loc := group[0].Location()

		report, err := b.fetcher.FetchCurrent(ctx, loc)
		if err != nil {
			b.logger.Error("weather fetch failed",
				zap.String("location", loc.Name), zap.Error(err))
			continue
		}

		reg := notifier.New()
		reg.Add(logObserver)
		for _, sub := range group {
			reg.Add(&mailObserver{
				outbox:         &outbox,
				to:             sub.Email,
				unsubscribeURL: fmt.Sprintf("%s/api/unsubscribe/%s", b.baseURL, sub.UnsubscribeToken.String()),
			})
		}

		if err := reg.Notify(report); err != nil {
			b.logger.Error("report dispatch aborted",
				zap.String("location", loc.Name), zap.Error(err))
		}
	}

	if len(outbox) == 0 {
		return
	}
	if err := b.sender.SendBatch(outbox); err != nil {
		b.logger.Error("failed to send weather update emails", zap.Error(err))
		return
	}
	b.logger.Info("sent weather update emails", zap.Int("count", len(outbox)))
}

// mailObserver renders a published report into an update email for one
// subscriber, appending it to the shared outbox.
type mailObserver struct {
	outbox         *[]email.Message
	to             string
	unsubscribeURL string
}

func (o *mailObserver) Update(report types.Report) error {
	body := fmt.Sprintf(
		`<p>Current weather in <b>%s</b>:</p>
<ul>
  <li>Temperature: %.1f°C (%.1f°F)</li>
  <li>Humidity: %d%%</li>
  <li>Condition: %s</li>
</ul>
<p><a href="%s">Unsubscribe</a> from these updates.</p>`,
		report.Location.Name,
		report.Temperature,
		types.NewFahrenheitReport(report).Temperature(),
		report.Humidity,
		report.Condition,
		o.unsubscribeURL,
	)

	*o.outbox = append(*o.outbox, email.Message{
		To:      []string{o.to},
		Subject: fmt.Sprintf("Weather update for %s", report.Location.Name),
		Body:    body,
	})
	return nil
}
