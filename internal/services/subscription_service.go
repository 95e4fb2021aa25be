package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skycast-dev/skycast/internal/config"
	"github.com/skycast-dev/skycast/internal/email"
	"github.com/skycast-dev/skycast/internal/repository"
	"github.com/skycast-dev/skycast/internal/weather"
	"github.com/skycast-dev/skycast/internal/weather/types"
)

// Sentinel errors for the HTTP handlers to inspect:
var (
	// returned when the subscription request fails validation
	ErrInvalidSubscription = errors.New("invalid subscription request")

	// returned when no report can be produced for the requested location
	ErrInvalidLocation = errors.New("invalid location")

	// returned when someone tries to subscribe the same email twice
	ErrAlreadySubscribed = errors.New("email already subscribed")

	// returned when the token string is malformed (not a UUID)
	ErrInvalidToken = errors.New("invalid token format")

	// returned when no subscription matches the given token
	ErrTokenNotFound = errors.New("subscription not found for this token")
)

// SubscriptionRequest carries everything needed to start weather updates for
// one email address.
type SubscriptionRequest struct {
	Email     string  `validate:"required,email"`
	Location  string  `validate:"required"`
	Latitude  float64 `validate:"min=-90,max=90"`
	Longitude float64 `validate:"min=-180,max=180"`
	Frequency string  `validate:"required,oneof=hourly daily"`
}

// SubscriptionService defines the subscription business operations.
type SubscriptionService interface {
	Subscribe(ctx context.Context, req SubscriptionRequest) error
	Confirm(ctx context.Context, token string) error
	Unsubscribe(ctx context.Context, token string) error
}

type subscriptionService struct {
	repo           repository.SubscriptionRepository
	emailSender    email.Sender
	weatherFetcher weather.Fetcher
	cfg            *config.Config
	logger         *zap.Logger
	validate       *validator.Validate
}

// NewSubscriptionService wires up service dependencies.
func NewSubscriptionService(
	repo repository.SubscriptionRepository,
	emailSender email.Sender,
	weatherFetcher weather.Fetcher,
	cfg *config.Config,
	logger *zap.Logger,
) SubscriptionService {
	return &subscriptionService{
		repo:           repo,
		emailSender:    emailSender,
		weatherFetcher: weatherFetcher,
		cfg:            cfg,
		logger:         logger,
		validate:       validator.New(),
	}
}

// validateLocation tries to fetch once and returns ErrInvalidLocation on failure.
func (s *subscriptionService) validateLocation(ctx context.Context, loc types.Location) error {
	if _, err := s.weatherFetcher.FetchCurrent(ctx, loc); err != nil {
		return ErrInvalidLocation
	}
	return nil
}

// Subscribe creates a new unconfirmed subscription and sends a confirmation email.
func (s *subscriptionService) Subscribe(ctx context.Context, req SubscriptionRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSubscription, err)
	}

	// probe the location with a single FetchCurrent before registering it
	loc := types.NewLocation(req.Location, req.Latitude, req.Longitude)
	if err := s.validateLocation(ctx, loc); err != nil {
		return err
	}

	confirmToken, unsubscribeToken, err := s.repo.Create(ctx, req.Email, loc, req.Frequency)
	if err != nil {
		if errors.Is(err, repository.ErrEmailAlreadyExists) {
			return ErrAlreadySubscribed
		}
		return fmt.Errorf("repo.Create: %w", err)
	}

	// Build the confirmation link (API basePath is /api)
	confirmURL := fmt.Sprintf("%s/api/confirm/%s", s.cfg.BaseURL, confirmToken.String())
	unsubscribeURL := fmt.Sprintf("%s/api/unsubscribe/%s", s.cfg.BaseURL, unsubscribeToken.String())

	body := fmt.Sprintf(
		`<p>Please confirm your subscription for <b>%s</b> weather updates:</p>
         <p><a href="%s">Confirm Subscription</a></p>
         <p><a href="%s">Unsubscribe</a></p>`,
		loc.Name, confirmURL, unsubscribeURL,
	)

	msg := email.Message{
		To:      []string{req.Email},
		Subject: "Confirm your weather subscription",
		Body:    body,
	}
	if err := s.emailSender.SendBatch([]email.Message{msg}); err != nil {
		return fmt.Errorf("email.SendBatch: %w", err)
	}

	s.logger.Info("confirmation email sent",
		zap.String("email", req.Email),
		zap.String("location", loc.Name),
		zap.String("confirmToken", confirmToken.String()),
		zap.String("unsubscribeToken", unsubscribeToken.String()),
	)
	return nil
}

// Confirm parses and validates the token, then marks the subscription confirmed.
func (s *subscriptionService) Confirm(ctx context.Context, tokenStr string) error {
	t, err := uuid.Parse(tokenStr)
	if err != nil {
		return ErrInvalidToken
	}

	if err := s.repo.Confirm(ctx, t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("repo.Confirm: %w", err)
	}

	s.logger.Info("subscription confirmed", zap.String("token", tokenStr))
	return nil
}

// Unsubscribe parses the token and deletes the associated subscription.
func (s *subscriptionService) Unsubscribe(ctx context.Context, tokenStr string) error {
	t, err := uuid.Parse(tokenStr)
	if err != nil {
		return ErrInvalidToken
	}

	if err := s.repo.DeleteByUnsubToken(ctx, t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("repo.DeleteByUnsubToken: %w", err)
	}

	s.logger.Info("subscription unsubscribed", zap.String("token", tokenStr))
	return nil
}
