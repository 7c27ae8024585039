package service

import (
	"context"
	"fmt"
	"strings"

	"taskflow/internal/clock"
	"taskflow/internal/model"
)

// ReviewService keeps one review per day.
type ReviewService struct {
	reviews ReviewStore
	clock   clock.Clock
}

func NewReviewService(reviews ReviewStore, c clock.Clock) *ReviewService {
	return &ReviewService{reviews: reviews, clock: c}
}

// Today returns today's review, or nil when none was written yet.
func (s *ReviewService) Today(ctx context.Context) (*model.Review, error) {
	day := s.clock.StartOfDay(s.clock.Now())
	review, err := s.reviews.FindBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return review, nil
}

// SaveToday creates or updates today's review.
func (s *ReviewService) SaveToday(ctx context.Context, content string, score int) (*model.Review, error) {
	if score < model.MinReviewScore || score > model.MaxReviewScore {
		return nil, fmt.Errorf("%w: score must be %d-%d", ErrInvalidArgs, model.MinReviewScore, model.MaxReviewScore)
	}
	content = strings.TrimSpace(content)

	existing, err := s.Today(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Content = content
		existing.Score = score
		if err := s.reviews.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	review := &model.Review{
		Date:    s.clock.StartOfDay(s.clock.Now()),
		Content: content,
		Score:   score,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}
