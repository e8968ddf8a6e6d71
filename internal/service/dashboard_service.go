package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nnptud/lms-backend/internal/model"
)

// DashboardListSize bounds the upcoming and recent sections.
const DashboardListSize = 5

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo DashboardStore
	now  func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo DashboardStore) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now}
}

// GetDashboard collects every dashboard section for an admin.
func (s *DashboardService) GetDashboard(ctx context.Context, actor *model.Actor) (*model.Dashboard, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	summary, err := s.repo.GetSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}

	now := s.now()
	upcoming, err := s.repo.GetUpcomingDeadlines(ctx, now, DashboardListSize)
	if err != nil {
		return nil, fmt.Errorf("get upcoming deadlines: %w", err)
	}
	recent, err := s.repo.GetRecentResults(ctx, now, DashboardListSize)
	if err != nil {
		return nil, fmt.Errorf("get recent results: %w", err)
	}

	return &model.Dashboard{
		Summary:   *summary,
		Upcoming:  upcoming,
		RecentDue: recent,
	}, nil
}
