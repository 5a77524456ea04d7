package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/repository"
)

const dashboardCacheTTL = 60 * time.Second

// DashboardService aggregates pipeline and workload numbers. Results are
// cached in redis for a minute; a nil client just skips the cache.
type DashboardService struct {
	customers *repository.CustomerRepository
	tasks     *repository.TaskRepository
	users     *repository.UserRepository
	redis     *redis.Client
	logger    *zap.Logger
}

func NewDashboardService(
	customers *repository.CustomerRepository,
	tasks *repository.TaskRepository,
	users *repository.UserRepository,
	redisClient *redis.Client,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		customers: customers,
		tasks:     tasks,
		users:     users,
		redis:     redisClient,
		logger:    logger,
	}
}

// StatusBucket one pipeline slice with its display label
type StatusBucket struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Count  int64  `json:"count"`
}

// CounsellorLoad one counsellor's assignment count
type CounsellorLoad struct {
	CounsellorID string `json:"counsellor_id"`
	Name         string `json:"name"`
	Count        int64  `json:"count"`
}

// Dashboard the numbers the landing page renders
type Dashboard struct {
	TotalCustomers  int64                  `json:"total_customers"`
	Unassigned      int64                  `json:"unassigned"`
	NewThisWeek     int64                  `json:"new_this_week"`
	StatusBreakdown []StatusBucket         `json:"status_breakdown"`
	CounsellorLoads []CounsellorLoad       `json:"counsellor_loads,omitempty"`
	TaskCounts      *repository.TaskCounts `json:"task_counts"`
	GeneratedAt     time.Time              `json:"generated_at"`
}

// Get builds the dashboard for the actor. Managers see org-wide numbers
// plus per-counsellor loads; counsellors see only their own slice.
func (s *DashboardService) Get(ctx context.Context, actor Actor) (*Dashboard, error) {
	cacheKey := "dashboard:" + actor.Role + ":" + actor.ID

	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	scope := ""
	if !actor.IsManager() {
		scope = actor.ID
	}

	dash := &Dashboard{GeneratedAt: time.Now()}

	var err error
	dash.TotalCustomers, err = s.customers.Count(ctx, repository.CustomerFilter{AssignedTo: scope})
	if err != nil {
		return nil, err
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	dash.NewThisWeek, err = s.customers.CountCreatedSince(ctx, weekAgo, scope)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.customers.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	dash.StatusBreakdown = orderBuckets(statusCounts)

	dash.TaskCounts, err = s.tasks.Counts(ctx, scope)
	if err != nil {
		return nil, err
	}

	if actor.IsManager() {
		dash.Unassigned, err = s.customers.Count(ctx, repository.CustomerFilter{Unassigned: true})
		if err != nil {
			return nil, err
		}
		dash.CounsellorLoads, err = s.counsellorLoads(ctx)
		if err != nil {
			return nil, err
		}
	}

	s.toCache(ctx, cacheKey, dash)
	return dash, nil
}

// orderBuckets lays the counts out in pipeline order, zero-filled
func orderBuckets(counts []repository.StatusCount) []StatusBucket {
	byStatus := make(map[string]int64, len(counts))
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	buckets := make([]StatusBucket, 0, len(entity.CustomerStatuses))
	for _, status := range entity.CustomerStatuses {
		buckets = append(buckets, StatusBucket{
			Status: status,
			Label:  entity.StatusLabels[status],
			Count:  byStatus[status],
		})
	}
	return buckets
}

func (s *DashboardService) counsellorLoads(ctx context.Context) ([]CounsellorLoad, error) {
	counts, err := s.customers.CountByCounsellor(ctx)
	if err != nil {
		return nil, err
	}
	counsellors, err := s.users.FindByRole(ctx, entity.RoleCounsellor)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int64, len(counts))
	for _, c := range counts {
		byID[c.CounsellorID] = c.Count
	}
	loads := make([]CounsellorLoad, 0, len(counsellors))
	for _, u := range counsellors {
		loads = append(loads, CounsellorLoad{
			CounsellorID: u.ID,
			Name:         u.Name,
			Count:        byID[u.ID],
		})
	}
	return loads, nil
}

func (s *DashboardService) fromCache(ctx context.Context, key string) *Dashboard {
	if s.redis == nil {
		return nil
	}
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Dashboard cache read failed", zap.Error(err))
		}
		return nil
	}
	var dash Dashboard
	if err := json.Unmarshal(raw, &dash); err != nil {
		return nil
	}
	return &dash
}

func (s *DashboardService) toCache(ctx context.Context, key string, dash *Dashboard) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(dash)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, dashboardCacheTTL).Err(); err != nil {
		s.logger.Warn("Dashboard cache write failed", zap.Error(err))
	}
}
