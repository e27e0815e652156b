// Package main implements the task analytics CLI: a plain-text report
// over all companies, users, and tasks in the database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"github.com/phrazzld/taskhive/internal/config"
	"github.com/phrazzld/taskhive/internal/domain"
	"github.com/phrazzld/taskhive/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("analytics failed: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	report, err := buildReport(ctx, db)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, report)
	return nil
}

// buildReport loads the full data set and renders the analytics report.
func buildReport(ctx context.Context, db *sql.DB) (string, error) {
	userStore := postgres.NewPostgresUserStore(db, 0)
	companyStore := postgres.NewPostgresCompanyStore(db)
	taskStore := postgres.NewPostgresTaskStore(db)

	users, err := userStore.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list users: %w", err)
	}
	companies, err := companyStore.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list companies: %w", err)
	}
	tasks, err := taskStore.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list tasks: %w", err)
	}

	return renderReport(users, companies, tasks), nil
}

func renderReport(
	users []*domain.User,
	companies []*domain.Company,
	tasks []*domain.Task,
) string {
	companyNames := lo.SliceToMap(companies, func(c *domain.Company) (uuid.UUID, string) {
		return c.ID, c.Name
	})
	tasksByAssignee := lo.GroupBy(tasks, func(t *domain.Task) uuid.UUID {
		return t.AssignedToID
	})

	out := "=== TASK ANALYTICS ===\n\n"
	out += renderTasksPerUser(users, companyNames, tasksByAssignee)
	out += renderTasksByStatus(tasks)
	out += renderCompanyPerformance(users, companies, tasks)
	out += renderDailyCreation(tasks)
	out += renderMultipleAssignments(users, tasksByAssignee)
	out += "\n=== END ANALYTICS ===\n"
	return out
}

func renderTasksPerUser(
	users []*domain.User,
	companyNames map[uuid.UUID]string,
	tasksByAssignee map[uuid.UUID][]*domain.Task,
) string {
	type userCount struct {
		user      *domain.User
		total     int
		completed int
		pending   int
	}

	counts := lo.FilterMap(users, func(u *domain.User, _ int) (userCount, bool) {
		assigned := tasksByAssignee[u.ID]
		if len(assigned) == 0 {
			return userCount{}, false
		}
		completed := lo.CountBy(assigned, func(t *domain.Task) bool {
			return t.Status == domain.TaskStatusDone
		})
		pending := lo.CountBy(assigned, func(t *domain.Task) bool {
			return t.Status == domain.TaskStatusTodo || t.Status == domain.TaskStatusInProgress
		})
		return userCount{user: u, total: len(assigned), completed: completed, pending: pending}, true
	})
	sort.Slice(counts, func(i, j int) bool { return counts[i].total > counts[j].total })

	out := "1. Tasks per User:\n"
	for _, c := range counts {
		companyName := "No Company"
		if c.user.CompanyID != nil {
			if name, ok := companyNames[*c.user.CompanyID]; ok {
				companyName = name
			}
		}
		out += fmt.Sprintf("  %s (%s): %d total, %d completed, %d pending\n",
			c.user.Username, companyName, c.total, c.completed, c.pending)
	}
	return out
}

func renderTasksByStatus(tasks []*domain.Task) string {
	total := len(tasks)
	byStatus := lo.CountValuesBy(tasks, func(t *domain.Task) domain.TaskStatus {
		return t.Status
	})

	type statusCount struct {
		status domain.TaskStatus
		count  int
	}
	counts := lo.MapToSlice(byStatus, func(status domain.TaskStatus, count int) statusCount {
		return statusCount{status: status, count: count}
	})
	sort.Slice(counts, func(i, j int) bool { return counts[i].count > counts[j].count })

	out := "\n2. Tasks by Status:\n"
	for _, c := range counts {
		percentage := 0.0
		if total > 0 {
			percentage = float64(c.count) / float64(total) * 100
		}
		out += fmt.Sprintf("  %s: %d tasks (%.1f%%)\n", c.status.Display(), c.count, percentage)
	}
	return out
}

func renderCompanyPerformance(
	users []*domain.User,
	companies []*domain.Company,
	tasks []*domain.Task,
) string {
	tasksByCompany := lo.GroupBy(tasks, func(t *domain.Task) uuid.UUID {
		return t.CompanyID
	})
	usersByCompany := lo.CountValuesBy(
		lo.Filter(users, func(u *domain.User, _ int) bool { return u.CompanyID != nil }),
		func(u *domain.User) uuid.UUID { return *u.CompanyID },
	)

	type companyStats struct {
		name      string
		total     int
		completed int
		userCount int
	}
	stats := lo.FilterMap(companies, func(c *domain.Company, _ int) (companyStats, bool) {
		companyTasks := tasksByCompany[c.ID]
		if len(companyTasks) == 0 {
			return companyStats{}, false
		}
		completed := lo.CountBy(companyTasks, func(t *domain.Task) bool {
			return t.Status == domain.TaskStatusDone
		})
		return companyStats{
			name:      c.Name,
			total:     len(companyTasks),
			completed: completed,
			userCount: usersByCompany[c.ID],
		}, true
	})
	sort.Slice(stats, func(i, j int) bool { return stats[i].total > stats[j].total })

	out := "\n3. Company Performance:\n"
	for _, s := range stats {
		completionRate := float64(s.completed) / float64(s.total) * 100
		out += fmt.Sprintf("  %s: %d tasks, %d completed (%.1f%%), %d users\n",
			s.name, s.total, s.completed, completionRate, s.userCount)
	}
	return out
}

func renderDailyCreation(tasks []*domain.Task) string {
	byDate := lo.CountValuesBy(tasks, func(t *domain.Task) string {
		return t.CreatedAt.UTC().Format("2006-01-02")
	})

	dates := lo.Keys(byDate)
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > 7 {
		dates = dates[:7]
	}

	out := "\n4. Daily Task Creation (Last 7 Days):\n"
	for _, date := range dates {
		out += fmt.Sprintf("  %s: %d tasks created\n", date, byDate[date])
	}
	return out
}

func renderMultipleAssignments(
	users []*domain.User,
	tasksByAssignee map[uuid.UUID][]*domain.Task,
) string {
	type assignment struct {
		username string
		count    int
	}
	assignments := lo.FilterMap(users, func(u *domain.User, _ int) (assignment, bool) {
		count := len(tasksByAssignee[u.ID])
		if count < 2 {
			return assignment{}, false
		}
		return assignment{username: u.Username, count: count}, true
	})
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].count > assignments[j].count })

	out := "\n5. Task Assignment Analysis:\n"
	for _, a := range assignments {
		out += fmt.Sprintf("  %s: %d assigned tasks\n", a.username, a.count)
	}
	return out
}
