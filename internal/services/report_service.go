package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/skmtks/taskboard-api/internal/models"
	"github.com/skmtks/taskboard-api/internal/policy"
	"github.com/skmtks/taskboard-api/internal/repository"
)

// ReportService produces CSV exports of tasks and users. Admin only.
type ReportService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewReportService creates a new ReportService.
func NewReportService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *ReportService {
	return &ReportService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// ExportTasksCSV writes every task as a CSV row, with assignee names and
// checklist completion resolved.
func (s *ReportService) ExportTasksCSV(p policy.Principal, w io.Writer) error {
	if !p.IsAdmin() {
		return ErrUserForbidden
	}

	rows, _, err := s.taskRepo.List(repository.TaskFilter{})
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	users, err := s.userRepo.List()
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	nameByID := make(map[uint64]string, len(users))
	for _, u := range users {
		nameByID[u.ID] = u.Name
	}

	cw := csv.NewWriter(w)
	header := []string{"ID", "Title", "Priority", "Status", "Progress", "Due Date", "Assigned To", "Created By", "Checklist Done", "Checklist Total"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		assignees := make([]string, 0, len(row.AssignedTo))
		for _, id := range row.AssignedTo {
			if name, ok := nameByID[id]; ok {
				assignees = append(assignees, name)
			} else {
				assignees = append(assignees, strconv.FormatUint(id, 10))
			}
		}

		record := []string{
			strconv.FormatUint(row.ID, 10),
			row.Title,
			string(row.Priority),
			string(row.Status),
			strconv.Itoa(row.Progress),
			row.DueDate.Format(time.RFC3339),
			strings.Join(assignees, "; "),
			nameByID[row.CreatedBy],
			strconv.FormatInt(row.CompletedTodoCount, 10),
			strconv.FormatInt(row.TodoTotalCount, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportUsersCSV writes every user with their task-status breakdown.
func (s *ReportService) ExportUsersCSV(p policy.Principal, w io.Writer) error {
	if !p.IsAdmin() {
		return ErrUserForbidden
	}

	users, err := s.userRepo.List()
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	cw := csv.NewWriter(w)
	header := []string{"ID", "Name", "Email", "Role", "Pending Tasks", "In Progress Tasks", "Completed Tasks"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, u := range users {
		counts, err := s.userRepo.CountTasksByStatus(u.ID)
		if err != nil {
			return fmt.Errorf("failed to count tasks for user %d: %w", u.ID, err)
		}

		record := []string{
			strconv.FormatUint(u.ID, 10),
			u.Name,
			u.Email,
			string(u.Role),
			strconv.FormatInt(counts[models.StatusPending], 10),
			strconv.FormatInt(counts[models.StatusInProgress], 10),
			strconv.FormatInt(counts[models.StatusCompleted], 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
