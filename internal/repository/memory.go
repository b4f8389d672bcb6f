package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// MemoryStore keeps complaints, tasks and the activity log in process memory
// behind one lock. It backs tests and runs the service without a configured
// POSTGRES_DSN. Readers always get copies, never live references, so a
// concurrent write can never expose a partially-updated record.
type MemoryStore struct {
	mu         sync.RWMutex
	complaints map[string]domain.Complaint
	tasks      map[string]domain.Task
	activity   []domain.ActivityLogEntry
}

// NewMemoryStore initializes an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		complaints: make(map[string]domain.Complaint),
		tasks:      make(map[string]domain.Task),
	}
}

// Complaints exposes the store as a ComplaintRepository.
func (s *MemoryStore) Complaints() ComplaintRepository { return (*memoryComplaints)(s) }

// Tasks exposes the store as a TaskRepository.
func (s *MemoryStore) Tasks() TaskRepository { return (*memoryTasks)(s) }

// ActivityLog exposes the store as an ActivityLogRepository.
func (s *MemoryStore) ActivityLog() ActivityLogRepository { return (*memoryActivity)(s) }

type memoryComplaints MemoryStore

func (s *memoryComplaints) Create(_ context.Context, complaint *domain.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complaints[complaint.ID] = *complaint
	return nil
}

func (s *memoryComplaints) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	complaint, ok := s.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &complaint, nil
}

func (s *memoryComplaints) List(_ context.Context) ([]domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Complaint, 0, len(s.complaints))
	for _, complaint := range s.complaints {
		result = append(result, complaint)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *memoryComplaints) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.complaints[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.complaints, id)
	return nil
}

type memoryTasks MemoryStore

func (s *memoryTasks) Create(_ context.Context, task *domain.Task, entry *domain.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	s.activity = append(s.activity, *entry)
	return nil
}

func (s *memoryTasks) UpdateStatus(_ context.Context, task *domain.Task, entry *domain.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.tasks[task.ID] = *task
	s.activity = append(s.activity, *entry)
	return nil
}

func (s *memoryTasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &task, nil
}

func (s *memoryTasks) List(_ context.Context, filter TaskFilter) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if filter.Department != nil && task.Department != *filter.Department {
			continue
		}
		if filter.ComplaintID != nil && task.ComplaintID != *filter.ComplaintID {
			continue
		}
		result = append(result, task)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *memoryTasks) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.tasks, id)
	return nil
}

func (s *memoryTasks) DeleteByComplaint(_ context.Context, complaintID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, task := range s.tasks {
		if task.ComplaintID == complaintID {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed, nil
}

type memoryActivity MemoryStore

func (s *memoryActivity) List(_ context.Context) ([]domain.ActivityLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.ActivityLogEntry, len(s.activity))
	copy(result, s.activity)
	reverseEntries(result)
	return result, nil
}

func (s *memoryActivity) ListByTask(_ context.Context, taskID string) ([]domain.ActivityLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.ActivityLogEntry
	for _, entry := range s.activity {
		if entry.TaskID == taskID {
			result = append(result, entry)
		}
	}
	reverseEntries(result)
	return result, nil
}

// reverseEntries flips append order into newest-first, matching the postgres
// reader's ORDER BY ts DESC. Append order is authoritative because same-tick
// clock reads can produce equal timestamps.
func reverseEntries(entries []domain.ActivityLogEntry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}
