package inmemory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"cosmonotes/internal/models"
	"cosmonotes/internal/repository"
)

// TaskStorage is a mutex-guarded map keyed by task id. Insertion order is
// kept so listings are deterministic when created-at timestamps collide.
type TaskStorage struct {
	storage map[string]*models.Task
	mtx     *sync.RWMutex
	ids     []string
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[string]*models.Task),
		mtx:     &sync.RWMutex{},
		ids:     []string{},
	}
}

var _ repository.TaskRepository = (*TaskStorage)(nil)

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.storage[taskToCreate.ID] = copyTask(taskToCreate)
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id string) (*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyTask(taskToGet), nil
}

func (s *TaskStorage) List(ctx context.Context, filter repository.Filter) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*models.Task{}
	for _, id := range s.ids {
		t := s.storage[id]

		if filter.UserID != "" && t.UserID != filter.UserID {
			continue
		}
		if filter.Tag != "" && !slices.Contains(t.Tags, filter.Tag) {
			continue
		}
		if filter.Overdue != nil && t.IsOverdue != *filter.Overdue {
			continue
		}
		if filter.Public != nil && t.IsPublic != *filter.Public {
			continue
		}

		res = append(res, copyTask(t))
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (s *TaskStorage) Update(ctx context.Context, id string, patch repository.TaskPatch) (*models.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if patch.Empty() {
		return copyTask(existing), nil
	}

	if patch.Title != nil {
		existing.Title = *patch.Title
	}
	if patch.Content != nil {
		existing.Content = *patch.Content
	}
	if patch.DueDateSet {
		if patch.DueDate != nil {
			due := *patch.DueDate
			existing.DueDate = &due
		} else {
			existing.DueDate = nil
		}
		existing.IsOverdue = models.OverdueAt(existing.DueDate, time.Now())
	}
	if patch.Tags != nil {
		existing.Tags = slices.Clone(*patch.Tags)
	}
	if patch.IsPublic != nil {
		existing.IsPublic = *patch.IsPublic
	}

	existing.UpdatedAt = time.Now()
	return copyTask(existing), nil
}

func (s *TaskStorage) Delete(ctx context.Context, id string) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return false, nil
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return true, nil
}

func (s *TaskStorage) GetByShareID(ctx context.Context, shareID string) (*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, id := range s.ids {
		t := s.storage[id]
		if t.IsPublic && t.ShareID == shareID {
			return copyTask(t), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *TaskStorage) SetPublic(ctx context.Context, id, shareID string) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok {
		return false, nil
	}

	existing.IsPublic = true
	existing.ShareID = shareID
	existing.UpdatedAt = time.Now()
	return true, nil
}

func (s *TaskStorage) SetPrivate(ctx context.Context, id string) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok {
		return false, nil
	}

	existing.IsPublic = false
	existing.ShareID = ""
	existing.UpdatedAt = time.Now()
	return true, nil
}

func (s *TaskStorage) RecomputeOverdue(ctx context.Context, now time.Time) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var written int64
	for _, id := range s.ids {
		t := s.storage[id]
		if t.DueDate == nil {
			continue
		}

		t.IsOverdue = models.OverdueAt(t.DueDate, now)
		t.UpdatedAt = now
		written++
	}
	return written, nil
}

func (s *TaskStorage) GetOverdue(ctx context.Context, userID string) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*models.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if !t.IsOverdue {
			continue
		}
		if userID != "" && t.UserID != userID {
			continue
		}
		res = append(res, copyTask(t))
	}

	sort.SliceStable(res, func(i, j int) bool {
		if res[i].DueDate == nil || res[j].DueDate == nil {
			return res[j].DueDate == nil
		}
		return res[i].DueDate.Before(*res[j].DueDate)
	})
	return res, nil
}

func copyTask(t *models.Task) *models.Task {
	cp := *t
	if t.DueDate != nil {
		due := *t.DueDate
		cp.DueDate = &due
	}
	cp.Tags = slices.Clone(t.Tags)
	return &cp
}
