package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taskcourse/apiserver/internal/store"
	"github.com/taskcourse/apiserver/types"
)

// In-memory repository fakes mirroring the store layer's contract,
// including its uniqueness backstops.

type memoryUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{nextID: 1, users: make(map[int]types.User)}
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(email)
	for _, user := range m.users {
		if strings.ToLower(user.Email) == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memoryUserRepo) List(ctx context.Context) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	users := make([]types.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, m.users[id])
	}
	return users, nil
}

func (m *memoryUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = m.nextID
	m.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	for _, existing := range m.users {
		if existing.ID != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return types.User{}, store.ErrConflict
		}
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryUserRepo) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type memoryTaskRepo struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]types.Task
}

func newMemoryTaskRepo() *memoryTaskRepo {
	return &memoryTaskRepo{nextID: 1, tasks: make(map[int]types.Task)}
}

func (m *memoryTaskRepo) ListByOwner(ctx context.Context, ownerID int, opts store.TaskListOptions) ([]types.Task, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]types.Task, 0)
	for _, task := range m.tasks {
		if task.CreatedBy != ownerID {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(opts.Search)) {
			continue
		}
		matched = append(matched, task)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if opts.Offset >= len(matched) {
		return []types.Task{}, total, nil
	}
	matched = matched[opts.Offset:]
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, total, nil
}

func (m *memoryTaskRepo) Get(ctx context.Context, id int) (types.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return types.Task{}, store.ErrNotFound
	}
	return task, nil
}

func (m *memoryTaskRepo) HasOpenWithTitle(ctx context.Context, ownerID int, title string, excludeID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, task := range m.tasks {
		if task.CreatedBy == ownerID && task.Title == title && task.Open() && task.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryTaskRepo) Create(ctx context.Context, task types.Task) (types.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task.ID = m.nextID
	m.nextID++
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	m.tasks[task.ID] = task
	return task, nil
}

func (m *memoryTaskRepo) Update(ctx context.Context, task types.Task) (types.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		return types.Task{}, store.ErrNotFound
	}
	task.UpdatedAt = time.Now()
	m.tasks[task.ID] = task
	return task, nil
}

func (m *memoryTaskRepo) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

type memoryCourseRepo struct {
	mu      sync.Mutex
	nextID  int
	courses map[int]types.Course
}

func newMemoryCourseRepo() *memoryCourseRepo {
	return &memoryCourseRepo{nextID: 1, courses: make(map[int]types.Course)}
}

func (m *memoryCourseRepo) List(ctx context.Context) ([]types.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.courses))
	for id := range m.courses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	courses := make([]types.Course, 0, len(ids))
	for _, id := range ids {
		courses = append(courses, m.courses[id])
	}
	return courses, nil
}

func (m *memoryCourseRepo) Get(ctx context.Context, id int) (types.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	course, ok := m.courses[id]
	if !ok {
		return types.Course{}, store.ErrNotFound
	}
	return course, nil
}

func (m *memoryCourseRepo) GetByTitle(ctx context.Context, title string) (types.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, course := range m.courses {
		if course.Title == title {
			return course, nil
		}
	}
	return types.Course{}, store.ErrNotFound
}

func (m *memoryCourseRepo) ListByIDs(ctx context.Context, ids []int) ([]types.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	courses := make([]types.Course, 0, len(ids))
	for _, id := range ids {
		if course, ok := m.courses[id]; ok {
			courses = append(courses, course)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (m *memoryCourseRepo) Create(ctx context.Context, course types.Course) (types.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.courses {
		if existing.Title == course.Title {
			return types.Course{}, store.ErrConflict
		}
	}
	course.ID = m.nextID
	m.nextID++
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	m.courses[course.ID] = course
	return course, nil
}

func (m *memoryCourseRepo) Update(ctx context.Context, course types.Course) (types.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[course.ID]; !ok {
		return types.Course{}, store.ErrNotFound
	}
	for _, existing := range m.courses {
		if existing.ID != course.ID && existing.Title == course.Title {
			return types.Course{}, store.ErrConflict
		}
	}
	course.UpdatedAt = time.Now()
	m.courses[course.ID] = course
	return course, nil
}

func (m *memoryCourseRepo) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.courses, id)
	return nil
}
