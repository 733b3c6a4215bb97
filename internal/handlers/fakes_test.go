package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/taskcourse/apiserver/internal/store"
	"github.com/taskcourse/apiserver/types"
)

// In-memory repositories backing the route tests.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]types.User)}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]types.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]types.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{nextID: 1, tasks: make(map[int]types.Task)}
}

func (f *fakeTaskRepo) ListByOwner(ctx context.Context, ownerID int, opts store.TaskListOptions) ([]types.Task, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]types.Task, 0)
	for _, task := range f.tasks {
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

func (f *fakeTaskRepo) Get(ctx context.Context, id int) (types.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return types.Task{}, store.ErrNotFound
	}
	return task, nil
}

func (f *fakeTaskRepo) HasOpenWithTitle(ctx context.Context, ownerID int, title string, excludeID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, task := range f.tasks {
		if task.CreatedBy == ownerID && task.Title == title && task.Open() && task.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTaskRepo) Create(ctx context.Context, task types.Task) (types.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.ID = f.nextID
	f.nextID++
	f.tasks[task.ID] = task
	return task, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task types.Task) (types.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return types.Task{}, store.ErrNotFound
	}
	f.tasks[task.ID] = task
	return task, nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	nextID  int
	courses map[int]types.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{nextID: 1, courses: make(map[int]types.Course)}
}

func (f *fakeCourseRepo) List(ctx context.Context) ([]types.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	courses := make([]types.Course, 0, len(f.courses))
	for _, course := range f.courses {
		courses = append(courses, course)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (f *fakeCourseRepo) Get(ctx context.Context, id int) (types.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	course, ok := f.courses[id]
	if !ok {
		return types.Course{}, store.ErrNotFound
	}
	return course, nil
}

func (f *fakeCourseRepo) GetByTitle(ctx context.Context, title string) (types.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, course := range f.courses {
		if course.Title == title {
			return course, nil
		}
	}
	return types.Course{}, store.ErrNotFound
}

func (f *fakeCourseRepo) ListByIDs(ctx context.Context, ids []int) ([]types.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	courses := make([]types.Course, 0, len(ids))
	for _, id := range ids {
		if course, ok := f.courses[id]; ok {
			courses = append(courses, course)
		}
	}
	return courses, nil
}

func (f *fakeCourseRepo) Create(ctx context.Context, course types.Course) (types.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.courses {
		if existing.Title == course.Title {
			return types.Course{}, store.ErrConflict
		}
	}
	course.ID = f.nextID
	f.nextID++
	f.courses[course.ID] = course
	return course, nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, course types.Course) (types.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[course.ID]; !ok {
		return types.Course{}, store.ErrNotFound
	}
	f.courses[course.ID] = course
	return course, nil
}

func (f *fakeCourseRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.courses, id)
	return nil
}
