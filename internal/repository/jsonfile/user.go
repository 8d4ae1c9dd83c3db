package jsonfile

import (
	"sort"
	"sync"

	"coursebot/internal/domain"
)

// UserRepo implements repository.UserRepository over a single JSON document
type UserRepo struct {
	path  string
	users map[int64]domain.UserProfile
	mu    sync.Mutex
}

// NewUserRepo creates a user repository stored at path
func NewUserRepo(path string) *UserRepo {
	return &UserRepo{
		path:  path,
		users: make(map[int64]domain.UserProfile),
	}
}

// LoadUsers reads the document. Subscriber membership is merged into the profiles.
func (r *UserRepo) LoadUsers() ([]domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var snapshot domain.RegistrySnapshot
	if _, err := ReadJSON(r.path, &snapshot); err != nil {
		return nil, err
	}

	subscribers := make(map[int64]bool, len(snapshot.Subscribers))
	for _, id := range snapshot.Subscribers {
		subscribers[id] = true
	}

	r.users = make(map[int64]domain.UserProfile, len(snapshot.Users))
	users := make([]domain.UserProfile, 0, len(snapshot.Users))
	for id, u := range snapshot.Users {
		if u == nil {
			continue
		}
		profile := *u
		profile.ID = id
		profile.IsSubscriber = (profile.IsSubscriber || subscribers[id]) && !profile.IsBlocked
		r.users[id] = profile
		users = append(users, profile)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// SaveUser upserts the profile and rewrites the document
func (r *UserRepo) SaveUser(user *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = *user
	return r.flush()
}

// SaveAll replaces every stored profile
func (r *UserRepo) SaveAll(users []domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = make(map[int64]domain.UserProfile, len(users))
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r.flush()
}

func (r *UserRepo) flush() error {
	snapshot := domain.RegistrySnapshot{
		Users:       make(map[int64]*domain.UserProfile, len(r.users)),
		Subscribers: []int64{},
		TotalUsers:  len(r.users),
	}
	for id, u := range r.users {
		profile := u
		snapshot.Users[id] = &profile
		if u.IsSubscriber {
			snapshot.Subscribers = append(snapshot.Subscribers, id)
		}
	}
	sort.Slice(snapshot.Subscribers, func(i, j int) bool {
		return snapshot.Subscribers[i] < snapshot.Subscribers[j]
	})

	return WriteJSON(r.path, snapshot)
}
