// Package memory is an in-process gateway. It backs local runs without a database and the
// service tests. All stores created from one Store share the same data.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

// Store holds every collection behind one lock. Plan writes also take txMu so that a
// transaction can snapshot and restore the plan tables without interleaving writers.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	accounts  map[string]domain.Account
	exercises map[string]domain.Exercise
	logs      map[string]domain.GymLog
	plans     map[string]domain.WorkoutPlan
	items     map[string]domain.PlanItem
	itemSeq   map[string]int64
	seq       int64
}

func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]domain.Account),
		exercises: make(map[string]domain.Exercise),
		logs:      make(map[string]domain.GymLog),
		plans:     make(map[string]domain.WorkoutPlan),
		items:     make(map[string]domain.PlanItem),
		itemSeq:   make(map[string]int64),
	}
}

// Repositories returns the gateway backed by this store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Accounts:  &accountRepo{s: s},
		Exercises: &exerciseRepo{s: s},
		GymLogs:   &gymLogRepo{s: s},
		Plans:     &planRepo{s: s},
	}
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsAll[T comparable](have, want []T) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func paginate[T any](all []T, page repository.Page) []T {
	if page.Offset < 0 {
		page.Offset = 0
	}
	if page.Offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return all[page.Offset:end]
}

func sortStable[T any](s []T, less func(a, b T) bool) {
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
}
