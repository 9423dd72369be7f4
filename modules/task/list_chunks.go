package task

import (
	"encoding/json"
	"sync"
	"time"

	domain "github.com/example/tasks-api/domain/task"
	"github.com/google/uuid"
)

// listChunkBytes bounds the encoded size of the tasks in one list reply.
// Replies travel over embedded NATS, whose default max payload is 1 MB.
var listChunkBytes = 512 << 10

// listCursorTTL is how long an unfinished listing is kept for its caller.
const listCursorTTL = time.Minute

// listSnapshot is the remainder of a listing being paged out in chunks.
type listSnapshot struct {
	tasks   []*domain.Task
	offset  int
	expires time.Time
}

// listSnapshots holds in-flight listings keyed by cursor so every chunk of
// one listing comes from the same view of the store.
type listSnapshots struct {
	mu      sync.Mutex
	entries map[string]*listSnapshot
}

func newListSnapshots() *listSnapshots {
	return &listSnapshots{entries: make(map[string]*listSnapshot)}
}

// save stores tasks to be resumed at offset and returns the cursor.
// An empty cursor allocates a new one.
func (s *listSnapshots) save(cursor string, tasks []*domain.Task, offset int) string {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, snap := range s.entries {
		if now.After(snap.expires) {
			delete(s.entries, key)
		}
	}

	if cursor == "" {
		cursor = uuid.New().String()
	}
	s.entries[cursor] = &listSnapshot{
		tasks:   tasks,
		offset:  offset,
		expires: now.Add(listCursorTTL),
	}
	return cursor
}

// take returns the snapshot for cursor, if it is still live.
func (s *listSnapshots) take(cursor string) (*listSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.entries[cursor]
	if !ok || time.Now().After(snap.expires) {
		delete(s.entries, cursor)
		return nil, false
	}
	return snap, true
}

func (s *listSnapshots) drop(cursor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, cursor)
}

func (s *listSnapshots) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// chunkEnd returns the end index of the chunk starting at offset whose
// encoded size fits in budget. A chunk always holds at least one task.
func chunkEnd(tasks []*domain.Task, offset, budget int) int {
	size := 0
	end := offset
	for end < len(tasks) {
		data, _ := json.Marshal(tasks[end])
		n := len(data) + 1
		if end > offset && size+n > budget {
			break
		}
		size += n
		end++
	}
	return end
}
