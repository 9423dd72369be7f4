package task

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/example/tasks-api/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setListChunkBytes(t *testing.T, n int) {
	t.Helper()
	prev := listChunkBytes
	listChunkBytes = n
	t.Cleanup(func() { listChunkBytes = prev })
}

// collectChunks follows cursors the way the adapter does and returns every
// chunk it was handed.
func collectChunks(t *testing.T, list func(context.Context, ListTasksRequest) ListTasksResponse) [][]*domain.Task {
	t.Helper()

	var chunks [][]*domain.Task
	cursor := ""
	for i := 0; i < 1000; i++ {
		resp := list(context.Background(), ListTasksRequest{Cursor: cursor})
		require.Empty(t, resp.Error)
		chunks = append(chunks, resp.Tasks)
		if resp.NextCursor == "" {
			return chunks
		}
		require.NotEmpty(t, resp.Tasks)
		cursor = resp.NextCursor
	}
	t.Fatal("listing did not terminate")
	return nil
}

func listAllChunk(m *TaskModule) func(context.Context, ListTasksRequest) ListTasksResponse {
	return func(ctx context.Context, req ListTasksRequest) ListTasksResponse {
		resp, _ := m.listTasks(ctx, req, nil)
		return resp
	}
}

func seedTasks(t *testing.T, m *TaskModule, n int, text string) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		resp, err := m.createTask(context.Background(), CreateTaskRequest{Text: text}, nil)
		require.NoError(t, err)
		require.Empty(t, resp.Error)
		ids = append(ids, resp.Task.ID)
	}
	return ids
}

func TestService_ListTasksChunked(t *testing.T) {
	setListChunkBytes(t, 1024)

	m := newTestModule()
	ids := seedTasks(t, m, 50, strings.Repeat("b", 100))

	chunks := collectChunks(t, listAllChunk(m))
	assert.Greater(t, len(chunks), 1)

	var all []*domain.Task
	for _, chunk := range chunks {
		all = append(all, chunk...)
	}
	assert.Equal(t, ids, taskIDs(all))
	assert.Zero(t, m.listings.len())
}

func TestService_ListTasksSingleChunk(t *testing.T) {
	m := newTestModule()
	ids := seedTasks(t, m, 3, "short")

	resp, err := m.listTasks(context.Background(), ListTasksRequest{}, nil)
	require.NoError(t, err)
	assert.Empty(t, resp.NextCursor)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, ids, taskIDs(resp.Tasks))
	assert.Zero(t, m.listings.len())
}

func TestService_ListTasksSnapshotIsStable(t *testing.T) {
	setListChunkBytes(t, 512)

	m := newTestModule()
	ids := seedTasks(t, m, 20, strings.Repeat("c", 100))
	ctx := context.Background()

	first, err := m.listTasks(ctx, ListTasksRequest{}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, 20, first.Total)

	// Changes after the first chunk do not leak into the rest of the listing.
	_, err = m.deleteTask(ctx, TaskIDRequest{TaskID: ids[len(ids)-1]}, nil)
	require.NoError(t, err)

	all := append([]*domain.Task{}, first.Tasks...)
	cursor := first.NextCursor
	for cursor != "" {
		resp, err := m.listTasks(ctx, ListTasksRequest{Cursor: cursor}, nil)
		require.NoError(t, err)
		require.Empty(t, resp.Error)
		assert.Equal(t, 20, resp.Total)
		all = append(all, resp.Tasks...)
		cursor = resp.NextCursor
	}
	assert.Equal(t, ids, taskIDs(all))
}

func TestService_ListCompletedTasksChunked(t *testing.T) {
	setListChunkBytes(t, 1024)

	m := newTestModule()
	ids := seedTasks(t, m, 30, strings.Repeat("d", 100))
	ctx := context.Background()

	var want []string
	for i, id := range ids {
		if i%2 == 0 {
			_, err := m.completeTask(ctx, TaskIDRequest{TaskID: id}, nil)
			require.NoError(t, err)
			want = append(want, id)
		}
	}

	chunks := collectChunks(t, func(ctx context.Context, req ListTasksRequest) ListTasksResponse {
		resp, _ := m.listCompletedTasks(ctx, req, nil)
		return resp
	})
	assert.Greater(t, len(chunks), 1)

	var done []*domain.Task
	for _, chunk := range chunks {
		done = append(done, chunk...)
	}
	assert.Equal(t, want, taskIDs(done))
}

func TestService_ListTasksUnknownCursor(t *testing.T) {
	m := newTestModule()

	resp, err := m.listTasks(context.Background(), ListTasksRequest{Cursor: "gone"}, nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Error, errListCursorExpired.Error())
	assert.Nil(t, resp.Tasks)
}

func TestService_ListTasksOversizedTask(t *testing.T) {
	setListChunkBytes(t, 64)

	m := newTestModule()
	ids := seedTasks(t, m, 3, strings.Repeat("e", 200))

	chunks := collectChunks(t, listAllChunk(m))
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		require.Len(t, chunk, 1)
		assert.Equal(t, ids[i], chunk[0].ID)
	}
}

func TestService_CreateTaskTextTooLong(t *testing.T) {
	m := newTestModule()

	resp, err := m.createTask(context.Background(), CreateTaskRequest{Text: strings.Repeat("x", 1100<<10)}, nil)
	require.NoError(t, err)
	assert.Nil(t, resp.Task)

	mapped := mapServiceError(errors.New(resp.Error))
	assert.ErrorIs(t, mapped, domain.ErrTextTooLong)
	assert.ErrorIs(t, mapped, domain.ErrInvalidText)
}

func TestListSnapshots_Expiry(t *testing.T) {
	s := newListSnapshots()
	tasks := []*domain.Task{domain.New("a", "x", time.Now())}

	cursor := s.save("", tasks, 0)
	assert.NotEmpty(t, cursor)

	snap, ok := s.take(cursor)
	require.True(t, ok)
	assert.Equal(t, 0, snap.offset)

	s.entries[cursor].expires = snap.expires.Add(-2 * listCursorTTL)
	_, ok = s.take(cursor)
	assert.False(t, ok)
	assert.Zero(t, s.len())
}
