package arena

import "github.com/catzilla-project/catzilla/internal/allocator"

// Manager owns the runtime's five named arenas and provides the paired
// request/response reset. The app's request path does not call it.
type Manager struct {
	Alloc *allocator.Facade

	request  *Arena
	response *Arena
	cacheA   *Arena
	static   *Arena
	task     *Arena
}

// NewManager creates a Manager with one arena per concern, sized with
// reasonable defaults: 8 KiB each for request and response, 16 KiB each
// for cache and static, and 4 KiB for task.
func NewManager(alloc *allocator.Facade) *Manager {
	if alloc == nil {
		alloc = allocator.New(allocator.BackendAuto)
	}
	return &Manager{
		Alloc:    alloc,
		request:  New(alloc, Request, 8*1024),
		response: New(alloc, Response, 8*1024),
		cacheA:   New(alloc, Cache, 16*1024),
		static:   New(alloc, Static, 16*1024),
		task:     New(alloc, Task, 4*1024),
	}
}

// Request returns the request-scoped arena.
func (m *Manager) Request() *Arena { return m.request }

// Response returns the response-scoped arena.
func (m *Manager) Response() *Arena { return m.response }

// CacheArena returns the cache subsystem's arena.
func (m *Manager) CacheArena() *Arena { return m.cacheA }

// StaticArena returns the static file server's arena.
func (m *Manager) StaticArena() *Arena { return m.static }

// TaskArena returns the background task subsystem's arena.
func (m *Manager) TaskArena() *Arena { return m.task }

// ResetRequestResponse resets the request and response arenas as a pair.
// Nothing in the app or its HTTP serving path calls it.
func (m *Manager) ResetRequestResponse() {
	m.request.Reset()
	m.response.Reset()
}

// ResetTask resets the task arena. The task executor does not call it.
func (m *Manager) ResetTask() {
	m.task.Reset()
}
