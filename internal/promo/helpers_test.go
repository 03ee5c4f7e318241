package promo

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"sjsage522/promonotifier/services/state"
)

// buildPage renders a minimal exchange rewards page with one table
func buildPage(entries ...CodeEntry) string {
	var b strings.Builder
	b.WriteString("<html><body><main><table><tbody>")
	b.WriteString("<tr><th>Code</th><th>Rewards</th><th>Occasion</th><th>Date</th><th>Expired?</th></tr>")
	for _, e := range entries {
		expired := "No"
		if e.Expired {
			expired = "Yes"
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>Crystal x30</td><td>Event</td><td>2024-01-01</td><td>%s</td></tr>", e.Code, expired)
	}
	b.WriteString("</tbody></table></main></body></html>")
	return b.String()
}

// makeList returns n active codes named CODE1..CODEn
func makeList(n int) CodeList {
	list := make(CodeList, 0, n)
	for i := 1; i <= n; i++ {
		list = append(list, CodeEntry{Code: fmt.Sprintf("CODE%d", i)})
	}
	return list
}

// memoryStore implements state.Store in memory
type memoryStore struct {
	mu      sync.Mutex
	count   int
	saved   bool
	loadErr error
	saveErr error
	saves   int
}

var _ state.Store = (*memoryStore)(nil)

func (m *memoryStore) Load() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return 0, m.loadErr
	}
	if !m.saved {
		return 0, state.ErrNotFound
	}
	return m.count, nil
}

func (m *memoryStore) Save(count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.count = count
	m.saved = true
	m.loadErr = nil
	return nil
}

// mockCacheService implements cache.CacheService in memory
type mockCacheService struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCacheService() *mockCacheService {
	return &mockCacheService{data: make(map[string][]byte)}
}

func (m *mockCacheService) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.data[key]; ok {
		return val, nil
	}
	return nil, fmt.Errorf("cache miss")
}

func (m *mockCacheService) Set(key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCacheService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
