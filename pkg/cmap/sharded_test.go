package cmap

import (
	"fmt"
	"sync"
	"testing"
)

type batchKey uint64

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{8, 8},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[string, int](tt.input, HashString[string])
			if m.ShardCount() != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d",
					tt.input, m.ShardCount(), tt.expected)
			}
		})
	}
}

func TestSetAndGet(t *testing.T) {
	m := New[batchKey, string](HashUint64[batchKey])

	m.Set(1, "one")
	m.Set(2, "two")

	if val, ok := m.Get(1); !ok || val != "one" {
		t.Errorf("Get(1) = (%q, %v), want (one, true)", val, ok)
	}
	if val, ok := m.Get(3); ok {
		t.Errorf("Get(3) = (%q, %v), want (\"\", false)", val, ok)
	}
	if !m.Has(2) || m.Has(3) {
		t.Error("Has() mismatch")
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}
}

func TestNilHasherPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	New[batchKey, int](nil)
}

func TestSetIfAbsent(t *testing.T) {
	m := New[string, int](HashString[string])

	if !m.SetIfAbsent("k", 1) {
		t.Error("first SetIfAbsent should succeed")
	}
	if m.SetIfAbsent("k", 2) {
		t.Error("second SetIfAbsent should fail")
	}
	if v, _ := m.Get("k"); v != 1 {
		t.Errorf("Get(k) = %d, want 1", v)
	}
}

func TestSetIfAbsent_Concurrent(t *testing.T) {
	m := New[batchKey, int](HashUint64[batchKey])

	const goroutines = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if m.SetIfAbsent(42, i) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("winners = %d, want 1", winners)
	}
}

func TestRangeAndValues(t *testing.T) {
	m := New[batchKey, int](HashUint64[batchKey])
	for i := 0; i < 100; i++ {
		m.Set(batchKey(i), i)
	}

	if got := len(m.Values()); got != 100 {
		t.Errorf("len(Values()) = %d, want 100", got)
	}

	visited := 0
	m.Range(func(batchKey, int) bool {
		visited++
		return visited < 10
	})
	if visited != 10 {
		t.Errorf("Range visited %d, want 10", visited)
	}
}

func TestHashersDistribute(t *testing.T) {
	m := New[batchKey, int](HashUint64[batchKey])
	for i := 0; i < 1000; i++ {
		m.Set(batchKey(i), i)
	}

	empty := 0
	for _, s := range m.shards {
		if len(s.items) == 0 {
			empty++
		}
	}
	if empty > 0 {
		t.Errorf("%d of %d shards empty after 1000 keys", empty, DefaultShardCount)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[batchKey, int](HashUint64[batchKey])
	var wg sync.WaitGroup
	numGoroutines := 50
	numOps := 200

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				key := batchKey(base*numOps + j)
				m.Set(key, j)
				m.Get(key)
				m.Has(key)
			}
		}(i)
	}
	wg.Wait()

	if m.Count() != numGoroutines*numOps {
		t.Errorf("Count() = %d, want %d", m.Count(), numGoroutines*numOps)
	}
}
