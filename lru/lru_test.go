package lru

import (
	"testing"
)

func TestKeys(t *testing.T) {
	capacity := 100
	lru := NewCache(capacity)
	for i := 0; i < capacity; i++ {
		lru.Add(i, i)
	}
	keys := lru.Keys()
	for index, key := range keys {
		if key != index {
			t.Errorf("key %d is not expected", key)
			return
		}
		index++
	}
}

func TestGetRefreshesRecency(t *testing.T) {
	lru := NewCache(2)
	lru.Add(1, 1)
	lru.Add(2, 2)
	if value, ok := lru.Get(1); !ok || value != 1 {
		t.Errorf("value %v is not expected", value)
	}
	lru.Add(3, 3) // key 2 is now the least recently used
	if _, ok := lru.Get(2); ok {
		t.Error("key 2 should be evicted")
	}
	if _, ok := lru.Get(1); !ok {
		t.Error("key 1 should survive")
	}
}

func TestPeekKeepsOrder(t *testing.T) {
	lru := NewCache(2)
	lru.Add(1, 1)
	lru.Add(2, 2)
	lru.Peek(1)
	lru.Add(3, 3)
	if _, ok := lru.Get(1); ok {
		t.Error("peek should not refresh recency")
	}
}

func TestRemove(t *testing.T) {
	lru := NewCache(2)
	lru.Add(1, 1)
	lru.Remove(1)
	if lru.Len() != 0 {
		t.Errorf("length %d is not expected", lru.Len())
	}
	if _, ok := lru.Get(1); ok {
		t.Error("removed key should miss")
	}
}

func TestEvictionAtCapacity(t *testing.T) {
	capacity := 10
	lru := NewCache(capacity)
	for i := 0; i < capacity*2; i++ {
		lru.Add(i, i)
	}
	if lru.Len() != capacity {
		t.Errorf("length %d is not expected", lru.Len())
	}
	keys := lru.Keys()
	if keys[0] != capacity {
		t.Errorf("oldest key %v is not expected", keys[0])
	}
}

func TestValues(t *testing.T) {
	capacity := 100
	lru := NewCache(capacity)
	for i := 0; i < capacity; i++ {
		lru.Add(i, i)
	}
	values := lru.Values()
	for index, value := range values {
		if value != index {
			t.Errorf("value %d is not expected", value)
			return
		}
	}
}
