package lru

import (
	"container/list"
)

type entry struct {
	key   interface{}
	value interface{}
}

// Cache is a fixed-capacity LRU cache. Not thread-safe.
type Cache struct {
	capacity int
	lruList  *list.List
	index    map[interface{}]*list.Element
}

func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		lruList:  list.New(),
		index:    make(map[interface{}]*list.Element, capacity),
	}
}

func (c *Cache) Add(key, value interface{}) {
	if element, ok := c.index[key]; ok {
		c.lruList.MoveToFront(element)
		element.Value.(*entry).value = value
		return
	}
	element := c.lruList.PushFront(&entry{key, value})
	c.index[key] = element
	if c.lruList.Len() > c.capacity {
		c.removeElement(c.lruList.Back())
	}
}

func (c *Cache) Get(key interface{}) (interface{}, bool) {
	if element, ok := c.index[key]; ok {
		c.lruList.MoveToFront(element)
		return element.Value.(*entry).value, true
	}
	return nil, false
}

// Peek returns the value without refreshing its recency.
func (c *Cache) Peek(key interface{}) (interface{}, bool) {
	if element, ok := c.index[key]; ok {
		return element.Value.(*entry).value, true
	}
	return nil, false
}

func (c *Cache) Remove(key interface{}) {
	if element, ok := c.index[key]; ok {
		c.removeElement(element)
	}
}

func (c *Cache) Len() int {
	return c.lruList.Len()
}

// Keys returns all keys, least recently used first.
func (c *Cache) Keys() []interface{} {
	keys := make([]interface{}, 0, c.lruList.Len())
	for element := c.lruList.Back(); element != nil; element = element.Prev() {
		keys = append(keys, element.Value.(*entry).key)
	}
	return keys
}

// Values returns all values, least recently used first.
func (c *Cache) Values() []interface{} {
	values := make([]interface{}, 0, c.lruList.Len())
	for element := c.lruList.Back(); element != nil; element = element.Prev() {
		values = append(values, element.Value.(*entry).value)
	}
	return values
}

func (c *Cache) removeElement(element *list.Element) {
	c.lruList.Remove(element)
	delete(c.index, element.Value.(*entry).key)
}
