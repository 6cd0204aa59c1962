/*
Copyright 2026 Vimeo Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package lru

// Slots 0 and 1 of every list are the sentinels. They never hold a value
// and are never freed.
const (
	headIdx = 0 // least recently used end
	tailIdx = 1 // most recently used end
)

// linkedList is a doubly-linked list whose elements live in a single slab
// and link to each other by slab index. Used for the recency stack in
// TypedCache.
type linkedList[T any] struct {
	elems []llElem[T]
	free  []int
	size  int
}

type llElem[T any] struct {
	prev, next int
	value      T
}

func newLinkedList[T any](sizeHint int) linkedList[T] {
	elems := make([]llElem[T], 2, sizeHint+2)
	elems[headIdx].next = tailIdx
	elems[tailIdx].prev = headIdx
	return linkedList[T]{elems: elems}
}

// PushBack inserts val next to the tail sentinel and returns its slot.
func (l *linkedList[T]) PushBack(val T) int {
	var idx int
	if n := len(l.free); n > 0 {
		idx = l.free[n-1]
		l.free = l.free[:n-1]
		l.elems[idx].value = val
	} else {
		idx = len(l.elems)
		l.elems = append(l.elems, llElem[T]{value: val})
	}
	l.attach(idx)
	l.size++
	return idx
}

// MoveToBack relinks idx next to the tail sentinel.
func (l *linkedList[T]) MoveToBack(idx int) {
	if l.elems[tailIdx].prev == idx {
		return
	}
	l.detach(idx)
	l.attach(idx)
}

// Remove unlinks idx, returns its value and releases the slot for reuse.
func (l *linkedList[T]) Remove(idx int) T {
	l.detach(idx)
	val := l.elems[idx].value
	l.elems[idx] = llElem[T]{}
	l.free = append(l.free, idx)
	l.size--
	return val
}

// Front returns the least recently used slot, or false if the list is
// empty.
func (l *linkedList[T]) Front() (int, bool) {
	idx := l.elems[headIdx].next
	return idx, idx != tailIdx
}

// Back returns the most recently used slot, or false if the list is empty.
func (l *linkedList[T]) Back() (int, bool) {
	idx := l.elems[tailIdx].prev
	return idx, idx != headIdx
}

func (l *linkedList[T]) Value(idx int) *T {
	return &l.elems[idx].value
}

func (l *linkedList[T]) Len() int {
	return l.size
}

func (l *linkedList[T]) detach(idx int) {
	e := &l.elems[idx]
	l.elems[e.prev].next = e.next
	l.elems[e.next].prev = e.prev
	e.prev, e.next = idx, idx
}

func (l *linkedList[T]) attach(idx int) {
	last := l.elems[tailIdx].prev
	l.elems[idx].prev = last
	l.elems[idx].next = tailIdx
	l.elems[last].next = idx
	l.elems[tailIdx].prev = idx
}
