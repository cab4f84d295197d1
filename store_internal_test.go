package jsop

import (
	"fmt"
	"sync"
)

// memStore/memDBMHandle is an in-memory DBM used by this package's own
// tests, in place of a real bbolt file. It plays the same role the
// teacher's tests give an in-process fake server (testSetup spins up a
// tscmdsrv.TreeStoreCmdLineServer instead of dialing a real deployment):
// a faithful stand-in for the external collaborator that keeps tests
// fast and free of on-disk state.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

var memRegistry = struct {
	mu     sync.Mutex
	stores map[string]*memStore
}{stores: make(map[string]*memStore)}

func openMemDBM(path string, mode OpenMode) (DBM, error) {
	memRegistry.mu.Lock()
	defer memRegistry.mu.Unlock()

	switch mode {
	case CreateNew:
		ms := &memStore{data: make(map[string][]byte)}
		memRegistry.stores[path] = ms
		return &memDBMHandle{store: ms}, nil
	case ReadWrite:
		ms, ok := memRegistry.stores[path]
		if !ok {
			return nil, fmt.Errorf("jsop test: no such database %q", path)
		}
		return &memDBMHandle{store: ms}, nil
	case ReadOnly:
		ms, ok := memRegistry.stores[path]
		if !ok {
			return nil, fmt.Errorf("jsop test: no such database %q", path)
		}
		return &memDBMHandle{store: ms, readOnly: true}, nil
	default:
		return nil, fmt.Errorf("jsop test: unknown open mode %d", mode)
	}
}

type memDBMHandle struct {
	store    *memStore
	readOnly bool
}

func (h *memDBMHandle) Get(key []byte) ([]byte, bool, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	v, ok := h.store.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (h *memDBMHandle) Put(key, value []byte) error {
	if h.readOnly {
		return ErrNotWritable
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (h *memDBMHandle) Delete(key []byte) (bool, error) {
	if h.readOnly {
		return false, ErrNotWritable
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	_, ok := h.store.data[string(key)]
	if ok {
		delete(h.store.data, string(key))
	}
	return ok, nil
}

func (h *memDBMHandle) ForEach(fn func(key []byte) error) error {
	h.store.mu.Lock()
	keys := make([][]byte, 0, len(h.store.data))
	for k := range h.store.data {
		keys = append(keys, []byte(k))
	}
	h.store.mu.Unlock()

	for _, k := range keys {
		if err := fn(k); err != nil {
			return err
		}
	}
	return nil
}

func (h *memDBMHandle) Close() error { return nil }

var testSeq int
var testSeqMu sync.Mutex

func testPath(t interface{ Name() string }) string {
	testSeqMu.Lock()
	testSeq++
	n := testSeq
	testSeqMu.Unlock()
	return fmt.Sprintf("mem://%s/%d", t.Name(), n)
}
