package application

import "sync"

// orderLocker serializes operations per order id, so that at most one
// mutation pipeline (validate, move funds, commit) is in flight for any
// given order.
type orderLocker struct {
	locker *sync.Mutex
	locks  map[uint64]*sync.Mutex
}

func newOrderLocker() *orderLocker {
	return &orderLocker{
		locker: &sync.Mutex{},
		locks:  map[uint64]*sync.Mutex{},
	}
}

// lock acquires the lock of the given order and returns its release
// function.
func (l *orderLocker) lock(orderID uint64) func() {
	l.locker.Lock()
	lock, ok := l.locks[orderID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[orderID] = lock
	}
	l.locker.Unlock()

	lock.Lock()
	return lock.Unlock
}
