package handle

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/findy-network/findy-didexchange/core"
	"github.com/stretchr/testify/require"
)

type counter struct {
	name string
	n    int
}

func TestRegistry_AddGet(t *testing.T) {
	r := New[counter]("counter")
	h := r.Add(counter{name: "first"})
	require.NotZero(t, h)
	require.True(t, r.Has(h))
	require.Equal(t, 1, r.Len())

	var name string
	err := r.Get(h, func(c *counter) error {
		name = c.name
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "first", name)

	require.NoError(t, r.GetMut(h, func(c *counter) error {
		c.n++
		return nil
	}))
	require.NoError(t, r.Get(h, func(c *counter) error {
		require.Equal(t, 1, c.n)
		return nil
	}))

	myErr := errors.New("closure error")
	require.ErrorIs(t, r.Get(h, func(*counter) error { return myErr }), myErr)
}

func TestRegistry_InvalidHandle(t *testing.T) {
	r := New[counter]("counter")
	h := r.Add(counter{})

	require.NoError(t, r.Release(h))
	require.False(t, r.Has(h))
	require.ErrorIs(t, r.Release(h), core.ErrInvalidHandle)
	require.ErrorIs(t, r.Get(h, func(*counter) error { return nil }), core.ErrInvalidHandle)
	require.ErrorIs(t, r.GetMut(h, func(*counter) error { return nil }), core.ErrInvalidHandle)
	require.ErrorIs(t, r.Get(0, func(*counter) error { return nil }), core.ErrInvalidHandle)
}

func TestRegistry_Drain(t *testing.T) {
	r := New[int]("ints")
	for i := 0; i < 10; i++ {
		r.Add(i)
	}
	require.Equal(t, 10, r.Len())
	hs := r.Handles()
	require.Len(t, hs, 10)
	for i := 1; i < len(hs); i++ {
		require.Less(t, hs[i-1], hs[i])
	}

	r.Drain()
	require.Equal(t, 0, r.Len())
	require.False(t, r.Has(hs[0]))
}

func TestRegistry_GetMutExclusive(t *testing.T) {
	r := New[counter]("counter")
	locked := r.Add(counter{})
	other := r.Add(counter{name: "other"})

	inside := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = r.GetMut(locked, func(c *counter) error {
			close(inside)
			<-release
			c.n = 100
			return nil
		})
	}()
	<-inside

	// other entries are reachable while one is locked
	done := make(chan struct{})
	go func() {
		_ = r.GetMut(other, func(c *counter) error {
			c.n++
			return nil
		})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("other entry blocked")
	}

	got := make(chan int)
	go func() {
		_ = r.Get(locked, func(c *counter) error {
			got <- c.n
			return nil
		})
	}()
	select {
	case <-got:
		t.Fatal("reader got a locked entry")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	require.Equal(t, 100, <-got)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := New[counter]("counter")
	h := r.Add(counter{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tmp := r.Add(counter{})
			_ = r.GetMut(h, func(c *counter) error {
				c.n++
				return nil
			})
			_ = r.Release(tmp)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, r.Len())
	require.NoError(t, r.Get(h, func(c *counter) error {
		require.Equal(t, 50, c.n)
		return nil
	}))
}
