package ipc

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcquireIsExclusive(t *testing.T) {
	owner, err := Acquire(context.Background(), 0)
	require.NoError(t, err)
	defer owner.Close()
	require.NotZero(t, owner.Port())

	second, err := Acquire(context.Background(), owner.Port())
	require.Nil(t, second)
	require.ErrorIs(t, err, ErrBindFailed)
	require.True(t, IsAddrInUse(err))
}

func TestAcquireAfterCloseSucceeds(t *testing.T) {
	owner, err := Acquire(context.Background(), 0)
	require.NoError(t, err)
	port := owner.Port()
	require.NoError(t, owner.Close())

	again, err := Acquire(context.Background(), port)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestAcquireRaceHasSingleWinner(t *testing.T) {
	first, err := Acquire(context.Background(), 0)
	require.NoError(t, err)
	port := first.Port()
	require.NoError(t, first.Close())

	const contenders = 16
	var (
		start   = make(chan struct{})
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []*Handle
		losers  []error
	)
	for range contenders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			handle, err := Acquire(context.Background(), port)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				losers = append(losers, err)
				return
			}
			winners = append(winners, handle)
		}()
	}
	close(start)
	wg.Wait()

	for _, h := range winners {
		defer h.Close()
	}
	require.Len(t, winners, 1)
	require.Len(t, losers, contenders-1)
	for _, err := range losers {
		require.ErrorIs(t, err, ErrBindFailed)
		require.True(t, IsAddrInUse(err))
	}
}

func TestAcquireAfterOwnerClosedConnectionsSucceeds(t *testing.T) {
	owner, err := Acquire(context.Background(), 0)
	require.NoError(t, err)
	port := owner.Port()

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan struct{})
	go func() {
		defer close(served)
		Serve(ctx, owner, HandlerFunc(func(Envelope, net.Addr) {}), ServeOptions{ReadTimeout: time.Second})
	}()

	// The owner closes first, which leaves its side of the connection in TIME_WAIT.
	conn, err := net.Dial("tcp4", Address(port))
	require.NoError(t, err)
	_, err = Envelope{Payload: []byte("x")}.WriteTo(conn)
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Read(make([]byte, 1))
	require.ErrorIs(t, err, io.EOF)
	require.NoError(t, conn.Close())

	cancel()
	<-served

	restarted, err := Acquire(context.Background(), port)
	require.NoError(t, err)
	require.NoError(t, restarted.Close())
}

func TestHandleCloseIsIdempotent(t *testing.T) {
	handle, err := Acquire(context.Background(), 0)
	require.NoError(t, err)

	require.False(t, handle.Closed())
	first := handle.Close()
	require.NoError(t, first)
	require.Equal(t, first, handle.Close())
	require.True(t, handle.Closed())
}

func TestAcceptIsRestartable(t *testing.T) {
	handle, err := Acquire(context.Background(), 0)
	require.NoError(t, err)
	defer handle.Close()

	for range 2 {
		client, err := net.Dial("tcp4", Address(handle.Port()))
		require.NoError(t, err)

		for conn, remote := range handle.Accept() {
			require.NotNil(t, remote)
			require.Equal(t, LoopbackHost, remote.(*net.TCPAddr).IP.String())
			_ = conn.Close()
			break
		}
		_ = client.Close()
	}
}

func TestAcceptEndsWhenHandleCloses(t *testing.T) {
	handle, err := Acquire(context.Background(), 0)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for conn := range handle.Accept() {
			_ = conn.Close()
		}
	}()

	require.NoError(t, handle.Close())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Accept did not end after Close")
	}
}

func TestIsAddrInUse(t *testing.T) {
	require.False(t, IsAddrInUse(nil))
	require.False(t, IsAddrInUse(errors.New("permission denied")))
	require.True(t, IsAddrInUse(errors.New("bind: address already in use")))
	require.True(t, IsAddrInUse(errors.New("Only one usage of each socket address is normally permitted")))
}
