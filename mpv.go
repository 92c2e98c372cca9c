package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dexterlb/mpvipc"
)

// mpvCallTimeout bounds a single IPC round-trip when the caller set no deadline.
const mpvCallTimeout = 2 * time.Second

// MPV drives an mpv process over its JSON IPC socket.
type MPV struct {
	conn   *mpvipc.Connection
	cmd    *exec.Cmd
	socket string
}

// StartMPV launches binary paused on inputFile and connects to its socket.
// The process lives until ctx is cancelled or Close is called.
func StartMPV(ctx context.Context, binary, socketDir, inputFile string) (*MPV, error) {
	if binary == "" {
		binary = "mpv"
	}
	if socketDir == "" {
		socketDir = os.TempDir()
	}
	socket := filepath.Join(socketDir, fmt.Sprintf("tcard-mpv-%d.sock", os.Getpid()))
	_ = os.Remove(socket)

	cmd := exec.CommandContext(
		ctx,
		binary,
		"--idle=yes",
		"--pause",
		"--keep-open=yes",
		"--loop-file=no",
		"--force-window=yes",
		"--really-quiet",
		"--input-ipc-server="+socket,
		inputFile,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mpv: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, err := openWithRetry(dialCtx, socket)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	return &MPV{conn: conn, cmd: cmd, socket: socket}, nil
}

// ConnectMPV attaches to an mpv instance that is already listening on socket.
func ConnectMPV(ctx context.Context, socket string) (*MPV, error) {
	conn, err := openWithRetry(ctx, socket)
	if err != nil {
		return nil, err
	}
	return &MPV{conn: conn}, nil
}

func openWithRetry(ctx context.Context, socket string) (*mpvipc.Connection, error) {
	var lastErr error
	for {
		conn := mpvipc.NewConnection(socket)
		if err := conn.Open(); err == nil {
			return conn, nil
		} else {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to mpv socket: %w", lastErr)
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (m *MPV) Seek(ctx context.Context, seconds float64) error {
	_, err := m.do(ctx, func() (any, error) {
		return m.conn.Call("seek", seconds, "absolute+exact")
	})
	return err
}

func (m *MPV) Play(ctx context.Context) error {
	_, err := m.do(ctx, func() (any, error) {
		return nil, m.conn.Set("pause", false)
	})
	return err
}

func (m *MPV) Pause(ctx context.Context) error {
	_, err := m.do(ctx, func() (any, error) {
		return nil, m.conn.Set("pause", true)
	})
	return err
}

func (m *MPV) Position(ctx context.Context) (float64, error) {
	data, err := m.do(ctx, func() (any, error) {
		return m.conn.Get("time-pos")
	})
	if err != nil {
		return 0, err
	}
	pos, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected time-pos value %v", data)
	}
	return pos, nil
}

// Close asks mpv to quit, drops the connection and reaps the process.
func (m *MPV) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _ = m.do(ctx, func() (any, error) {
		return m.conn.Call("quit")
	})

	var err error
	if !m.conn.IsClosed() {
		err = m.conn.Close()
	}
	if m.cmd != nil {
		waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer waitCancel()
		done := make(chan struct{})
		go func() {
			_ = m.cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-waitCtx.Done():
			_ = m.cmd.Process.Kill()
			<-done
		}
	}
	if m.socket != "" {
		_ = os.Remove(m.socket)
	}
	return err
}

// do runs one IPC call, giving up when ctx expires. mpvipc calls block
// until mpv replies.
func (m *MPV) do(ctx context.Context, call func() (any, error)) (any, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, mpvCallTimeout)
		defer cancel()
	}

	type result struct {
		data any
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := call()
		ch <- result{data: data, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("mpv: %w", r.err)
		}
		return r.data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("mpv: %w", ctx.Err())
	}
}
