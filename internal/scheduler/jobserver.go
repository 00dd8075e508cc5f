package scheduler

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"
)

// token is the single byte GNU make's job-server protocol passes back
// and forth across the pipe or fifo; its value carries no meaning.
type token = byte

// JobServer implements GNU make's job-server protocol (pipe and named
// fifo flavors) so that recursive `make` invocations inside a step's
// script share the same concurrency pool the scheduler itself uses.
// One implicit token is always held by the caller (this process), so a
// pool of N slots hands out N-1 tokens over the wire.
type JobServer struct {
	r, w     *os.File
	fifoPath string

	mu sync.Mutex
}

// NewPipeJobServer creates an anonymous-pipe job-server with slots
// total concurrency slots (including the one implicit token).
func NewPipeJobServer(slots int) (*JobServer, error) {
	if slots < 1 {
		return nil, fmt.Errorf("job-server requires at least 1 slot")
	}
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating job-server pipe: %w", err)
	}
	js := &JobServer{r: r, w: w}
	for i := 0; i < slots-1; i++ {
		if _, err := w.Write([]byte{'+'}); err != nil {
			return nil, fmt.Errorf("seeding job-server pipe: %w", err)
		}
	}
	return js, nil
}

// NewFifoJobServer creates a named-fifo job-server at path, the flavor
// GNU make falls back to on platforms without a usable anonymous pipe
// fd passed to children.
func NewFifoJobServer(path string, slots int) (*JobServer, error) {
	if slots < 1 {
		return nil, fmt.Errorf("job-server requires at least 1 slot")
	}
	if err := syscall.Mkfifo(path, 0o600); err != nil && !os.IsExist(err) {
		return nil, fmt.Errorf("creating job-server fifo %s: %w", path, err)
	}
	// Open both ends ourselves so the fifo never blocks waiting for a
	// second opener before the first client connects.
	w, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening job-server fifo %s: %w", path, err)
	}
	js := &JobServer{r: w, w: w, fifoPath: path}
	for i := 0; i < slots-1; i++ {
		if _, err := w.Write([]byte{'+'}); err != nil {
			return nil, fmt.Errorf("seeding job-server fifo: %w", err)
		}
	}
	return js, nil
}

// AuthString returns the value to publish as the `--jobserver-auth=`
// component of MAKEFLAGS for child processes.
func (j *JobServer) AuthString() string {
	if j.fifoPath != "" {
		return "fifo:" + j.fifoPath
	}
	return fmt.Sprintf("%d,%d", j.r.Fd(), j.w.Fd())
}

// ExtraFiles returns the file descriptors a spawned step process must
// inherit for the pipe flavor to work; the fifo flavor needs none.
func (j *JobServer) ExtraFiles() []*os.File {
	if j.fifoPath != "" {
		return nil
	}
	return []*os.File{j.r, j.w}
}

// Acquire blocks until a token is available or ctx is canceled. A token
// read after cancellation is returned to the pool.
func (j *JobServer) Acquire(ctx context.Context) (token, error) {
	type result struct {
		b   byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		buf := make([]byte, 1)
		n, err := j.r.Read(buf)
		if n == 1 {
			ch <- result{b: buf[0]}
			return
		}
		ch <- result{err: err}
	}()
	select {
	case <-ctx.Done():
		go func() {
			if res := <-ch; res.err == nil {
				_ = j.Release(res.b)
			}
		}()
		return 0, ctx.Err()
	case res := <-ch:
		return res.b, res.err
	}
}

// Release returns a previously acquired token to the pool.
func (j *JobServer) Release(tok token) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.w.Write([]byte{tok})
	return err
}

// Close releases the job-server's file descriptors.
func (j *JobServer) Close() error {
	if j.fifoPath != "" {
		return j.w.Close()
	}
	rerr := j.r.Close()
	werr := j.w.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

// ParseJobServerAuth extracts the `--jobserver-auth=` value from a
// MAKEFLAGS-style string, reporting whether one was present.
func ParseJobServerAuth(makeflags string) (string, bool) {
	for _, field := range strings.Fields(makeflags) {
		if v, ok := strings.CutPrefix(field, "--jobserver-auth="); ok {
			return v, true
		}
		if v, ok := strings.CutPrefix(field, "--jobserver-fds="); ok {
			return v, true
		}
	}
	return "", false
}

// DialJobServerAuth opens a client handle to a job-server described by
// an auth string, either "R,W" (pipe fd numbers) or "fifo:PATH".
func DialJobServerAuth(auth string) (*JobServer, error) {
	if path, ok := strings.CutPrefix(auth, "fifo:"); ok {
		f, err := os.OpenFile(path, os.O_RDWR, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening job-server fifo %s: %w", path, err)
		}
		return &JobServer{r: f, w: f, fifoPath: path}, nil
	}

	parts := strings.SplitN(auth, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed job-server auth %q", auth)
	}
	rfd, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("malformed job-server read fd %q: %w", parts[0], err)
	}
	wfd, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("malformed job-server write fd %q: %w", parts[1], err)
	}
	return &JobServer{
		r: os.NewFile(uintptr(rfd), "jobserver-r"),
		w: os.NewFile(uintptr(wfd), "jobserver-w"),
	}, nil
}
