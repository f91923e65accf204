package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/yamlref/pkg/semantic"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatch(t *testing.T) {
	path := writeFile(t, "watched.yaml", "a: &a 1\nb: *a\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, path, semantic.DefaultConfig(), &out, log.NewNopLogger())
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "1 documents resolved, 1 aliases")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("a: *missing\n"), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "0 of 1 documents resolved")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestRunWatchMissingDirectory(t *testing.T) {
	err := runWatch(context.Background(), "/nonexistent/dir/file.yaml", semantic.DefaultConfig(), &bytes.Buffer{}, log.NewNopLogger())
	assert.Error(t, err)
}
