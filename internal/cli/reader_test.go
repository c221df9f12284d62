package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	r := NewNonBlockingReader(strings.NewReader("  hello world  \nsecond\n"))
	ctx := context.Background()

	line, err := r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello world", line)

	line, err = r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", line)
}

func TestReadLineCancellation(t *testing.T) {
	// A pipe-like reader that never produces data.
	blocked := make(chan struct{})
	t.Cleanup(func() { close(blocked) })

	r := NewNonBlockingReader(blockingReader{wait: blocked})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestNewNonBlockingReaderNilPanics(t *testing.T) {
	assert.Panics(t, func() { NewNonBlockingReader(nil) })
}

type blockingReader struct {
	wait chan struct{}
}

func (b blockingReader) Read(_ []byte) (int, error) {
	<-b.wait
	return 0, nil
}
