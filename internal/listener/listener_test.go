package listener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"trainnames/internal/config"
	"trainnames/internal/importer"
)

type fakeImporter struct {
	mu        sync.Mutex
	checksums []string
	imports   int
	importErr error
	meta      *fakeMeta
}

func (f *fakeImporter) Checksum(string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.checksums) == 0 {
		return "", errors.New("no inputs")
	}
	sum := f.checksums[0]
	if len(f.checksums) > 1 {
		f.checksums = f.checksums[1:]
	}
	return sum, nil
}

func (f *fakeImporter) Import(_ context.Context, _ string) (importer.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports++
	if f.importErr != nil {
		return importer.Summary{}, f.importErr
	}
	f.meta.set(f.checksums[0])
	return importer.Summary{TraceID: "t", Checksum: f.checksums[0]}, nil
}

func (f *fakeImporter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.imports
}

type fakeMeta struct {
	mu    sync.Mutex
	value *string
}

func (m *fakeMeta) set(v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = &v
}

func (m *fakeMeta) GetMetadata(string) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

func TestRunCycleImportsOnlyOnChange(t *testing.T) {
	meta := &fakeMeta{}
	imp := &fakeImporter{checksums: []string{"a", "a", "b"}, meta: meta}
	svc := NewService(meta, imp, config.Config{RawDir: "raw"}, zaptest.NewLogger(t))

	ctx := context.Background()
	require.NoError(t, svc.runCycle(ctx))
	assert.Equal(t, 1, imp.count())

	require.NoError(t, svc.runCycle(ctx))
	assert.Equal(t, 1, imp.count())

	require.NoError(t, svc.runCycle(ctx))
	assert.Equal(t, 2, imp.count())
}

func TestRunCycleErrors(t *testing.T) {
	meta := &fakeMeta{}
	imp := &fakeImporter{meta: meta}
	svc := NewService(meta, imp, config.Config{}, nil)
	assert.Error(t, svc.runCycle(context.Background()))

	imp = &fakeImporter{checksums: []string{"a"}, importErr: errors.New("boom"), meta: meta}
	svc = NewService(meta, imp, config.Config{}, nil)
	assert.EqualError(t, svc.runCycle(context.Background()), "boom")
}

func TestRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	meta := &fakeMeta{}
	imp := &fakeImporter{checksums: []string{"a"}, importErr: errors.New("boom"), meta: meta}
	svc := NewService(meta, imp, config.Config{WatchInterval: 10 * time.Millisecond}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	assert.Eventually(t, func() bool { return imp.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch loop did not stop")
	}
}
