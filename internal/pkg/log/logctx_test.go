package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Тесты меняют slog.Default(), поэтому намеренно НЕ используют t.Parallel().

func newSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFrom_ReturnsDefault_WhenNoLoggerInContext(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := newSilent()
	slog.SetDefault(def)

	require.Equal(t, def, From(context.Background()))
}

func TestIntoAndFrom_RoundTrip(t *testing.T) {
	l := newSilent()
	ctx := Into(context.Background(), l)

	require.Equal(t, l, From(ctx))
}

// From устойчив к «мусорным» значениям по нашему ключу и к *slog.Logger(nil).
func TestFrom_ReturnsDefault_WhenStoredValueIsWrongTypeOrNil(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })
	def := newSilent()
	slog.SetDefault(def)

	ctxWrong := context.WithValue(context.Background(), ctxKey{}, "not-a-logger")
	require.Equal(t, def, From(ctxWrong))

	var nilLogger *slog.Logger
	ctxNil := context.WithValue(context.Background(), ctxKey{}, nilLogger)
	require.Equal(t, def, From(ctxNil))
}

func TestInto_ShadowParentLogger(t *testing.T) {
	parentL := newSilent()
	childL := newSilent()

	parent := Into(context.Background(), parentL)
	child := Into(parent, childL)

	require.Equal(t, childL, From(child))
	require.Equal(t, parentL, From(parent))
}

// With добавляет атрибуты только дочернему контексту.
func TestWith_EnrichesChildOnly(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	parent := Into(context.Background(), base)

	child, l := With(parent, "op", "probe")
	require.Equal(t, l, From(child))

	From(child).Info("child")
	require.Contains(t, buf.String(), "op=probe")

	buf.Reset()
	From(parent).Info("parent")
	require.NotContains(t, buf.String(), "op=probe")
}

// Into не меняет отмену и дедлайн.
func TestInto_PreservesCancellationAndDeadline(t *testing.T) {
	parentDL, cancelDL := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancelDL()

	child := Into(parentDL, newSilent())

	cdl, ok := child.Deadline()
	require.True(t, ok)
	pdl, _ := parentDL.Deadline()
	require.WithinDuration(t, pdl, cdl, time.Millisecond)

	parentCancel, cancel := context.WithCancel(context.Background())
	child2 := Into(parentCancel, newSilent())
	cancel()
	select {
	case <-child2.Done():
		require.ErrorIs(t, child2.Err(), context.Canceled)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ожидали отмену у дочернего контекста")
	}
}
