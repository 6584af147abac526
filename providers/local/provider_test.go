package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.alt-gnome.ru/termwright"
)

func TestSessionEchoRoundTrip(t *testing.T) {
	p := Provider(WithCommand("cat"))

	sess, err := p.Open(context.Background(), "local-echo")
	require.NoError(t, err)
	defer sess.Close()

	require.NoError(t, sess.Send(termwright.Text("hello pty")))
	require.NoError(t, sess.Send(termwright.Press(termwright.KeyEnter)))

	matched, last, err := termwright.WaitFor(context.Background(), sess, "hello pty", 5*time.Second, 25*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, matched, "last screen: %q", last)
}

func TestOpenDuplicateName(t *testing.T) {
	p := Provider(WithCommand("cat"))

	sess, err := p.Open(context.Background(), "local-dup")
	require.NoError(t, err)
	defer sess.Close()

	_, err = p.Open(context.Background(), "local-dup")

	var createErr *termwright.CreateError
	require.ErrorAs(t, err, &createErr)
	assert.ErrorIs(t, err, termwright.ErrSessionExists)
}

func TestNameFreedAfterClose(t *testing.T) {
	p := Provider(WithCommand("cat"))

	sess, err := p.Open(context.Background(), "local-reuse")
	require.NoError(t, err)
	require.NoError(t, sess.Close())

	sess2, err := p.Open(context.Background(), "local-reuse")
	require.NoError(t, err)
	assert.NoError(t, sess2.Close())
}

func TestCloseIsIdempotent(t *testing.T) {
	p := Provider(WithCommand("cat"))

	sess, err := p.Open(context.Background(), "local-close")
	require.NoError(t, err)

	require.NoError(t, sess.Close())
	assert.NoError(t, sess.Close())
}

func TestSendAfterClose(t *testing.T) {
	p := Provider(WithCommand("cat"))

	sess, err := p.Open(context.Background(), "local-late")
	require.NoError(t, err)
	require.NoError(t, sess.Close())

	err = sess.Send(termwright.Text("too late"))

	var ioErr *termwright.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, termwright.ErrSessionClosed)

	_, err = sess.Capture()
	assert.ErrorIs(t, err, termwright.ErrSessionClosed)
}

func TestCaptureKeepsLastScreenful(t *testing.T) {
	p := Provider(WithCommand("sh", "-c", "seq 1 100; sleep 30"), WithSize(80, 10))

	sess, err := p.Open(context.Background(), "local-tail")
	require.NoError(t, err)
	defer sess.Close()

	matched, _, err := termwright.WaitFor(context.Background(), sess, "100", 5*time.Second, 25*time.Millisecond)
	require.NoError(t, err)
	require.True(t, matched)

	lines, err := sess.Capture()
	require.NoError(t, err)
	assert.LessOrEqual(t, len(lines), 10)
	assert.NotContains(t, lines, "1", "early output must scroll out of the screen buffer")
}
