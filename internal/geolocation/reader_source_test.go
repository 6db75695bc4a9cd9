package geolocation

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func collect(t *testing.T, ch <-chan Update) []Update {
	t.Helper()
	var out []Update
	deadline := time.After(2 * time.Second)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, u)
		case <-deadline:
			t.Fatal("feed did not close")
		}
	}
}

func TestReaderSource_Replay(t *testing.T) {
	feed := strings.Join([]string{
		`{"coords":{"latitude":37.5665,"longitude":126.978},"timestamp":1000}`,
		``,
		`{"error":{"code":1,"message":"User denied Geolocation"}}`,
		`not json`,
		`{"coords":{"latitude":91,"longitude":0},"timestamp":2000}`,
		`{"coords":{"latitude":37.5666,"longitude":126.978},"timestamp":3000}`,
	}, "\n")

	src := NewReaderSource(strings.NewReader(feed))
	ch, err := src.Watch(context.Background(), WatchOptions{})
	require.NoError(t, err)

	updates := collect(t, ch)
	require.Len(t, updates, 5)

	assert.NoError(t, updates[0].Err)
	assert.Equal(t, 37.5665, updates[0].Position.Coords.Latitude)
	assert.Equal(t, int64(1000), updates[0].Position.Timestamp)

	assert.True(t, errors.Is(updates[1].Err, ErrPermissionDenied))
	assert.True(t, errors.Is(updates[2].Err, ErrPositionUnavailable))
	assert.True(t, errors.Is(updates[3].Err, ErrPositionUnavailable))

	assert.NoError(t, updates[4].Err)
	assert.Equal(t, int64(3000), updates[4].Position.Timestamp)
}

func TestReaderSource_OversizedLine(t *testing.T) {
	huge := `{"coords":{"latitude":37.5,"longitude":127},"timestamp":1000,"pad":"` +
		strings.Repeat("x", MaxLineBytes+6000) + `"}`
	feed := huge + "\n" + `{"coords":{"latitude":37.5665,"longitude":126.978},"timestamp":2000}` + "\n"

	src := NewReaderSource(strings.NewReader(feed))
	ch, err := src.Watch(context.Background(), WatchOptions{})
	require.NoError(t, err)

	updates := collect(t, ch)
	require.Len(t, updates, 2)
	assert.True(t, errors.Is(updates[0].Err, ErrPositionUnavailable))
	assert.Contains(t, updates[0].Err.Error(), "exceeds")
	require.NoError(t, updates[1].Err)
	assert.Equal(t, int64(2000), updates[1].Position.Timestamp)
}

func TestReaderSource_ReadError(t *testing.T) {
	r := io.MultiReader(
		strings.NewReader(`{"coords":{"latitude":37.5665,"longitude":126.978},"timestamp":1000}`+"\n"),
		iotest.ErrReader(errors.New("device unplugged")),
	)

	src := NewReaderSource(r)
	ch, err := src.Watch(context.Background(), WatchOptions{})
	require.NoError(t, err)

	updates := collect(t, ch)
	require.Len(t, updates, 2)
	require.NoError(t, updates[0].Err)
	assert.True(t, errors.Is(updates[1].Err, ErrPositionUnavailable))
	assert.Contains(t, updates[1].Err.Error(), "device unplugged")
}

func TestReadLine_LastLineWithoutNewline(t *testing.T) {
	br := bufio.NewReaderSize(strings.NewReader("abc\n"+strings.Repeat("y", 40)+"\ntail"), 16)

	line, err := readLine(br, 32)
	require.NoError(t, err)
	assert.Equal(t, "abc\n", string(line))

	_, err = readLine(br, 32)
	assert.ErrorIs(t, err, errLineTooLong)

	line, err = readLine(br, 32)
	require.NoError(t, err)
	assert.Equal(t, "tail", string(line))

	_, err = readLine(br, 32)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderSource_WatchOnce(t *testing.T) {
	src := NewReaderSource(strings.NewReader(""))
	ch, err := src.Watch(context.Background(), WatchOptions{})
	require.NoError(t, err)
	collect(t, ch)

	_, err = src.Watch(context.Background(), WatchOptions{})
	assert.Error(t, err)
}

func TestReaderSource_Timeout(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	src := NewReaderSource(pr)
	ch, err := src.Watch(ctx, WatchOptions{Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	select {
	case u := <-ch:
		assert.True(t, errors.Is(u.Err, ErrTimeout))
	case <-time.After(2 * time.Second):
		t.Fatal("expected a timeout update")
	}

	cancel()
	pw.Close()
	collect(t, ch)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Contains(t, UserMessage(ErrPermissionDenied), "denied")
	assert.Contains(t, UserMessage(&PositionError{Code: Timeout, Message: "x"}), "Timed out")
	assert.Equal(t, "Could not get your location.", UserMessage(errors.New("boom")))
}
