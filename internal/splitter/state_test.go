package splitter

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTracker(t *testing.T) {
	tracker := NewStateTracker(nil)
	assert.Equal(t, StateNotStarted, tracker.State())

	// 跳过校验直接加载是非法的
	assert.Error(t, tracker.Transition(StateLoaded))

	require.NoError(t, tracker.Transition(StateValidated))
	require.NoError(t, tracker.Transition(StateLoaded))
	require.NoError(t, tracker.Transition(StatePageProcessed))
	require.NoError(t, tracker.Transition(StatePageProcessed))
	require.NoError(t, tracker.Transition(StateCompleted))
	assert.Equal(t, StateCompleted, tracker.State())

	// 完成后不能再失败或继续处理
	assert.Error(t, tracker.Abort())
	assert.Error(t, tracker.Transition(StatePageProcessed))
}

func TestStateTrackerAbort(t *testing.T) {
	tracker := NewStateTracker(nil)
	require.NoError(t, tracker.Transition(StateValidated))
	require.NoError(t, tracker.Transition(StateAborted))
	assert.Equal(t, StateAborted, tracker.State())

	// 终态
	assert.NoError(t, tracker.Abort())
	assert.Error(t, tracker.Transition(StateLoaded))
	assert.Error(t, tracker.Transition(StateCompleted))
}

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("permission denied")

	err := NewSaveError(7, "/out/page_007.pdf", cause)
	assert.Equal(t, "failed to save page 7 to '/out/page_007.pdf': permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrSave)
	assert.NotErrorIs(t, err, ErrLoad)

	wrapped := fmt.Errorf("run failed: %w", NewLoadError("in.pdf", cause))
	assert.True(t, IsType(wrapped, ErrorTypeLoad))
	assert.False(t, IsType(wrapped, ErrorTypeSave))
	assert.False(t, IsType(cause, ErrorTypeLoad))

	assert.Equal(t, "PDF file not found at 'x.pdf'", NewInputNotFoundError("x.pdf", nil).Error())
	assert.Equal(t, ErrorTypeOutputDirUnwritable, ErrOutputDirUnwritable.Error())
}

func TestConsolePrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsolePrinter(&buf)

	p.Start("doc.pdf")
	p.Page(1, 2, 1)
	p.Page(2, 2, 2)
	p.Done(2, "output_pages")

	expected := "Starting to split: doc.pdf\n" +
		"Processing page 1/2...\n" +
		"Processing page 2/2...\n" +
		"\nSuccessfully split 2 pages into 'output_pages'\n"
	assert.Equal(t, expected, buf.String())
}
