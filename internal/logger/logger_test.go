package logger_test

import (
	"testing"

	"github.com/fictjs/fictc/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDoneSortsByLocationThenText(t *testing.T) {
	source := &logger.Source{PrettyPath: "app.fict", Contents: "aaaaaaaaaa\nbbbbbbbbbb\ncccccccccc"}
	log := logger.NewLog()

	log.AddWarning(source, logger.MsgID_EmptyEffect, logger.Loc{Start: 22}, "third")
	log.AddWarning(source, logger.MsgID_EmptyEffect, logger.Loc{Start: 0}, "first")
	log.AddWarning(source, logger.MsgID_EmptyEffect, logger.Loc{Start: 11}, "second")

	msgs := log.Done()
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Data.Text)
	assert.Equal(t, "second", msgs[1].Data.Text)
	assert.Equal(t, "third", msgs[2].Data.Text)
}

func TestLogHasErrorsOnlyCountsErrorKind(t *testing.T) {
	source := &logger.Source{PrettyPath: "app.fict", Contents: "x"}
	log := logger.NewLog()
	log.AddWarning(source, logger.MsgID_EmptyEffect, logger.Loc{}, "just a warning")
	assert.False(t, log.HasErrors())

	log.AddError(source, logger.Loc{}, "boom")
	assert.True(t, log.HasErrors())
}

func TestDiagErrorFormatsFileLineColumn(t *testing.T) {
	source := &logger.Source{PrettyPath: "app.fict", Contents: "first\nsecond"}
	err := logger.NewDiagError(source, logger.Loc{Start: 6}, "something broke")
	assert.Equal(t, "app.fict:2:0: error: something broke", err.Error())
}

func TestPanicErrorNamesItsPass(t *testing.T) {
	err := &logger.PanicError{Pass: "policy", Text: "unreachable state"}
	assert.Contains(t, err.Error(), "policy")
	assert.Contains(t, err.Error(), "unreachable state")
}

func TestMsgIDNameIsStableAndClosed(t *testing.T) {
	assert.Equal(t, "memo-side-effect", logger.MsgIDName(logger.MsgID_MemoSideEffect))
	assert.Equal(t, "reactive-primitive-in-non-jsx-control-flow", logger.MsgIDName(logger.MsgID_ReactivePrimitiveInNonJSXControlFlow))
	assert.Equal(t, "unknown", logger.MsgIDName(logger.MsgID(9999)))
}
