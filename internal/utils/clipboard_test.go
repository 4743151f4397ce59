package utils

import (
	"errors"
	"testing"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClipboard 替换剪贴板写入函数
func stubClipboard(t *testing.T, fn func(string) error) {
	t.Helper()
	orig, unsupported := clipboardWrite, clipboard.Unsupported
	clipboardWrite = fn
	clipboard.Unsupported = false
	t.Cleanup(func() {
		clipboardWrite = orig
		clipboard.Unsupported = unsupported
	})
}

func TestCopyToClipboard(t *testing.T) {
	var got string
	stubClipboard(t, func(s string) error {
		got = s
		return nil
	})

	require.NoError(t, CopyToClipboard("/scores/song.png"))
	assert.Equal(t, "/scores/song.png", got)
}

func TestCopyToClipboard_Error(t *testing.T) {
	boom := errors.New("boom")
	stubClipboard(t, func(string) error { return boom })

	err := CopyToClipboard("x")
	assert.ErrorIs(t, err, boom)
}

func TestCopyToClipboard_Unsupported(t *testing.T) {
	stubClipboard(t, func(string) error { return nil })
	clipboard.Unsupported = true

	assert.Error(t, CopyToClipboard("x"))
}
