package utils

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// clipboardWrite 写入系统剪贴板，测试时替换
var clipboardWrite = clipboard.WriteAll

// CopyToClipboard 把文本写入系统剪贴板。
// Linux 下需要 xclip、xsel 或 wl-copy 之一
func CopyToClipboard(content string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("未找到可用的剪贴板工具 (xclip、xsel 或 wl-copy)")
	}
	if err := clipboardWrite(content); err != nil {
		return fmt.Errorf("写入剪贴板失败: %w", err)
	}
	return nil
}
