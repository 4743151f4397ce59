package image

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"io"
	"os"
	"strings"

	"github.com/BourgeoisBear/rasterm"
	"github.com/disintegration/imaging"
)

// TerminalType 终端类型
type TerminalType string

const (
	TerminalKitty   TerminalType = "kitty"
	TerminalITerm2  TerminalType = "iterm2"
	TerminalWezTerm TerminalType = "wezterm"
	TerminalGhostty TerminalType = "ghostty"
	TerminalGeneric TerminalType = "generic"
)

// GraphicsProtocol 图形协议
type GraphicsProtocol string

const (
	ProtocolKitty GraphicsProtocol = "kitty"
	ProtocolITerm GraphicsProtocol = "iterm2"
	ProtocolSixel GraphicsProtocol = "sixel"
	ProtocolNone  GraphicsProtocol = "none"
)

// ImageRenderer 把位图输出到终端：图形协议（rasterm）或 ANSI 半块字符
type ImageRenderer struct {
	TerminalType TerminalType
	Protocol     GraphicsProtocol
}

// NewImageRenderer 根据配置的方式创建渲染器；auto 表示自动检测终端
func NewImageRenderer(method string) *ImageRenderer {
	r := &ImageRenderer{}

	switch strings.ToLower(method) {
	case "text":
		r.TerminalType, r.Protocol = TerminalGeneric, ProtocolNone
	case "kitty":
		r.TerminalType, r.Protocol = TerminalKitty, ProtocolKitty
	case "iterm2":
		r.TerminalType, r.Protocol = TerminalITerm2, ProtocolITerm
	case "sixel":
		r.TerminalType, r.Protocol = TerminalGeneric, ProtocolSixel
	default:
		r.TerminalType, r.Protocol = DetectTerminal()
	}
	return r
}

// DetectTerminal 检测终端类型并选择图形协议
func DetectTerminal() (TerminalType, GraphicsProtocol) {
	// 检查环境变量来判断终端类型
	term := strings.ToLower(os.Getenv("TERM"))
	termProgram := strings.ToLower(os.Getenv("TERM_PROGRAM"))
	kittyWindow := os.Getenv("KITTY_WINDOW_ID")
	ghosttyPath := os.Getenv("GHOSTTY")

	// Kitty 终端检测
	if kittyWindow != "" || strings.Contains(term, "kitty") {
		return TerminalKitty, ProtocolKitty
	}

	// Ghostty 终端检测 - 使用 Kitty 协议
	if ghosttyPath != "" || termProgram == "ghostty" || strings.Contains(term, "ghostty") {
		return TerminalGhostty, ProtocolKitty
	}

	// iTerm2 检测
	if termProgram == "iterm.app" {
		return TerminalITerm2, ProtocolITerm
	}

	// WezTerm 检测
	if termProgram == "wezterm" {
		return TerminalWezTerm, ProtocolITerm // WezTerm 支持 iTerm2 协议
	}

	// 检查是否支持 Sixel
	if supportsSixel(term) {
		return TerminalGeneric, ProtocolSixel
	}

	// 默认不支持图形
	return TerminalGeneric, ProtocolNone
}

// supportsSixel 简单检测：查看 TERM 环境变量
func supportsSixel(term string) bool {
	for _, sixelTerm := range []string{"xterm-sixel", "mlterm", "yaft"} {
		if strings.Contains(term, sixelTerm) {
			return true
		}
	}
	return false
}

// IsSupported 检查当前终端是否支持图形协议
func (r *ImageRenderer) IsSupported() bool {
	return r.Protocol != ProtocolNone
}

// Write 按图形协议输出图片；不支持图形时退回到 ANSI 文本，宽度为 cols 列
func (r *ImageRenderer) Write(w io.Writer, img image.Image, cols, rows int) error {
	var err error
	switch r.Protocol {
	case ProtocolKitty:
		opts := rasterm.KittyImgOpts{}
		if cols > 0 && rows > 0 {
			opts.DstCols = uint32(cols)
			opts.DstRows = uint32(rows)
		}
		err = rasterm.KittyWriteImage(w, img, opts)
	case ProtocolITerm:
		err = rasterm.ItermWriteImage(w, img)
	case ProtocolSixel:
		// 转换为调色板图像（Sixel 需要）
		bounds := img.Bounds()
		paletted := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, bounds, img, bounds.Min)
		err = rasterm.SixelWriteImage(w, paletted)
	default:
		if cols <= 0 {
			cols = 80
		}
		if rows <= 0 {
			rows = FitRows(img, cols)
		}
		_, err = io.WriteString(w, RenderText(img, cols, rows))
	}

	if err != nil {
		return &RenderError{
			Terminal: string(r.TerminalType),
			Protocol: string(r.Protocol),
			Err:      err,
		}
	}
	return nil
}

// FitRows 计算保持宽高比时文本渲染所需的行数（每行两个像素）
func FitRows(img image.Image, cols int) int {
	b := img.Bounds()
	if b.Dx() == 0 {
		return 1
	}
	return max(1, (b.Dy()*cols/b.Dx()+1)/2)
}

// RenderText 使用 ANSI 24 位颜色半块字符渲染，输出恰好 cols 列 rows 行
func RenderText(img image.Image, cols, rows int) string {
	cols = max(cols, 1)
	rows = max(rows, 1)

	// 每个单元格上下两个像素
	small := imaging.Resize(img, cols, rows*2, imaging.Box)

	var b strings.Builder
	b.Grow(rows * cols * 40)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := small.NRGBAAt(col, row*2)
			bot := small.NRGBAAt(col, row*2+1)
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", top.R, top.G, top.B, bot.R, bot.G, bot.B)
		}
		b.WriteString("\x1b[0m")
		if row < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
