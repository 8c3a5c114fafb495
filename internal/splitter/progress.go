package splitter

import (
	"fmt"
	"io"
	"sync"
)

// Progress 拆分进度报告接口
type Progress interface {
	// Start 开始拆分
	Start(input string)

	// Page 开始处理第index个页面(从1开始)，page为页码
	Page(index, total, page int)

	// Done 拆分完成
	Done(total int, outputDir string)
}

// ConsolePrinter 将进度输出到控制台
// 多个worker并发调用时按行串行输出
type ConsolePrinter struct {
	w  io.Writer
	mu sync.Mutex
}

// NewConsolePrinter 创建控制台进度输出
func NewConsolePrinter(w io.Writer) *ConsolePrinter {
	return &ConsolePrinter{w: w}
}

// Start 输出开始信息
func (p *ConsolePrinter) Start(input string) {
	p.printf("Starting to split: %s\n", input)
}

// Page 输出单页处理信息
func (p *ConsolePrinter) Page(index, total, page int) {
	p.printf("Processing page %d/%d...\n", page, total)
}

// Done 输出汇总信息
func (p *ConsolePrinter) Done(total int, outputDir string) {
	p.printf("\nSuccessfully split %d pages into '%s'\n", total, outputDir)
}

func (p *ConsolePrinter) printf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

type discardProgress struct{}

func (discardProgress) Start(string)     {}
func (discardProgress) Page(_, _, _ int) {}
func (discardProgress) Done(int, string) {}

// Discard 不输出任何进度
var Discard Progress = discardProgress{}
