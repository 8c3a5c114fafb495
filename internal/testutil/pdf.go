// Package testutil 测试用的PDF样本生成与检查工具
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageMarker 返回写在第n页上的标记文本
func PageMarker(n int) string {
	return fmt.Sprintf("marker-page-%d", n)
}

// CreatePDF 在dir下生成一个pages页的PDF文件，每页写入PageMarker(n)
func CreatePDF(t testing.TB, dir string, pages int) string {
	t.Helper()

	path := filepath.Join(dir, fmt.Sprintf("sample-%dp.pdf", pages))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 14)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, PageMarker(i))
		pdf.Ln(12)
		pdf.MultiCell(0, 8, strings.Repeat(fmt.Sprintf("Body text of page %d. ", i), 10), "", "", false)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("Failed to write PDF: %v", err)
	}
	return path
}

// EncryptPDF 使用AES-256加密PDF文件，返回加密后的文件路径
func EncryptPDF(t testing.TB, path, userPW, ownerPW string) string {
	t.Helper()

	out := strings.TrimSuffix(path, filepath.Ext(path)) + "-encrypted.pdf"
	conf := model.NewAESConfiguration(userPW, ownerPW, 256)
	if err := api.EncryptFile(path, out, conf); err != nil {
		t.Fatalf("Failed to encrypt PDF: %v", err)
	}
	return out
}

// CreateFile 在dir下写入任意内容的文件
func CreateFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	return path
}

// PageCount 读取PDF文件的页数
func PageCount(t testing.TB, path string) int {
	t.Helper()

	n, err := api.PageCountFile(path)
	if err != nil {
		t.Fatalf("Failed to count pages of %s: %v", path, err)
	}
	return n
}

// ContentText 提取PDF全部页面的内容流文本
func ContentText(t testing.TB, path string) string {
	t.Helper()

	outDir := t.TempDir()
	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		t.Fatalf("Failed to extract content from %s: %v", path, err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read extracted content dir: %v", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("Failed to read extracted content: %v", err)
		}
		sb.Write(data)
		sb.WriteString("\n")
	}
	return sb.String()
}
