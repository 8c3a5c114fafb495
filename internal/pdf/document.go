package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNoPagesLeft 删除操作会移除文档中的全部页面
var ErrNoPagesLeft = errors.New("page deletion would leave no pages")

// PageRef 页面字典在对象图中的引用
type PageRef struct {
	ObjectNumber     int // 对象编号
	GenerationNumber int // 代数
}

// String 以PDF间接引用的形式输出
func (r PageRef) String() string {
	return fmt.Sprintf("%d %d R", r.ObjectNumber, r.GenerationNumber)
}

// Options PDF读取配置
type Options struct {
	Strict   bool   // 是否使用严格校验模式
	Password string // 加密文档的密码(同时作为用户密码和所有者密码)
}

// NewConfiguration 根据选项创建pdfcpu配置
func NewConfiguration(opts Options) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if opts.Strict {
		conf.ValidationMode = model.ValidationStrict
	}
	if opts.Password != "" {
		conf.UserPW = opts.Password
		conf.OwnerPW = opts.Password
	}
	return conf
}

// Document 已加载的PDF文档
// 保留原始字节，以便每次Clone都得到一份互不影响的对象图
type Document struct {
	raw  []byte               // 原始文件内容
	ctx  *model.Context       // pdfcpu对象图
	conf *model.Configuration // 读取配置
}

// Load 从文件加载并校验PDF文档
func Load(path string, conf *model.Configuration) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF file: %w", err)
	}
	return LoadBytes(raw, conf)
}

// LoadBytes 从内存中的PDF内容加载文档
func LoadBytes(raw []byte, conf *model.Configuration) (*Document, error) {
	if conf == nil {
		conf = NewConfiguration(Options{})
	}

	ctx, err := parse(raw, conf)
	if err != nil {
		return nil, err
	}

	return &Document{raw: raw, ctx: ctx, conf: conf}, nil
}

// parse 解析、校验并优化PDF内容
func parse(raw []byte, conf *model.Configuration) (*model.Context, error) {
	// 每个上下文使用独立的配置副本，pdfcpu会在处理过程中改写配置
	c := *conf
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(raw), &c)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}
	if ctx.PageCount == 0 {
		return nil, errors.New("failed to parse PDF: document has no pages")
	}
	return ctx, nil
}

// PageCount 返回文档页数
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Pages 返回页码到页面对象引用的映射
func (d *Document) Pages() (map[int]PageRef, error) {
	pages := make(map[int]PageRef, d.ctx.PageCount)
	for nr := 1; nr <= d.ctx.PageCount; nr++ {
		_, indRef, _, err := d.ctx.PageDict(nr, false)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve page %d: %w", nr, err)
		}
		if indRef == nil {
			return nil, fmt.Errorf("page %d has no indirect reference", nr)
		}
		pages[nr] = PageRef{
			ObjectNumber:     indRef.ObjectNumber.Value(),
			GenerationNumber: indRef.GenerationNumber.Value(),
		}
	}
	return pages, nil
}

// PageNumbers 返回按文档顺序排列的页码
func PageNumbers(pages map[int]PageRef) []int {
	nrs := make([]int, 0, len(pages))
	for nr := range pages {
		nrs = append(nrs, nr)
	}
	sort.Ints(nrs)
	return nrs
}

// ObjectCount 返回交叉引用表中的对象数量
func (d *Document) ObjectCount() int {
	return len(d.ctx.Table)
}

// Clone 创建一份独立的文档副本
// 副本从当前内容的字节重新解析，修改副本不会影响原文档
func (d *Document) Clone() (*Document, error) {
	ctx, err := parse(d.raw, d.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to clone document: %w", err)
	}
	return &Document{raw: d.raw, ctx: ctx, conf: d.conf}, nil
}

// DeletePages 删除指定页码的页面
// 不存在的页码会被忽略
func (d *Document) DeletePages(nrs []int) error {
	drop := make(map[int]bool, len(nrs))
	for _, nr := range nrs {
		drop[nr] = true
	}

	var keep []int
	for nr := 1; nr <= d.ctx.PageCount; nr++ {
		if !drop[nr] {
			keep = append(keep, nr)
		}
	}
	if len(keep) == 0 {
		return ErrNoPagesLeft
	}
	if len(keep) == d.ctx.PageCount {
		return nil
	}

	ctx, err := pdfcpu.ExtractPages(d.ctx, keep, false)
	if err != nil {
		return fmt.Errorf("failed to delete pages: %w", err)
	}
	return d.reload(ctx)
}

// PruneObjects 移除不再被引用的对象以及重复的资源
func (d *Document) PruneObjects() error {
	if err := api.OptimizeContext(d.ctx); err != nil {
		return fmt.Errorf("failed to prune objects: %w", err)
	}
	return nil
}

// RenumberObjects 重建对象表，使对象编号连续
func (d *Document) RenumberObjects() error {
	nrs := make([]int, d.ctx.PageCount)
	for i := range nrs {
		nrs[i] = i + 1
	}

	ctx, err := pdfcpu.ExtractPages(d.ctx, nrs, false)
	if err != nil {
		return fmt.Errorf("failed to renumber objects: %w", err)
	}
	return d.reload(ctx)
}

// reload 序列化新的对象图并重新解析
// 保证页表和页数与写出的内容一致
func (d *Document) reload(ctx *model.Context) error {
	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	raw := buf.Bytes()
	parsed, err := parse(raw, d.conf)
	if err != nil {
		return err
	}
	d.raw = raw
	d.ctx = parsed
	return nil
}

// Write 将文档写入writer
func (d *Document) Write(w io.Writer) error {
	if err := api.WriteContext(d.ctx, w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
