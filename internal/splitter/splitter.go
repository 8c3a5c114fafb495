// Package splitter 将多页PDF拆分为单页PDF文件
package splitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"

	"github.com/fyerfyer/pdf-splitter/internal/logging"
	"github.com/fyerfyer/pdf-splitter/internal/pdf"
	"github.com/fyerfyer/pdf-splitter/pkg/storage"
)

// DefaultOutputDir 默认输出目录
const DefaultOutputDir = "output_pages"

// Options 拆分参数
type Options struct {
	InputPath string      // 输入PDF路径
	OutputDir string      // 输出目录，为空时使用DefaultOutputDir
	Workers   int         // 并发处理页面的数量，小于1时按1处理
	Clean     bool        // 写入前删除输出目录中已有的page_*.pdf
	KeepGoing bool        // 单页保存失败后继续处理其余页面
	PDF       pdf.Options // PDF读取配置
}

// Result 拆分结果
type Result struct {
	Pages     int      // 源文档页数
	OutputDir string   // 输出目录
	Files     []string // 成功写出的文件，按页码排序
	Removed   []string // Clean删除的旧文件
	Failed    []*Error // KeepGoing模式下保存失败的页面
}

// StorageFactory 根据输出目录创建存储
type StorageFactory func(dir string) (storage.Storage, error)

// Splitter PDF拆分器
type Splitter struct {
	opts       Options
	logger     *logrus.Logger
	progress   Progress
	newStorage StorageFactory
}

// Option 拆分器配置选项
type Option func(*Splitter)

// New 创建拆分器
func New(opts Options, options ...Option) *Splitter {
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	s := &Splitter{
		opts:     opts,
		logger:   logging.Discard(),
		progress: Discard,
		newStorage: func(dir string) (storage.Storage, error) {
			return storage.NewLocalStorage(storage.LocalConfig{Path: dir})
		},
	}

	for _, opt := range options {
		opt(s)
	}
	return s
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Splitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProgress 设置进度输出
func WithProgress(progress Progress) Option {
	return func(s *Splitter) {
		if progress != nil {
			s.progress = progress
		}
	}
}

// WithStorage 设置输出存储的创建方式
func WithStorage(factory StorageFactory) Option {
	return func(s *Splitter) {
		if factory != nil {
			s.newStorage = factory
		}
	}
}

// PageFileName 返回页码对应的输出文件名
func PageFileName(page int) string {
	return fmt.Sprintf("page_%03d.pdf", page)
}

// Split 执行拆分
// 任何错误都会终止运行，KeepGoing模式下的单页保存错误除外
func (s *Splitter) Split(ctx context.Context) (*Result, error) {
	log := s.logger.WithFields(logrus.Fields{
		logging.FieldRunID:  uuid.New().String(),
		logging.FieldInput:  s.opts.InputPath,
		logging.FieldOutput: s.opts.OutputDir,
	})
	tracker := NewStateTracker(log)

	result, err := s.run(ctx, log, tracker)
	if err != nil {
		_ = tracker.Abort()
		log.WithField(logging.FieldError, err.Error()).Info("Split aborted")
		return result, err
	}

	if err := tracker.Transition(StateCompleted); err != nil {
		return result, err
	}
	log.WithField(logging.FieldTotal, result.Pages).Info("Split completed")
	s.progress.Done(result.Pages, result.OutputDir)
	return result, nil
}

func (s *Splitter) run(ctx context.Context, log *logrus.Entry, tracker *StateTracker) (*Result, error) {
	result := &Result{OutputDir: s.opts.OutputDir}

	// 检查输入文件，失败时不创建输出目录
	info, err := os.Stat(s.opts.InputPath)
	if err != nil {
		return result, NewInputNotFoundError(s.opts.InputPath, err)
	}
	if info.IsDir() {
		return result, NewInputNotFoundError(s.opts.InputPath, errors.New("path is a directory"))
	}

	store, err := s.newStorage(s.opts.OutputDir)
	if err != nil {
		return result, NewOutputDirError(s.opts.OutputDir, err)
	}
	if err := tracker.Transition(StateValidated); err != nil {
		return result, err
	}

	s.progress.Start(s.opts.InputPath)

	doc, err := pdf.Load(s.opts.InputPath, pdf.NewConfiguration(s.opts.PDF))
	if err != nil {
		return result, NewLoadError(s.opts.InputPath, err)
	}
	pages, err := doc.Pages()
	if err != nil {
		return result, NewLoadError(s.opts.InputPath, err)
	}
	if err := tracker.Transition(StateLoaded); err != nil {
		return result, err
	}

	// 页码快照，后续对副本的修改不影响该集合
	numbers := pdf.PageNumbers(pages)
	result.Pages = len(numbers)
	log.WithField(logging.FieldTotal, result.Pages).Info("Document loaded")

	if s.opts.Clean {
		removed, err := storage.CleanPages(store)
		result.Removed = removed
		if err != nil {
			return result, NewOutputDirError(s.opts.OutputDir, err)
		}
		if len(removed) > 0 {
			log.WithField("removed", len(removed)).Info("Removed stale page files")
		}
	}

	files, failed, err := s.splitPages(ctx, log, tracker, doc, numbers, store)
	result.Files = files
	result.Failed = failed
	if err != nil {
		return result, err
	}
	if len(failed) > 0 {
		errs := make([]error, len(failed))
		for i, f := range failed {
			errs[i] = f
		}
		return result, multierr.Combine(errs...)
	}
	return result, nil
}

// splitPages 逐页生成单页文档
// Workers为1时严格按页码顺序执行
func (s *Splitter) splitPages(
	ctx context.Context,
	log *logrus.Entry,
	tracker *StateTracker,
	doc *pdf.Document,
	numbers []int,
	store storage.Storage,
) ([]string, []*Error, error) {
	var (
		mu     sync.Mutex
		files  = make(map[int]string, len(numbers))
		failed []*Error
	)

	p := pool.New().WithMaxGoroutines(s.opts.Workers).WithContext(ctx)
	if !s.opts.KeepGoing {
		p = p.WithCancelOnError().WithFirstError()
	}

	total := len(numbers)
	for i, page := range numbers {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			s.progress.Page(i+1, total, page)
			path, err := s.splitPage(log, doc, numbers, page, store)
			if err != nil {
				saveErr := NewSaveError(page, filepath.Join(s.opts.OutputDir, PageFileName(page)), err)
				if !s.opts.KeepGoing {
					return saveErr
				}
				log.WithFields(logrus.Fields{
					logging.FieldPage:  page,
					logging.FieldError: err.Error(),
				}).Warn("Failed to save page, continuing")

				mu.Lock()
				failed = append(failed, saveErr)
				mu.Unlock()
				return nil
			}

			log.WithFields(logrus.Fields{
				logging.FieldPage:   page,
				logging.FieldOutput: path,
			}).Debug("Page written")

			mu.Lock()
			files[page] = path
			mu.Unlock()
			return tracker.Transition(StatePageProcessed)
		})
	}
	err := p.Wait()

	written := make([]string, 0, len(files))
	for _, page := range numbers {
		if path, ok := files[page]; ok {
			written = append(written, path)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Page < failed[j].Page })

	return written, failed, err
}

// splitPage 复制文档，删除其余页面，清理并重编号后保存
func (s *Splitter) splitPage(log *logrus.Entry, doc *pdf.Document, numbers []int, page int, store storage.Storage) (string, error) {
	single, err := doc.Clone()
	if err != nil {
		return "", err
	}

	others := make([]int, 0, len(numbers)-1)
	for _, nr := range numbers {
		if nr != page {
			others = append(others, nr)
		}
	}

	if err := single.DeletePages(others); err != nil {
		return "", err
	}
	if err := single.PruneObjects(); err != nil {
		return "", err
	}
	if err := single.RenumberObjects(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := single.Write(&buf); err != nil {
		return "", err
	}

	name := PageFileName(page)
	exists, err := store.Exists(name)
	if err != nil {
		return "", err
	}
	if exists {
		log.WithField(logging.FieldPage, page).Debug("Overwriting existing page file")
	}

	fi, err := store.Save(&buf, name)
	if err != nil {
		return "", err
	}
	return fi.Path, nil
}
