package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage 本地目录存储实现
type LocalStorage struct {
	basePath string // 输出目录
}

// LocalConfig 本地存储配置
type LocalConfig struct {
	Path string // 输出目录路径，不存在时递归创建
}

// NewLocalStorage 创建本地存储实例
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	// 确保目录存在
	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: cfg.Path,
	}, nil
}

// Path 返回输出目录
func (s *LocalStorage) Path() string {
	return s.basePath
}

// Save 保存文件到输出目录
// 先写入临时文件再重命名，目标文件要么不存在要么完整
func (s *LocalStorage) Save(reader io.Reader, filename string) (FileInfo, error) {
	if err := checkName(filename); err != nil {
		return FileInfo{}, err
	}

	filePath := filepath.Join(s.basePath, filename)
	tmpPath := filepath.Join(s.basePath, "."+filename+"."+uuid.New().String()+".tmp")

	file, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(file, reader)
	if err != nil {
		file.Close()
		os.Remove(tmpPath)
		return FileInfo{}, fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return FileInfo{}, fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return FileInfo{}, fmt.Errorf("failed to move file into place: %w", err)
	}

	return FileInfo{
		Name: filename,
		Size: size,
		Path: filePath,
	}, nil
}

// Delete 删除文件
func (s *LocalStorage) Delete(filename string) error {
	if err := checkName(filename); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.basePath, filename)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List 列出输出目录中的文件，不包含子目录和未完成的临时文件
func (s *LocalStorage) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Size: info.Size(),
			Path: filepath.Join(s.basePath, e.Name()),
		})
	}
	return files, nil
}

// Exists 检查文件是否存在
func (s *LocalStorage) Exists(filename string) (bool, error) {
	if err := checkName(filename); err != nil {
		return false, err
	}

	_, err := os.Stat(filepath.Join(s.basePath, filename))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// checkName 文件名不能包含路径
func checkName(filename string) error {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return fmt.Errorf("invalid file name %q", filename)
	}
	return nil
}
