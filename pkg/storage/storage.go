package storage

import (
	"io"
	"regexp"
)

// FileInfo 输出文件元数据
type FileInfo struct {
	Name string // 文件名
	Size int64  // 文件大小(字节)
	Path string // 完整路径
}

// Storage 输出文件存储接口
// 按文件名保存拆分结果，同名文件会被覆盖
type Storage interface {
	// Save 保存文件并返回文件信息
	Save(reader io.Reader, filename string) (FileInfo, error)

	// Delete 删除文件
	Delete(filename string) error

	// List 列出所有文件
	List() ([]FileInfo, error)

	// Exists 检查文件是否存在
	Exists(filename string) (bool, error)
}

// pagePattern 单页输出文件的命名格式
var pagePattern = regexp.MustCompile(`^page_\d{3,}\.pdf$`)

// IsPageFile 判断文件名是否为单页输出文件
func IsPageFile(name string) bool {
	return pagePattern.MatchString(name)
}

// CleanPages 删除存储中所有单页输出文件，返回删除的文件名
// 不匹配命名格式的文件保持不变
func CleanPages(s Storage) ([]string, error) {
	files, err := s.List()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, f := range files {
		if !IsPageFile(f.Name) {
			continue
		}
		if err := s.Delete(f.Name); err != nil {
			return removed, err
		}
		removed = append(removed, f.Name)
	}
	return removed, nil
}
