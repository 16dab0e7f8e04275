// Package embedded 提供嵌入数据目录的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包保存该文件系统，让配置加载器等其他包可以访问 data/ 下的连招、片段与音效。
//
// 使用前必须调用 Init() 初始化。测试可以传入 fstest.MapFS 或 os.DirFS。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ErrNotInitialized 在 Init 之前访问资源时返回
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

var dataFS fs.FS

// Init 设置数据文件系统，根目录下应包含 data/
// 必须在 main() 开始时、任何资源加载之前调用
func Init(data fs.FS) {
	dataFS = data
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return dataFS != nil
}

// clean 标准化路径并检查前缀
func clean(path string) (string, error) {
	if dataFS == nil {
		return "", ErrNotInitialized
	}
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	if path != "data" && !strings.HasPrefix(path, "data/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return path, nil
}

// Open 打开 data/ 下的文件
func Open(path string) (fs.File, error) {
	p, err := clean(path)
	if err != nil {
		return nil, err
	}
	return dataFS.Open(p)
}

// ReadFile 读取 data/ 下的文件内容
func ReadFile(path string) ([]byte, error) {
	p, err := clean(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, p)
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	file, err := Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// Glob 匹配 data/ 下的文件
func Glob(pattern string) ([]string, error) {
	p, err := clean(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(dataFS, p)
}

// ReadDir 读取目录内容
func ReadDir(path string) ([]fs.DirEntry, error) {
	p, err := clean(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadDir(dataFS, p)
}

// Sub 返回指定目录的子文件系统，例如 Sub("data/audio") 交给音频管理器
func Sub(dir string) (fs.FS, error) {
	p, err := clean(dir)
	if err != nil {
		return nil, err
	}
	return fs.Sub(dataFS, p)
}
