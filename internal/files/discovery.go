package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"energyreport/internal/errors"
)

// workbookExtensions are tried, in order, when a CSV dataset is missing.
var workbookExtensions = []string{".xlsx", ".xlsm"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// IsWorkbook reports whether the file is an Excel workbook.
func (f FileInfo) IsWorkbook() bool {
	return isWorkbook(f.Name)
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindDataset resolves an indicator file. The configured name is tried
// first, then workbooks sharing its base name.
func (d *Discovery) FindDataset(fileName string) (FileInfo, error) {
	primary := d.resolve(fileName)
	candidates := []string{primary}

	base := strings.TrimSuffix(primary, filepath.Ext(primary))
	for _, ext := range workbookExtensions {
		if candidate := base + ext; candidate != primary {
			candidates = append(candidates, candidate)
		}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		return newFileInfo(candidate, info), nil
	}

	return FileInfo{}, errors.NewFileNotFoundError(primary, nil).
		WithContext("tried", candidates)
}

// FindExcelFiles finds all Excel workbooks in the specified directory,
// oldest first. Lock files left by an open Excel session are skipped.
func (d *Discovery) FindExcelFiles(dir string) ([]FileInfo, error) {
	files, err := d.list(dir, func(name string) bool {
		return isWorkbook(name) && !strings.HasPrefix(name, "~$")
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// FindCSVFiles finds all CSV files in the specified directory, by name.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	return d.list(dir, func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), ".csv")
	})
}

func (d *Discovery) list(dir string, keep func(name string) bool) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !keep(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, newFileInfo(filepath.Join(fullPath, entry.Name()), info))
	}
	return files, nil
}

// resolve leaves absolute paths untouched
func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(d.basePath, path)
}

func newFileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{
		Path:    path,
		Name:    filepath.Base(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

func isWorkbook(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, w := range workbookExtensions {
		if ext == w {
			return true
		}
	}
	return false
}
