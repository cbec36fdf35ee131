// Package contextcollector gathers the session shell and working-directory
// details folded into prompts.
package contextcollector

import (
	"context"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

// BasicCollector implements ContextCollector with a directory listing and git branch.
type BasicCollector struct {
	getwd func() (string, error)
}

func NewBasicCollector() *BasicCollector {
	return &BasicCollector{getwd: os.Getwd}
}

// Collect gathers context data. Hidden entries are skipped; directories are
// listed before files, each group sorted by name.
func (c *BasicCollector) Collect(ctx context.Context, cfg domain.Config) (domain.LocalContext, error) {
	wd, err := c.getwd()
	if err != nil {
		return domain.LocalContext{}, err
	}
	local := domain.LocalContext{WorkingDir: wd}

	if cfg.Context.IncludeFiles {
		local.Entries, local.Truncated = listFiles(wd, cfg.GetMaxContextFiles())
	}
	if cfg.Context.IncludeGit {
		local.Git = collectGitInfo(ctx, wd)
	}
	return local, nil
}

func listFiles(dir string, limit int) ([]domain.FileInfo, int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0
	}

	var files []domain.FileInfo
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, domain.FileInfo{
			Path: entry.Name(),
			Type: toFileType(info),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		di, dj := files[i].Type == domain.FileTypeDir, files[j].Type == domain.FileTypeDir
		if di != dj {
			return di
		}
		return files[i].Path < files[j].Path
	})

	if len(files) > limit {
		return files[:limit], len(files) - limit
	}
	return files, 0
}

func toFileType(info os.FileInfo) domain.FileType {
	switch {
	case info.Mode().IsDir():
		return domain.FileTypeDir
	case info.Mode()&os.ModeSymlink != 0:
		return domain.FileTypeSymlink
	case info.Mode().IsRegular():
		return domain.FileTypeFile
	default:
		return domain.FileTypeUnknown
	}
}

// collectGitInfo returns nil outside a work tree. A detached HEAD yields an
// empty branch.
func collectGitInfo(ctx context.Context, dir string) *domain.GitStatus {
	if _, err := exec.LookPath("git"); err != nil {
		return nil
	}
	if strings.TrimSpace(runCmd(ctx, dir, "git", "rev-parse", "--is-inside-work-tree")) != "true" {
		return nil
	}
	branch := strings.TrimSpace(runCmd(ctx, dir, "git", "rev-parse", "--abbrev-ref", "HEAD"))
	if branch == "HEAD" {
		branch = ""
	}
	return &domain.GitStatus{Branch: branch}
}

func runCmd(ctx context.Context, dir string, name string, args ...string) string {
	cctx, cancel := context.WithTimeout(ctx, domain.DefaultCommandTimeout)
	defer cancel()
	cmd := exec.CommandContext(cctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return string(out)
}

var _ ports.ContextCollector = (*BasicCollector)(nil)
