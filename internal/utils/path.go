package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppName names the config and data directories.
const AppName = "hanserve"

// dictExtensions are the files that make a directory a dictionary dir.
var dictExtensions = []string{"*.json", "*.tsv", "*.txt", "*.msgpack", "*.mpk"}

// PathResolver locates the config and dictionary directories relative to
// the binary, the working directory and the user's config home.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	// symlinked installs (brew, nix) point back to the real tree
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		homeDir:        homeDir,
		configDir:      ConfigHome(homeDir),
	}
	log.Debugf("PathResolver initialized: exec=%s, configDir=%s", execPath, pr.configDir)
	return pr, nil
}

// ConfigHome returns the per-user config directory for the platform.
func ConfigHome(homeDir string) string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppName)
	default:
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppName)
		}
		return filepath.Join(homeDir, ".config", AppName)
	}
}

// DataDirCandidates lists where a dictionary directory named by userPath is
// looked for, most specific first.
func (pr *PathResolver) DataDirCandidates(userPath string) []string {
	var candidates []string
	if filepath.IsAbs(userPath) {
		return append(candidates, userPath)
	}

	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, userPath))
	}
	candidates = append(candidates,
		filepath.Join(pr.executableDir, userPath),
		filepath.Join(filepath.Dir(pr.executableDir), userPath),
		filepath.Join(pr.configDir, userPath),
		filepath.Join(pr.configDir, "dicts"),
	)
	return candidates
}

// GetDataDir returns the first candidate holding dictionary files. When none
// does, the first candidate is returned so errors name a sensible path.
func (pr *PathResolver) GetDataDir(userPath string) string {
	candidates := pr.DataDirCandidates(userPath)
	for _, path := range candidates {
		if IsDictDir(path) {
			log.Debugf("Found dictionary directory: %s", path)
			return path
		}
		log.Debugf("Dictionary directory candidate not valid: %s", path)
	}
	return candidates[0]
}

// IsDictDir reports whether path is a directory containing dictionary files,
// directly or one level down.
func IsDictDir(path string) bool {
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return false
	}
	for _, ext := range dictExtensions {
		for _, pattern := range []string{filepath.Join(path, ext), filepath.Join(path, "*", ext)} {
			if matches, err := filepath.Glob(pattern); err == nil && len(matches) > 0 {
				return true
			}
		}
	}
	return false
}

func (pr *PathResolver) GetConfigDir() string {
	return pr.configDir
}

func (pr *PathResolver) GetExecutableDir() string {
	return pr.executableDir
}
