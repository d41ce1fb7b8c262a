package scanning

import (
	"os"
	"os/exec"
	"path/filepath"
)

// DiscoverTesseract resolves the tesseract binary once at startup. It checks,
// in order: the explicit path, PATH, the active conda environment, then the
// usual Homebrew, MacPorts and conda install locations. Returns "" when
// nothing is found.
func DiscoverTesseract(explicit string) string {
	return discoverTesseract(explicit, os.Getenv, exec.LookPath)
}

func discoverTesseract(explicit string, getenv func(string) string, lookPath func(string) (string, error)) string {
	if explicit != "" && isFile(explicit) {
		return explicit
	}
	if p, err := lookPath("tesseract"); err == nil {
		return p
	}

	var candidates []string
	if prefix := getenv("CONDA_PREFIX"); prefix != "" {
		candidates = append(candidates,
			filepath.Join(prefix, "bin", "tesseract"),
			filepath.Join(prefix, "Library", "bin", "tesseract.exe"),
		)
	}
	candidates = append(candidates,
		"/opt/homebrew/bin/tesseract",
		"/usr/local/bin/tesseract",
		"/opt/local/bin/tesseract",
	)
	if home := getenv("HOME"); home != "" {
		candidates = append(candidates,
			filepath.Join(home, "miniconda3", "envs", "billsocr", "bin", "tesseract"),
			filepath.Join(home, "anaconda3", "envs", "billsocr", "bin", "tesseract"),
		)
	}
	candidates = append(candidates,
		"/opt/homebrew/Caskroom/miniconda/base/envs/billsocr/bin/tesseract",
		"/usr/local/miniconda3/envs/billsocr/bin/tesseract",
	)

	for _, c := range candidates {
		if isFile(c) {
			return c
		}
	}
	return ""
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
