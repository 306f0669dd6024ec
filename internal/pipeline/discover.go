package pipeline

import (
	"PDFReduce/internal/pkgerror"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultLedgerName is the ledger file created beside the input root.
const DefaultLedgerName = "pdf_compression_log.csv"

// Unit is one input file and where its result goes.
type Unit struct {
	Input     string
	Output    string
	OutputDir string
}

// DefaultOutputRoot is the sibling of inputRoot named "<input>_compressed".
func DefaultOutputRoot(inputRoot string) string {
	clean := filepath.Clean(inputRoot)
	return filepath.Join(filepath.Dir(clean), filepath.Base(clean)+"_compressed")
}

// DefaultLedgerPath is DefaultLedgerName in the parent of inputRoot.
func DefaultLedgerPath(inputRoot string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(inputRoot)), DefaultLedgerName)
}

// Discover walks inputRoot in lexical order and returns a unit for every file
// whose extension matches ext, ignoring case. Relative paths are mirrored under
// outputRoot. When outputRoot lies inside inputRoot it is not descended into.
// Unreadable subdirectories are logged and skipped; an unreadable root fails.
func Discover(fs afero.Fs, inputRoot, outputRoot, ext string, log *slog.Logger) ([]Unit, error) {
	if log == nil {
		log = slog.Default()
	}
	root := filepath.Clean(inputRoot)
	outRoot := filepath.Clean(outputRoot)

	info, err := fs.Stat(root)
	if err != nil {
		return nil, pkgerror.NewIO(root, err)
	}
	if !info.IsDir() {
		return nil, pkgerror.NewIO(root, errors.New("not a directory"))
	}

	var units []Unit
	err = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return pkgerror.NewIO(root, err)
			}
			log.Warn("skipping unreadable path", "path", path, "err", err)
			return nil
		}

		if info.IsDir() {
			if path != root && path == outRoot {
				log.Debug("pruning output root from walk", "path", path)
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}

		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return pkgerror.NewIO(path, err)
		}
		outDir := filepath.Join(outRoot, rel)
		units = append(units, Unit{
			Input:     path,
			Output:    filepath.Join(outDir, filepath.Base(path)),
			OutputDir: outDir,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}
