package importer

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// tarGzDir packages the contents of srcDir into a gzip-compressed tar at
// dstPath. Entries are stored relative to srcDir so extraction drops them
// directly into the destination directory. Symlinks are skipped; the output
// tree the payload writes contains none.
func tarGzDir(srcDir, dstPath string) error {
	out, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304 -- dstPath is a staging path this process chose
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path) // #nosec G304 -- path comes from walking the operator-provided tree
		if err != nil {
			return err
		}
		_, copyErr := io.Copy(tw, f)
		_ = f.Close() // Best effort close after copy
		return copyErr
	})

	if walkErr != nil {
		_ = tw.Close() // Best effort cleanup
		_ = gz.Close() // Best effort cleanup
		_ = out.Close()
		return walkErr
	}
	if err := tw.Close(); err != nil {
		_ = gz.Close() // Best effort cleanup
		_ = out.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
