package batch

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/turtacn/patent2rag/pkg/errors"
)

// Bundle packs a batch output directory into a ZIP archive: the docs/ tree,
// chunks/all.chunks.jsonl and one errors/<name>.error.json per failed file.
func Bundle(w io.Writer, out string, failed []FileError) error {
	zw := zip.NewWriter(w)

	docs, err := filepath.Glob(filepath.Join(out, DocsDir, "*"+DocumentSuffix))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeWriteFailed, "list documents")
	}
	for _, p := range docs {
		if err := addFile(zw, path.Join(DocsDir, filepath.Base(p)), p); err != nil {
			return err
		}
	}

	chunks := filepath.Join(out, ChunksDir, ChunksFile)
	if _, err := os.Stat(chunks); err == nil {
		if err := addFile(zw, path.Join(ChunksDir, ChunksFile), chunks); err != nil {
			return err
		}
	}

	for _, fe := range failed {
		base := filepath.Base(fe.File)
		name := path.Join("errors", strings.TrimSuffix(base, filepath.Ext(base))+".error.json")
		data, err := json.MarshalIndent(fe, "", "  ")
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "marshal error record")
		}
		fw, err := zw.Create(name)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeWriteFailed, "add error record")
		}
		if _, err := fw.Write(data); err != nil {
			return errors.Wrap(err, errors.ErrCodeWriteFailed, "add error record")
		}
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeWriteFailed, "close bundle")
	}
	return nil
}

// BundleFile writes the bundle to dst.
func BundleFile(dst, out string, failed []FileError) error {
	f, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeWriteFailed, "create %s", dst)
	}
	if err := Bundle(f, out, failed); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrCodeWriteFailed, "close %s", dst)
	}
	return nil
}

func addFile(zw *zip.Writer, name, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeWriteFailed, "open %s", src)
	}
	defer in.Close()
	fw, err := zw.Create(name)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeWriteFailed, "add %s", name)
	}
	if _, err := io.Copy(fw, in); err != nil {
		return errors.Wrapf(err, errors.ErrCodeWriteFailed, "copy %s", name)
	}
	return nil
}

//Personal.AI order the ending
