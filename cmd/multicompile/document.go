package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"multicompile/internal/compile/contract"
	pkgerrors "multicompile/pkg/errors"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"
)

const stdio = "-"

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

// openDocument opens path, or stdin for "-", decompressing by extension.
func openDocument(path string) (io.ReadCloser, error) {
	if path == stdio {
		return io.NopCloser(os.Stdin), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("path", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("path", path)
		}
		return readCloser{Reader: gz, close: func() error {
			return multierr.Combine(gz.Close(), file.Close())
		}}, nil
	case ".zst":
		dec, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("path", path)
		}
		return readCloser{Reader: dec, close: func() error {
			dec.Close()
			return file.Close()
		}}, nil
	default:
		return file, nil
	}
}

func readContractClass(path string) (_ *contract.ContractClass, err error) {
	r, err := openDocument(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, r.Close())
	}()
	class, err := contract.DecodeContractClass(r)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, pkgerrors.SerializationFailed, "decode contract class %s", path)
	}
	return class, nil
}

// writeDocument writes data to path, or stdout for "-", compressing by
// extension.
func writeDocument(path string, data []byte) error {
	if path == stdio {
		if _, err := os.Stdout.Write(data); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("path", path)
		}
		return nil
	}
	file, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("path", path)
	}
	if err := multierr.Append(encode(file, path, data), file.Close()); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("path", path)
	}
	return nil
}

func encode(w io.Writer, path string, data []byte) error {
	var enc io.WriteCloser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		enc = gzip.NewWriter(w)
	case ".zst":
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		enc = zw
	default:
		_, err := w.Write(data)
		return err
	}
	_, err := enc.Write(data)
	return multierr.Append(err, enc.Close())
}
