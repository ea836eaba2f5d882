package proofstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
	"github.com/Apurer/go-gin-shipment-api/internal/shared/formdata"
)

const compressedSuffix = ".zst"

// ErrUnknownReference is returned by Open for references this store did not issue.
var ErrUnknownReference = errors.New("unknown proof reference")

// FilesystemStorage keeps proofs as zstd-compressed, content-addressed blobs on local disk.
// Identical uploads map to the same reference.
type FilesystemStorage struct {
	dir     string
	baseURL string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFilesystemStorage creates dir if needed. References are "{baseURL}/{blake3-hex}{ext}".
func NewFilesystemStorage(dir, baseURL string) (*FilesystemStorage, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("proof storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create proof storage directory: %w", err)
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithZeroFrames(true))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "file://" + filepath.ToSlash(dir)
	}
	return &FilesystemStorage{dir: dir, baseURL: baseURL, encoder: encoder, decoder: decoder}, nil
}

// Store writes the file unless a blob with the same content already exists.
func (s *FilesystemStorage) Store(ctx context.Context, file *formdata.File) (string, error) {
	if file == nil {
		return "", errors.New("no file to store")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sum := blake3.Sum256(file.Bytes)
	name := hex.EncodeToString(sum[:]) + extension(file.OriginalName)
	path := filepath.Join(s.dir, name+compressedSuffix)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		compressed := s.encoder.EncodeAll(file.Bytes, nil)
		tmp, err := os.CreateTemp(s.dir, ".upload-*")
		if err != nil {
			return "", fmt.Errorf("create temp proof file: %w", err)
		}
		if _, err := tmp.Write(compressed); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", fmt.Errorf("write proof file: %w", err)
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return "", fmt.Errorf("close proof file: %w", err)
		}
		if err := os.Rename(tmp.Name(), path); err != nil {
			os.Remove(tmp.Name())
			return "", fmt.Errorf("commit proof file: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("stat proof file: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Open returns the original bytes behind a reference issued by Store.
func (s *FilesystemStorage) Open(_ context.Context, reference string) ([]byte, error) {
	name, ok := strings.CutPrefix(reference, s.baseURL+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return nil, ErrUnknownReference
	}
	compressed, err := os.ReadFile(filepath.Join(s.dir, name+compressedSuffix))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrUnknownReference
		}
		return nil, err
	}
	return s.decoder.DecodeAll(compressed, nil)
}

// Close releases the codec resources.
func (s *FilesystemStorage) Close() {
	if s == nil {
		return
	}
	_ = s.encoder.Close()
	s.decoder.Close()
}

var _ ports.ProofStorage = (*FilesystemStorage)(nil)
