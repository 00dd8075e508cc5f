package cache

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// ErrMissingMeta is returned when an archive's content stream ends
// without ever producing a "meta" member.
var ErrMissingMeta = errors.New("archive missing meta member")

// ErrCorruptArchive wraps a mid-stream read error, surfaced as a fatal
// download error that must not taint the workspace it would have been
// unpacked into (§4.6).
var ErrCorruptArchive = errors.New("corrupt archive")

// Pack streams contentDir and meta into w as a gzipped tar with exactly
// two top-level members, "meta" then "content", per §6's wire format.
// The archive version is recorded as a pax header extension on the
// "meta" entry.
func Pack(w io.Writer, meta AuditTrail, contentDir string) error {
	gw := gzip.NewWriter(w)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()

	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	if err := tw.WriteHeader(&tar.Header{
		Name: "meta",
		Size: int64(len(metaBytes)),
		Mode: 0o644,
		PAXRecords: map[string]string{
			"bob-archive-vsn": strconv.Itoa(ArchiveVersion),
		},
	}); err != nil {
		return err
	}
	if _, err := tw.Write(metaBytes); err != nil {
		return err
	}

	return filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(contentDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(filepath.Join("content", rel))
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = name
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}

// Unpack reads a gzipped tar archive from r, writing its "content"
// member tree into destDir and returning the decoded "meta" audit
// trail. An archive that never produces a meta member is rejected per
// §6. A mid-stream read error is reported as ErrCorruptArchive.
func Unpack(r io.Reader, destDir string) (AuditTrail, error) {
	var meta AuditTrail
	var sawMeta bool

	gr, err := gzip.NewReader(r)
	if err != nil {
		return meta, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return meta, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
		}

		switch {
		case hdr.Name == "meta":
			data, err := io.ReadAll(tr)
			if err != nil {
				return meta, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
			}
			if err := json.Unmarshal(data, &meta); err != nil {
				return meta, fmt.Errorf("%w: invalid meta: %v", ErrCorruptArchive, err)
			}
			sawMeta = true
		case hdr.Name == "content" || filepath.Base(hdr.Name) == ".":
			// top-level content directory marker, nothing to extract
		default:
			if err := extractEntry(tr, hdr, destDir); err != nil {
				return meta, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
			}
		}
	}

	if !sawMeta {
		return meta, ErrMissingMeta
	}
	return meta, nil
}

// UnpackMeta reads only the leading "meta" member of a gzipped tar
// archive, stopping as soon as it's read rather than extracting the
// "content" tree that follows it. This relies on §6's wire-format
// guarantee that "meta" is always the first member, so archive
// inspection (e.g. `archive find`/`clean` matching retention
// expressions against every known artifact's metadata) never pays the
// cost of downloading and unpacking the full content tree.
func UnpackMeta(r io.Reader) (AuditTrail, error) {
	var meta AuditTrail

	gr, err := gzip.NewReader(r)
	if err != nil {
		return meta, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	hdr, err := tr.Next()
	if err == io.EOF || (err == nil && hdr.Name != "meta") {
		return meta, ErrMissingMeta
	}
	if err != nil {
		return meta, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	data, err := io.ReadAll(tr)
	if err != nil {
		return meta, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("%w: invalid meta: %v", ErrCorruptArchive, err)
	}
	return meta, nil
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, destDir string) error {
	rel, ok := stripContentPrefix(hdr.Name)
	if !ok {
		return nil
	}
	target := filepath.Join(destDir, rel)

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, os.FileMode(hdr.Mode))
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(f, tr)
		return err
	case tar.TypeSymlink:
		return os.Symlink(hdr.Linkname, target)
	default:
		return nil
	}
}

func stripContentPrefix(name string) (string, bool) {
	const prefix = "content/"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return "", false
	}
	return name[len(prefix):], true
}
