package verify

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/containerd/platforms"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Blobs larger than this are layers, not metadata, and are skipped when
// scanning an archive.
const maxMetadataBlob = 8 << 20

// Holds the metadata of an OCI archive: the top-level index plus every
// small blob (manifests, configs, nested indexes) keyed by digest. Layer
// blobs are not retained.
type archiveMetadata struct {
	index ocispec.Index
	blobs map[digest.Digest][]byte
}

// Reads the index and metadata blobs from an OCI archive.
//
// The archive is scanned once. Layers exceed the metadata size cutoff
// and are passed over, so the memory footprint stays small regardless of
// image size.
func readArchive(archivePath string) (*archiveMetadata, error) {
	fh, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchive, err)
	}
	defer fh.Close()

	meta := &archiveMetadata{blobs: map[digest.Digest][]byte{}}
	indexFound := false

	tr := tar.NewReader(fh)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrArchive, err)
		}

		name := path.Clean(strings.TrimPrefix(header.Name, "./"))

		switch {
		case name == "index.json":
			if err := json.NewDecoder(tr).Decode(&meta.index); err != nil {
				return nil, fmt.Errorf("%w: index.json: %w", ErrArchive, err)
			}
			indexFound = true

		case strings.HasPrefix(name, "blobs/") && header.Size <= maxMetadataBlob:
			dgst, err := blobDigest(name)
			if err != nil {
				continue
			}
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrArchive, name, err)
			}
			meta.blobs[dgst] = data
		}
	}

	if !indexFound {
		return nil, fmt.Errorf("%w: %s has no index.json", ErrArchive, archivePath)
	}

	return meta, nil
}

// Converts a blobs/<algorithm>/<hex> archive path to a digest.
func blobDigest(name string) (digest.Digest, error) {
	parts := strings.Split(name, "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: not a blob path: %s", ErrArchive, name)
	}
	dgst := digest.NewDigestFromEncoded(digest.Algorithm(parts[1]), parts[2])
	if err := dgst.Validate(); err != nil {
		return "", err
	}
	return dgst, nil
}

// Resolves the image config for the given platform.
//
// Walks from the index through (possibly nested) indexes to a manifest,
// then decodes its config blob. An empty platform matches the first
// manifest found.
func (m *archiveMetadata) config(platform string) (*ocispec.Image, error) {
	matcher := platforms.All
	if platform != "" {
		p, err := platforms.Parse(platform)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrArchive, err)
		}
		matcher = platforms.Only(p)
	}

	manifest, err := m.resolveManifest(m.index, matcher)
	if err != nil {
		return nil, err
	}

	var config ocispec.Image
	if err := m.decodeBlob(manifest.Config.Digest, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Descends from an index to the first manifest matching the platform.
func (m *archiveMetadata) resolveManifest(idx ocispec.Index, matcher platforms.MatchComparer) (*ocispec.Manifest, error) {
	for _, desc := range idx.Manifests {
		if desc.Platform != nil && !matcher.Match(*desc.Platform) {
			continue
		}

		switch desc.MediaType {
		case ocispec.MediaTypeImageManifest:
			var manifest ocispec.Manifest
			if err := m.decodeBlob(desc.Digest, &manifest); err != nil {
				return nil, err
			}
			return &manifest, nil

		case ocispec.MediaTypeImageIndex:
			var nested ocispec.Index
			if err := m.decodeBlob(desc.Digest, &nested); err != nil {
				return nil, err
			}
			if manifest, err := m.resolveManifest(nested, matcher); err == nil {
				return manifest, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: no matching manifest", ErrArchive)
}

// Decodes a retained metadata blob into v.
func (m *archiveMetadata) decodeBlob(dgst digest.Digest, v any) error {
	data, ok := m.blobs[dgst]
	if !ok {
		return fmt.Errorf("%w: blob %s not found", ErrArchive, dgst)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: blob %s: %w", ErrArchive, dgst, err)
	}
	return nil
}
