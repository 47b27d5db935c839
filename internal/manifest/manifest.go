// Package manifest writes the JSON sidecar that describes the artifact
// currently sitting in the latest-firmware slot.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	ggit "github.com/go-git/go-git/v5"
	"github.com/zeebo/blake3"

	"git.home.luguber.info/inful/fwpublish/internal/version"
)

// FileName is the sidecar written next to firmware_latest.bin.
const FileName = "firmware_latest.json"

// Manifest describes one publish.
type Manifest struct {
	ID          string    `json:"id"`
	ProjectDir  string    `json:"project_dir"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	BLAKE3      string    `json:"blake3"`
	SHA256      string    `json:"sha256"`
	Git         *GitInfo  `json:"git,omitempty"`
	Tool        string    `json:"tool"`
	PublishedAt time.Time `json:"published_at"`
}

// GitInfo records the project checkout the firmware was built from.
type GitInfo struct {
	Commit string `json:"commit"`
	Branch string `json:"branch,omitempty"`
}

// Input carries what the publisher knows after a successful copy.
type Input struct {
	ID          string
	ProjectDir  string
	Source      string
	Destination string
	PublishedAt time.Time
}

// Build stats and hashes the destination and resolves the project's git HEAD.
// A project that is not a git checkout simply gets no Git section.
func Build(in Input) (*Manifest, error) {
	info, err := os.Stat(in.Destination)
	if err != nil {
		return nil, fmt.Errorf("stat destination: %w", err)
	}
	b3, s256, err := Digest(in.Destination)
	if err != nil {
		return nil, err
	}
	m := &Manifest{
		ID:          in.ID,
		ProjectDir:  in.ProjectDir,
		Source:      in.Source,
		Destination: in.Destination,
		Size:        info.Size(),
		ModTime:     info.ModTime().UTC(),
		BLAKE3:      b3,
		SHA256:      s256,
		Tool:        "fwpublish " + version.Version,
		PublishedAt: in.PublishedAt.UTC(),
	}
	if gi, err := GitHead(in.ProjectDir); err == nil {
		m.Git = gi
	}
	return m, nil
}

// Digest returns hex BLAKE3 and SHA-256 digests of path in a single read.
func Digest(path string) (string, string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", "", fmt.Errorf("open for digest: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	b3 := blake3.New()
	s256 := sha256.New()
	if _, err := io.Copy(io.MultiWriter(b3, s256), f); err != nil {
		return "", "", fmt.Errorf("digest %s: %w", path, err)
	}
	return hex.EncodeToString(b3.Sum(nil)), hex.EncodeToString(s256.Sum(nil)), nil
}

// GitHead resolves HEAD of the repository containing dir.
func GitHead(dir string) (*GitInfo, error) {
	repo, err := ggit.PlainOpenWithOptions(dir, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	ref, err := repo.Head()
	if err != nil {
		return nil, err
	}
	gi := &GitInfo{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		gi.Branch = ref.Name().Short()
	}
	return gi, nil
}

// Write stores m as FileName inside dir via temp file and rename, returning the path.
func Write(dir string, m *Manifest) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".firmware_latest-*.json.tmp")
	if err != nil {
		return "", fmt.Errorf("create manifest temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("chmod manifest: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("rename manifest: %w", err)
	}
	return path, nil
}

// Read loads a manifest previously written by Write.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}
