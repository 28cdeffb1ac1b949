package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// allowedImageExtensions is the upload allowlist for cover images.
var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// AllowedImageExt reports whether the filename carries a supported cover
// image extension.
func AllowedImageExt(filename string) bool {
	return allowedImageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Storage handles the on-disk side of a post: the markdown document and
// the per-post asset directory for uploaded images. Rows in the database
// and files here share the post id as a naming convention only.
type Storage struct {
	postsDir  string
	assetsDir string
}

// NewStorage creates a new storage instance rooted at the given
// directories.
func NewStorage(postsDir, assetsDir string) (*Storage, error) {
	for _, dir := range []string{postsDir, assetsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}
	return &Storage{postsDir: postsDir, assetsDir: assetsDir}, nil
}

// WriteDocument renders the frontmatter document and writes it as
// <postsDir>/<postID>.md.
func (s *Storage) WriteDocument(postID string, doc Document) error {
	path := s.DocumentPath(postID)
	if err := os.WriteFile(path, []byte(RenderDocument(doc)), 0644); err != nil {
		return fmt.Errorf("failed to write post document: %w", err)
	}
	return nil
}

// SaveAsset persists an uploaded image into the post's asset directory
// under its original filename and returns the public cover image path.
func (s *Storage) SaveAsset(postID, filename string, r io.Reader) (string, error) {
	dir := filepath.Join(s.assetsDir, postID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}

	// Strip any path components a client may have smuggled into the name.
	name := filepath.Base(filename)
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create asset file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write asset file: %w", err)
	}

	return "/assets/blog/" + postID + "/" + name, nil
}

// DocumentPath returns the full path of a post's markdown document.
func (s *Storage) DocumentPath(postID string) string {
	return filepath.Join(s.postsDir, postID+".md")
}

// AssetPath returns the full path of an uploaded asset, or an error if it
// does not exist.
func (s *Storage) AssetPath(postID, filename string) (string, error) {
	path := filepath.Join(s.assetsDir, postID, filepath.Base(filename))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("asset not found: %w", err)
	}
	return path, nil
}

// Remove deletes a post's document and asset directory. Used to undo the
// filesystem half of a publish when the database insert fails.
func (s *Storage) Remove(postID string) {
	os.Remove(s.DocumentPath(postID))
	os.RemoveAll(filepath.Join(s.assetsDir, postID))
}
