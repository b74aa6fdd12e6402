// Package setup provides the default install and configure collaborators:
// a downloader that fetches and unpacks the analyzer distribution, and a
// configurer that writes an initial configuration directory.
package setup

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// licenseFileName holds the configured license id inside the installation
// directory.
const licenseFileName = ".structure101license"

// Installer downloads and unpacks the analyzer distribution.
type Installer struct {
	url       string
	client    *http.Client
	licenseID string
	logger    *slog.Logger
}

// NewInstaller creates an Installer fetching the distribution archive from
// url.
func NewInstaller(url string, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Installer{url: url, client: http.DefaultClient, logger: logger}
}

// License records the license id to apply during installation.
func (i *Installer) License(id string) {
	i.licenseID = id
}

// Install downloads the distribution archive and unpacks it into installDir.
// When a license id was supplied it is written alongside the installation.
func (i *Installer) Install(ctx context.Context, installDir, configDir string) error {
	if i.url == "" {
		return fmt.Errorf("no download url configured")
	}

	i.logger.Info("downloading analyzer distribution", slog.String("url", i.url))
	archive, err := i.download(ctx)
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	if err := extractZip(archive, installDir); err != nil {
		return fmt.Errorf("unpack distribution: %w", err)
	}

	if i.licenseID != "" {
		license := filepath.Join(installDir, licenseFileName)
		if err := os.WriteFile(license, []byte(i.licenseID+"\n"), 0o600); err != nil {
			return fmt.Errorf("write license: %w", err)
		}
	}

	i.logger.Info("analyzer installed", slog.String("dir", installDir))
	return nil
}

func (i *Installer) download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.url, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download distribution: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download distribution: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "s101ci-dist-*.zip")
	if err != nil {
		return "", fmt.Errorf("create temp archive: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("save distribution archive: %w", err)
	}
	return tmp.Name(), nil
}

// extractZip unpacks archive into dest, refusing entries that would escape
// the destination directory.
func extractZip(archive, dest string) error {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	for _, entry := range reader.File {
		target := filepath.Join(dest, filepath.FromSlash(entry.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes destination: %s", entry.Name)
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(entry, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	in, err := entry.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, entry.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
