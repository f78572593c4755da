package server

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/labstack/echo/v4"
)

// downloadRun streams a run directory as a zstd compressed tarball whose
// entries are rooted at the run name.
func (s *Server) downloadRun(c echo.Context) error {
	task, run := c.Param("task"), c.Param("run")

	runDir, err := s.Runs.RunDir(s.Config.RunRoot(c.Param("owner"), task), run)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s_%s_results.tar.zst", task, run)
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "application/zstd")
	w.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := s.writeArchive(w, runDir); err != nil {
		// Headers are gone already, the client sees a truncated archive.
		s.logger.Error("run archive failed", "runDir", runDir, "error", err)
		return nil
	}
	s.logger.Info("run downloaded", "taskKey", taskKey(c), "run", run)
	return nil
}

// writeArchive writes dir as a tar.zst stream to w. Entry names start with
// the base name of dir.
func (s *Server) writeArchive(w io.Writer, dir string) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	tw := tar.NewWriter(zw)

	parent := filepath.Dir(dir)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		// Only regular files and directories; symlinks could point outside the run.
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
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

		f, err := s.Platform.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})

	if err := tw.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := zw.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	return walkErr
}
