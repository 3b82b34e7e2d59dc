package latte

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

// Renderer is the file-level boundary around an Engine: it reads template
// and data files, renders, and writes documents atomically so a failed
// render never leaves a truncated .tex file behind.
type Renderer struct {
	engine *Engine
	logger *zap.Logger
}

// NewRenderer creates a renderer around an engine.
func NewRenderer(engine *Engine) *Renderer {
	return &Renderer{
		engine: engine,
		logger: engine.logger,
	}
}

// DecodeData parses a JSON document into template data.
func DecodeData(data []byte) (map[string]any, error) {
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, NewDataDecodeError(err)
	}
	return decoded, nil
}

// LoadDataFile reads and parses a JSON data file.
func LoadDataFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewFileReadError(path, err)
	}
	return DecodeData(data)
}

// RenderFile renders a template file with the given data.
func (r *Renderer) RenderFile(ctx context.Context, templatePath string, data map[string]any) (string, error) {
	source, err := os.ReadFile(templatePath)
	if err != nil {
		return "", NewFileReadError(templatePath, err)
	}

	r.logger.Debug(LogMsgRenderStart, zap.String(LogFieldFile, templatePath))
	out, err := r.engine.Render(ctx, string(source), data)
	if err != nil {
		r.logger.Debug(LogMsgRenderFailed, zap.String(LogFieldFile, templatePath), zap.Error(err))
		return "", err
	}

	r.logger.Debug(LogMsgRenderComplete, zap.String(LogFieldFile, templatePath))
	return out, nil
}

// WriteDocument writes rendered output to a file atomically.
func (r *Renderer) WriteDocument(output, outPath string) error {
	if err := atomic.WriteFile(outPath, bytes.NewReader([]byte(output))); err != nil {
		return NewFileWriteError(outPath, err)
	}

	r.logger.Info(LogMsgDocumentWritten, zap.String(LogFieldOutput, outPath))
	return nil
}

// RenderToFile renders a template file and writes the document to outPath.
func (r *Renderer) RenderToFile(ctx context.Context, templatePath string, data map[string]any, outPath string) error {
	out, err := r.RenderFile(ctx, templatePath, data)
	if err != nil {
		return err
	}
	return r.WriteDocument(out, outPath)
}

// RenderFolder renders a self-contained document folder holding template.tex
// and data.json, with an optional components/ subdirectory of .tex snippets
// that are registered before rendering. Returns the rendered document.
func (r *Renderer) RenderFolder(ctx context.Context, dir string) (string, error) {
	r.logger.Debug(LogMsgFolderRenderStart, zap.String(LogFieldDir, dir))

	dataPath := filepath.Join(dir, DefaultDataFile)
	data, err := LoadDataFile(dataPath)
	if err != nil {
		return "", err
	}

	componentsDir := filepath.Join(dir, DefaultComponentsDir)
	if info, err := os.Stat(componentsDir); err == nil && info.IsDir() {
		if _, err := r.engine.LoadComponents(ctx, componentsDir); err != nil {
			return "", err
		}
	}

	out, err := r.RenderFile(ctx, filepath.Join(dir, DefaultTemplateFile), data)
	if err != nil {
		return "", err
	}

	r.logger.Debug(LogMsgFolderRenderDone, zap.String(LogFieldDir, dir))
	return out, nil
}

// RenderFolderToFile renders a document folder and writes the output file.
func (r *Renderer) RenderFolderToFile(ctx context.Context, dir, outPath string) error {
	out, err := r.RenderFolder(ctx, dir)
	if err != nil {
		return err
	}
	return r.WriteDocument(out, outPath)
}
