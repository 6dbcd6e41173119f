package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"
	"github.com/specialistvlad/vuldesign/internal/ctxlog"
	"github.com/specialistvlad/vuldesign/internal/fsutil"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

// Extension is the file extension of project files.
const Extension = ".hcl"

// Loader reads design projects from HCL files.
type Loader struct{}

// NewLoader creates a new HCL project loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileDecoder carries the state needed to translate one parsed file.
type fileDecoder struct {
	ctx   context.Context
	path  string
	src   []byte
	lines map[string]int
}

// Load parses every .hcl file under paths into a single project. A path may
// be a file or a directory, which is searched recursively. Files are read
// in lexical order so that the resulting project is deterministic.
func (l *Loader) Load(ctx context.Context, paths ...string) (*model.Project, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findProjectFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	project := model.NewProject()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, vulerr.Wrap(vulerr.ProjectParse, diags, "failed to parse HCL file %s", file)
		}
		if err := l.decodeFile(ctx, file, hclFile, project); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.",
		"configs", len(project.Configs), "bundles", len(project.Bundles), "modules", len(project.Modules))
	return project, nil
}

// LoadSource parses a single in-memory file. filename is only used for
// error messages and source positions.
func (l *Loader) LoadSource(ctx context.Context, filename string, src []byte) (*model.Project, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, vulerr.Wrap(vulerr.ProjectParse, diags, "failed to parse HCL file %s", filename)
	}
	project := model.NewProject()
	if err := l.decodeFile(ctx, filename, hclFile, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (l *Loader) decodeFile(ctx context.Context, path string, file *hcl.File, project *model.Project) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return vulerr.Wrap(vulerr.ProjectDecode, diags, "failed to decode HCL file %s", path)
	}

	d := &fileDecoder{ctx: ctx, path: path, src: file.Bytes, lines: blockLines(file.Body)}
	for _, c := range root.Configs {
		item, err := d.translateConfig(c, d.source("config", c.Name))
		if err != nil {
			return err
		}
		project.Configs = append(project.Configs, item)
	}
	for _, b := range root.Bundles {
		item, err := d.translateBundle(b, d.source("bundle", b.Name))
		if err != nil {
			return err
		}
		project.Bundles = append(project.Bundles, model.TaggedBundle{Item: item, Tags: b.Tags})
	}
	for _, m := range root.Modules {
		mod, err := d.translateModule(m)
		if err != nil {
			return err
		}
		project.Modules = append(project.Modules, mod)
	}
	ctxlog.FromContext(ctx).Debug("HCL file decoded.", "file", path,
		"configs", len(root.Configs), "bundles", len(root.Bundles), "modules", len(root.Modules))
	return nil
}

func (d *fileDecoder) source(blockType, name string) *model.FSInfo {
	return model.NewFSInfo(d.path, d.lines[blockType+" "+name])
}

func (d *fileDecoder) decodeErr(r hcl.Range, format string, args ...any) error {
	return vulerr.New(vulerr.ProjectDecode, "%s: %s", r.String(), fmt.Sprintf(format, args...))
}

// findProjectFiles expands paths into a sorted, de-duplicated list of
// project files.
func findProjectFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(err, "error accessing path %s", path)
		}
		if !info.IsDir() {
			if filepath.Ext(path) != Extension {
				return nil, errors.Errorf("%s is not a %s file", path, Extension)
			}
			add(path)
			continue
		}
		files, err := fsutil.FindFilesByExtension(path, Extension)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to search %s", path)
		}
		sort.Strings(files)
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}
