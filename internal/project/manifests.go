// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// nxDefaultPatterns are the conventional member directories of an Nx repo.
var nxDefaultPatterns = []string{"packages/*", "apps/*", "libs/*"}

// packageJSON is the subset of package.json we read.
type packageJSON struct {
	Name       string          `json:"name"`
	Workspaces json.RawMessage `json:"workspaces"`
}

// cargoManifest is the subset of Cargo.toml we read.
type cargoManifest struct {
	Package *struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
}

func readManifest(path string) ([]byte, bool, error) {
	if !fileExists(path) {
		return nil, false, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // manifest under a scan root
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func detectGoWork(root string) (*Layout, error) {
	path := filepath.Join(root, "go.work")
	data, ok, err := readManifest(path)
	if !ok || err != nil {
		return nil, err
	}
	wf, err := modfile.ParseWork(path, data, nil)
	if err != nil {
		return nil, err
	}
	uses := make([]string, 0, len(wf.Use))
	for _, u := range wf.Use {
		uses = append(uses, filepath.Clean(u.Path))
	}
	return newLayout(KindGoWork, root, uses, nil)
}

func detectPnpm(root string) (*Layout, error) {
	data, ok, err := readManifest(filepath.Join(root, "pnpm-workspace.yaml"))
	if !ok || err != nil {
		return nil, err
	}
	var ws struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	return newLayout(KindPnpm, root, ws.Packages, nil)
}

func detectNpm(root string) (*Layout, error) {
	data, ok, err := readManifest(filepath.Join(root, "package.json"))
	if !ok || err != nil {
		return nil, err
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	if len(pkg.Workspaces) == 0 {
		return nil, nil
	}

	// "workspaces" is either ["pkgs/*"] or {"packages": ["pkgs/*"]}.
	var patterns []string
	if err := json.Unmarshal(pkg.Workspaces, &patterns); err != nil {
		var obj struct {
			Packages []string `json:"packages"`
		}
		if err := json.Unmarshal(pkg.Workspaces, &obj); err != nil {
			return nil, err
		}
		patterns = obj.Packages
	}
	return newLayout(KindNpm, root, patterns, nil)
}

func detectLerna(root string) (*Layout, error) {
	data, ok, err := readManifest(filepath.Join(root, "lerna.json"))
	if !ok || err != nil {
		return nil, err
	}
	var cfg struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return newLayout(KindLerna, root, cfg.Packages, nil)
}

func detectNx(root string) (*Layout, error) {
	data, ok, err := readManifest(filepath.Join(root, "nx.json"))
	if !ok || err != nil {
		return nil, err
	}
	var cfg struct {
		WorkspaceLayout *struct {
			AppsDir string `json:"appsDir"`
			LibsDir string `json:"libsDir"`
		} `json:"workspaceLayout"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	patterns := nxDefaultPatterns
	if l := cfg.WorkspaceLayout; l != nil && (l.AppsDir != "" || l.LibsDir != "") {
		patterns = nil
		if l.AppsDir != "" {
			patterns = append(patterns, l.AppsDir+"/*")
		}
		if l.LibsDir != "" {
			patterns = append(patterns, l.LibsDir+"/*")
		}
	}
	return newLayout(KindNx, root, patterns, nil)
}

func detectCargo(root string) (*Layout, error) {
	data, ok, err := readManifest(filepath.Join(root, "Cargo.toml"))
	if !ok || err != nil {
		return nil, err
	}
	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Workspace == nil || len(m.Workspace.Members) == 0 {
		return nil, nil
	}
	return newLayout(KindCargo, root, m.Workspace.Members, m.Workspace.Exclude)
}

// Name returns the name a project declares in its manifest: the go.mod
// module path, the package.json or Cargo.toml package name. It falls back
// to the directory base name.
func Name(dir string) string {
	if data, ok, _ := readManifest(filepath.Join(dir, "go.mod")); ok {
		if mod := modfile.ModulePath(data); mod != "" {
			return mod
		}
	}
	if data, ok, _ := readManifest(filepath.Join(dir, "package.json")); ok {
		var pkg packageJSON
		if json.Unmarshal(data, &pkg) == nil && pkg.Name != "" {
			return pkg.Name
		}
	}
	if data, ok, _ := readManifest(filepath.Join(dir, "Cargo.toml")); ok {
		var m cargoManifest
		if toml.Unmarshal(data, &m) == nil && m.Package != nil && m.Package.Name != "" {
			return m.Package.Name
		}
	}
	return filepath.Base(dir)
}
