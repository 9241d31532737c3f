// Package doctor checks that the registries agree with the filesystem: the
// home layout exists, every type has its script and a known shell, every
// repository has its directory and package registry, and every package
// references a known type. It only reads; fixing is left to the user.
package doctor

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/gpm-labs/gpm/internal/home"
	"github.com/gpm-labs/gpm/internal/lifecycle"
	"github.com/gpm-labs/gpm/internal/pkgtype"
	"github.com/gpm-labs/gpm/internal/registry"
)

// Status labels one finding.
type Status string

const (
	StatusOK   Status = "[ OK ]"
	StatusMiss Status = "[MISS]"
	StatusWarn Status = "[WARN]"
	StatusFail Status = "[FAIL]"
)

// Finding is one checked item.
type Finding struct {
	Section string
	Status  Status
	Message string
}

// Report collects findings in check order.
type Report struct {
	Findings []Finding
}

func (r *Report) add(section string, status Status, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Section: section, Status: status, Message: fmt.Sprintf(format, args...)})
}

// Problems returns the number of findings that are not OK.
func (r *Report) Problems() int {
	n := 0
	for _, f := range r.Findings {
		if f.Status != StatusOK {
			n++
		}
	}
	return n
}

// Print writes the report grouped by section.
func (r *Report) Print(w io.Writer) {
	section := ""
	for _, f := range r.Findings {
		if f.Section != section {
			section = f.Section
			fmt.Fprintf(w, "%s check:\n", section)
		}
		fmt.Fprintf(w, "  %s %s\n", f.Status, f.Message)
	}
}

// Run checks the home in c against the loaded registries.
func Run(c home.Context, repos *registry.Registry, types *pkgtype.Registry) *Report {
	r := &Report{}
	checkHome(r, c)
	checkShells(r, types)
	checkTypes(r, types)
	checkRepositories(r, repos, types)
	return r
}

func checkHome(r *Report, c home.Context) {
	missing := map[string]bool{}
	for _, dir := range c.Missing() {
		missing[dir] = true
	}
	for _, dir := range []string{c.Home, c.Repositories, c.Scripts} {
		if missing[dir] {
			r.add("Home", StatusMiss, "%s does not exist (run 'gpm init')", dir)
		} else {
			r.add("Home", StatusOK, "%s", dir)
		}
	}
}

func checkShells(r *Report, types *pkgtype.Registry) {
	for _, sh := range types.Shells() {
		if path, err := exec.LookPath(sh.Name); err != nil {
			r.add("Shells", StatusWarn, "%s is not on PATH", sh.Name)
		} else {
			r.add("Shells", StatusOK, "%s (%s)", sh.Name, path)
		}
	}
}

func checkTypes(r *Report, types *pkgtype.Registry) {
	for _, t := range types.Types() {
		if _, err := types.ResolveShell(t); err != nil {
			r.add("Types", StatusFail, "%s: %v", t.Name, err)
			continue
		}
		script := types.ScriptPath(t)
		if _, err := os.Stat(script); err != nil {
			r.add("Types", StatusMiss, "%s: script %s does not exist", t.Name, script)
			continue
		}
		r.add("Types", StatusOK, "%s (%s)", t.Name, script)
	}
}

func checkRepositories(r *Report, repos *registry.Registry, types *pkgtype.Registry) {
	for _, repo := range repos.List() {
		if info, err := os.Stat(repo.Path); err != nil || !info.IsDir() {
			r.add("Repositories", StatusMiss, "%s: directory %s does not exist", repo.Name, repo.Path)
			continue
		}
		pkgs, err := lifecycle.Load(repo.Path, nil)
		if err != nil {
			r.add("Repositories", StatusFail, "%s: %v", repo.Name, err)
			continue
		}
		r.add("Repositories", StatusOK, "%s (%s)", repo.Name, repo.Path)

		for _, p := range pkgs.Packages() {
			if _, err := types.Resolve(p.Type); err != nil {
				r.add("Repositories", StatusFail, "%s/%s: %v", repo.Name, p.Name, err)
				continue
			}
			if _, err := os.Lstat(pkgs.ArtifactPath(p.Name)); err != nil {
				r.add("Repositories", StatusWarn, "%s/%s: no artifact at %s", repo.Name, p.Name, pkgs.ArtifactPath(p.Name))
				continue
			}
			r.add("Repositories", StatusOK, "%s/%s", repo.Name, p.Name)
		}
	}
}
