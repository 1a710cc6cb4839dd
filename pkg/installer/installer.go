package installer

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/pastries/pastries/pkg/config"
	"github.com/pastries/pastries/pkg/diff"
	"github.com/pastries/pastries/pkg/logging"
	"github.com/pastries/pastries/pkg/source"
	"github.com/pastries/pastries/pkg/store"
)

// StagingSuffix is appended to a target path to form the staging path for
// remote updates. A leftover staging file is overwritten by the next update.
const StagingSuffix = ".tmp"

// Outcome classifies the result of an add or update attempt.
type Outcome int

const (
	Added Outcome = iota + 1
	Updated
	Failed
	Ignored
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "Added"
	case Updated:
		return "Updated"
	case Failed:
		return "Failed"
	case Ignored:
		return "Ignored"
	default:
		return "Unknown"
	}
}

// Result is the outcome for one dependency. Err is set only when Outcome is
// Failed.
type Result struct {
	Name    string
	Path    string
	Outcome Outcome
	Err     error
}

// Reason returns the failure message, or "" if the attempt did not fail.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Installer materializes dependencies into the project rooted at Store.
// It never changes dependency metadata, only the files at their paths.
type Installer struct {
	Store   store.Store
	Sources source.Options
	Logger  *slog.Logger
}

func (inst *Installer) logger() *slog.Logger {
	if inst.Logger != nil {
		return inst.Logger
	}
	return logging.Noop()
}

// Add fetches uri into path. A missing target is written directly; an
// existing one is replaced through the staging path so a failed fetch leaves
// it intact.
func (inst *Installer) Add(ctx context.Context, uri, path string, local bool) Result {
	res := Result{Path: path}
	log := inst.logger().With("uri", uri, "path", path)

	src, err := source.New(uri, local, inst.Sources)
	if err == nil {
		err = inst.place(ctx, log, src, path)
	}
	if err != nil {
		log.Warn("add failed", "error", err)
		return res.fail(err)
	}

	log.Debug("added")
	res.Outcome = Added
	return res
}

// Update refreshes the file of one dependency according to its policy.
// Failures are reported in the Result, never returned.
func (inst *Installer) Update(ctx context.Context, dep config.Dependency) Result {
	res := Result{Name: dep.Name, Path: dep.Path}
	log := inst.logger().With("dependency", dep.Name, "policy", dep.Update.String())

	if dep.Update == config.Never {
		log.Debug("policy is never, skipping")
		res.Outcome = Ignored
		return res
	}

	src, err := source.New(dep.URI, dep.Local, inst.Sources)
	if err != nil {
		log.Warn("update failed", "error", err)
		return res.fail(err)
	}

	if dep.Local {
		return inst.updateLocal(ctx, log, dep, src, res)
	}
	return inst.updateRemote(ctx, log, dep, src, res)
}

// updateLocal compares before copying so an unchanged target is never
// rewritten and keeps its timestamps.
func (inst *Installer) updateLocal(ctx context.Context, log *slog.Logger, dep config.Dependency, src source.Source, res Result) Result {
	if dep.Update == config.OnChange && !diff.Differs(inst.Store.Path(dep.URI), inst.Store.Path(dep.Path)) {
		log.Debug("content unchanged")
		res.Outcome = Ignored
		return res
	}

	if err := src.Fetch(ctx, inst.Store, dep.Path); err != nil {
		log.Warn("update failed", "error", err)
		return res.fail(err)
	}

	log.Debug("updated")
	res.Outcome = Updated
	return res
}

// updateRemote downloads into the staging path and only then promotes it,
// so the target is never left half-written.
func (inst *Installer) updateRemote(ctx context.Context, log *slog.Logger, dep config.Dependency, src source.Source, res Result) Result {
	staging, err := inst.stage(ctx, log, src, dep.Path)
	if err != nil {
		log.Warn("update failed", "error", err)
		return res.fail(err)
	}

	if dep.Update == config.OnChange && !diff.Differs(inst.Store.Path(staging), inst.Store.Path(dep.Path)) {
		log.Debug("content unchanged, discarding staged download")
		inst.discard(log, staging)
		res.Outcome = Ignored
		return res
	}

	if err := inst.promote(log, staging, dep.Path); err != nil {
		return res.fail(err)
	}

	log.Debug("updated")
	res.Outcome = Updated
	return res
}

// place writes src to target, going through the staging path when target
// already exists.
func (inst *Installer) place(ctx context.Context, log *slog.Logger, src source.Source, target string) error {
	exists, err := inst.Store.Exists(target)
	if err != nil {
		return err
	}
	if !exists {
		return src.Fetch(ctx, inst.Store, target)
	}

	staging, err := inst.stage(ctx, log, src, target)
	if err != nil {
		return err
	}
	return inst.promote(log, staging, target)
}

// stage fetches src into the staging path of target. On failure the partial
// staging file is removed.
func (inst *Installer) stage(ctx context.Context, log *slog.Logger, src source.Source, target string) (string, error) {
	staging := target + StagingSuffix
	if err := src.Fetch(ctx, inst.Store, staging); err != nil {
		inst.discard(log, staging)
		return "", err
	}
	return staging, nil
}

// promote renames staging over target, discarding staging if that fails.
func (inst *Installer) promote(log *slog.Logger, staging, target string) error {
	if err := inst.Store.Rename(staging, target); err != nil {
		log.Warn("promoting staged download failed", "error", err)
		inst.discard(log, staging)
		return err
	}
	return nil
}

// discard removes a staging file, best effort.
func (inst *Installer) discard(log *slog.Logger, staging string) {
	if err := inst.Store.Remove(staging); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("removing staging file", "path", staging, "error", err)
	}
}

// UpdateAll updates deps one after another. report, if non-nil, is called
// with each result as soon as it is known. A failure never stops the run.
func (inst *Installer) UpdateAll(ctx context.Context, deps []config.Dependency, report func(Result)) []Result {
	results := make([]Result, 0, len(deps))
	for _, dep := range deps {
		res := inst.Update(ctx, dep)
		if report != nil {
			report(res)
		}
		results = append(results, res)
	}
	return results
}

// Remove deletes the file of dep. The registry entry is the caller's to drop.
func (inst *Installer) Remove(dep config.Dependency) error {
	if err := inst.Store.Remove(dep.Path); err != nil {
		return err
	}
	inst.logger().Debug("removed", "dependency", dep.Name, "path", dep.Path)
	return nil
}

func (r Result) fail(err error) Result {
	r.Outcome = Failed
	r.Err = err
	return r
}
