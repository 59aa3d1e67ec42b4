package updater

import (
	"strings"

	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/paths"
)

// External rewrites references from files outside the rename that resolve
// to the old path, or to something beneath it.
type External struct {
	op     models.RenameOperation
	policy paths.Policy

	// rel leads from the old path's directory to the new path.
	rel string
}

// NewExternal prepares an External updater for op.
func NewExternal(op models.RenameOperation, policy paths.Policy) *External {
	return &External{
		op:     op,
		policy: policy,
		rel:    policy.RelativePath(paths.DirOf(op.OldPath), op.NewPath),
	}
}

// Update returns the replacement for text, which resolves to resolvedPath.
// Module specifiers come back in import form; other texts keep their
// extension. ok is false when text needs no change.
func (u *External) Update(resolvedPath, text string, isModuleSpecifier bool) (string, bool) {
	resolvedPath = paths.Normalize(resolvedPath)

	var (
		updated string
		ok      bool
	)
	if u.policy.Equal(resolvedPath, u.op.OldPath) {
		updated, ok = u.updateExact(resolvedPath, text, isModuleSpecifier)
	} else if suffix, inside := u.policy.RemoveDirectoryPrefix(u.op.OldPath, resolvedPath); inside {
		updated, ok = u.updateInside(suffix, text, isModuleSpecifier)
	}
	if !ok || updated == text {
		return "", false
	}
	return updated, true
}

// updateExact handles text that names the old path itself.
func (u *External) updateExact(resolvedPath, text string, isModuleSpecifier bool) (string, bool) {
	if !isRelativeText(text, isModuleSpecifier) {
		return u.render(u.op.NewPath, text, isModuleSpecifier), true
	}

	// text reached the old path some other way, e.g. through package.json
	// "main"; rebasing its directory would point somewhere else
	if !u.spells(resolvedPath, text) {
		return "", false
	}

	// "./dir" that resolved to ./dir/index.ts still names the directory
	base := paths.DirOf(text)
	if impliesDirectory(resolvedPath, text) {
		base = text
	}
	joined := paths.EnsureRelative(paths.Combine(base, u.rel))
	return u.render(joined, text, isModuleSpecifier), true
}

// updateInside handles text that resolves to old/suffix. The part of text
// that spells suffix is kept verbatim and only its prefix is rewritten.
func (u *External) updateInside(suffix, text string, isModuleSpecifier bool) (string, bool) {
	prefix, tail, ok := u.splitSuffix(text, suffix)
	if !ok {
		return "", false
	}

	var newPrefix string
	if isRelativeText(text, isModuleSpecifier) {
		newPrefix = keepStyle(paths.EnsureRelative(paths.Combine(paths.DirOf(prefix), u.rel)), prefix)
	} else {
		newPrefix = u.op.NewPath
	}
	return newPrefix + tail, true
}

// splitSuffix finds where text stops naming the old path. suffix may appear
// in text as written, without its extension, collapsed to its directory when
// it is an index file or package.json, or as any directory above it when
// text reached the file through a package.json entry field.
func (u *External) splitSuffix(text, suffix string) (prefix, tail string, ok bool) {
	forms := []string{
		suffix,
		paths.StripExtension(suffix),
		strings.TrimPrefix(paths.StripIndexOrPackageSuffix("/"+suffix), "/"),
	}
	for dir := paths.DirOf(suffix); dir != "." && dir != "/"; dir = paths.DirOf(dir) {
		forms = append(forms, dir)
	}
	forms = append(forms, "")

	for _, form := range forms {
		if form == "" {
			// text names the old directory itself
			if u.policy.Equal(paths.Base(text), paths.Base(u.op.OldPath)) {
				return text, "", true
			}
			continue
		}
		for _, candidate := range []string{text, paths.StripExtension(text)} {
			if u.policy.HasSuffix(candidate, "/"+form) {
				prefix = candidate[:len(candidate)-len(form)-1]
				return prefix, text[len(prefix):], true
			}
		}
	}
	return "", "", false
}

// render spells p the way the original text would have. Module specifiers
// drop their extension and index suffix unless the original carried an
// explicit extension, which is then kept.
func (u *External) render(p, original string, isModuleSpecifier bool) string {
	if !isModuleSpecifier {
		return keepStyle(p, original)
	}
	if ext := paths.Extension(original); ext != "" {
		return paths.StripExtension(p) + ext
	}
	return paths.ToModuleSpecifier(p)
}

// spells reports whether the last segment of text names resolvedPath, either
// as the file itself or as the directory its index or package.json sits in.
func (u *External) spells(resolvedPath, text string) bool {
	last := paths.Base(text)
	if u.policy.Equal(paths.StripExtension(last), paths.Base(paths.StripExtension(resolvedPath))) {
		return true
	}
	if !impliesDirectory(resolvedPath, text) {
		return false
	}
	return last == "." || last == ".." || u.policy.Equal(last, paths.Base(paths.DirOf(resolvedPath)))
}

// impliesDirectory reports whether text reached an index file or package.json
// through directory lookup rather than by naming it.
func impliesDirectory(resolvedPath, text string) bool {
	if !paths.IsIndexLike(resolvedPath) {
		return false
	}
	last := paths.Base(text)
	if last == "." || last == ".." {
		return true
	}
	return !paths.IsIndexLike(last)
}
