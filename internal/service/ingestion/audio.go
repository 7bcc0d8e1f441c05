package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/catalog-sync/internal/contentdef"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

const (
	defaultAudioFormat      = "mp3"
	defaultAudioContentType = "audio/mpeg"
)

var formatPattern = regexp.MustCompile(`^[a-z0-9]{1,16}$`)

// normalizePrimary returns a copy of defs with exactly one primary asset, or
// none when defs is empty. Declaring more than one primary is an input error.
func normalizePrimary(defs []contentdef.AudioAssetDef) ([]contentdef.AudioAssetDef, error) {
	out := make([]contentdef.AudioAssetDef, len(defs))
	copy(out, defs)

	primaries := 0
	for _, d := range out {
		if d.IsPrimary {
			primaries++
		}
	}
	switch {
	case primaries > 1:
		return nil, fmt.Errorf("%w: %d declared", domain.ErrMultiplePrimary, primaries)
	case primaries == 0 && len(out) > 0:
		out[0].IsPrimary = true
	}
	return out, nil
}

// syncAudio resolves, uploads and upserts the lecture's declared assets.
// Existing assets of the lecture that are not the new primary are demoted
// first, so the one-primary index holds after every statement.
func (r *run) syncAudio(ctx context.Context, scholarSlug string, ld contentdef.LectureDef, lectureID uuid.UUID) error {
	defs, err := normalizePrimary(ld.AudioAssets)
	if err != nil {
		return fmt.Errorf("lecture %s/%s: %w", scholarSlug, ld.Slug, err)
	}

	assets := make([]domain.AudioAsset, 0, len(defs))
	for i, def := range defs {
		a, err := r.materializeAsset(ctx, scholarSlug, ld.Slug, def)
		if err != nil {
			return fmt.Errorf("lecture %s/%s audioAssets[%d]: %w", scholarSlug, ld.Slug, i, err)
		}
		a.LectureID = lectureID
		a.BatchID = r.batch.ID
		assets = append(assets, a)
	}

	keep := ""
	for _, a := range assets {
		if a.IsPrimary {
			keep = a.URL
		}
	}
	demoted, err := r.repos.AudioAssets.DemotePrimaryExcept(ctx, lectureID, keep)
	if err != nil {
		return fmt.Errorf("demote audio assets of %s/%s: %w", scholarSlug, ld.Slug, err)
	}
	r.res.Demoted += demoted

	// The primary goes last so a duplicate url cannot clear its flag.
	sort.SliceStable(assets, func(i, j int) bool { return !assets[i].IsPrimary && assets[j].IsPrimary })

	for _, a := range assets {
		res, err := r.repos.AudioAssets.Upsert(ctx, a)
		if err != nil {
			return fmt.Errorf("upsert audio asset %q of %s/%s: %w", a.URL, scholarSlug, ld.Slug, err)
		}
		r.res.AudioAssets.add(res)
	}
	return nil
}

// materializeAsset turns a declaration into a row: remote urls are used as-is,
// local files are uploaded or fall back to a file:// url.
func (r *run) materializeAsset(ctx context.Context, scholarSlug, lectureSlug string, def contentdef.AudioAssetDef) (domain.AudioAsset, error) {
	a := domain.AudioAsset{
		BitrateKbps:     def.BitrateKbps,
		SizeBytes:       def.SizeBytesInt(),
		DurationSeconds: def.DurationSeconds,
		IsPrimary:       def.IsPrimary,
	}

	if def.URL != nil && *def.URL != "" {
		a.URL = *def.URL
		a.Format = audioFormat(def.Format, urlPath(a.URL))
		a.Source = externalSource(def.Source, a.URL)
		return a, nil
	}

	local, err := r.resolveLocalFile(scholarSlug, lectureSlug, def)
	if err != nil {
		return domain.AudioAsset{}, err
	}
	a.Format = audioFormat(def.Format, local)

	if r.store == nil {
		if r.in.StrictAudioUpload {
			return domain.AudioAsset{}, fmt.Errorf("upload %s: %w", local, domain.ErrStorageNotConfigured)
		}
		abs, err := filepath.Abs(local)
		if err != nil {
			return domain.AudioAsset{}, fmt.Errorf("absolute path of %s: %w", local, err)
		}
		a.URL = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
		a.Source = domain.AudioSourceIngestionLocal
		r.res.LocalFallbacks++
		r.log.WarnContext(ctx, "object store not configured, storing local file url",
			slog.String("lecture", lectureSlug),
			slog.String("url", a.URL),
		)
		return a, nil
	}

	key := domain.AudioObjectKey(r.in.Environment, r.in.Tag, scholarSlug, lectureSlug, local)
	if err := r.store.Upload(ctx, key, local, contentType(local)); err != nil {
		return domain.AudioAsset{}, fmt.Errorf("upload %s: %w", local, err)
	}
	r.res.Uploaded++
	r.log.DebugContext(ctx, "audio uploaded",
		slog.String("key", key),
		slog.String("file", local),
		slog.String("public_url", r.store.PublicURL(key)),
	)

	a.URL = key
	a.Source = domain.AudioSourceR2
	return a, nil
}

// resolveLocalFile picks the declared file (relative paths resolve under the
// audio dir) or the conventional {audioDir}/{scholar}/{lecture}.mp3.
func (r *run) resolveLocalFile(scholarSlug, lectureSlug string, def contentdef.AudioAssetDef) (string, error) {
	if def.File != nil && *def.File != "" {
		p := *def.File
		if !filepath.IsAbs(p) {
			p = filepath.Join(r.in.AudioDir, p)
		}
		if err := requireRegularFile(p); err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrAudioUnresolved, err)
		}
		return p, nil
	}

	conventional := filepath.Join(r.in.AudioDir, scholarSlug, lectureSlug+".mp3")
	if err := requireRegularFile(conventional); err == nil {
		return conventional, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	return "", fmt.Errorf("%w (looked for %s)", domain.ErrAudioUnresolved, conventional)
}

func requireRegularFile(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("audio file %s: %w", p, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("audio file %s: not a regular file", p)
	}
	return nil
}

// audioFormat prefers the declared format, then the file extension, then mp3.
func audioFormat(declared *string, name string) string {
	if declared != nil && *declared != "" {
		return strings.ToLower(*declared)
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filepath.ToSlash(name)), "."))
	if formatPattern.MatchString(ext) {
		return ext
	}
	return defaultAudioFormat
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return defaultAudioContentType
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}

func externalSource(declared *string, u string) string {
	if declared != nil && *declared != "" {
		return *declared
	}
	if domain.IsStorageKey(u) {
		return domain.AudioSourceR2
	}
	return domain.AudioSourceExternal
}
