package cvs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobassist-backend/internal/extract"
	"jobassist-backend/internal/profiles"
	"jobassist-backend/internal/shared/storage/object"
	"jobassist-backend/internal/shared/telemetry"
	"jobassist-backend/internal/shared/util"
)

const maxUploadBytes = 5 << 20

var allowedContentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// ErrUnauthorized is returned when a CV is not reachable through any of the
// caller's profiles.
var ErrUnauthorized = errors.New("cv not owned by user")

// Service contains business logic for the CV lifecycle: validated uploads,
// in-place replacement, downloads, and cascading deletes.
type Service struct {
	Repo     Repo
	Profiles profiles.Repo
	Store    object.BlobStore

	now func() time.Time
}

func NewService(repo Repo, profileRepo profiles.Repo, store object.BlobStore) *Service {
	return &Service{Repo: repo, Profiles: profileRepo, Store: store, now: time.Now}
}

// UploadResult carries the stored CV plus a best-effort text preview of its
// contents. An empty preview means extraction was skipped or failed.
type UploadResult struct {
	CV          CV
	TextPreview string
}

// Upload validates and stores a CV for the given profile, attaching it as the
// profile's current CV. When the profile already had one, the profile is
// repointed first and the displaced CV's blob and row are then removed,
// unless another profile still references it.
func (s *Service) Upload(ctx context.Context, userID, profileID, fileName, contentType string, r io.Reader) (UploadResult, error) {
	profile, err := s.ownedProfile(ctx, userID, profileID)
	if err != nil {
		return UploadResult{}, err
	}

	cleanName, data, err := readValidated(fileName, contentType, r)
	if err != nil {
		return UploadResult{}, err
	}

	now := s.now().UTC()
	key := BuildKey(userID, cleanName, now)
	url, size, err := s.Store.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return UploadResult{}, fmt.Errorf("store cv: %w", err)
	}

	cv := CV{
		ID:          uuid.NewString(),
		FileName:    cleanName,
		URL:         url,
		ContentType: contentType,
		SizeBytes:   size,
		UploadedAt:  now,
	}
	if err := s.Repo.Create(ctx, cv); err != nil {
		s.deleteBlob(ctx, url)
		return UploadResult{}, err
	}
	if err := s.Profiles.SetCV(ctx, profile.ID, &cv.ID); err != nil {
		return UploadResult{}, err
	}
	if displaced := profile.CVID; displaced != nil && *displaced != cv.ID {
		s.removeDisplaced(ctx, *displaced)
	}

	return UploadResult{CV: cv, TextPreview: s.preview(ctx, data, cv)}, nil
}

// removeDisplaced cleans up a CV that lost its last profile reference to a
// fresh upload. The profile was already repointed, so failures here leave an
// orphan at worst, never a broken attachment.
func (s *Service) removeDisplaced(ctx context.Context, cvID string) {
	refs, err := s.Profiles.ListByCVID(ctx, cvID)
	if err != nil {
		telemetry.Warn("cv.displaced.refs_check_failed", map[string]any{
			"cv_id": cvID,
			"err":   err.Error(),
		})
		return
	}
	if len(refs) > 0 {
		return
	}

	old, err := s.Repo.GetByID(ctx, cvID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			telemetry.Warn("cv.displaced.lookup_failed", map[string]any{
				"cv_id": cvID,
				"err":   err.Error(),
			})
		}
		return
	}
	s.deleteBlob(ctx, old.URL)
	if err := s.Repo.Delete(ctx, cvID); err != nil {
		telemetry.Warn("cv.displaced.delete_failed", map[string]any{
			"cv_id": cvID,
			"err":   err.Error(),
		})
	}
}

// Replace swaps a CV's file in place: the new blob is uploaded first, the row
// is repointed, and only then is the old blob removed. A failed removal leaves
// an orphaned object but never a broken CV.
func (s *Service) Replace(ctx context.Context, userID, cvID, fileName, contentType string, r io.Reader) (UploadResult, error) {
	cv, err := s.getOwned(ctx, userID, cvID)
	if err != nil {
		return UploadResult{}, err
	}

	cleanName, data, err := readValidated(fileName, contentType, r)
	if err != nil {
		return UploadResult{}, err
	}

	oldURL := cv.URL
	now := s.now().UTC()
	key := BuildKey(userID, cleanName, now)
	url, size, err := s.Store.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return UploadResult{}, fmt.Errorf("store cv: %w", err)
	}

	cv.FileName = cleanName
	cv.URL = url
	cv.ContentType = contentType
	cv.SizeBytes = size
	cv.UploadedAt = now
	if err := s.Repo.Update(ctx, cv); err != nil {
		s.deleteBlob(ctx, url)
		return UploadResult{}, err
	}

	s.deleteBlob(ctx, oldURL)
	return UploadResult{CV: cv, TextPreview: s.preview(ctx, data, cv)}, nil
}

// Get returns a CV the caller can reach through one of their profiles.
func (s *Service) Get(ctx context.Context, userID, cvID string) (CV, error) {
	return s.getOwned(ctx, userID, cvID)
}

// ForProfile returns the CV attached to one of the caller's profiles.
func (s *Service) ForProfile(ctx context.Context, userID, profileID string) (CV, error) {
	profile, err := s.ownedProfile(ctx, userID, profileID)
	if err != nil {
		return CV{}, err
	}
	if profile.CVID == nil {
		return CV{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, *profile.CVID)
}

// Download streams the CV's bytes from the blob store.
func (s *Service) Download(ctx context.Context, userID, cvID string) (CV, io.ReadCloser, error) {
	cv, err := s.getOwned(ctx, userID, cvID)
	if err != nil {
		return CV{}, nil, err
	}
	key, err := ExtractKeyFromURL(cv.URL)
	if err != nil {
		return CV{}, nil, err
	}
	body, err := s.Store.Open(ctx, key)
	if err != nil {
		return CV{}, nil, fmt.Errorf("open cv %s: %w", cv.ID, err)
	}
	return cv, body, nil
}

// Delete removes a CV entirely: every referencing profile is detached first,
// then the blob, then the metadata row.
func (s *Service) Delete(ctx context.Context, userID, cvID string) error {
	cv, err := s.getOwned(ctx, userID, cvID)
	if err != nil {
		return err
	}

	detached, err := s.Profiles.ClearCVRefs(ctx, cvID)
	if err != nil {
		return err
	}
	if detached > 0 {
		telemetry.Info("cv.detached", map[string]any{
			"cv_id":    cvID,
			"profiles": detached,
		})
	}

	if key, err := ExtractKeyFromURL(cv.URL); err == nil {
		if err := s.Store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete cv blob %s: %w", key, err)
		}
	}

	return s.Repo.Delete(ctx, cvID)
}

func (s *Service) ownedProfile(ctx context.Context, userID, profileID string) (profiles.Profile, error) {
	profile, err := s.Profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return profiles.Profile{}, profiles.ErrNotFound
		}
		return profiles.Profile{}, err
	}
	if profile.UserID != userID {
		return profiles.Profile{}, ErrUnauthorized
	}
	return profile, nil
}

func (s *Service) getOwned(ctx context.Context, userID, cvID string) (CV, error) {
	cv, err := s.Repo.GetByID(ctx, cvID)
	if err != nil {
		return CV{}, err
	}
	refs, err := s.Profiles.ListByCVID(ctx, cvID)
	if err != nil {
		return CV{}, err
	}
	for _, p := range refs {
		if p.UserID == userID {
			return cv, nil
		}
	}
	return CV{}, ErrUnauthorized
}

func (s *Service) deleteBlob(ctx context.Context, url string) {
	key, err := ExtractKeyFromURL(url)
	if err != nil {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil {
		telemetry.Warn("cv.blob.delete_failed", map[string]any{
			"key": key,
			"err": err.Error(),
		})
	}
}

func (s *Service) preview(ctx context.Context, data []byte, cv CV) string {
	text, err := extract.TextPreview(ctx, data, cv.ContentType, cv.FileName)
	if err != nil {
		if !errors.Is(err, extract.ErrUnsupported) {
			telemetry.Warn("cv.preview.failed", map[string]any{
				"cv_id": cv.ID,
				"err":   err.Error(),
			})
		}
		return ""
	}
	return text
}

// readValidated enforces the upload contract before any bytes reach storage:
// a sane file name, an allowed content type, a non-empty payload, and the
// size cap. Returns the sanitized file name alongside the bytes.
func readValidated(fileName, contentType string, r io.Reader) (string, []byte, error) {
	cleanName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if _, ok := allowedContentTypes[strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))]; !ok {
		return "", nil, fmt.Errorf("%w: content type %q is not allowed", ErrInvalidFile, contentType)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}
	if len(data) > maxUploadBytes {
		return "", nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidFile, maxUploadBytes)
	}
	return cleanName, data, nil
}
