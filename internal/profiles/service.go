// Package profiles manages donor profiles and their verification documents.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"slices"
	"strings"
	"time"

	"lifelink/internal/utils"
	"lifelink/internal/validate"
	"lifelink/pkg/types"

	"github.com/sirupsen/logrus"
)

type ProfileStore interface {
	ProfileByUserID(ctx context.Context, userID string) (*types.DonorProfile, error)
	UpsertProfile(ctx context.Context, profile *types.DonorProfile) error
	SetMedicalVerified(ctx context.Context, userID string, verified bool) (*types.DonorProfile, error)
	CreateDocument(ctx context.Context, doc *types.ProfileDocument) error
	DocumentsByUser(ctx context.Context, userID string) ([]*types.ProfileDocument, error)
}

type FileStorage interface {
	UploadFile(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

type Service struct {
	store     ProfileStore
	files     FileStorage
	validator *validate.Validator
	logger    logrus.FieldLogger
	now       func() time.Time
}

func NewService(store ProfileStore, files FileStorage, validator *validate.Validator, logger logrus.FieldLogger) *Service {
	return &Service{
		store:     store,
		files:     files,
		validator: validator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type SaveProfileInput struct {
	BloodType        types.BloodType `json:"bloodType" form:"bloodType" validate:"required,is-blood-type"`
	OrgansOffered    []types.Organ   `json:"organsOffered" form:"organsOffered" validate:"omitempty,dive,is-organ"`
	Lat              *float64        `json:"lat" form:"lat" validate:"required,gte=-90,lte=90"`
	Lng              *float64        `json:"lng" form:"lng" validate:"required,gte=-180,lte=180"`
	Address          string          `json:"address" form:"address" validate:"required,max=200"`
	Phone            string          `json:"phone" form:"phone" validate:"required,is-phone"`
	EmergencyContact string          `json:"emergencyContact" form:"emergencyContact" validate:"max=100"`
	Available        bool            `json:"available" form:"available"`
	MedicalHistory   string          `json:"medicalHistory" form:"medicalHistory" validate:"max=1000"`
}

func (s *Service) Profile(ctx context.Context, actor types.Actor) (*types.DonorProfile, error) {
	return s.profile(ctx, actor.UserID)
}

func (s *Service) profile(ctx context.Context, userID string) (*types.DonorProfile, error) {
	profile, err := s.store.ProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			return nil, types.NotFoundError("Profile not found.", err)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// Save creates or replaces the caller's profile. Verification status is
// owned by coordinators and never changed here.
func (s *Service) Save(ctx context.Context, actor types.Actor, input SaveProfileInput) (*types.DonorProfile, error) {

	input.Address = strings.TrimSpace(input.Address)
	input.Phone = strings.TrimSpace(input.Phone)
	input.EmergencyContact = strings.TrimSpace(input.EmergencyContact)
	input.MedicalHistory = strings.TrimSpace(input.MedicalHistory)

	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	now := s.now()
	profile := &types.DonorProfile{
		UserID:           actor.UserID,
		BloodType:        input.BloodType,
		OrgansOffered:    dedupeOrgans(input.OrgansOffered),
		Lat:              *input.Lat,
		Lng:              *input.Lng,
		Address:          input.Address,
		Phone:            input.Phone,
		EmergencyContact: input.EmergencyContact,
		Available:        input.Available,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if input.MedicalHistory != "" {
		profile.MedicalHistory = utils.StringPtr(input.MedicalHistory)
	}

	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.WithField("user_id", actor.UserID).Info("profile saved")

	return s.profile(ctx, actor.UserID)
}

func (s *Service) Verify(ctx context.Context, actor types.Actor, userID string) (*types.DonorProfile, error) {

	if actor.Role != types.RoleCoordinator {
		return nil, types.Unauthorized("Only coordinators can verify donors.")
	}

	profile, err := s.store.SetMedicalVerified(ctx, userID, true)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			return nil, types.NotFoundError("Profile not found.", err)
		}
		return nil, fmt.Errorf("failed to verify profile: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"coordinator_id": actor.UserID,
	}).Info("profile verified")

	return profile, nil
}

type DocumentUpload struct {
	DocumentType string
	FileName     string
	MimeType     string
	Size         int64
	Body         io.Reader
}

func (s *Service) Documents(ctx context.Context, actor types.Actor) ([]*types.ProfileDocument, error) {
	docs, err := s.store.DocumentsByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	return docs, nil
}

// AttachDocument uploads a verification file for the caller's profile and
// records it. The stored object is removed again if the row cannot be written.
func (s *Service) AttachDocument(ctx context.Context, actor types.Actor, upload DocumentUpload) (*types.ProfileDocument, error) {

	if _, err := s.profile(ctx, actor.UserID); err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	if !slices.Contains(types.DocumentTypes, upload.DocumentType) {
		fields["documentType"] = "Choose a valid document type."
	}
	if upload.Size <= 0 {
		fields["file"] = "Please choose a file to upload."
	} else if upload.Size > types.MaxDocumentBytes {
		fields["file"] = "File is too large (max 10MB)."
	}
	if !slices.Contains(types.DocumentMimeTypes, upload.MimeType) {
		fields["file"] = "Only PDF, PNG and JPEG files are supported."
	}
	if len(fields) > 0 {
		return nil, types.ValidationError("Please fix the highlighted fields.", fields)
	}

	doc := &types.ProfileDocument{
		ID:            utils.NanoID(),
		UserID:        actor.UserID,
		DocumentType:  upload.DocumentType,
		FileName:      safeFileName(upload.FileName),
		FileSizeBytes: upload.Size,
		MimeType:      upload.MimeType,
		UploadedAt:    s.now(),
	}

	key := fmt.Sprintf("profiles/%s/%s-%s", actor.UserID, doc.ID, doc.FileName)
	storageKey, err := s.files.UploadFile(ctx, key, upload.Body, upload.Size, upload.MimeType)
	if err != nil {
		return nil, err
	}
	doc.StorageKey = storageKey

	if err := s.store.CreateDocument(ctx, doc); err != nil {
		if derr := s.files.DeleteFile(ctx, storageKey); derr != nil {
			s.logger.WithError(derr).WithField("storage_key", storageKey).Error("failed to remove orphaned document")
		}
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":     actor.UserID,
		"document_id": doc.ID,
		"type":        doc.DocumentType,
	}).Info("profile document attached")

	return doc, nil
}

func dedupeOrgans(organs []types.Organ) []types.Organ {
	out := make([]types.Organ, 0, len(organs))
	for _, o := range organs {
		if !slices.Contains(out, o) {
			out = append(out, o)
		}
	}
	return out
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func safeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "document"
	}
	return name
}
