package profiles

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"lifelink/internal/store/memstore"
	"lifelink/internal/utils"
	"lifelink/internal/validate"
	"lifelink/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFiles struct {
	objects map[string]string
	fail    error
}

func (m *memFiles) UploadFile(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if m.fail != nil {
		return "", m.fail
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[key] = string(b)
	return key, nil
}

func (m *memFiles) DeleteFile(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

var (
	donor       = types.Actor{UserID: "donor-1", Role: types.RoleDonor}
	coordinator = types.Actor{UserID: "coord-1", Role: types.RoleCoordinator}
)

func newTestService(t *testing.T) (*Service, *memstore.Store, *memFiles) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := memstore.New()
	files := &memFiles{objects: map[string]string{}}
	return NewService(store, files, validate.New(), logger), store, files
}

func validInput() SaveProfileInput {
	return SaveProfileInput{
		BloodType:     types.BloodTypeONeg,
		OrgansOffered: []types.Organ{types.OrganKidney, types.OrganLiver, types.OrganKidney},
		Lat:           utils.Float64Ptr(51.5074),
		Lng:           utils.Float64Ptr(-0.1278),
		Address:       "  10 Downing St, London ",
		Phone:         "+44 20 7946 0958",
		Available:     true,
	}
}

func TestSaveProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Save(ctx, donor, validInput())
	require.NoError(t, err)

	assert.Equal(t, donor.UserID, profile.UserID)
	assert.Equal(t, []types.Organ{types.OrganKidney, types.OrganLiver}, profile.OrgansOffered)
	assert.Equal(t, "10 Downing St, London", profile.Address)
	assert.True(t, profile.Available)
	assert.False(t, profile.MedicalVerified)
	assert.Nil(t, profile.MedicalHistory)

	in := validInput()
	in.Available = false
	in.MedicalHistory = "No known conditions"
	profile, err = svc.Save(ctx, donor, in)
	require.NoError(t, err)
	assert.False(t, profile.Available)
	require.NotNil(t, profile.MedicalHistory)
	assert.Equal(t, "No known conditions", *profile.MedicalHistory)
}

func TestSaveProfileValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *SaveProfileInput)
		field  string
	}{
		{"missing blood type", func(in *SaveProfileInput) { in.BloodType = "" }, "bloodType"},
		{"bad blood type", func(in *SaveProfileInput) { in.BloodType = "Z" }, "bloodType"},
		{"bad organ", func(in *SaveProfileInput) { in.OrgansOffered = []types.Organ{"spleen"} }, "organsOffered[0]"},
		{"lat", func(in *SaveProfileInput) { in.Lat = utils.Float64Ptr(-90.5) }, "lat"},
		{"lng missing", func(in *SaveProfileInput) { in.Lng = nil }, "lng"},
		{"phone", func(in *SaveProfileInput) { in.Phone = "12345" }, "phone"},
		{"address", func(in *SaveProfileInput) { in.Address = strings.Repeat("a", 201) }, "address"},
		{"history", func(in *SaveProfileInput) { in.MedicalHistory = strings.Repeat("a", 1001) }, "medicalHistory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService(t)

			in := validInput()
			tt.mutate(&in)

			_, err := svc.Save(context.Background(), donor, in)
			require.ErrorIs(t, err, types.ErrValidation)
			verr, _ := types.AsError(err)
			assert.Contains(t, verr.Fields, tt.field)

			_, err = store.ProfileByUserID(context.Background(), donor.UserID)
			assert.ErrorIs(t, err, types.ErrProfileNotFound)
		})
	}
}

func TestProfileNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Profile(context.Background(), donor)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, err, types.ErrProfileNotFound)
}

func TestVerify(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, donor, validInput())
	require.NoError(t, err)

	_, err = svc.Verify(ctx, donor, donor.UserID)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	profile, err := svc.Verify(ctx, coordinator, donor.UserID)
	require.NoError(t, err)
	assert.True(t, profile.MedicalVerified)

	profile, err = svc.Save(ctx, donor, validInput())
	require.NoError(t, err)
	assert.True(t, profile.MedicalVerified, "saving keeps verification")

	_, err = svc.Verify(ctx, coordinator, "unknown")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestAttachDocument(t *testing.T) {
	svc, _, files := newTestService(t)
	ctx := context.Background()

	upload := DocumentUpload{
		DocumentType: types.DocTypeDonorCard,
		FileName:     "../My Donor Card.pdf",
		MimeType:     "application/pdf",
		Size:         4,
		Body:         strings.NewReader("%PDF"),
	}

	_, err := svc.AttachDocument(ctx, donor, upload)
	assert.ErrorIs(t, err, types.ErrNotFound, "profile required first")

	_, err = svc.Save(ctx, donor, validInput())
	require.NoError(t, err)

	doc, err := svc.AttachDocument(ctx, donor, upload)
	require.NoError(t, err)
	assert.Equal(t, "My_Donor_Card.pdf", doc.FileName)
	assert.Equal(t, "profiles/donor-1/"+doc.ID+"-My_Donor_Card.pdf", doc.StorageKey)
	assert.Equal(t, "%PDF", files.objects[doc.StorageKey])

	docs, err := svc.Documents(ctx, donor)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)
}

func TestAttachDocumentValidation(t *testing.T) {
	svc, _, files := newTestService(t)
	ctx := context.Background()
	_, err := svc.Save(ctx, donor, validInput())
	require.NoError(t, err)

	tests := []struct {
		name   string
		upload DocumentUpload
		field  string
	}{
		{"type", DocumentUpload{DocumentType: "selfie", MimeType: "image/png", Size: 1}, "documentType"},
		{"empty", DocumentUpload{DocumentType: types.DocTypeOther, MimeType: "image/png"}, "file"},
		{"too large", DocumentUpload{DocumentType: types.DocTypeOther, MimeType: "image/png", Size: types.MaxDocumentBytes + 1}, "file"},
		{"mime", DocumentUpload{DocumentType: types.DocTypeOther, MimeType: "text/plain", Size: 1}, "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.upload.Body = strings.NewReader("x")
			_, err := svc.AttachDocument(ctx, donor, tt.upload)
			require.ErrorIs(t, err, types.ErrValidation)
			verr, _ := types.AsError(err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
	assert.Empty(t, files.objects)
}

func TestAttachDocumentStorageFailure(t *testing.T) {
	svc, _, files := newTestService(t)
	ctx := context.Background()
	_, err := svc.Save(ctx, donor, validInput())
	require.NoError(t, err)

	boom := errors.New("s3 down")
	files.fail = boom
	_, err = svc.AttachDocument(ctx, donor, DocumentUpload{
		DocumentType: types.DocTypeBloodTest,
		FileName:     "results.png",
		MimeType:     "image/png",
		Size:         1,
		Body:         strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, boom)

	docs, err := svc.Documents(ctx, donor)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "card.pdf", safeFileName("card.pdf"))
	assert.Equal(t, "evil.sh", safeFileName(`C:\tmp\..\evil.sh`))
	assert.Equal(t, "document", safeFileName(""))
	assert.Equal(t, "document", safeFileName(".."))
}
