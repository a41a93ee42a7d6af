package types

import "time"

// ProfileDocument is a medical verification file attached to a donor profile.
type ProfileDocument struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"userId"`
	DocumentType  string    `db:"document_type" json:"documentType"`
	FileName      string    `db:"file_name" json:"fileName"`
	FileSizeBytes int64     `db:"file_size_bytes" json:"fileSizeBytes"`
	MimeType      string    `db:"mime_type" json:"mimeType"`
	StorageKey    string    `db:"storage_key" json:"-"`
	UploadedAt    time.Time `db:"uploaded_at" json:"uploadedAt"`
}

// Document type constants
const (
	DocTypeBloodTest      = "blood_test"
	DocTypeDonorCard      = "donor_card"
	DocTypeMedicalRecord  = "medical_record"
	DocTypeIdentification = "identification"
	DocTypeOther          = "other"
)

var DocumentTypes = []string{
	DocTypeBloodTest,
	DocTypeDonorCard,
	DocTypeMedicalRecord,
	DocTypeIdentification,
	DocTypeOther,
}

const MaxDocumentBytes = 10 << 20

var DocumentMimeTypes = []string{"application/pdf", "image/png", "image/jpeg"}
