package types

import "time"

type DonorProfile struct {
	UserID           string    `db:"user_id" json:"userId"`
	BloodType        BloodType `db:"blood_type" json:"bloodType"`
	OrgansOffered    []Organ   `db:"organs_offered" json:"organsOffered"`
	Lat              float64   `db:"lat" json:"lat"`
	Lng              float64   `db:"lng" json:"lng"`
	Address          string    `db:"address" json:"address"`
	Phone            string    `db:"phone" json:"phone"`
	EmergencyContact string    `db:"emergency_contact" json:"emergencyContact"`
	Available        bool      `db:"available" json:"available"`
	MedicalVerified  bool      `db:"medical_verified" json:"medicalVerified"`
	MedicalHistory   *string   `db:"medical_history" json:"medicalHistory,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

func (p *DonorProfile) Location() Location {
	return Location{Lat: p.Lat, Lng: p.Lng, Address: p.Address}
}

func (p *DonorProfile) Offers(organ Organ) bool {
	for _, o := range p.OrgansOffered {
		if o == organ {
			return true
		}
	}
	return false
}
