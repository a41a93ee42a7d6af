package types

type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

var BloodTypes = []BloodType{
	BloodTypeAPos, BloodTypeANeg,
	BloodTypeBPos, BloodTypeBNeg,
	BloodTypeABPos, BloodTypeABNeg,
	BloodTypeOPos, BloodTypeONeg,
}

func (b BloodType) Valid() bool {
	for _, v := range BloodTypes {
		if b == v {
			return true
		}
	}
	return false
}

type Organ string

const (
	OrganKidney   Organ = "kidney"
	OrganLiver    Organ = "liver"
	OrganHeart    Organ = "heart"
	OrganLungs    Organ = "lungs"
	OrganPancreas Organ = "pancreas"
	OrganCornea   Organ = "cornea"
	OrganSkin     Organ = "skin"
	OrganBone     Organ = "bone"
	OrganOther    Organ = "other"
)

var Organs = []Organ{
	OrganKidney, OrganLiver, OrganHeart, OrganLungs, OrganPancreas,
	OrganCornea, OrganSkin, OrganBone, OrganOther,
}

func (o Organ) Valid() bool {
	for _, v := range Organs {
		if o == v {
			return true
		}
	}
	return false
}

type Location struct {
	Lat     float64 `db:"lat" json:"lat"`
	Lng     float64 `db:"lng" json:"lng"`
	Address string  `db:"address" json:"address"`
}
