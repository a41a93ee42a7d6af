package types

type NavbarData struct {
	IsAuthenticated bool
	UserID          string
	UserName        string
	Role            Role
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
	Notice string
	Error  string
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type HomePageData struct {
	BasePageData
	BloodTypes []BloodType
	Organs     []Organ
}

type LoginPageData struct {
	BasePageData
	Email string
}

type RegisterPageData struct {
	BasePageData
	GivenName   string
	FamilyName  string
	Email       string
	Role        Role
	Roles       []Role
	FieldErrors map[string]string
}

type ConfirmRegisterPageData struct {
	BasePageData
	Email string
}
