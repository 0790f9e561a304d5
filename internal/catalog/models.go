package catalog

import (
	"fmt"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderUnisex Gender = "UNISEX"
	GenderBoth   Gender = "BOTH"
)

// ParseClientGender accepts the two values a client can pick on the first
// step of the flow.
func ParseClientGender(v string) (Gender, bool) {
	switch Gender(strings.ToUpper(strings.TrimSpace(v))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	}
	return "", false
}

// ===============================
// Service
// ===============================

type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Duration    int     `json:"duration"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Gender      Gender  `json:"gender,omitempty"`
	BarberID    string  `json:"barberId,omitempty"`
}

// ServiceKey identifies the same logical service offered by several
// barbers.
type ServiceKey struct {
	Gender   Gender
	Name     string
	Duration int
	Price    string
}

func (s Service) Key() ServiceKey {
	return ServiceKey{
		Gender:   s.Gender,
		Name:     normalizeName(s.Name),
		Duration: s.Duration,
		Price:    fmt.Sprintf("%.2f", s.Price),
	}
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// ===============================
// Barber
// ===============================

type BarberUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type Media struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Type     string `json:"type,omitempty"`
	Caption  string `json:"caption,omitempty"`
	BarberID string `json:"barberId,omitempty"`
}

type GalleryImage struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

type Barber struct {
	ID           string   `json:"id"`
	UserID       string   `json:"userId"`
	Bio          string   `json:"bio,omitempty"`
	Specialties  []string `json:"specialties,omitempty"`
	HourlyRate   *float64 `json:"hourlyRate,omitempty"`
	ProfileImage string   `json:"profileImage,omitempty"`
	Phone        string   `json:"phone,omitempty"`

	InstagramURL string `json:"instagramUrl,omitempty"`
	FacebookURL  string `json:"facebookUrl,omitempty"`
	TikTokURL    string `json:"tiktokUrl,omitempty"`
	WebsiteURL   string `json:"websiteUrl,omitempty"`

	ZelleEmail string `json:"zelleEmail,omitempty"`
	ZellePhone string `json:"zellePhone,omitempty"`
	CashappTag string `json:"cashappTag,omitempty"`

	Rating *float64 `json:"rating,omitempty"`
	Gender Gender   `json:"gender,omitempty"`

	User          BarberUser     `json:"user"`
	Media         []Media        `json:"media"`
	GalleryImages []GalleryImage `json:"galleryImages,omitempty"`
}

// ServiceGender is the gender a barber's services are scoped to. BOTH and
// a missing value do not determine one.
func (b Barber) ServiceGender() (Gender, bool) {
	switch b.Gender {
	case GenderMale, GenderFemale:
		return b.Gender, true
	}
	return "", false
}

// ===============================
// Payment methods
// ===============================

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "CASH"
	PaymentZelle   PaymentMethod = "ZELLE"
	PaymentCashApp PaymentMethod = "CASHAPP"
)

// PaymentMethods lists what the barber can take. Cash is always accepted.
func (b Barber) PaymentMethods() []PaymentMethod {
	methods := []PaymentMethod{PaymentCash}
	if b.ZelleEmail != "" || b.ZellePhone != "" {
		methods = append(methods, PaymentZelle)
	}
	if b.CashappTag != "" {
		methods = append(methods, PaymentCashApp)
	}
	return methods
}

func (b Barber) Accepts(method PaymentMethod) bool {
	for _, m := range b.PaymentMethods() {
		if m == method {
			return true
		}
	}
	return false
}
