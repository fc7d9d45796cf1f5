package domain

import (
	"strings"
	"time"
)

// ClientType представляет категорию клиента
type ClientType string

const (
	ClientCitizen ClientType = "citizen"
	ClientVisitor ClientType = "visitor"
	ClientGulf    ClientType = "gulf"
)

// ClientName - составное имя клиента
type ClientName struct {
	First string `json:"first_name,omitempty"`
	Mid   string `json:"mid_name,omitempty"`
	Last  string `json:"last_name,omitempty"`
}

// Passport - паспортные данные клиента
type Passport struct {
	IDNo        string     `json:"id_no,omitempty"`
	Nationality string     `json:"nationality,omitempty"`
	IssuedAt    *time.Time `json:"doi,omitempty"`
	ExpiresAt   *time.Time `json:"dae,omitempty"`
}

// Visa - визовые данные клиента
type Visa struct {
	VisaNo      string     `json:"visa_no,omitempty"`
	IssuedAt    *time.Time `json:"doi,omitempty"`
	ExpiresAt   *time.Time `json:"doe,omitempty"`
	PlaceOfIss  string     `json:"poi,omitempty"`
	SponsorName string     `json:"sponsor_name,omitempty"`
}

// DrivingLicense - данные водительского удостоверения
type DrivingLicense struct {
	LicenseNo  string     `json:"lic_no,omitempty"`
	IssuedAt   *time.Time `json:"doi,omitempty"`
	ExpiresAt  *time.Time `json:"doe,omitempty"`
	PlaceOfIss string     `json:"poi,omitempty"`
}

// Insurance - страховые данные
type Insurance struct {
	Type   string `json:"ins_type,omitempty"`
	Amount string `json:"ins_amt,omitempty"`
}

// Driver - дополнительный водитель по договору
type Driver struct {
	Name      string     `json:"name,omitempty"`
	LicenseNo string     `json:"lic_no,omitempty"`
	ExpiresAt *time.Time `json:"doe,omitempty"`
	BirthDate *time.Time `json:"dob,omitempty"`
}

// Client - снимок данных клиента, встроенный в договор.
// Это юридическая запись на момент заключения договора, а не ссылка:
// последующие изменения данных клиента договор не затрагивают.
type Client struct {
	Name       ClientName     `json:"name"`
	Contact    string         `json:"contact,omitempty"`
	Email      string         `json:"email,omitempty"`
	ClientType ClientType     `json:"client_type,omitempty"`
	Passport   Passport       `json:"passport"`
	Visa       Visa           `json:"visa"`
	Insurance  Insurance      `json:"insurance"`
	DrivingLic DrivingLicense `json:"driving_lic"`
	Driver     Driver         `json:"driver"`
}

// FullName возвращает полное имя клиента
func (c *Client) FullName() string {
	parts := []string{c.Name.First, c.Name.Mid, c.Name.Last}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
