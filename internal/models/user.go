package models

// NA is the sentinel stored for any field the provider omits, so no entity
// ever carries a missing attribute.
const NA = "n/a"

type User struct {
	UID                   string `json:"uid"`
	Password              string `json:"password"` // raw provider value, stored as-is
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	Username              string `json:"username"`
	Email                 string `json:"email"`
	PhoneNumber           string `json:"phone_number"`
	SocialInsuranceNumber string `json:"social_insurance_number"` // anonymized token, never the raw value
	DateOfBirth           string `json:"date_of_birth"`
	IngestedAt            int64  `json:"ingested_at,omitempty"`
}

type Address struct {
	UID           string `json:"uid"`
	City          string `json:"city"`
	StreetName    string `json:"street_name"`
	StreetAddress string `json:"street_address"`
	ZipCode       string `json:"zip_code"`
	State         string `json:"state"`
	Country       string `json:"country"`
	IngestedAt    int64  `json:"ingested_at,omitempty"`
}

// UserWithAddress is the joined read shape returned by the durable store.
type UserWithAddress struct {
	UID                   string `json:"uid"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	Username              string `json:"username"`
	Email                 string `json:"email"`
	PhoneNumber           string `json:"phone_number"`
	SocialInsuranceNumber string `json:"social_insurance_number"`
	DateOfBirth           string `json:"date_of_birth"`
	City                  string `json:"city"`
	StreetName            string `json:"street_name"`
	StreetAddress         string `json:"street_address"`
	ZipCode               string `json:"zip_code"`
	State                 string `json:"state"`
	Country               string `json:"country"`
}

// Flatten merges a User and its Address into the field mapping cached under
// the uid. The uid itself is the cache key and is not repeated in the value.
func Flatten(u User, a Address) map[string]string {
	return map[string]string{
		"password":                u.Password,
		"first_name":              u.FirstName,
		"last_name":               u.LastName,
		"username":                u.Username,
		"email":                   u.Email,
		"phone_number":            u.PhoneNumber,
		"social_insurance_number": u.SocialInsuranceNumber,
		"date_of_birth":           u.DateOfBirth,
		"city":                    a.City,
		"street_name":             a.StreetName,
		"street_address":          a.StreetAddress,
		"zip_code":                a.ZipCode,
		"state":                   a.State,
		"country":                 a.Country,
	}
}

// Fields returns the joined row in the same flattened shape the cache serves,
// so both read paths answer identically.
func (r *UserWithAddress) Fields() map[string]string {
	return map[string]string{
		"first_name":              r.FirstName,
		"last_name":               r.LastName,
		"username":                r.Username,
		"email":                   r.Email,
		"phone_number":            r.PhoneNumber,
		"social_insurance_number": r.SocialInsuranceNumber,
		"date_of_birth":           r.DateOfBirth,
		"city":                    r.City,
		"street_name":             r.StreetName,
		"street_address":          r.StreetAddress,
		"zip_code":                r.ZipCode,
		"state":                   r.State,
		"country":                 r.Country,
	}
}
