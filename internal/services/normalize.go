package services

import (
	"log"

	"github.com/mstamatov/userpipe-backend/internal/models"
	"github.com/mstamatov/userpipe-backend/pkg/utils"
)

// Normalizer maps raw provider records into User/Address pairs. All defaulting
// of absent fields happens here, once, so the rest of the pipeline only ever
// sees fully-populated entities.
type Normalizer struct {
	Anon *utils.Anonymizer
}

// Normalize returns positionally-paired user and address slices keyed by the
// same uid. A record without login.uuid is malformed: it is logged and
// skipped without aborting the batch. Output records never have an empty uid.
func (n *Normalizer) Normalize(batch []models.RawRecord) ([]models.User, []models.Address) {
	users := make([]models.User, 0, len(batch))
	addresses := make([]models.Address, 0, len(batch))

	for i, r := range batch {
		if r.Login == nil || r.Login.UUID == "" {
			log.Printf("⚠️  Skipping malformed record %d: missing login.uuid", i)
			continue
		}
		uid := r.Login.UUID

		u := models.User{
			UID:                   uid,
			Password:              orNA(r.Login.Password),
			Username:              orNA(r.Login.Username),
			Email:                 orNA(r.Email),
			PhoneNumber:           orNA(r.Phone),
			FirstName:             models.NA,
			LastName:              models.NA,
			DateOfBirth:           models.NA,
			SocialInsuranceNumber: n.Anon.Token(rawIDValue(r.ID)),
		}
		if r.Name != nil {
			u.FirstName = orNA(r.Name.First)
			u.LastName = orNA(r.Name.Last)
		}
		if r.DOB != nil && r.DOB.Date != "" {
			u.DateOfBirth = truncateDate(r.DOB.Date)
		}

		a := models.Address{
			UID:           uid,
			City:          models.NA,
			StreetName:    models.NA,
			StreetAddress: models.NA,
			ZipCode:       models.NA,
			State:         models.NA,
			Country:       models.NA,
		}
		if loc := r.Location; loc != nil {
			a.City = orNA(loc.City)
			a.ZipCode = orNA(loc.Postcode.String())
			a.State = orNA(loc.State)
			a.Country = orNA(loc.Country)
			if loc.Street != nil {
				a.StreetName = orNA(loc.Street.Name)
				a.StreetAddress = orNA(loc.Street.Number.String())
			}
		}

		users = append(users, u)
		addresses = append(addresses, a)
	}

	return users, addresses
}

// rawIDValue is the anonymizer input: the national id value when present,
// the literal "N/A" placeholder otherwise (still anonymized, never stored raw).
func rawIDValue(id *models.RawID) string {
	if id == nil || id.Value == "" {
		return "N/A"
	}
	return id.Value
}

func orNA(s string) string {
	if s == "" {
		return models.NA
	}
	return s
}

// truncateDate reduces the provider's timestamp to its ISO date prefix.
func truncateDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
