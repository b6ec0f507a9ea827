package provider

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/mstamatov/userpipe-backend/internal/models"
)

// FakeProvider generates record batches locally in the external provider's
// shape. Used when RANDOM_USER_API_URL=fake so the pipeline runs without
// network access, and by end-to-end tests.
type FakeProvider struct{}

func NewFakeProvider() *FakeProvider { return &FakeProvider{} }

func (f *FakeProvider) FetchBatch(_ context.Context, size int) ([]models.RawRecord, error) {
	out := make([]models.RawRecord, 0, size)
	for i := 0; i < size; i++ {
		addr := gofakeit.Address()
		out = append(out, models.RawRecord{
			Login: &models.RawLogin{
				UUID:     uuid.NewString(),
				Username: gofakeit.Username(),
				Password: gofakeit.Password(true, true, true, false, false, 12),
			},
			Name: &models.RawName{
				First: gofakeit.FirstName(),
				Last:  gofakeit.LastName(),
			},
			Email: gofakeit.Email(),
			Phone: gofakeit.Phone(),
			ID: &models.RawID{
				Name:  "SSN",
				Value: gofakeit.SSN(),
			},
			DOB: &models.RawDOB{
				Date: gofakeit.Date().Format("2006-01-02T15:04:05.000Z"),
			},
			Location: &models.RawLocation{
				City: addr.City,
				Street: &models.RawStreet{
					Name:   addr.Street,
					Number: models.FlexString(fmt.Sprintf("%d", gofakeit.Number(1, 9999))),
				},
				Postcode: models.FlexString(addr.Zip),
				State:    addr.State,
				Country:  gofakeit.Country(),
			},
		})
	}
	return out, nil
}
