package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is a referring physician. The percentages are the live rates;
// patients keep the rates in force when they were registered.
type Doctor struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	ClinicName        string    `json:"clinicName"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email"`
	Address           string    `json:"address"`
	Specialty         string    `json:"specialty"`
	CNIC              string    `json:"cnic"`
	Notes             string    `json:"notes"`
	RoutinePercentage float64   `json:"routinePercentage"`
	SpecialPercentage float64   `json:"specialPercentage"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
