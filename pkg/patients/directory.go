// Package patients is the patient-lookup collaborator: a Postgres-backed
// directory with a Redis cache-aside layer in front of it.
package patients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carelink/assessment/pkg/common/logger"
	"github.com/carelink/assessment/pkg/common/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var ErrPatientNotFound = errors.New("patient not found")

type PatientModel struct {
	ID          string `gorm:"primaryKey"`
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Gender      string
	Email       string `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PatientModel) TableName() string {
	return "patients"
}

type Directory struct {
	db       *gorm.DB
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewDirectory builds a directory over the given database. The cache client
// may be nil; lookups then always hit Postgres.
func NewDirectory(db *gorm.DB, cache *redis.Client, cacheTTL time.Duration) *Directory {
	return &Directory{db: db, cache: cache, cacheTTL: cacheTTL}
}

func (d *Directory) AutoMigrate() error {
	return d.db.AutoMigrate(&PatientModel{})
}

func (d *Directory) FindPatient(ctx context.Context, id string) (models.Patient, error) {
	key := cacheKey(id)

	if d.cache != nil {
		if data, err := d.cache.Get(ctx, key).Bytes(); err == nil {
			var patient models.Patient
			if err := json.Unmarshal(data, &patient); err == nil {
				return patient, nil
			}
		}
	}

	var row PatientModel
	if err := d.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Patient{}, ErrPatientNotFound
		}
		return models.Patient{}, err
	}

	patient := models.Patient{
		ID:          row.ID,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		DateOfBirth: row.DateOfBirth,
		Gender:      row.Gender,
		Email:       row.Email,
	}

	if d.cache != nil {
		if data, err := json.Marshal(patient); err == nil {
			if err := d.cache.Set(ctx, key, data, d.cacheTTL).Err(); err != nil {
				logger.Log.WithError(err).WithField("patient_id", id).
					Debug("failed to cache patient")
			}
		}
	}

	return patient, nil
}

// SeedDemoPatient makes sure the demo patient exists so the platform works
// out of the box without registration.
func (d *Directory) SeedDemoPatient(ctx context.Context) error {
	dob := time.Date(1988, time.March, 14, 0, 0, 0, 0, time.UTC)
	demo := PatientModel{
		ID:          "demo-patient",
		FirstName:   "Demo",
		LastName:    "Patient",
		DateOfBirth: &dob,
		Gender:      "female",
		Email:       "demo@carelink.example",
	}
	return d.db.WithContext(ctx).FirstOrCreate(&demo, "id = ?", demo.ID).Error
}

func cacheKey(id string) string {
	return fmt.Sprintf("patient:%s", id)
}
